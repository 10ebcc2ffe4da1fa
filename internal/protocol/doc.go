// Package protocol implements the session engine: bidirectional message
// dispatch between a framed transport and application handlers.
//
// The engine is type-erased. Handlers receive the raw envelope and return an
// Outcome; the typed adapters in the root package decode payloads with the
// session codec and normalize handler results before handing them back.
//
// A Session handles:
//   - Assigning strictly increasing sequence numbers to outbound messages
//   - Correlating inbound responses with pending requests by request_seq
//   - Routing inbound requests and events to the handler registered for
//     their command or event name
//   - Synthesizing error responses for requests nobody handles
//   - Invoking sent observers after a response is written or received
//   - Failing every pending request when the transport ends or the session closes
//
// Example usage:
//
//	s := protocol.NewSession(log, codec.JSON(), transport.FramingContentLength)
//	s.RegisterRequestHandler("threads", handleThreads)
//	if err := s.Bind(conn, conn); err != nil {
//	    return err
//	}
//	defer s.Close()
package protocol

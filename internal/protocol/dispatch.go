package protocol

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/wagiedev/dap-session-go/internal/errors"
	"github.com/wagiedev/dap-session-go/internal/message"
	"github.com/wagiedev/dap-session-go/internal/transport"
)

// readLoop decodes inbound messages one at a time and routes them.
//
// It exits when the reader reports end-of-stream or a read failure. Decode
// failures of a single message are reported and skipped.
func (s *Session) readLoop(r transport.Reader) {
	defer s.wg.Done()
	defer close(s.loopDone)
	defer s.log.Debug("Dispatch loop stopped")

	messageCount := 0

	for {
		data, err := r.ReadMessage()

		// Close must not wait on this goroutine while it runs handlers or
		// callbacks, which may themselves call Close.
		s.dispatching.Store(true)

		if err != nil {
			s.terminate(err)

			return
		}

		msg, err := s.codec.DecodeMessage(data)
		if err != nil {
			s.log.Debug("Failed to decode message", "error", err, "size", len(data))
			s.reportError(&errors.DecodeError{Err: err})
		} else if err := message.Validate(s.log, msg); err != nil {
			s.reportError(err)
		} else {
			messageCount++
			s.log.Debug("Received message", "type", msg.Type, "seq", msg.Seq, "message_count", messageCount)

			s.handleMessage(msg)
		}

		s.dispatching.Store(false)
	}
}

// terminate ends the session's inbound side: every pending request fails
// and, unless Close caused it, the error callback learns why.
func (s *Session) terminate(readErr error) {
	if s.closing.Load() {
		s.log.Debug("Transport closed during shutdown")
		s.failPending(errors.ErrSessionClosed)

		return
	}

	var cause error
	if stderrors.Is(readErr, io.EOF) {
		cause = fmt.Errorf("%w: peer closed the stream", errors.ErrSessionClosed)
		s.log.Info("Transport reached end of stream")
	} else {
		cause = fmt.Errorf("%w: %w", errors.ErrSessionClosed, &errors.TransportError{Op: "read", Err: readErr})
		s.log.Error("Transport read failed", "error", readErr)
	}

	s.failPending(cause)
	s.reportError(cause)
}

// handleMessage routes a message based on its type.
func (s *Session) handleMessage(msg *message.Message) {
	switch msg.Type {
	case message.TypeResponse:
		s.handleResponse(msg)

	case message.TypeRequest:
		s.handleRequest(s.ctx, msg)

	case message.TypeEvent:
		s.handleEvent(s.ctx, msg)
	}
}

// handleResponse routes a response to the waiting request.
func (s *Session) handleResponse(msg *message.Message) {
	// Find and claim pending request atomically
	pending := s.claimPending(msg.RequestSeq)
	if pending == nil {
		s.log.Warn("No pending request for response", "request_seq", msg.RequestSeq, "command", msg.Command)

		return
	}

	// Observers are keyed by the command we sent, not the one the peer echoed.
	command := pending.command
	if msg.Command != "" && msg.Command != command {
		s.log.Warn("Response command does not match request", "request_seq", msg.RequestSeq,
			"expected", command, "got", msg.Command)
	}

	s.log.Debug("Received response", "request_seq", msg.RequestSeq, "command", command, "success", msg.Success)

	var out Outcome

	if panicked := s.guard(command, func() {
		out = pending.complete(msg, nil)
	}); panicked != nil {
		out = Outcome{Err: panicked}
		s.reportError(panicked)
	} else if decodeErr, ok := stderrors.AsType[*errors.DecodeError](out.Err); ok {
		s.reportError(decodeErr)
	}

	s.notifySent(command, out)
}

// handleRequest invokes the registered handler for an inbound request and
// writes its outcome back.
func (s *Session) handleRequest(ctx context.Context, msg *message.Message) {
	s.handlersMu.RLock()
	handler, exists := s.handlers[msg.Command]
	s.handlersMu.RUnlock()

	if !exists {
		s.log.Warn("No handler registered for request command", "command", msg.Command, "seq", msg.Seq)

		errMsg := fmt.Sprintf("%s '%s'", errors.ErrUnknownCommand, msg.Command)
		s.respond(message.NewErrorResponse(s.seq.Add(1), msg.Seq, msg.Command, errMsg))

		return
	}

	var out Outcome

	panicked := s.guard(msg.Command, func() {
		out = handler(ctx, msg)
	})
	if panicked != nil {
		out = Outcome{Err: panicked}
		s.reportError(panicked)
	}

	if decodeErr, ok := stderrors.AsType[*errors.DecodeError](out.Err); ok {
		s.reportError(decodeErr)
	}

	resp, err := s.buildResponse(msg, out)
	if err != nil {
		s.log.Error("Failed to encode response body", "command", msg.Command, "error", err)
		s.reportError(err)

		out = Outcome{Err: err}
		resp = message.NewErrorResponse(s.seq.Add(1), msg.Seq, msg.Command, err.Error())
	}

	if !s.respond(resp) {
		return
	}

	s.notifySent(msg.Command, out)
}

// handleEvent invokes the registered handler for an inbound event, if any.
func (s *Session) handleEvent(ctx context.Context, msg *message.Message) {
	s.handlersMu.RLock()
	handler, exists := s.events[msg.Event]
	s.handlersMu.RUnlock()

	if !exists {
		s.log.Debug("Dropping unhandled event", "event", msg.Event)

		return
	}

	var err error

	if panicked := s.guard(msg.Event, func() {
		err = handler(ctx, msg)
	}); panicked != nil {
		err = panicked
	}

	if err != nil {
		s.log.Warn("Event handler failed", "event", msg.Event, "error", err)
		s.reportError(err)
	}
}

// buildResponse encodes a handler outcome as a response to req.
func (s *Session) buildResponse(req *message.Message, out Outcome) (*message.Message, error) {
	if out.Err != nil {
		return message.NewErrorResponse(s.seq.Add(1), req.Seq, req.Command, out.Err.Error()), nil
	}

	body, err := s.encodeBody(out.Body)
	if err != nil {
		return nil, fmt.Errorf("encode response '%s': %w", req.Command, err)
	}

	return message.NewSuccessResponse(s.seq.Add(1), req.Seq, req.Command, body), nil
}

// respond writes a response and reports whether it reached the transport.
func (s *Session) respond(resp *message.Message) bool {
	w, err := s.currentWriter()
	if err != nil {
		s.log.Debug("Cannot send response", "command", resp.Command, "request_seq", resp.RequestSeq, "error", err)

		if !s.closing.Load() {
			s.reportError(fmt.Errorf("send response '%s': %w", resp.Command, err))
		}

		return false
	}

	if err := s.write(w, resp); err != nil {
		s.log.Error("Failed to send response", "command", resp.Command, "request_seq", resp.RequestSeq, "error", err)
		s.reportWriteError(err)

		return false
	}

	return true
}

// notifySent invokes the sent observer for command, if one is registered.
func (s *Session) notifySent(command string, out Outcome) {
	s.sentMu.RLock()
	observer, exists := s.sent[command]
	s.sentMu.RUnlock()

	if !exists {
		return
	}

	if panicked := s.guard(command, func() {
		observer(out)
	}); panicked != nil {
		s.reportError(panicked)
	}
}

// guard runs fn on the dispatch goroutine, converting a panic into a
// HandlerPanicError so one faulty handler cannot stop the loop.
func (s *Session) guard(tag string, fn func()) (panicErr error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Handler panicked", "tag", tag, "panic", r)
			panicErr = &errors.HandlerPanicError{Tag: tag, Value: r}
		}
	}()

	fn()

	return nil
}

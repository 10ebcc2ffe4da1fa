package protocol

import (
	"context"

	"github.com/wagiedev/dap-session-go/internal/message"
)

// Outcome is the normalized result of a request.
//
// Exactly one of Body or Err is meaningful: a nil Err is a success whose
// payload is Body (which may itself be nil for an empty response).
type Outcome struct {
	Body any
	Err  error
}

// Failed reports whether the outcome is a failure.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// RequestHandler handles an inbound request and returns its outcome. The
// engine encodes the outcome into the response.
type RequestHandler func(ctx context.Context, req *message.Message) Outcome

// EventHandler handles an inbound event. A returned error is reported through
// the session's error callback; no message is written back.
type EventHandler func(ctx context.Context, ev *message.Message) error

// SentHandler observes the outcome of a response once it has been written to
// the peer, or once a response to one of our requests has been received.
type SentHandler func(out Outcome)

// Completion resolves a pending request.
//
// It is called exactly once, either with the peer's response (err nil) or
// with the failure that prevented one (resp nil). The returned outcome is
// what sent observers for the request's command receive.
type Completion func(resp *message.Message, err error) Outcome

// ErrorHandler receives session-level failures: sends without a transport,
// decode failures, handler failures and transport termination.
type ErrorHandler func(err error)

// pendingRequest tracks an outgoing request awaiting its response.
type pendingRequest struct {
	command  string
	complete Completion
}

package dap

import (
	"context"
	"fmt"

	"github.com/wagiedev/dap-session-go/internal/codec"
	"github.com/wagiedev/dap-session-go/internal/errors"
	"github.com/wagiedev/dap-session-go/internal/message"
	"github.com/wagiedev/dap-session-go/internal/protocol"
)

// commandOf returns the wire command of a request or response type.
// It panics if the type declares an empty command.
func commandOf[T interface{ Command() string }]() string {
	var zero T

	command := zero.Command()
	if command == "" {
		panic(fmt.Sprintf("dap: %T declares an empty command", zero))
	}

	return command
}

// eventNameOf returns the wire event name of an event type.
// It panics if the type declares an empty name.
func eventNameOf[T Event]() string {
	var zero T

	name := zero.EventName()
	if name == "" {
		panic(fmt.Sprintf("dap: %T declares an empty event name", zero))
	}

	return name
}

// validatorFor infers a schema for T when schema validation is enabled.
// A type whose schema cannot be inferred is decoded without validation.
func validatorFor[T any](s *Session, tag string) *codec.Validator {
	if !s.options.SchemaValidation {
		return nil
	}

	v, err := codec.NewValidator[T]()
	if err != nil {
		s.log.Warn("Schema validation disabled for message type", "tag", tag, "error", err)

		return nil
	}

	return v
}

// decodePayload decodes the body of msg into a T, validating it first when
// v is set.
func decodePayload[T any](s *Session, msg *message.Message, v *codec.Validator) (T, error) {
	var payload T

	if v != nil {
		if err := v.Validate(s.codec, msg.Body); err != nil {
			return payload, &errors.DecodeError{Tag: msg.Tag(), Seq: msg.Seq, Err: err}
		}
	}

	if err := s.codec.Unmarshal(msg.Body, &payload); err != nil {
		return payload, &errors.DecodeError{Tag: msg.Tag(), Seq: msg.Seq, Err: err}
	}

	return payload, nil
}

// registerRequest installs fn as the handler for Req's command.
func registerRequest[Req Request](s *Session, fn func(context.Context, Req) protocol.Outcome) {
	command := commandOf[Req]()
	v := validatorFor[Req](s, command)

	s.engine.RegisterRequestHandler(command, func(ctx context.Context, msg *message.Message) protocol.Outcome {
		req, err := decodePayload[Req](s, msg, v)
		if err != nil {
			return protocol.Outcome{Err: err}
		}

		return fn(ctx, req)
	})
}

// RegisterHandler registers h to answer requests of type Req. The returned
// value is sent back as a successful response.
//
// A later registration for the same command replaces this one. It panics if
// Req declares an empty command.
func RegisterHandler[Req Request, Resp Response](s *Session, h func(context.Context, Req) Resp) {
	registerRequest(s, func(ctx context.Context, req Req) protocol.Outcome {
		return protocol.Outcome{Body: h(ctx, req)}
	})
}

// RegisterErrorHandler registers h to answer requests of type Req with
// either an error or an empty success. A non-nil *Error becomes an error
// response carrying its message.
func RegisterErrorHandler[Req Request](s *Session, h func(context.Context, Req) *Error) {
	registerRequest(s, func(ctx context.Context, req Req) protocol.Outcome {
		if err := h(ctx, req); err != nil {
			return protocol.Outcome{Err: err}
		}

		return protocol.Outcome{}
	})
}

// RegisterResultHandler registers h to answer requests of type Req with a
// response or an error.
func RegisterResultHandler[Req Request, Resp Response](s *Session, h func(context.Context, Req) ResponseOrError[Resp]) {
	registerRequest(s, func(ctx context.Context, req Req) protocol.Outcome {
		result := h(ctx, req)
		if result.Err != nil {
			return protocol.Outcome{Err: result.Err}
		}

		return protocol.Outcome{Body: result.Response}
	})
}

// RegisterEventHandler registers h to receive events of type Ev. Events
// with no registered handler are dropped.
func RegisterEventHandler[Ev Event](s *Session, h func(context.Context, Ev)) {
	name := eventNameOf[Ev]()
	v := validatorFor[Ev](s, name)

	s.engine.RegisterEventHandler(name, func(ctx context.Context, msg *message.Message) error {
		ev, err := decodePayload[Ev](s, msg, v)
		if err != nil {
			return err
		}

		h(ctx, ev)

		return nil
	})
}

// RegisterSentHandler registers h to observe outcomes for Resp's command.
//
// On the answering side h runs after the response has been written. On the
// requesting side it runs when the response arrives, after the Future has
// resolved.
func RegisterSentHandler[Resp Response](s *Session, h func(ResponseOrError[Resp])) {
	command := commandOf[Resp]()

	s.engine.RegisterSentHandler(command, func(out protocol.Outcome) {
		if out.Err != nil {
			h(Failure[Resp](asError(out.Err)))

			return
		}

		resp, _ := out.Body.(Resp)
		h(Success(resp))
	})
}

// Send sends req and returns a Future for its response.
//
// Resp must answer the same command as req; otherwise nothing is sent and
// the Future resolves with an error wrapping ErrTypeMismatch. When the
// session is not bound, the Future resolves with an error wrapping
// ErrNotBound and the error callback is invoked.
func Send[Resp Response, Req Request](s *Session, req Req) *Future[Resp] {
	f := newFuture[Resp]()

	var zero Resp

	command := req.Command()
	if answers := zero.Command(); answers != command {
		f.resolve(Failure[Resp](&Error{
			Message: fmt.Sprintf("%s: %T answers '%s', not '%s'", errors.ErrTypeMismatch, zero, answers, command),
			cause:   errors.ErrTypeMismatch,
		}))

		return f
	}

	s.engine.SendRequest(command, req, func(msg *message.Message, err error) protocol.Outcome {
		if err != nil {
			e := asError(err)
			f.resolve(Failure[Resp](e))

			return protocol.Outcome{Err: e}
		}

		if !msg.Success {
			e := &Error{Message: msg.Message}
			f.resolve(Failure[Resp](e))

			return protocol.Outcome{Err: e}
		}

		var resp Resp
		if err := s.codec.Unmarshal(msg.Body, &resp); err != nil {
			decodeErr := &errors.DecodeError{Tag: command, Seq: msg.Seq, Err: err}
			f.resolve(Failure[Resp](asError(decodeErr)))

			return protocol.Outcome{Err: decodeErr}
		}

		f.resolve(Success(resp))

		return protocol.Outcome{Body: resp}
	})

	return f
}

// SendEvent sends ev without waiting for acknowledgement. Failures,
// including a missing transport, go to the error callback.
func SendEvent[Ev Event](s *Session, ev Ev) {
	s.engine.SendEvent(ev.EventName(), ev)
}

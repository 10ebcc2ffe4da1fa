package message

import (
	"fmt"
	"log/slog"

	"github.com/wagiedev/dap-session-go/internal/errors"
)

// Validate checks that a decoded envelope is routable.
//
// The logger receives debug output describing why an envelope was rejected.
// Returned errors wrap ErrInvalidMessage inside a DecodeError so callers can
// report them without terminating the read loop.
func Validate(log *slog.Logger, m *Message) error {
	log = log.With("component", "message_validator")

	var err error

	switch m.Type {
	case TypeRequest:
		if m.Command == "" {
			err = fmt.Errorf("%w: request missing 'command'", errors.ErrInvalidMessage)
		} else if m.Seq <= 0 {
			err = fmt.Errorf("%w: request '%s' has non-positive seq %d", errors.ErrInvalidMessage, m.Command, m.Seq)
		}
	case TypeResponse:
		if m.RequestSeq <= 0 {
			err = fmt.Errorf("%w: response missing 'request_seq'", errors.ErrInvalidMessage)
		}
	case TypeEvent:
		if m.Event == "" {
			err = fmt.Errorf("%w: event missing 'event'", errors.ErrInvalidMessage)
		}
	case "":
		err = fmt.Errorf("%w: missing 'type' field", errors.ErrInvalidMessage)
	default:
		err = fmt.Errorf("%w: unknown message type '%s'", errors.ErrInvalidMessage, m.Type)
	}

	if err != nil {
		log.Debug("Rejected message", "type", m.Type, "seq", m.Seq, "error", err)

		return &errors.DecodeError{Tag: m.Tag(), Seq: m.Seq, Err: err}
	}

	return nil
}

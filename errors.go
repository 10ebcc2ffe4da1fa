package dap

import "github.com/wagiedev/dap-session-go/internal/errors"

// Re-export error types from internal package

// DecodeError indicates an inbound message or payload could not be decoded.
type DecodeError = errors.DecodeError

// HandlerPanicError indicates a registered handler panicked.
type HandlerPanicError = errors.HandlerPanicError

// TransportError indicates a read or write on the bound transport failed.
type TransportError = errors.TransportError

// ProcessError indicates a launched debug adapter failed.
type ProcessError = errors.ProcessError

// AdapterNotFoundError indicates the debug adapter executable was not found.
type AdapterNotFoundError = errors.AdapterNotFoundError

// SessionError is the base interface for all typed session errors.
type SessionError = errors.SessionError

// Re-export sentinel errors from internal package.
var (
	// ErrNotBound indicates a send was attempted before Bind.
	ErrNotBound = errors.ErrNotBound

	// ErrAlreadyBound indicates Bind was called on a bound session.
	ErrAlreadyBound = errors.ErrAlreadyBound

	// ErrSessionClosed indicates the session was closed or its transport
	// ended before the operation completed.
	ErrSessionClosed = errors.ErrSessionClosed

	// ErrTypeMismatch indicates Send was called with a response type that
	// answers a different command than the request.
	ErrTypeMismatch = errors.ErrTypeMismatch

	// ErrUnknownCommand indicates a request arrived with no registered handler.
	ErrUnknownCommand = errors.ErrUnknownCommand

	// ErrInvalidMessage indicates a structurally invalid envelope.
	ErrInvalidMessage = errors.ErrInvalidMessage

	// ErrInvalidOptions indicates an unknown codec or framing, or CBOR
	// combined with newline framing.
	ErrInvalidOptions = errors.ErrInvalidOptions
)

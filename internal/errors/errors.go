package errors

import (
	"errors"
	"fmt"
	"strings"
)

// SessionError is the base interface for all typed session errors.
type SessionError interface {
	error
	IsSessionError() bool
}

// Compile-time verification that all error types implement SessionError.
var (
	_ SessionError = (*DecodeError)(nil)
	_ SessionError = (*HandlerPanicError)(nil)
	_ SessionError = (*TransportError)(nil)
	_ SessionError = (*ProcessError)(nil)
	_ SessionError = (*AdapterNotFoundError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNotBound indicates a send was attempted before a writer was bound.
	ErrNotBound = errors.New("session not bound to a transport")

	// ErrAlreadyBound indicates Bind was called on a session that is already bound.
	ErrAlreadyBound = errors.New("session already bound")

	// ErrSessionClosed indicates the session was torn down before the
	// operation could complete.
	ErrSessionClosed = errors.New("session closed")

	// ErrTypeMismatch indicates a request was sent with a response type
	// that answers a different command.
	ErrTypeMismatch = errors.New("response type does not match request command")

	// ErrUnknownCommand indicates a request arrived for a command with no
	// registered handler.
	ErrUnknownCommand = errors.New("unknown request command")

	// ErrInvalidMessage indicates an envelope that is structurally invalid.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrInvalidOptions indicates a session was configured with an unknown
	// codec or framing, or with an unsupported combination of the two.
	ErrInvalidOptions = errors.New("invalid session options")
)

// DecodeError indicates an inbound message or payload could not be decoded.
type DecodeError struct {
	// Tag is the command or event name, if it was recovered before the failure.
	Tag string
	// Seq is the sequence number of the message, or 0 if unknown.
	Seq int64
	Err error
}

func (e *DecodeError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("decode '%s' (seq %d): %v", e.Tag, e.Seq, e.Err)
	}

	return fmt.Sprintf("decode message: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsSessionError implements SessionError.
func (e *DecodeError) IsSessionError() bool { return true }

// HandlerPanicError indicates an application handler panicked while
// processing a request or event.
type HandlerPanicError struct {
	Tag   string
	Value any
}

func (e *HandlerPanicError) Error() string {
	return fmt.Sprintf("handler for '%s' panicked: %v", e.Tag, e.Value)
}

// IsSessionError implements SessionError.
func (e *HandlerPanicError) IsSessionError() bool { return true }

// TransportError indicates a read or write on the bound transport failed.
type TransportError struct {
	// Op is "read" or "write".
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsSessionError implements SessionError.
func (e *TransportError) IsSessionError() bool { return true }

// ProcessError indicates a launched debug adapter process failed.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("debug adapter failed (exit %d): %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("debug adapter failed (exit %d): %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsSessionError implements SessionError.
func (e *ProcessError) IsSessionError() bool { return true }

// AdapterNotFoundError indicates the debug adapter executable could not be located.
type AdapterNotFoundError struct {
	Name          string
	SearchedPaths []string
}

func (e *AdapterNotFoundError) Error() string {
	return fmt.Sprintf("debug adapter '%s' not found (searched: %s)", e.Name, strings.Join(e.SearchedPaths, ", "))
}

// IsSessionError implements SessionError.
func (e *AdapterNotFoundError) IsSessionError() bool { return true }

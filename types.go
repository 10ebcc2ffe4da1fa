package dap

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
)

// Request is implemented by every request payload type.
//
// Command returns the wire command, which must be a non-empty constant. It
// is called on the zero value, so implement it with a value receiver on a
// struct type.
type Request interface {
	Command() string
}

// Response is implemented by every response payload type. Command returns
// the command of the request the response answers.
type Response interface {
	Command() string
}

// Event is implemented by every event payload type. EventName returns the
// wire event name and is called on the zero value.
type Event interface {
	EventName() string
}

// Error is a failure outcome. Its Message is what the peer sees in the
// error response.
type Error struct {
	Message string

	cause error
}

// Errorf builds an Error from a format string.
func Errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the local failure behind the Error, such as
// ErrSessionClosed, or nil for errors reported by the peer.
func (e *Error) Unwrap() error {
	return e.cause
}

// asError converts any error into an *Error, keeping it as the cause.
func asError(err error) *Error {
	if e, ok := stderrors.AsType[*Error](err); ok {
		return e
	}

	return &Error{Message: err.Error(), cause: err}
}

// ResponseOrError holds either a response or an error, never both.
type ResponseOrError[T any] struct {
	Response T
	Err      *Error
}

// Success wraps a response value.
func Success[T any](resp T) ResponseOrError[T] {
	return ResponseOrError[T]{Response: resp}
}

// Failure wraps an error.
func Failure[T any](err *Error) ResponseOrError[T] {
	return ResponseOrError[T]{Err: err}
}

// IsError reports whether the outcome is a failure.
func (r ResponseOrError[T]) IsError() bool {
	return r.Err != nil
}

// Future is the pending result of Send. It is resolved exactly once, by the
// peer's response or by the session failing.
type Future[T any] struct {
	once   sync.Once
	done   chan struct{}
	result ResponseOrError[T]
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// resolve stores the result. Later calls are ignored.
func (f *Future[T]) resolve(r ResponseOrError[T]) {
	f.once.Do(func() {
		f.result = r
		close(f.done)
	})
}

// Done returns a channel that is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the result is available.
//
// Do not call Get from a handler: handlers run on the goroutine that
// delivers responses, so the future can never resolve.
func (f *Future[T]) Get() ResponseOrError[T] {
	<-f.done

	return f.result
}

// Wait is Get with cancellation. Cancelling ctx stops the wait only; the
// request stays pending until its response arrives or the session ends.
func (f *Future[T]) Wait(ctx context.Context) (ResponseOrError[T], error) {
	select {
	case <-f.done:
		return f.result, nil
	case <-ctx.Done():
		return ResponseOrError[T]{}, ctx.Err()
	}
}

// Package errors defines error types for the debug session layer.
//
// Sentinels cover conditions callers branch on (unbound sends, teardown,
// mismatched types). Typed errors carry context for decode, handler,
// transport and adapter-process failures. All typed errors implement
// SessionError and support errors.Is, errors.As and errors.AsType.
package errors

// Package subprocess runs a debug adapter as a child process.
//
// The adapter speaks the protocol on its stdin and stdout; stderr is
// streamed line by line to an optional callback and buffered so a failed
// exit can be reported as a ProcessError.
package subprocess

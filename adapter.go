package dap

import (
	"context"
	"io"

	"github.com/wagiedev/dap-session-go/internal/subprocess"
)

// Adapter is a debug adapter running as a child process. The session
// talks to it over the process's stdin and stdout.
type Adapter struct {
	proc *subprocess.Process
}

// LaunchAdapter starts a debug adapter configured by WithAdapterPath or
// WithAdapterName and the other adapter options.
//
// It returns AdapterNotFoundError if the executable cannot be located and
// ProcessError if it fails to start. Cancelling ctx kills the adapter.
func LaunchAdapter(ctx context.Context, opts ...Option) (*Adapter, error) {
	options, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	proc, err := subprocess.Start(ctx, options.Logger, &options.Adapter)
	if err != nil {
		return nil, err
	}

	return &Adapter{proc: proc}, nil
}

// Reader is the adapter's protocol output.
func (a *Adapter) Reader() io.ReadCloser {
	return a.proc.Stdout()
}

// Writer is the adapter's protocol input.
func (a *Adapter) Writer() io.WriteCloser {
	return a.proc.Stdin()
}

// Pid returns the adapter's process ID.
func (a *Adapter) Pid() int {
	return a.proc.Pid()
}

// Stderr returns the adapter's buffered stderr output.
func (a *Adapter) Stderr() string {
	return a.proc.Stderr()
}

// Wait blocks until the adapter exits and returns a ProcessError if it
// failed. Call it after the bound session is done reading.
func (a *Adapter) Wait() error {
	return a.proc.Wait()
}

// Close kills the adapter.
func (a *Adapter) Close() error {
	return a.proc.Close()
}

// BindAdapter binds the session to a launched adapter's stdio.
func (s *Session) BindAdapter(a *Adapter) error {
	return s.Bind(a.Reader(), a.Writer())
}

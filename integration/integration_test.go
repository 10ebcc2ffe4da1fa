//go:build integration

// Package integration runs sessions against the echo adapter as a real
// child process. Install it first:
//
//	go install ./examples/echo_adapter
//
// or point ECHO_ADAPTER_PATH at a built binary.
package integration

import (
	"context"
	"errors"
	"os"
	"testing"

	dap "github.com/wagiedev/dap-session-go"
)

// EvaluateRequest mirrors the echo adapter's evaluate request.
type EvaluateRequest struct {
	Expression string `json:"expression"`
}

func (EvaluateRequest) Command() string { return "evaluate" }

type EvaluateResponse struct {
	Result string `json:"result"`
}

func (EvaluateResponse) Command() string { return "evaluate" }

type DisconnectRequest struct{}

func (DisconnectRequest) Command() string { return "disconnect" }

type DisconnectResponse struct{}

func (DisconnectResponse) Command() string { return "disconnect" }

// adapterOptions locates the echo adapter.
func adapterOptions(args ...string) []dap.Option {
	opts := []dap.Option{dap.WithAdapterArgs(args...)}

	if path := os.Getenv("ECHO_ADAPTER_PATH"); path != "" {
		return append(opts, dap.WithAdapterPath(path))
	}

	return append(opts, dap.WithAdapterName("echo_adapter"))
}

// skipIfAdapterNotInstalled skips the test if the error indicates the
// adapter binary is not found.
func skipIfAdapterNotInstalled(t *testing.T, err error) {
	t.Helper()

	if _, ok := errors.AsType[*dap.AdapterNotFoundError](err); ok {
		t.Skip("echo_adapter not installed")
	}
}

// waitFor receives from ch or fails the test when ctx ends first.
func waitFor[T any](t *testing.T, ctx context.Context, ch <-chan T) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-ctx.Done():
		t.Fatalf("timed out waiting: %v", ctx.Err())

		var zero T

		return zero
	}
}

//go:build integration

package integration

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	dap "github.com/wagiedev/dap-session-go"
)

// freePort returns a loopback port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	return port
}

// dialRetry dials addr until the adapter starts listening.
func dialRetry(ctx context.Context, t *testing.T, addr string) net.Conn {
	t.Helper()

	for {
		conn, err := dap.Dial(ctx, addr)
		if err == nil {
			return conn
		}

		select {
		case <-ctx.Done():
			t.Fatalf("adapter never listened on %s: %v", addr, err)
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// TestTCP_SessionsPerConnection tests that a listening adapter serves
// independent sessions on consecutive connections.
func TestTCP_SessionsPerConnection(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	port := freePort(t)

	adapter, err := dap.LaunchAdapter(ctx, adapterOptions("--port", strconv.Itoa(port))...)
	if err != nil {
		skipIfAdapterNotInstalled(t, err)
		t.Fatalf("launch failed: %v", err)
	}

	defer adapter.Close()

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))

	for i := range 2 {
		conn := dialRetry(ctx, t, addr)

		s, err := dap.NewSession()
		require.NoError(t, err)
		require.NoError(t, s.BindConn(conn))

		bps, err := dap.Send[dap.SetBreakpointsResponse](s, dap.SetBreakpointsRequest{
			Source:      dap.Source{Path: "/tmp/main.go"},
			Breakpoints: []dap.SourceBreakpoint{{Line: i + 1}},
		}).Wait(ctx)
		require.NoError(t, err)
		require.Len(t, bps.Response.Breakpoints, 1)

		// Breakpoint ids restart for every connection.
		require.Equal(t, 1, *bps.Response.Breakpoints[0].ID)

		require.NoError(t, s.Close())
	}
}

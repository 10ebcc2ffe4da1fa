package dap_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	dap "github.com/wagiedev/dap-session-go"
)

// TestSession_Concurrency floods a server from many goroutines at once,
// interleaving events with requests whose futures are never waited on,
// then tears both sessions down with requests still in flight.
func TestSession_Concurrency(t *testing.T) {
	if testing.Short() {
		t.Skip("stress test")
	}

	const (
		numGoroutines = 32
		targetEvents  = 10000
	)

	client, err := dap.NewSession()
	require.NoError(t, err)

	server, err := dap.NewSession()
	require.NoError(t, err)

	var (
		eventsHandled   atomic.Int64
		requestsHandled atomic.Int64
	)

	done := make(chan struct{})

	dap.RegisterHandler(server, func(_ context.Context, _ TestRequest) TestResponse {
		requestsHandled.Add(1)

		return TestResponse{}
	})

	dap.RegisterEventHandler(server, func(_ context.Context, _ TestEvent) {
		if eventsHandled.Add(1) == targetEvents+1 {
			close(done)
		}
	})

	clientEnd, serverEnd := dap.Pipe()

	require.NoError(t, server.Bind(serverEnd.Reader, serverEnd.Writer))
	require.NoError(t, client.Bind(clientEnd.Reader, clientEnd.Writer))

	var g errgroup.Group

	for range numGoroutines {
		g.Go(func() error {
			for {
				select {
				case <-done:
					return nil
				default:
				}

				dap.SendEvent(client, createEvent())
				dap.Send[TestResponse](client, createRequest())
			}
		})
	}

	select {
	case <-done:
	case <-time.After(60 * time.Second):
		t.Fatalf("only %d events handled", eventsHandled.Load())
	}

	require.NoError(t, g.Wait())

	require.NoError(t, client.Close())
	require.NoError(t, server.Close())

	require.Greater(t, eventsHandled.Load(), int64(targetEvents))
	require.Positive(t, requestsHandled.Load())
}

// TestSession_ConcurrentRequestsResolve checks that every future resolves
// with the response to its own request when many goroutines send at once.
func TestSession_ConcurrentRequestsResolve(t *testing.T) {
	client, server := newSessionPair(t)

	dap.RegisterHandler(server, func(_ context.Context, req TestRequest) TestResponse {
		return TestResponse{I: req.I}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	for worker := range 16 {
		g.Go(func() error {
			for i := range 100 {
				want := worker*1000 + i

				result, err := dap.Send[TestResponse](client, TestRequest{I: want}).Wait(gCtx)
				if err != nil {
					return err
				}

				if result.IsError() {
					return result.Err
				}

				if result.Response.I != want {
					t.Errorf("worker %d: got response %d, want %d", worker, result.Response.I, want)
				}
			}

			return nil
		})
	}

	require.NoError(t, g.Wait())
}

// TestSession_BidirectionalRequests has both sides of a pipe send requests
// to each other at the same time, so each dispatch loop writes responses
// while the other is busy writing its own.
func TestSession_BidirectionalRequests(t *testing.T) {
	const (
		sendersPerSide = 8
		perSender      = 200
	)

	a, b := newSessionPair(t)

	for _, s := range []*dap.Session{a, b} {
		dap.RegisterHandler(s, func(_ context.Context, req TestRequest) TestResponse {
			return TestResponse{I: req.I}
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	for _, s := range []*dap.Session{a, b} {
		for n := range sendersPerSide {
			g.Go(func() error {
				for i := range perSender {
					req := TestRequest{I: n*perSender + i}

					result, err := dap.Send[TestResponse](s, req).Wait(gCtx)
					if err != nil {
						return err
					}

					if result.IsError() {
						return result.Err
					}

					if result.Response.I != req.I {
						return fmt.Errorf("response %d answered request %d", result.Response.I, req.I)
					}
				}

				return nil
			})
		}
	}

	require.NoError(t, g.Wait())
}

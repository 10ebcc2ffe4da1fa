package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"golang.org/x/sync/errgroup"
)

// ConnHandler serves one accepted connection. It should return once the
// connection is finished; the connection is closed after it returns.
type ConnHandler func(ctx context.Context, conn net.Conn) error

// Serve accepts connections on ln until ctx is cancelled and runs onConnect
// for each in its own goroutine.
//
// Serve closes ln when ctx is done and waits for every handler to return.
// Handler errors are logged. Serve returns nil after cancellation and the
// accept error otherwise.
func Serve(ctx context.Context, log *slog.Logger, ln net.Listener, onConnect ConnHandler) error {
	log = log.With("component", "tcp_server", "addr", ln.Addr().String())

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gCtx.Done()

		return ln.Close()
	})

	g.Go(func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if gCtx.Err() != nil || errors.Is(err, net.ErrClosed) {
					log.Debug("Listener closed")

					return nil
				}

				return fmt.Errorf("accept: %w", err)
			}

			log.Debug("Accepted connection", "remote", conn.RemoteAddr().String())

			g.Go(func() error {
				defer func() {
					_ = conn.Close()
				}()

				// Unblock the handler's reads when the server stops.
				stop := context.AfterFunc(gCtx, func() {
					_ = conn.Close()
				})
				defer stop()

				// A failing connection must not stop the others.
				if err := onConnect(gCtx, conn); err != nil {
					log.Warn("Connection handler failed", "remote", conn.RemoteAddr().String(), "error", err)
				}

				return nil
			})
		}
	})

	err := g.Wait()
	if err != nil && ctx.Err() != nil && errors.Is(err, net.ErrClosed) {
		return nil
	}

	return err
}

// Dial connects to a debug adapter listening on addr.
func Dial(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	return conn, nil
}

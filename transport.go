package dap

import (
	"context"
	"net"

	"github.com/wagiedev/dap-session-go/internal/transport"
)

// Endpoint is one side of an in-process connection.
type Endpoint = transport.Endpoint

// Pipe returns two connected in-process endpoints, for running a client and
// a server session in the same process.
//
//	client, server := dap.Pipe()
//	_ = serverSession.Bind(server.Reader, server.Writer)
//	_ = clientSession.Bind(client.Reader, client.Writer)
func Pipe() (a, b Endpoint) {
	return transport.Pipe()
}

// Dial connects to a debug adapter listening on a TCP address. Bind the
// returned connection with Session.BindConn.
func Dial(ctx context.Context, addr string) (net.Conn, error) {
	return transport.Dial(ctx, addr)
}

// Serve accepts connections on ln until ctx is cancelled, running one
// session per connection.
//
// For each connection a new session is created from opts and passed to
// configure, which registers handlers; the session is then bound to the
// connection and closed when the peer disconnects or ctx ends. Serve closes
// ln on return.
func Serve(ctx context.Context, ln net.Listener, configure func(*Session), opts ...Option) error {
	options, err := applyOptions(opts)
	if err != nil {
		return err
	}

	return transport.Serve(ctx, options.Logger, ln, func(ctx context.Context, conn net.Conn) error {
		s, err := NewSession(opts...)
		if err != nil {
			return err
		}

		configure(s)

		if err := s.BindConn(conn); err != nil {
			return err
		}

		select {
		case <-s.Done():
		case <-ctx.Done():
		}

		return s.Close()
	})
}

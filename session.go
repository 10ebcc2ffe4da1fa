package dap

import (
	"io"
	"log/slog"

	"github.com/wagiedev/dap-session-go/internal/codec"
	"github.com/wagiedev/dap-session-go/internal/protocol"
)

// Session is one side of a debug protocol conversation.
//
// A session is created unbound. Register handlers, then Bind it to a
// transport to start processing inbound messages. All methods and the
// package-level Register and Send functions are safe for concurrent use.
//
// Handlers run one at a time on the session's dispatch goroutine, in the
// order messages arrive. A handler may call Send or SendEvent, but must not
// block on the returned Future: responses are delivered by the goroutine the
// handler is running on.
type Session struct {
	engine  *protocol.Session
	codec   codec.Codec
	log     *slog.Logger
	options *SessionOptions
}

// NewSession creates an unbound session.
//
// It returns ErrInvalidOptions for an unknown codec or framing, or for CBOR
// combined with newline framing.
func NewSession(opts ...Option) (*Session, error) {
	options, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	c, err := codec.ByName(options.Codec)
	if err != nil {
		return nil, err
	}

	engine := protocol.NewSession(options.Logger, c, options.Framing)

	return &Session{
		engine:  engine,
		codec:   c,
		log:     engine.Logger(),
		options: options,
	}, nil
}

// ID returns the session's unique identifier. It appears as "session_id"
// on every log line the session writes.
func (s *Session) ID() string {
	return s.engine.ID()
}

// Bind attaches the session to a transport and starts dispatching.
//
// r and w may be two halves of a connection or the same full-duplex stream.
// Either is closed by Close if it implements io.Closer. A session can be
// bound once; later calls return ErrAlreadyBound, which is also reported
// to the error callback.
func (s *Session) Bind(r io.Reader, w io.Writer) error {
	return s.engine.Bind(r, w)
}

// BindConn binds the session to a single full-duplex stream such as a
// net.Conn.
func (s *Session) BindConn(rw io.ReadWriter) error {
	return s.engine.Bind(rw, rw)
}

// OnError installs the callback for session failures, replacing any
// previous one. It receives sends attempted without a transport, decode
// failures, handler failures and the end of the transport. Invocations
// never overlap; an error raised while the callback runs, including from
// the callback itself, is delivered right after it returns. Passing nil
// removes the callback.
func (s *Session) OnError(fn func(error)) {
	s.engine.OnError(fn)
}

// Done returns a channel that is closed when the session stops reading
// from its transport. It is never closed for a session that was not bound.
func (s *Session) Done() <-chan struct{} {
	return s.engine.Done()
}

// Close shuts the session down. Every pending Future resolves with an
// error wrapping ErrSessionClosed and closable transport halves are closed.
// Close does not invoke the error callback. It is safe to call more than
// once, including from a handler.
func (s *Session) Close() error {
	return s.engine.Close()
}

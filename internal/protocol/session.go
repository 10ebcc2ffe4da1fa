package protocol

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/dap-session-go/internal/codec"
	"github.com/wagiedev/dap-session-go/internal/errors"
	"github.com/wagiedev/dap-session-go/internal/message"
	"github.com/wagiedev/dap-session-go/internal/transport"
)

// Session is one side of a protocol conversation.
//
// All methods are safe for concurrent use. Handlers run on the dispatch
// goroutine one message at a time, in arrival order.
type Session struct {
	id      string
	log     *slog.Logger
	codec   codec.Codec
	framing transport.Framing

	// Outbound sequence numbers, shared by requests, responses and events.
	seq atomic.Int64

	// Transport binding
	bindMu        sync.RWMutex
	bound         bool
	readerClosing bool // Close can unblock the dispatch loop's reads
	writer        transport.Writer
	closers       []io.Closer

	// Serializes encoded messages onto the writer
	writeMu sync.Mutex

	// Request tracking. Once pendingErr is set no new entries are accepted.
	pendingMu  sync.Mutex
	pending    map[int64]*pendingRequest
	pendingErr error

	// Handler registry for incoming requests and events
	handlersMu sync.RWMutex
	handlers   map[string]RequestHandler
	events     map[string]EventHandler

	// Sent-notification registry keyed by response command
	sentMu sync.RWMutex
	sent   map[string]SentHandler

	// Error callback. Invocations never overlap: while one is running,
	// further errors queue and the running goroutine delivers them.
	errMu      sync.RWMutex
	onError    ErrorHandler
	errQueueMu sync.Mutex
	errQueue   []error
	errRunning bool

	// Lifecycle management
	ctx         context.Context
	cancel      context.CancelFunc
	closing     atomic.Bool
	dispatching atomic.Bool
	closeOnce   sync.Once
	waitOnClose bool // set once inside closeOnce
	loopDone    chan struct{}
	wg          sync.WaitGroup
}

// NewSession creates an unbound session.
//
// The logger will receive debug, info, warn and error messages during
// dispatch. c encodes every outbound message and decodes every inbound one;
// framing selects how messages are delimited on the byte streams passed to Bind.
func NewSession(log *slog.Logger, c codec.Codec, framing transport.Framing) *Session {
	id := ulid.Make().String()
	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		id:       id,
		log:      log.With("component", "session", "session_id", id),
		codec:    c,
		framing:  framing,
		pending:  make(map[int64]*pendingRequest, 16),
		handlers: make(map[string]RequestHandler, 16),
		events:   make(map[string]EventHandler, 8),
		sent:     make(map[string]SentHandler, 8),
		ctx:      ctx,
		cancel:   cancel,
		loopDone: make(chan struct{}),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Codec returns the codec the session encodes payloads with.
func (s *Session) Codec() codec.Codec {
	return s.codec
}

// Logger returns the session's logger.
func (s *Session) Logger() *slog.Logger {
	return s.log
}

// Done returns a channel that is closed when the dispatch loop exits.
// It is never closed for a session that was not bound.
func (s *Session) Done() <-chan struct{} {
	return s.loopDone
}

// OnError installs the error callback, replacing any previous one.
// A nil handler removes the callback.
func (s *Session) OnError(fn ErrorHandler) {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	s.onError = fn
}

// RegisterRequestHandler registers the handler for requests with command.
//
// Registering a handler for a command that already has one replaces it.
func (s *Session) RegisterRequestHandler(command string, h RequestHandler) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()

	s.log.Debug("Registering request handler", "command", command)
	s.handlers[command] = h
}

// RegisterEventHandler registers the handler for events named event.
//
// Registering a handler for an event that already has one replaces it.
func (s *Session) RegisterEventHandler(event string, h EventHandler) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()

	s.log.Debug("Registering event handler", "event", event)
	s.events[event] = h
}

// RegisterSentHandler registers the observer for responses to command.
func (s *Session) RegisterSentHandler(command string, h SentHandler) {
	s.sentMu.Lock()
	defer s.sentMu.Unlock()

	s.log.Debug("Registering sent handler", "command", command)
	s.sent[command] = h
}

// Bind attaches the transport and starts the dispatch loop.
//
// r and w may be the same full-duplex stream or two independent halves. If
// either implements io.Closer it is closed by Close. Binding a session twice
// returns ErrAlreadyBound and leaves the first binding in place.
func (s *Session) Bind(r io.Reader, w io.Writer) error {
	s.bindMu.Lock()

	if s.closing.Load() {
		s.bindMu.Unlock()

		return errors.ErrSessionClosed
	}

	if s.bound {
		s.bindMu.Unlock()

		err := errors.ErrAlreadyBound
		s.reportError(err)

		return err
	}

	s.bound = true
	s.writer = transport.NewWriter(s.framing, w)

	if c, ok := r.(io.Closer); ok {
		s.closers = append(s.closers, c)
		s.readerClosing = true
	}

	if c, ok := w.(io.Closer); ok && !sameCloser(r, c) {
		s.closers = append(s.closers, c)
	}

	reader := transport.NewReader(s.framing, r)

	s.bindMu.Unlock()

	s.wg.Add(1)

	go s.readLoop(reader)

	s.log.Info("Session bound", "codec", s.codec.Name(), "framing", string(s.framing))

	return nil
}

// sameCloser reports whether r is the same object as c, so a full-duplex
// stream bound as both halves is closed once.
func sameCloser(r io.Reader, c io.Closer) bool {
	rc, ok := r.(io.Closer)

	return ok && rc == c
}

// Close tears down the session.
//
// It stops the dispatch loop, closes any closable transport endpoints and
// fails every pending request with ErrSessionClosed. When the bound reader
// is closable, Close waits for the dispatch loop to exit, unless the loop is
// busy dispatching a message (Close may be called from a handler or from the
// error callback). It is safe to call Close multiple times.
func (s *Session) Close() error {
	var firstErr error

	s.closeOnce.Do(func() {
		s.log.Debug("Closing session")

		s.closing.Store(true)
		s.cancel()

		s.bindMu.Lock()
		s.waitOnClose = s.bound && s.readerClosing
		closers := s.closers
		s.writer = nil
		s.closers = nil
		s.bindMu.Unlock()

		for _, c := range closers {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}

		s.failPending(errors.ErrSessionClosed)

		s.log.Info("Session closed")
	})

	// The wait happens outside closeOnce: a handler that calls Close while
	// another goroutine waits here returns from Do instead of blocking on it.
	if s.waitOnClose && !s.dispatching.Load() {
		s.wg.Wait()
	}

	return firstErr
}

// SendRequest sends a request and registers complete to receive its response.
//
// The request is assigned the next sequence number, which is returned. When
// the session has no bound writer, complete is called immediately with
// ErrNotBound (or ErrSessionClosed after Close) and the error callback is
// invoked; nothing is written. Encoding failures complete the request
// without touching the transport.
func (s *Session) SendRequest(command string, body any, complete Completion) int64 {
	seq := s.seq.Add(1)

	w, err := s.currentWriter()
	if err != nil {
		s.log.Debug("Cannot send request", "command", command, "seq", seq, "error", err)
		complete(nil, err)
		s.reportError(fmt.Errorf("send request '%s': %w", command, err))

		return seq
	}

	payload, err := s.encodeBody(body)
	if err != nil {
		complete(nil, fmt.Errorf("encode request '%s': %w", command, err))

		return seq
	}

	if err := s.addPending(seq, &pendingRequest{command: command, complete: complete}); err != nil {
		complete(nil, err)

		return seq
	}

	s.log.Debug("Sending request", "command", command, "seq", seq)

	if err := s.write(w, message.NewRequest(seq, command, payload)); err != nil {
		s.log.Error("Failed to send request", "command", command, "seq", seq, "error", err)

		if s.closing.Load() {
			err = fmt.Errorf("%w: %w", errors.ErrSessionClosed, err)
		}

		if p := s.claimPending(seq); p != nil {
			p.complete(nil, err)
		}

		s.reportWriteError(err)
	}

	return seq
}

// SendEvent sends a fire-and-forget event. Failures, including a missing
// writer, go to the error callback.
func (s *Session) SendEvent(event string, body any) {
	seq := s.seq.Add(1)

	w, err := s.currentWriter()
	if err != nil {
		s.log.Debug("Cannot send event", "event", event, "error", err)
		s.reportError(fmt.Errorf("send event '%s': %w", event, err))

		return
	}

	payload, err := s.encodeBody(body)
	if err != nil {
		s.reportError(fmt.Errorf("encode event '%s': %w", event, err))

		return
	}

	s.log.Debug("Sending event", "event", event, "seq", seq)

	if err := s.write(w, message.NewEvent(seq, event, payload)); err != nil {
		s.log.Error("Failed to send event", "event", event, "error", err)
		s.reportWriteError(err)
	}
}

// PendingCount returns the number of requests awaiting a response.
func (s *Session) PendingCount() int {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	return len(s.pending)
}

// currentWriter returns the bound writer, or the reason there is none.
func (s *Session) currentWriter() (transport.Writer, error) {
	s.bindMu.RLock()
	defer s.bindMu.RUnlock()

	if s.writer != nil {
		return s.writer, nil
	}

	if s.closing.Load() {
		return nil, errors.ErrSessionClosed
	}

	return nil, errors.ErrNotBound
}

// encodeBody marshals a payload; a nil payload is sent without a body.
func (s *Session) encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}

	return s.codec.Marshal(body)
}

// write encodes m and writes it under the write lock.
func (s *Session) write(w transport.Writer, m *message.Message) error {
	data, err := s.codec.EncodeMessage(m)
	if err != nil {
		return fmt.Errorf("encode %s: %w", m.Type, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := w.WriteMessage(data); err != nil {
		return &errors.TransportError{Op: "write", Err: err}
	}

	return nil
}

// addPending registers a pending request unless the session has stopped
// accepting them.
func (s *Session) addPending(seq int64, p *pendingRequest) error {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	if s.pendingErr != nil {
		return s.pendingErr
	}

	s.pending[seq] = p

	return nil
}

// claimPending removes and returns the pending request for seq. Whoever
// claims an entry is the only one allowed to complete it.
func (s *Session) claimPending(seq int64) *pendingRequest {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	p, ok := s.pending[seq]
	if !ok {
		return nil
	}

	delete(s.pending, seq)

	return p
}

// failPending stops accepting pending requests and completes every
// outstanding one with err. Only the first call's error is kept for
// requests sent afterwards.
func (s *Session) failPending(err error) {
	s.pendingMu.Lock()

	if s.pendingErr == nil {
		s.pendingErr = err
	}

	pending := s.pending
	s.pending = make(map[int64]*pendingRequest)

	s.pendingMu.Unlock()

	if len(pending) > 0 {
		s.log.Debug("Failing pending requests", "count", len(pending), "error", err)
	}

	for _, p := range pending {
		p.complete(nil, err)
	}
}

// reportWriteError reports a write failure unless it was caused by Close
// tearing the writer down underneath the caller.
func (s *Session) reportWriteError(err error) {
	if s.closing.Load() {
		s.log.Debug("Write failed during shutdown", "error", err)

		return
	}

	s.reportError(err)
}

// reportError hands err to the error callback, one invocation at a time.
//
// If an invocation is already running, on this goroutine or another, err is
// queued and delivered by that invocation's goroutine before it returns. The
// callback may therefore call back into the session without deadlocking.
func (s *Session) reportError(err error) {
	s.errQueueMu.Lock()
	s.errQueue = append(s.errQueue, err)

	if s.errRunning {
		s.errQueueMu.Unlock()

		return
	}

	s.errRunning = true

	for len(s.errQueue) > 0 {
		next := s.errQueue[0]
		s.errQueue[0] = nil
		s.errQueue = s.errQueue[1:]

		s.errQueueMu.Unlock()
		s.invokeOnError(next)
		s.errQueueMu.Lock()
	}

	s.errQueue = nil
	s.errRunning = false
	s.errQueueMu.Unlock()
}

// invokeOnError calls the current error callback. A panicking callback is
// logged so the queue keeps draining.
func (s *Session) invokeOnError(err error) {
	s.errMu.RLock()
	fn := s.onError
	s.errMu.RUnlock()

	if fn == nil {
		s.log.Debug("Session error with no callback installed", "error", err)

		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Error callback panicked", "panic", r, "error", err)
		}
	}()

	fn(err)
}

package transport

import (
	"bytes"
	"io"
	"sync"
)

// Endpoint is one side of a connection: the stream it reads from and the
// stream it writes to. The two halves may be backed by different objects.
type Endpoint struct {
	Reader io.ReadCloser
	Writer io.WriteCloser
}

// Close closes both halves and returns the first error.
func (e Endpoint) Close() error {
	rerr := e.Reader.Close()
	werr := e.Writer.Close()

	if rerr != nil {
		return rerr
	}

	return werr
}

// Pipe returns two connected in-process endpoints. Bytes written to a's
// Writer are read from b's Reader and vice versa.
//
// Each direction is an unbounded buffer: writes never wait for the peer to
// read, so two sessions may answer each other's requests at the same time.
func Pipe() (a, b Endpoint) {
	ab := newPipeBuffer()
	ba := newPipeBuffer()

	a = Endpoint{Reader: &pipeReader{ba}, Writer: &pipeWriter{ab}}
	b = Endpoint{Reader: &pipeReader{ab}, Writer: &pipeWriter{ba}}

	return a, b
}

// pipeBuffer is one direction of a Pipe.
type pipeBuffer struct {
	mu   sync.Mutex
	cond *sync.Cond
	buf  bytes.Buffer

	writeClosed bool // reader drains buf, then sees io.EOF
	readClosed  bool // both sides fail with io.ErrClosedPipe
}

func newPipeBuffer() *pipeBuffer {
	p := &pipeBuffer{}
	p.cond = sync.NewCond(&p.mu)

	return p
}

type pipeReader struct {
	p *pipeBuffer
}

// Read blocks only while the buffer is empty and the writer is open.
func (r *pipeReader) Read(b []byte) (int, error) {
	p := r.p

	p.mu.Lock()
	defer p.mu.Unlock()

	for p.buf.Len() == 0 && !p.writeClosed && !p.readClosed {
		p.cond.Wait()
	}

	if p.readClosed {
		return 0, io.ErrClosedPipe
	}

	if p.buf.Len() == 0 {
		return 0, io.EOF
	}

	return p.buf.Read(b)
}

// Close discards unread bytes and wakes a blocked Read.
func (r *pipeReader) Close() error {
	p := r.p

	p.mu.Lock()
	defer p.mu.Unlock()

	p.readClosed = true
	p.buf.Reset()
	p.cond.Broadcast()

	return nil
}

type pipeWriter struct {
	p *pipeBuffer
}

func (w *pipeWriter) Write(b []byte) (int, error) {
	p := w.p

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writeClosed || p.readClosed {
		return 0, io.ErrClosedPipe
	}

	n, _ := p.buf.Write(b)
	p.cond.Broadcast()

	return n, nil
}

func (w *pipeWriter) Close() error {
	p := w.p

	p.mu.Lock()
	defer p.mu.Unlock()

	p.writeClosed = true
	p.cond.Broadcast()

	return nil
}

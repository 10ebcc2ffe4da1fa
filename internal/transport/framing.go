package transport

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
)

const (
	// maxMessageSize bounds a single framed message.
	maxMessageSize = 64 * 1024 * 1024 // 64MB
	// maxLineSize is the scanner buffer for newline framing.
	maxLineSize = 1024 * 1024 // 1MB

	contentLengthHeader = "Content-Length"
)

// ErrMessageTooLarge is returned when a frame exceeds maxMessageSize.
var ErrMessageTooLarge = errors.New("framed message too large")

// Reader yields complete framed messages from a byte stream.
// A Reader is owned by a single consumer and is not safe for concurrent use.
type Reader interface {
	// ReadMessage returns the next message. It returns io.EOF when the
	// stream ends cleanly between messages.
	ReadMessage() ([]byte, error)
}

// Writer writes complete framed messages to a byte stream.
// Implementations in this package are safe for concurrent use.
type Writer interface {
	WriteMessage(data []byte) error
}

// Framing selects a framing implementation.
type Framing string

const (
	// FramingContentLength is the DAP header framing.
	FramingContentLength Framing = "content-length"
	// FramingNewline frames one message per line.
	FramingNewline Framing = "newline"
)

// NewReader wraps r with the reader for f.
func NewReader(f Framing, r io.Reader) Reader {
	if f == FramingNewline {
		return NewLineReader(r)
	}

	return NewContentReader(r)
}

// NewWriter wraps w with the writer for f.
func NewWriter(f Framing, w io.Writer) Writer {
	if f == FramingNewline {
		return NewLineWriter(w)
	}

	return NewContentWriter(w)
}

// ContentReader reads Content-Length framed messages.
type ContentReader struct {
	r *textproto.Reader
	b *bufio.Reader
}

// NewContentReader returns a ContentReader over r.
func NewContentReader(r io.Reader) *ContentReader {
	b := bufio.NewReader(r)

	return &ContentReader{r: textproto.NewReader(b), b: b}
}

// ReadMessage reads one header block and its payload.
//
// Unknown headers are ignored. A stream that ends inside a frame yields
// io.ErrUnexpectedEOF.
func (c *ContentReader) ReadMessage() ([]byte, error) {
	header, err := c.r.ReadMIMEHeader()
	if err != nil {
		if errors.Is(err, io.EOF) && len(header) == 0 {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("read header: %w", err)
	}

	raw := strings.TrimSpace(header.Get(contentLengthHeader))
	if raw == "" {
		return nil, fmt.Errorf("missing %s header", contentLengthHeader)
	}

	length, err := strconv.Atoi(raw)
	if err != nil || length < 0 {
		return nil, fmt.Errorf("invalid %s header '%s'", contentLengthHeader, raw)
	}

	if length > maxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(c.b, data); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return nil, fmt.Errorf("read body: %w", err)
	}

	return data, nil
}

// ContentWriter writes Content-Length framed messages.
type ContentWriter struct {
	mu sync.Mutex // Serializes frames
	w  io.Writer
}

// NewContentWriter returns a ContentWriter over w.
func NewContentWriter(w io.Writer) *ContentWriter {
	return &ContentWriter{w: w}
}

// WriteMessage writes the header and payload as a single Write call so a
// frame is never split across concurrent writers.
func (c *ContentWriter) WriteMessage(data []byte) error {
	frame := make([]byte, 0, len(data)+32)
	frame = append(frame, contentLengthHeader...)
	frame = append(frame, ": "...)
	frame = strconv.AppendInt(frame, int64(len(data)), 10)
	frame = append(frame, "\r\n\r\n"...)
	frame = append(frame, data...)

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.w.Write(frame)

	return err
}

// LineReader reads newline-delimited messages. Blank lines are skipped.
type LineReader struct {
	scanner *bufio.Scanner
}

// NewLineReader returns a LineReader over r.
func NewLineReader(r io.Reader) *LineReader {
	scanner := bufio.NewScanner(r)
	// Set large buffer for big messages
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	return &LineReader{scanner: scanner}
}

// ReadMessage returns the next non-empty line without its terminator.
func (l *LineReader) ReadMessage() ([]byte, error) {
	for l.scanner.Scan() {
		line := bytes.TrimSpace(l.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		// The scanner reuses its buffer between calls.
		return bytes.Clone(line), nil
	}

	if err := l.scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}

	return nil, io.EOF
}

// LineWriter writes newline-delimited messages.
type LineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineWriter returns a LineWriter over w.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: w}
}

// WriteMessage appends a newline if data lacks one and writes it.
// Data must not contain interior newlines; JSON produced by the codec never does.
func (l *LineWriter) WriteMessage(data []byte) error {
	// Use explicit copy to avoid mutating caller's backing array if slice has spare capacity
	if len(data) == 0 || data[len(data)-1] != '\n' {
		newData := make([]byte, len(data)+1)
		copy(newData, data)
		newData[len(data)] = '\n'
		data = newData
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.w.Write(data)

	return err
}

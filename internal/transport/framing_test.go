package transport

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContentFraming_RoundTrip(t *testing.T) {
	var buf bytes.Buffer

	w := NewContentWriter(&buf)
	require.NoError(t, w.WriteMessage([]byte(`{"seq":1}`)))
	require.NoError(t, w.WriteMessage([]byte(`{"seq":2,"type":"event"}`)))
	require.NoError(t, w.WriteMessage(nil))

	require.True(t, strings.HasPrefix(buf.String(), "Content-Length: 9\r\n\r\n{\"seq\":1}"))

	r := NewContentReader(&buf)

	msg, err := r.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, `{"seq":1}`, string(msg))

	msg, err = r.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, `{"seq":2,"type":"event"}`, string(msg))

	msg, err = r.ReadMessage()
	require.NoError(t, err)
	require.Empty(t, msg)

	_, err = r.ReadMessage()
	require.ErrorIs(t, err, io.EOF)
}

func TestContentReader_IgnoresUnknownHeaders(t *testing.T) {
	in := "Content-Type: application/vscode-jsonrpc\r\nContent-Length: 2\r\n\r\n{}"
	r := NewContentReader(strings.NewReader(in))

	msg, err := r.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, "{}", string(msg))
}

func TestContentReader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "missing length", input: "X-Other: 1\r\n\r\n{}"},
		{name: "bad length", input: "Content-Length: abc\r\n\r\n{}"},
		{name: "negative length", input: "Content-Length: -4\r\n\r\n{}"},
		{name: "too large", input: "Content-Length: 999999999999\r\n\r\n"},
		{name: "truncated body", input: "Content-Length: 10\r\n\r\n{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewContentReader(strings.NewReader(tt.input))

			_, err := r.ReadMessage()
			require.Error(t, err)
			require.NotErrorIs(t, err, io.EOF)
		})
	}
}

func TestContentWriter_ConcurrentFramesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer

	w := NewContentWriter(&buf)

	var wg sync.WaitGroup

	payload := bytes.Repeat([]byte("x"), 4096)

	for range 16 {
		wg.Go(func() {
			for range 20 {
				_ = w.WriteMessage(payload)
			}
		})
	}

	wg.Wait()

	r := NewContentReader(&buf)

	for range 16 * 20 {
		msg, err := r.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, payload, msg)
	}
}

func TestLineFraming_RoundTrip(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(FramingNewline, &buf)
	require.NoError(t, w.WriteMessage([]byte(`{"a":1}`)))
	require.NoError(t, w.WriteMessage([]byte("{\"b\":2}\n")))

	buf.WriteString("\n\n")

	r := NewReader(FramingNewline, &buf)

	msg, err := r.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(msg))

	msg, err = r.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, `{"b":2}`, string(msg))

	_, err = r.ReadMessage()
	require.ErrorIs(t, err, io.EOF)
}

func TestLineWriter_DoesNotMutateCallerSlice(t *testing.T) {
	var buf bytes.Buffer

	data := make([]byte, 3, 8)
	copy(data, "abc")

	require.NoError(t, NewLineWriter(&buf).WriteMessage(data))
	require.Equal(t, "abc", string(data))
	require.Equal(t, "abc\n", buf.String())
}

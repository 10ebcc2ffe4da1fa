// Package transport frames serialized messages onto byte streams and
// provides the stream endpoints a session binds to.
//
// The Debug Adapter Protocol base protocol prefixes every message with a
// header block:
//
//	Content-Length: 119\r\n
//	\r\n
//	{"seq":1,"type":"request",...}
//
// ContentReader and ContentWriter implement that framing. LineReader and
// LineWriter implement newline-delimited framing for peers that speak one
// message per line. Pipe returns an in-process loopback pair, and Serve and
// Dial connect sessions over TCP.
package transport

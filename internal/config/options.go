// Package config provides configuration types for debug sessions.
package config

import (
	"fmt"
	"log/slog"

	"github.com/wagiedev/dap-session-go/internal/codec"
	"github.com/wagiedev/dap-session-go/internal/errors"
	"github.com/wagiedev/dap-session-go/internal/transport"
)

// Options configures a session.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Codec names the payload encoding: "json" (default) or "cbor".
	Codec string

	// Framing selects how messages are delimited on the byte stream.
	// If empty, Content-Length headers are used.
	Framing transport.Framing

	// SchemaValidation validates inbound request and event bodies against
	// a JSON schema derived from the registered Go type before decoding.
	SchemaValidation bool

	// Adapter configures the debug adapter process started by LaunchAdapter.
	Adapter AdapterOptions
}

// Validate checks the codec and framing and resolves defaults in place.
//
// CBOR payloads may contain newline bytes, so they are only accepted with
// Content-Length framing.
func (o *Options) Validate() error {
	if o.Codec == "" {
		o.Codec = codec.NameJSON
	}

	if o.Framing == "" {
		o.Framing = transport.FramingContentLength
	}

	if _, err := codec.ByName(o.Codec); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidOptions, err)
	}

	switch o.Framing {
	case transport.FramingContentLength, transport.FramingNewline:
	default:
		return fmt.Errorf("%w: unknown framing '%s'", errors.ErrInvalidOptions, o.Framing)
	}

	if o.Codec == codec.NameCBOR && o.Framing == transport.FramingNewline {
		return fmt.Errorf("%w: cbor requires content-length framing", errors.ErrInvalidOptions)
	}

	return nil
}

// AdapterOptions configures a debug adapter subprocess.
type AdapterOptions struct {
	// Path is the explicit path to the adapter executable.
	// If empty, Name is searched in PATH and common install locations.
	Path string

	// Name is the executable name used for discovery when Path is empty.
	Name string

	// Args are passed to the adapter on its command line.
	Args []string

	// Env provides additional environment variables for the adapter process.
	Env map[string]string

	// Cwd sets the adapter's working directory.
	// If empty, the current working directory is used.
	Cwd string

	// Stderr is called with each line the adapter writes to stderr.
	Stderr func(string)
}

package dap

import (
	"log/slog"

	"github.com/wagiedev/dap-session-go/internal/config"
	"github.com/wagiedev/dap-session-go/internal/transport"
)

// SessionOptions holds the configuration built from a list of Option values.
type SessionOptions = config.Options

// AdapterOptions configures a debug adapter subprocess.
type AdapterOptions = config.AdapterOptions

// Framing selects how messages are delimited on a byte stream.
type Framing = transport.Framing

const (
	// FramingContentLength prefixes each message with a Content-Length
	// header, as the Debug Adapter Protocol base protocol does.
	FramingContentLength = transport.FramingContentLength

	// FramingNewline terminates each message with a newline. Only valid with
	// the JSON codec.
	FramingNewline = transport.FramingNewline
)

// Codec names accepted by WithCodec.
const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

// Option configures SessionOptions using the functional options pattern.
type Option func(*SessionOptions)

// applyOptions applies functional options and validates the result.
func applyOptions(opts []Option) (*SessionOptions, error) {
	options := &SessionOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}

	if options.Logger == nil {
		options.Logger = NopLogger()
	}

	return options, nil
}

// ===== Session Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *SessionOptions) {
		o.Logger = logger
	}
}

// WithCodec selects the payload encoding, CodecJSON (the default) or CodecCBOR.
func WithCodec(name string) Option {
	return func(o *SessionOptions) {
		o.Codec = name
	}
}

// WithFraming selects how messages are delimited on the stream.
// The default is FramingContentLength.
func WithFraming(framing Framing) Option {
	return func(o *SessionOptions) {
		o.Framing = framing
	}
}

// WithSchemaValidation validates inbound request and event bodies against a
// JSON schema inferred from the registered Go type. Bodies that fail are
// answered (requests) or reported (events) as decode errors.
func WithSchemaValidation(enable bool) Option {
	return func(o *SessionOptions) {
		o.SchemaValidation = enable
	}
}

// ===== Adapter Configuration =====

// WithAdapterPath sets the explicit path to the debug adapter executable.
func WithAdapterPath(path string) Option {
	return func(o *SessionOptions) {
		o.Adapter.Path = path
	}
}

// WithAdapterName sets the executable name searched for when no explicit
// path is given.
func WithAdapterName(name string) Option {
	return func(o *SessionOptions) {
		o.Adapter.Name = name
	}
}

// WithAdapterArgs sets the adapter's command line arguments.
func WithAdapterArgs(args ...string) Option {
	return func(o *SessionOptions) {
		o.Adapter.Args = args
	}
}

// WithEnv provides additional environment variables for the adapter process.
func WithEnv(env map[string]string) Option {
	return func(o *SessionOptions) {
		o.Adapter.Env = env
	}
}

// WithCwd sets the working directory for the adapter process.
func WithCwd(cwd string) Option {
	return func(o *SessionOptions) {
		o.Adapter.Cwd = cwd
	}
}

// WithStderr sets a callback that receives each line of adapter stderr.
func WithStderr(handler func(string)) Option {
	return func(o *SessionOptions) {
		o.Adapter.Stderr = handler
	}
}

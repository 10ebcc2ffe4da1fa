package codec

import (
	"fmt"

	"github.com/wagiedev/dap-session-go/internal/message"
)

// Names accepted by ByName.
const (
	NameJSON = "json"
	NameCBOR = "cbor"
)

// Codec encodes envelopes and payloads for one wire format.
//
// Implementations must be safe for concurrent use.
type Codec interface {
	// Name returns the codec identifier ("json" or "cbor").
	Name() string

	// EncodeMessage serializes a complete envelope. The envelope's Body must
	// already be encoded with this codec.
	EncodeMessage(m *message.Message) ([]byte, error)

	// DecodeMessage parses a complete envelope, leaving its payload encoded.
	DecodeMessage(data []byte) (*message.Message, error)

	// Marshal encodes a typed payload.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes a payload into v.
	Unmarshal(data []byte, v any) error
}

// ByName returns the codec registered under name.
func ByName(name string) (Codec, error) {
	switch name {
	case NameJSON, "":
		return JSON(), nil
	case NameCBOR:
		return CBOR(), nil
	default:
		return nil, fmt.Errorf("unknown codec '%s'", name)
	}
}

// successField returns the value for the envelope's success field, which is
// only present on responses.
func successField(m *message.Message) *bool {
	if !m.IsResponse() {
		return nil
	}

	success := m.Success

	return &success
}

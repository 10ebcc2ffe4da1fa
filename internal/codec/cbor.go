package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/wagiedev/dap-session-go/internal/message"
)

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2) so the same
// logical message always produces identical bytes.
var encMode cbor.EncMode

// decMode decodes untyped maps as map[string]any so payloads decoded into
// `any` fields look the same as they do under the JSON codec.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// cborEnvelope mirrors jsonEnvelope; field names are shared so the two wire
// forms map one to one.
type cborEnvelope struct {
	Seq        int64           `cbor:"seq"`
	Type       string          `cbor:"type"`
	Command    string          `cbor:"command,omitempty"`
	Event      string          `cbor:"event,omitempty"`
	RequestSeq int64           `cbor:"request_seq,omitempty"`
	Success    *bool           `cbor:"success,omitempty"`
	Message    string          `cbor:"message,omitempty"`
	Arguments  cbor.RawMessage `cbor:"arguments,omitempty"`
	Body       cbor.RawMessage `cbor:"body,omitempty"`
}

type cborCodec struct{}

var cborInstance Codec = cborCodec{}

// CBOR returns the CBOR codec.
func CBOR() Codec {
	return cborInstance
}

func (cborCodec) Name() string { return NameCBOR }

func (cborCodec) EncodeMessage(m *message.Message) ([]byte, error) {
	env := cborEnvelope{
		Seq:        m.Seq,
		Type:       m.Type,
		Command:    m.Command,
		Event:      m.Event,
		RequestSeq: m.RequestSeq,
		Success:    successField(m),
		Message:    m.Message,
	}

	if m.IsRequest() {
		env.Arguments = m.Body
	} else {
		env.Body = m.Body
	}

	return encMode.Marshal(&env)
}

func (cborCodec) DecodeMessage(data []byte) (*message.Message, error) {
	var env cborEnvelope
	if err := decMode.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	m := &message.Message{
		Seq:        env.Seq,
		Type:       env.Type,
		Command:    env.Command,
		Event:      env.Event,
		RequestSeq: env.RequestSeq,
		Message:    env.Message,
		Body:       env.Body,
	}

	if env.Success != nil {
		m.Success = *env.Success
	}

	if m.IsRequest() {
		m.Body = env.Arguments
	}

	return m, nil
}

func (cborCodec) Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func (cborCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		// An absent payload decodes like an empty map.
		data = []byte{0xa0}
	}

	return decMode.Unmarshal(data, v)
}

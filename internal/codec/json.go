package codec

import (
	"github.com/segmentio/encoding/json"

	"github.com/wagiedev/dap-session-go/internal/message"
)

// jsonEnvelope is the DAP wire shape of a message.
type jsonEnvelope struct {
	Seq        int64           `json:"seq"`
	Type       string          `json:"type"`
	Command    string          `json:"command,omitempty"`
	Event      string          `json:"event,omitempty"`
	RequestSeq int64           `json:"request_seq,omitempty"` //nolint:tagliatelle // DAP uses snake_case
	Success    *bool           `json:"success,omitempty"`
	Message    string          `json:"message,omitempty"`
	Arguments  json.RawMessage `json:"arguments,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
}

type jsonCodec struct{}

var jsonInstance Codec = jsonCodec{}

// JSON returns the JSON codec.
func JSON() Codec {
	return jsonInstance
}

func (jsonCodec) Name() string { return NameJSON }

func (jsonCodec) EncodeMessage(m *message.Message) ([]byte, error) {
	env := jsonEnvelope{
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

	return json.Marshal(&env)
}

func (jsonCodec) DecodeMessage(data []byte) (*message.Message, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
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

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		data = []byte("{}")
	}

	return json.Unmarshal(data, v)
}

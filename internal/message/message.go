package message

// Message types as they appear in the envelope "type" field.
const (
	TypeRequest  = "request"
	TypeResponse = "response"
	TypeEvent    = "event"
)

// Message is the wire-level envelope shared by requests, responses and events.
//
// Wire format (JSON rendition):
//
//	{
//	  "seq": 3,
//	  "type": "request",
//	  "command": "setBreakpoints",
//	  "arguments": {...}
//	}
//
//	{
//	  "seq": 4,
//	  "type": "response",
//	  "request_seq": 3,
//	  "success": false,
//	  "command": "setBreakpoints",
//	  "message": "no source"
//	}
//
// Body holds the payload still encoded in the session codec; it is decoded
// into a typed value only once the receiving handler or pending request is
// known. Requests carry it under "arguments", events and responses under
// "body".
type Message struct {
	Seq        int64
	Type       string
	Command    string
	Event      string
	RequestSeq int64
	Success    bool
	Message    string
	Body       []byte
}

// IsRequest reports whether the message is a request.
func (m *Message) IsRequest() bool { return m.Type == TypeRequest }

// IsResponse reports whether the message is a response.
func (m *Message) IsResponse() bool { return m.Type == TypeResponse }

// IsEvent reports whether the message is an event.
func (m *Message) IsEvent() bool { return m.Type == TypeEvent }

// Tag returns the command for requests and responses and the event name for events.
func (m *Message) Tag() string {
	if m.IsEvent() {
		return m.Event
	}

	return m.Command
}

// NewRequest builds a request envelope.
func NewRequest(seq int64, command string, body []byte) *Message {
	return &Message{
		Seq:     seq,
		Type:    TypeRequest,
		Command: command,
		Body:    body,
	}
}

// NewEvent builds an event envelope.
func NewEvent(seq int64, event string, body []byte) *Message {
	return &Message{
		Seq:   seq,
		Type:  TypeEvent,
		Event: event,
		Body:  body,
	}
}

// NewSuccessResponse builds a successful response to the request with requestSeq.
func NewSuccessResponse(seq, requestSeq int64, command string, body []byte) *Message {
	return &Message{
		Seq:        seq,
		Type:       TypeResponse,
		Command:    command,
		RequestSeq: requestSeq,
		Success:    true,
		Body:       body,
	}
}

// NewErrorResponse builds a failed response carrying errMsg.
func NewErrorResponse(seq, requestSeq int64, command, errMsg string) *Message {
	return &Message{
		Seq:        seq,
		Type:       TypeResponse,
		Command:    command,
		RequestSeq: requestSeq,
		Success:    false,
		Message:    errMsg,
	}
}

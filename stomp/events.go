package stomp

import "encoding/json"

type EventKind uint8

const (
	EventConnectedToTransport EventKind = iota + 1
	EventConnectedToProtocol
	EventDisconnectedFromTransport
	EventDisconnectedFromProtocol
	EventErrorFromTransport
	EventErrorFromProtocol
	EventTextMessage
	EventBinaryMessage
	EventReceipt
)

var eventNames = map[EventKind]string{
	EventConnectedToTransport:      "connected-to-transport",
	EventConnectedToProtocol:       "connected-to-protocol",
	EventDisconnectedFromTransport: "disconnected-from-transport",
	EventDisconnectedFromProtocol:  "disconnected-from-protocol",
	EventErrorFromTransport:        "error-from-transport",
	EventErrorFromProtocol:         "error-from-protocol",
	EventTextMessage:               "text-message",
	EventBinaryMessage:             "binary-message",
	EventReceipt:                   "receipt",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// ConnectionEvent reports a connect, disconnect or error. Error is set only for
// the two error kinds.
type ConnectionEvent struct {
	Kind  EventKind
	Error *ErrorInfo
}

// ErrorInfo describes a failure reported by the transport or by an ERROR frame.
type ErrorInfo struct {
	BriefDescription string
	FullDescription  string
	ReceiptID        string
	Err              error
}

// Message is an inbound MESSAGE frame. Kind is EventTextMessage or
// EventBinaryMessage; Text or Data holds the body accordingly.
type Message struct {
	Kind         EventKind
	Text         string
	Data         []byte
	MessageID    string
	Destination  string
	Subscription string
	Headers      map[string]string
}

// Body returns the message body as bytes regardless of kind.
func (m Message) Body() []byte {
	if m.Kind == EventBinaryMessage {
		return append([]byte(nil), m.Data...)
	}
	return []byte(m.Text)
}

// Decode unmarshals a JSON body into v.
func (m Message) Decode(v any) error {
	body := m.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

type Receipt struct {
	ID string
}

// ServerInfo holds what the broker announced in its CONNECTED frame.
type ServerInfo struct {
	Version   string
	Session   string
	Server    string
	HeartBeat string
}

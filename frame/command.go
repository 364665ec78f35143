package frame

// Command is the set of command types a Frame can carry.
type Command interface {
	RequestCommand | ResponseCommand
	String() string
}

// RequestCommand is a frame command sent by the client.
type RequestCommand uint8

const (
	Connect RequestCommand = iota + 1
	Send
	Subscribe
	Unsubscribe
	Begin
	Commit
	Abort
	Ack
	Nack
	Disconnect
)

var requestNames = map[RequestCommand]string{
	Connect:     "CONNECT",
	Send:        "SEND",
	Subscribe:   "SUBSCRIBE",
	Unsubscribe: "UNSUBSCRIBE",
	Begin:       "BEGIN",
	Commit:      "COMMIT",
	Abort:       "ABORT",
	Ack:         "ACK",
	Nack:        "NACK",
	Disconnect:  "DISCONNECT",
}

func (c RequestCommand) String() string {
	if name, ok := requestNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// ResponseCommand is a frame command sent by the server.
type ResponseCommand uint8

const (
	Connected ResponseCommand = iota + 1
	Message
	Receipt
	Error
)

var responseNames = map[ResponseCommand]string{
	Connected: "CONNECTED",
	Message:   "MESSAGE",
	Receipt:   "RECEIPT",
	Error:     "ERROR",
}

func (c ResponseCommand) String() string {
	if name, ok := responseNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseRequestCommand maps a wire command name to a RequestCommand.
func ParseRequestCommand(name string) (RequestCommand, bool) {
	for cmd, n := range requestNames {
		if n == name {
			return cmd, true
		}
	}
	return 0, false
}

// ParseResponseCommand maps a wire command name to a ResponseCommand.
func ParseResponseCommand(name string) (ResponseCommand, bool) {
	for cmd, n := range responseNames {
		if n == name {
			return cmd, true
		}
	}
	return 0, false
}

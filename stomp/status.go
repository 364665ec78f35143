package stomp

// Status is the connection state of a Client.
type Status uint8

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusTransportConnected
	StatusProtocolConnected
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusTransportConnected:
		return "transport-connected"
	case StatusProtocolConnected:
		return "protocol-connected"
	default:
		return "unknown"
	}
}

// AckMode controls when the broker considers a delivered message consumed.
type AckMode uint8

const (
	AckAuto AckMode = iota
	AckClient
	AckClientIndividual
)

func (m AckMode) String() string {
	switch m {
	case AckClient:
		return "client"
	case AckClientIndividual:
		return "client-individual"
	default:
		return "auto"
	}
}

package stomp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/infigaming-com/go-stomp/frame"
)

// WebSocket close codes used by the client.
const (
	CloseNormal    = 1000
	CloseGoingAway = 1001
)

// OpenRequest describes the transport connection to establish.
type OpenRequest struct {
	Endpoint string
	Header   map[string]string
	Timeout  time.Duration
}

// Transport is a message oriented duplex connection. Implementations must be
// safe for concurrent use.
//
// Open starts a new connection and reports its lifecycle to l. A later Open
// replaces the previous connection; callbacks of the replaced connection must
// stop. Close is client initiated and must not call l.OnClose.
type Transport interface {
	Open(ctx context.Context, req OpenRequest, l TransportListener) error
	Send(ctx context.Context, text string) error
	Ping(ctx context.Context) error
	Close(code int, reason string) error
}

// TransportListener receives the lifecycle of one transport connection. Calls
// may come from any goroutine.
type TransportListener interface {
	OnOpen(protocol string)
	OnText(text string)
	OnBinary(data []byte)
	OnClose(code int, reason string)
	OnError(err error)
}

// Reachability reports whether the broker host can currently be reached. Stop
// must not wait for callbacks that are in flight.
type Reachability interface {
	Start(onReachable, onUnreachable func()) error
	Stop()
}

// Serializer turns a structured value into a text body and its content type.
type Serializer interface {
	Serialize(v any) (body string, contentType string, err error)
}

type jsonSerializer struct{}

func (jsonSerializer) Serialize(v any) (string, string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", "", err
	}
	return string(data), frame.ContentTypeJSON, nil
}

// JSONSerializer is the default Serializer.
func JSONSerializer() Serializer { return jsonSerializer{} }

// Executor runs listener callbacks. Execute must not run fn on the calling
// goroutine. The default is a serial FIFO queue; a custom Executor that runs
// jobs concurrently gives up ordering.
type Executor interface {
	Execute(fn func())
}

type ExecutorFunc func(fn func())

func (f ExecutorFunc) Execute(fn func()) { f(fn) }

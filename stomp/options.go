package stomp

import (
	"context"
	"maps"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultAcceptVersion  = "1.1,1.2"
	DefaultPingInterval   = 10 * time.Second
	DefaultReconnectDelay = 3 * time.Second
)

// ConnectOptions tunes one Connect call. Zero values select the defaults.
type ConnectOptions struct {
	Timeout       time.Duration
	AcceptVersion string
	AutoReconnect bool
}

func (o ConnectOptions) withDefaults() ConnectOptions {
	if o.Timeout <= 0 {
		o.Timeout = DefaultConnectTimeout
	}
	if o.AcceptVersion == "" {
		o.AcceptVersion = DefaultAcceptVersion
	}
	return o
}

// SendOptions adds an optional receipt request and extra headers to a SEND.
// Extra headers override the ones the client sets.
type SendOptions struct {
	ReceiptID string
	Headers   map[string]string
}

// ReconnectPolicy controls the reconnection supervisor. The zero value retries
// every three seconds forever.
type ReconnectPolicy struct {
	Interval    time.Duration
	MaxInterval time.Duration
	Multiplier  float64
	Jitter      float64
	// MaxAttempts stops the supervisor after that many attempts. Zero means no
	// limit.
	MaxAttempts int
}

// DeduplicationConfig enables dropping MESSAGE frames whose message-id was
// already delivered within TTL.
type DeduplicationConfig struct {
	// Size is the cache size in bytes.
	Size int
	TTL  time.Duration
}

type options struct {
	logger           *zap.Logger
	logging          bool
	connectHeaders   map[string]string
	handshakeHeaders map[string]string
	handshakeFunc    func(ctx context.Context) (map[string]string, error)
	executor         Executor
	reachability     Reachability
	serializer       Serializer
	metrics          MetricsHook
	reconnect        ReconnectPolicy
	uniqueSubIDs     bool
	dedupe           *DeduplicationConfig
	connectedTimeout time.Duration
	receiptTimeout   time.Duration
}

func defaultOptions() options {
	return options{
		logger:     zap.NewNop(),
		logging:    true,
		serializer: jsonSerializer{},
		metrics:    noopMetrics{},
		reconnect:  ReconnectPolicy{Interval: DefaultReconnectDelay},
	}
}

type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLogging turns diagnostic logging on or off. It is on by default, but the
// default logger discards everything.
func WithLogging(enabled bool) Option {
	return func(o *options) {
		o.logging = enabled
	}
}

// WithConnectHeaders adds headers to every CONNECT frame, such as login and
// passcode.
func WithConnectHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.connectHeaders = maps.Clone(headers)
	}
}

// WithHandshakeHeaders adds headers to the transport opening request.
func WithHandshakeHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.handshakeHeaders = maps.Clone(headers)
	}
}

// WithHandshakeHeaderFunc computes handshake headers for every transport open,
// after the static ones. It is how short lived credentials are refreshed on
// reconnect.
func WithHandshakeHeaderFunc(fn func(ctx context.Context) (map[string]string, error)) Option {
	return func(o *options) {
		o.handshakeFunc = fn
	}
}

func WithExecutor(exec Executor) Option {
	return func(o *options) {
		o.executor = exec
	}
}

func WithReachability(r Reachability) Option {
	return func(o *options) {
		o.reachability = r
	}
}

func WithSerializer(s Serializer) Option {
	return func(o *options) {
		if s != nil {
			o.serializer = s
		}
	}
}

func WithMetrics(m MetricsHook) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

func WithReconnectPolicy(p ReconnectPolicy) Option {
	return func(o *options) {
		o.reconnect = p
	}
}

// WithUniqueSubscriptionIDs generates a fresh id for every SUBSCRIBE instead of
// reusing the destination, so one destination can be subscribed more than once.
func WithUniqueSubscriptionIDs() Option {
	return func(o *options) {
		o.uniqueSubIDs = true
	}
}

func WithDeduplication(cfg DeduplicationConfig) Option {
	return func(o *options) {
		o.dedupe = &cfg
	}
}

// WithConnectedTimeout closes the transport when no CONNECTED frame arrives
// within d after the transport opened. Zero waits forever.
func WithConnectedTimeout(d time.Duration) Option {
	return func(o *options) {
		o.connectedTimeout = d
	}
}

// WithReceiptTimeout bounds the wait for the receipt of a graceful disconnect.
// When it expires the transport is closed anyway. Zero waits forever.
func WithReceiptTimeout(d time.Duration) Option {
	return func(o *options) {
		o.receiptTimeout = d
	}
}

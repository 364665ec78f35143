// Package reachability implements stomp.Reachability with periodic TCP dials.
package reachability

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/infigaming-com/go-stomp/errors"
	"github.com/infigaming-com/go-stomp/stomp"
)

var _ stomp.Reachability = (*Monitor)(nil)

type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type options struct {
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	dialer   Dialer
}

type Option func(*options)

func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithDialer(d Dialer) Option {
	return func(o *options) {
		if d != nil {
			o.dialer = d
		}
	}
}

// Monitor probes addr and reports transitions. The first probe result is
// always reported.
type Monitor struct {
	addr string
	opts options

	mu     sync.Mutex
	cancel context.CancelFunc
}

func New(addr string, opts ...Option) *Monitor {
	o := options{
		interval: 2 * time.Second,
		timeout:  time.Second,
		logger:   zap.NewNop(),
		dialer:   &net.Dialer{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Monitor{addr: addr, opts: o}
}

// Start begins probing, replacing any earlier run.
func (m *Monitor) Start(onReachable, onUnreachable func()) error {
	if m.addr == "" {
		return errors.NewError(errors.CodeInvalidArgument, "reachability: address is required", nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	m.cancel = cancel
	m.mu.Unlock()

	go m.run(ctx, onReachable, onUnreachable)
	return nil
}

// Stop cancels probing without waiting for a probe in flight.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Monitor) run(ctx context.Context, onReachable, onUnreachable func()) {
	ticker := time.NewTicker(m.opts.interval)
	defer ticker.Stop()

	var last *bool
	for {
		up := m.probe(ctx)
		if ctx.Err() != nil {
			return
		}
		if last == nil || *last != up {
			m.opts.logger.Debug("reachability changed", zap.String("addr", m.addr), zap.Bool("reachable", up))
			if up {
				onReachable()
			} else {
				onUnreachable()
			}
			last = &up
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Monitor) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.opts.timeout)
	defer cancel()
	conn, err := m.opts.dialer.DialContext(ctx, "tcp", m.addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// AddrFromURL returns host:port for a ws, wss, http or https endpoint.
func AddrFromURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.NewError(errors.CodeInvalidArgument, "reachability: invalid endpoint", err)
	}
	if u.Hostname() == "" {
		return "", errors.NewError(errors.CodeInvalidArgument, "reachability: endpoint has no host", nil)
	}
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "wss", "https":
			port = "443"
		default:
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// Package websocket implements stomp.Transport over gorilla/websocket.
package websocket

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/infigaming-com/go-stomp/errors"
	"github.com/infigaming-com/go-stomp/stomp"
)

var _ stomp.Transport = (*Transport)(nil)

var ErrNotOpen = errors.NewError(errors.CodeNotConnected, "websocket: connection not open", nil)

const closeGracePeriod = time.Second

type options struct {
	logger       *zap.Logger
	subprotocols []string
	writeTimeout time.Duration
	readLimit    int64
}

func defaultOptions() options {
	return options{
		logger:       zap.NewNop(),
		subprotocols: []string{"v12.stomp", "v11.stomp", "v10.stomp"},
		writeTimeout: 10 * time.Second,
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

// WithSubprotocols replaces the offered WebSocket subprotocols.
func WithSubprotocols(protocols ...string) Option {
	return func(o *options) {
		o.subprotocols = protocols
	}
}

// WithWriteTimeout bounds writes whose context has no deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		o.writeTimeout = d
	}
}

// WithReadLimit caps the size of an inbound message in bytes.
func WithReadLimit(n int64) Option {
	return func(o *options) {
		o.readLimit = n
	}
}

// Transport holds at most one live connection. It is safe for concurrent use.
type Transport struct {
	opts options

	mu   sync.Mutex
	conn *conn
}

type conn struct {
	ws      *websocket.Conn
	l       stomp.TransportListener
	writeMu sync.Mutex
	closing atomic.Bool
}

func New(opts ...Option) *Transport {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Transport{opts: o}
}

// Open dials req.Endpoint and replaces the current connection. The listener
// gets OnOpen from the read goroutine before any message.
func (t *Transport) Open(ctx context.Context, req stomp.OpenRequest, l stomp.TransportListener) error {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: req.Timeout,
		Subprotocols:     t.opts.subprotocols,
	}
	header := make(http.Header, len(req.Header))
	for k, v := range req.Header {
		header.Set(k, v)
	}

	ws, resp, err := dialer.DialContext(ctx, req.Endpoint, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return err
	}
	if t.opts.readLimit > 0 {
		ws.SetReadLimit(t.opts.readLimit)
	}

	c := &conn{ws: ws, l: l}
	t.mu.Lock()
	old := t.conn
	t.conn = c
	t.mu.Unlock()
	if old != nil {
		t.shutdown(old, websocket.CloseGoingAway, "replaced")
	}

	t.opts.logger.Debug("websocket connected", zap.String("endpoint", req.Endpoint), zap.String("subprotocol", ws.Subprotocol()))
	go t.readLoop(c)
	return nil
}

func (t *Transport) readLoop(c *conn) {
	c.l.OnOpen(c.ws.Subprotocol())
	for {
		typ, data, err := c.ws.ReadMessage()
		if err != nil {
			if c.closing.Load() {
				return
			}
			t.detach(c)
			_ = c.ws.Close()

			var closeErr *websocket.CloseError
			if stderrors.As(err, &closeErr) {
				t.opts.logger.Debug("websocket closed by peer", zap.Int("code", closeErr.Code), zap.String("reason", closeErr.Text))
				c.l.OnClose(closeErr.Code, closeErr.Text)
				return
			}
			t.opts.logger.Warn("websocket read failed", zap.Error(err))
			c.l.OnError(err)
			return
		}
		switch typ {
		case websocket.TextMessage:
			c.l.OnText(string(data))
		case websocket.BinaryMessage:
			c.l.OnBinary(data)
		}
	}
}

func (t *Transport) Send(ctx context.Context, text string) error {
	c := t.current()
	if c == nil {
		return ErrNotOpen
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(t.deadline(ctx))
	return c.ws.WriteMessage(websocket.TextMessage, []byte(text))
}

func (t *Transport) Ping(ctx context.Context) error {
	c := t.current()
	if c == nil {
		return ErrNotOpen
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, t.deadline(ctx))
}

// Close sends a close frame with code and drops the connection. The listener
// is not notified.
func (t *Transport) Close(code int, reason string) error {
	t.mu.Lock()
	c := t.conn
	t.conn = nil
	t.mu.Unlock()
	if c == nil {
		return nil
	}
	return t.shutdown(c, code, reason)
}

func (t *Transport) shutdown(c *conn, code int, reason string) error {
	if !c.closing.CompareAndSwap(false, true) {
		return nil
	}
	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(code, reason)
	err := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
	c.writeMu.Unlock()
	if err != nil && !stderrors.Is(err, websocket.ErrCloseSent) {
		t.opts.logger.Debug("failed to write close frame", zap.Error(err))
	}
	return c.ws.Close()
}

func (t *Transport) current() *conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}

func (t *Transport) detach(c *conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == c {
		t.conn = nil
	}
}

func (t *Transport) deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	if t.opts.writeTimeout > 0 {
		return time.Now().Add(t.opts.writeTimeout)
	}
	return time.Time{}
}

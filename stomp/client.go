package stomp

import (
	"context"
	"maps"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/infigaming-com/go-stomp/frame"
	"github.com/infigaming-com/go-stomp/stomp/internal/worker"
)

const streamBuffer = 64

// Client is a STOMP connection state machine. It is safe for concurrent use.
type Client struct {
	host      string
	transport Transport
	opts      options
	logger    *zap.Logger
	queue     *worker.Queue
	dedupe    *dedupeCache

	events   *broadcaster[ConnectionEvent]
	messages *broadcaster[Message]
	receipts *broadcaster[Receipt]

	mu            sync.Mutex
	status        Status
	session       *session
	connect       ConnectOptions
	autoReconnect bool
	server        ServerInfo
	heartbeat     heartbeat
	reconnect     reconnector
	connectedWait *task
	receiptWait   *task
	subscriptions map[string][]string
	closed        bool
}

// New creates a disconnected client for the broker at host.
func New(host string, transport Transport, opts ...Option) (*Client, error) {
	if host == "" {
		return nil, invalidArgument("host is required")
	}
	if transport == nil {
		return nil, invalidArgument("transport is required")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger.With(zap.String("host", host))
	if !o.logging {
		logger = zap.NewNop()
	}
	c := &Client{
		host:          host,
		transport:     transport,
		opts:          o,
		logger:        logger,
		connect:       ConnectOptions{}.withDefaults(),
		reconnect:     newReconnector(o.reconnect),
		subscriptions: make(map[string][]string),
	}

	exec := o.executor
	if exec == nil {
		c.queue = worker.New(func(r any) {
			logger.Error("event listener panicked", zap.Any("panic", r))
		})
		exec = c.queue
	}
	c.events = newBroadcaster[ConnectionEvent](exec)
	c.messages = newBroadcaster[Message](exec)
	c.receipts = newBroadcaster[Receipt](exec)

	if o.dedupe != nil {
		c.dedupe = newDedupeCache(*o.dedupe)
	}
	return c, nil
}

func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// IsConnected reports whether the STOMP session is established.
func (c *Client) IsConnected() bool {
	return c.Status() == StatusProtocolConnected
}

// Server returns what the broker announced in the last CONNECTED frame.
func (c *Client) Server() ServerInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.server
}

// OnEvent registers fn for connection events. The returned func unregisters it.
func (c *Client) OnEvent(fn func(ConnectionEvent)) func() {
	return c.events.subscribe(fn)
}

func (c *Client) OnMessage(fn func(Message)) func() {
	return c.messages.subscribe(fn)
}

func (c *Client) OnReceipt(fn func(Receipt)) func() {
	return c.receipts.subscribe(fn)
}

// Events streams connection events until ctx is done. A reader that falls
// behind delays every other listener.
func (c *Client) Events(ctx context.Context) <-chan ConnectionEvent {
	return stream(ctx, c.events, streamBuffer)
}

func (c *Client) Messages(ctx context.Context) <-chan Message {
	return stream(ctx, c.messages, streamBuffer)
}

func (c *Client) Receipts(ctx context.Context) <-chan Receipt {
	return stream(ctx, c.receipts, streamBuffer)
}

// Connect opens the transport and performs the STOMP handshake. It returns
// once the transport open was requested; ConnectedToProtocol is emitted when
// the broker answers. If the transport is already open only CONNECT is sent.
func (c *Client) Connect(ctx context.Context, co ConnectOptions) error {
	co = co.withDefaults()
	c.mu.Lock()
	s, f, err := c.beginConnectLocked(co)
	c.mu.Unlock()
	return c.finishConnect(ctx, s, f, err, co.Timeout)
}

// beginConnectLocked applies a connect request to the state. It returns either
// a new session to open or, when the transport is already up, the CONNECT
// frame to send.
func (c *Client) beginConnectLocked(co ConnectOptions) (*session, *requestFrame, error) {
	if c.closed {
		return nil, nil, newStateError(ErrClosed, "connect", c.status)
	}
	switch c.status {
	case StatusProtocolConnected:
		return nil, nil, newStateError(ErrAlreadyConnected, "connect", c.status)
	case StatusTransportConnected:
		c.autoReconnect = co.AutoReconnect
		c.connect = co
		return nil, c.connectFrameLocked(), nil
	}
	c.autoReconnect = co.AutoReconnect
	c.connect = co
	if c.session != nil {
		c.logger.Debug("replacing pending transport session")
	}
	s := &session{client: c}
	c.session = s
	c.setStatusLocked(StatusConnecting)
	return s, nil, nil
}

func (c *Client) finishConnect(ctx context.Context, s *session, f *requestFrame, err error, timeout time.Duration) error {
	switch {
	case err != nil:
		return err
	case f != nil:
		return c.send(ctx, f)
	default:
		return c.open(ctx, s, timeout)
	}
}

func (c *Client) open(ctx context.Context, s *session, timeout time.Duration) error {
	header, err := c.handshakeHeader(ctx)
	if err == nil {
		c.logger.Info("opening transport", zap.Duration("timeout", timeout))
		err = c.transport.Open(ctx, OpenRequest{Endpoint: c.host, Header: header, Timeout: timeout}, s)
	}
	if err != nil {
		c.logger.Warn("failed to open transport", zap.Error(err))
		c.teardown(s, err, false)
		return newTransportError("open", err)
	}

	// A disconnect may have run while the dial was in flight. Its close found
	// no connection, so close the one that just opened.
	c.mu.Lock()
	abandoned := c.session == nil
	status := c.status
	c.mu.Unlock()
	if abandoned {
		c.logger.Info("closing transport opened after disconnect")
		if err := c.transport.Close(CloseNormal, ""); err != nil {
			c.logger.Warn("failed to close abandoned transport", zap.Error(err))
		}
		return newStateError(ErrNotConnected, "connect", status)
	}
	return nil
}

func (c *Client) handshakeHeader(ctx context.Context) (map[string]string, error) {
	header := maps.Clone(c.opts.handshakeHeaders)
	if c.opts.handshakeFunc == nil {
		return header, nil
	}
	extra, err := c.opts.handshakeFunc(ctx)
	if err != nil {
		return nil, err
	}
	if header == nil {
		header = make(map[string]string, len(extra))
	}
	maps.Copy(header, extra)
	return header, nil
}

func (c *Client) connectFrameLocked() *requestFrame {
	h := frame.NewHeaderBuilder().
		Add(frame.HeaderAcceptVersion, c.connect.AcceptVersion).
		Merge(c.opts.connectHeaders).
		Build()
	return frame.New(frame.Connect, h)
}

// Disconnect ends the connection and stops automatic reconnection and auto
// ping. Unless force is set and while the STOMP session is up, it sends
// DISCONNECT and closes the transport once the broker confirms the receipt.
func (c *Client) Disconnect(ctx context.Context, force bool) {
	c.mu.Lock()
	c.autoReconnect = false
	c.disableHeartbeatLocked()
	stopReach := c.stopReconnectLocked(true)
	graceful := !force && c.status == StatusProtocolConnected
	if graceful && c.opts.receiptTimeout > 0 {
		s := c.session
		c.receiptWait.stop()
		c.receiptWait = after(c.opts.receiptTimeout, func(ctx context.Context) {
			c.waitExpired(ctx, s, "RECEIPT")
		})
	}
	c.mu.Unlock()
	c.unwatchReachability(stopReach)

	if graceful {
		h := frame.NewHeaderBuilder().Add(frame.HeaderReceipt, disconnectReceiptID).Build()
		err := c.send(ctx, frame.New(frame.Disconnect, h))
		if err == nil {
			c.logger.Info("disconnect requested, waiting for receipt")
			return
		}
		c.logger.Warn("graceful disconnect failed, closing transport", zap.Error(err))
	}
	c.teardown(nil, nil, true)
}

// Shutdown force disconnects, rejects further operations and waits for queued
// listener callbacks to finish.
func (c *Client) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.Disconnect(ctx, true)
	if c.queue == nil {
		return nil
	}
	c.queue.Close()
	select {
	case <-c.queue.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// send writes f if the current status allows it.
func (c *Client) send(ctx context.Context, f *requestFrame) error {
	c.mu.Lock()
	s, err := c.gateLocked(f.Command())
	c.mu.Unlock()
	if err != nil {
		c.logger.Warn("frame not sent", zap.Stringer("command", f.Command()), zap.Error(err))
		return err
	}
	return c.write(ctx, s, f)
}

func (c *Client) gateLocked(cmd frame.RequestCommand) (*session, error) {
	if c.closed {
		return nil, newStateError(ErrClosed, "send "+cmd.String(), c.status)
	}
	allowed := c.status == StatusProtocolConnected ||
		(cmd == frame.Connect && c.status == StatusTransportConnected)
	if !allowed || c.session == nil {
		c.opts.metrics.OnFrameRejected(cmd.String(), c.status)
		return nil, newStateError(ErrNotConnected, "send "+cmd.String(), c.status)
	}
	return c.session, nil
}

func (c *Client) write(ctx context.Context, s *session, f *requestFrame) error {
	cmd := f.Command().String()
	if err := c.transport.Send(ctx, f.Encode()); err != nil {
		c.logger.Warn("failed to send frame", zap.String("command", cmd), zap.Error(err))
		return newTransportError("send "+cmd, err)
	}
	c.logger.Debug("frame sent", zap.String("command", cmd), zap.Any("headers", f.Header().Map()))
	c.opts.metrics.OnFrameSent(cmd)

	c.mu.Lock()
	if c.session == s {
		c.resetHeartbeatLocked()
	}
	c.mu.Unlock()
	return nil
}

// teardown moves to Disconnected. A nil s tears down whatever session is
// current; otherwise a stale s is ignored.
func (c *Client) teardown(s *session, cause error, closeTransport bool) {
	c.mu.Lock()
	if s != nil && c.session != s {
		c.mu.Unlock()
		return
	}
	active := c.session != nil || c.status != StatusDisconnected

	c.heartbeat.task.stop()
	c.heartbeat.task = nil
	c.connectedWait.stop()
	c.connectedWait = nil
	c.receiptWait.stop()
	c.receiptWait = nil
	c.session = nil
	clear(c.subscriptions)
	c.setStatusLocked(StatusDisconnected)

	if active {
		c.emitLocked(ConnectionEvent{Kind: EventDisconnectedFromTransport})
	}
	if cause != nil {
		c.emitLocked(ConnectionEvent{
			Kind: EventErrorFromTransport,
			Error: &ErrorInfo{
				BriefDescription: cause.Error(),
				Err:              newTransportError("receive", cause),
			},
		})
	}

	var (
		token     uint64
		stopReach bool
	)
	if c.autoReconnect && !c.closed {
		token = c.scheduleReconnectLocked()
	} else {
		stopReach = c.stopReconnectLocked(false)
	}
	reconnecting := c.reconnect.task != nil
	c.mu.Unlock()

	if active {
		c.logger.Info("transport disconnected", zap.Bool("reconnecting", reconnecting))
	}
	c.unwatchReachability(stopReach)
	if closeTransport && active {
		if err := c.transport.Close(CloseNormal, ""); err != nil {
			c.logger.Warn("failed to close transport", zap.Error(err))
		}
	}
	c.watchReachability(token)
}

// waitExpired handles a bounded wait for CONNECTED or the disconnect receipt.
func (c *Client) waitExpired(ctx context.Context, s *session, what string) {
	c.mu.Lock()
	if ctx.Err() != nil || c.session != s {
		c.mu.Unlock()
		return
	}
	c.emitLocked(ConnectionEvent{
		Kind: EventErrorFromProtocol,
		Error: &ErrorInfo{
			BriefDescription: "timed out waiting for " + what,
			Err:              ErrTimeout,
		},
	})
	c.mu.Unlock()
	c.logger.Warn("timed out waiting for broker", zap.String("frame", what))
	c.teardown(s, nil, true)
}

func (c *Client) setStatusLocked(st Status) {
	if c.status == st {
		return
	}
	c.logger.Debug("status changed", zap.Stringer("from", c.status), zap.Stringer("to", st))
	c.status = st
	c.opts.metrics.OnStatusChange(st)
}

func (c *Client) emitLocked(ev ConnectionEvent) {
	c.events.publish(ev)
}

package stomp

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/infigaming-com/go-stomp/frame"
)

// session is the TransportListener handed to one Transport.Open call.
// Callbacks from a session that is no longer current are dropped.
type session struct {
	client *Client
}

func (s *session) OnOpen(protocol string) { s.client.handleOpen(s, protocol) }

func (s *session) OnText(text string) { s.client.handleText(s, text) }

// OnBinary treats the payload as frame text; some brokers send every frame as
// a binary WebSocket message.
func (s *session) OnBinary(data []byte) { s.client.handleText(s, string(data)) }

func (s *session) OnClose(code int, reason string) {
	s.client.logger.Info("transport closed", zap.Int("code", code), zap.String("reason", reason))
	s.client.teardown(s, nil, false)
}

func (s *session) OnError(err error) { s.client.teardown(s, err, false) }

func (c *Client) handleOpen(s *session, protocol string) {
	c.mu.Lock()
	if c.session != s {
		c.mu.Unlock()
		c.logger.Debug("ignoring open of a replaced session")
		return
	}
	c.setStatusLocked(StatusTransportConnected)
	stopReach := c.stopReconnectLocked(true)
	c.emitLocked(ConnectionEvent{Kind: EventConnectedToTransport})
	if d := c.opts.connectedTimeout; d > 0 {
		c.connectedWait.stop()
		c.connectedWait = after(d, func(ctx context.Context) {
			c.waitExpired(ctx, s, "CONNECTED")
		})
	}
	f := c.connectFrameLocked()
	timeout := c.connect.Timeout
	c.mu.Unlock()

	c.logger.Info("transport connected", zap.String("protocol", protocol))
	c.unwatchReachability(stopReach)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = c.send(ctx, f)
}

func (c *Client) handleText(s *session, text string) {
	f, err := frame.Decode(text)
	if err != nil {
		if errors.Is(err, frame.ErrEmptyFrame) {
			c.logger.Debug("heart-beat received")
			return
		}
		c.opts.metrics.OnDecodeError()
		c.logger.Warn("dropping undecodable frame", zap.Error(err))
		return
	}
	c.opts.metrics.OnFrameReceived(f.Command().String())
	c.logger.Debug("frame received", zap.Stringer("command", f.Command()), zap.Any("headers", f.Header().Map()))

	switch f.Command() {
	case frame.Connected:
		c.handleConnected(s, f)
	case frame.Message:
		c.handleMessage(s, f)
	case frame.Receipt:
		c.handleReceipt(s, f)
	case frame.Error:
		c.handleError(s, f)
	}
}

func (c *Client) handleConnected(s *session, f *frame.Frame[frame.ResponseCommand]) {
	info := ServerInfo{
		Version:   f.Get(frame.HeaderVersion),
		Session:   f.Get(frame.HeaderSession),
		Server:    f.Get(frame.HeaderServer),
		HeartBeat: f.Get(frame.HeaderHeartBeat),
	}
	c.mu.Lock()
	if c.session != s {
		c.mu.Unlock()
		return
	}
	c.connectedWait.stop()
	c.connectedWait = nil
	c.server = info
	c.setStatusLocked(StatusProtocolConnected)
	c.emitLocked(ConnectionEvent{Kind: EventConnectedToProtocol})
	c.mu.Unlock()

	c.logger.Info("connected", zap.String("version", info.Version), zap.String("session", info.Session))
}

func (c *Client) handleMessage(s *session, f *frame.Frame[frame.ResponseCommand]) {
	msg := Message{
		Kind:         EventTextMessage,
		MessageID:    f.Get(frame.HeaderMessageID),
		Destination:  f.Get(frame.HeaderDestination),
		Subscription: f.Get(frame.HeaderSubscription),
		Headers:      f.Header().Map(),
	}
	if body := f.Body(); body.Kind() == frame.BodyBinary {
		msg.Kind = EventBinaryMessage
		msg.Data = body.Bytes()
	} else {
		msg.Text = body.Text()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != s {
		return
	}
	if c.dedupe != nil && c.dedupe.seen(msg.MessageID) {
		c.logger.Debug("dropping duplicate message", zap.String("message_id", msg.MessageID))
		return
	}
	c.messages.publish(msg)
}

func (c *Client) handleReceipt(s *session, f *frame.Frame[frame.ResponseCommand]) {
	id, ok := f.Lookup(frame.HeaderReceiptID)
	if !ok {
		c.logger.Warn("dropping RECEIPT without receipt-id")
		return
	}
	c.mu.Lock()
	if c.session != s {
		c.mu.Unlock()
		return
	}
	c.receipts.publish(Receipt{ID: id})
	if id != disconnectReceiptID {
		c.mu.Unlock()
		return
	}
	c.receiptWait.stop()
	c.receiptWait = nil
	c.setStatusLocked(StatusTransportConnected)
	c.emitLocked(ConnectionEvent{Kind: EventDisconnectedFromProtocol})
	c.mu.Unlock()

	c.logger.Info("disconnected from broker")
	c.teardown(s, nil, true)
}

func (c *Client) handleError(s *session, f *frame.Frame[frame.ResponseCommand]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != s {
		return
	}
	c.connectedWait.stop()
	c.connectedWait = nil
	c.setStatusLocked(StatusTransportConnected)

	brief, ok := f.Lookup(frame.HeaderMessage)
	if !ok {
		c.logger.Warn("dropping ERROR frame without message header")
		return
	}
	full := f.Body().Text()
	receiptID := f.Get(frame.HeaderReceiptID)
	c.logger.Warn("broker reported an error", zap.String("message", brief), zap.String("receipt_id", receiptID))
	c.emitLocked(ConnectionEvent{
		Kind: EventErrorFromProtocol,
		Error: &ErrorInfo{
			BriefDescription: brief,
			FullDescription:  full,
			ReceiptID:        receiptID,
			Err:              newProtocolError(brief, full, receiptID),
		},
	})
}

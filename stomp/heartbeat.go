package stomp

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type heartbeat struct {
	enabled  bool
	interval time.Duration
	task     *task
}

// EnableAutoPing pings the transport after every interval without outbound
// traffic. Calling it again replaces the interval. A non-positive interval
// selects DefaultPingInterval.
func (c *Client) EnableAutoPing(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPingInterval
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heartbeat.enabled = true
	c.heartbeat.interval = interval
	c.resetHeartbeatLocked()
}

func (c *Client) DisableAutoPing() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disableHeartbeatLocked()
}

func (c *Client) AutoPingEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heartbeat.enabled
}

// Ping sends a transport level ping now.
func (c *Client) Ping(ctx context.Context) error {
	c.mu.Lock()
	if !c.canPingLocked() {
		st := c.status
		c.mu.Unlock()
		return newStateError(ErrNotConnected, "ping", st)
	}
	s := c.session
	c.mu.Unlock()

	if err := c.ping(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	if c.session == s {
		c.resetHeartbeatLocked()
	}
	c.mu.Unlock()
	return nil
}

func (c *Client) canPingLocked() bool {
	return c.session != nil &&
		(c.status == StatusTransportConnected || c.status == StatusProtocolConnected)
}

func (c *Client) ping(ctx context.Context) error {
	if err := c.transport.Ping(ctx); err != nil {
		c.logger.Warn("failed to ping transport", zap.Error(err))
		return newTransportError("ping", err)
	}
	c.opts.metrics.OnPing()
	return nil
}

func (c *Client) disableHeartbeatLocked() {
	c.heartbeat.enabled = false
	c.heartbeat.task.stop()
	c.heartbeat.task = nil
}

// resetHeartbeatLocked restarts the ping countdown. It is a no-op while auto
// ping is off.
func (c *Client) resetHeartbeatLocked() {
	c.heartbeat.task.stop()
	c.heartbeat.task = nil
	if !c.heartbeat.enabled {
		return
	}
	interval := c.heartbeat.interval
	c.heartbeat.task = every(interval, func(ctx context.Context) {
		c.mu.Lock()
		ok := ctx.Err() == nil && c.canPingLocked()
		c.mu.Unlock()
		if !ok {
			return
		}
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		_ = c.ping(pingCtx)
	})
}

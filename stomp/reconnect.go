package stomp

import (
	"context"

	"go.uber.org/zap"

	"github.com/infigaming-com/go-stomp/stomp/internal/backoff"
)

// reconnector is the reconnection supervisor state. It is guarded by the
// client mutex.
type reconnector struct {
	backoff   *backoff.Schedule
	task      *task
	reachable bool
	watching  bool
	// token invalidates reachability callbacks from an earlier Start.
	token uint64
}

func newReconnector(p ReconnectPolicy) reconnector {
	return reconnector{
		backoff: backoff.New(backoff.Config{
			Initial:    p.Interval,
			Max:        p.MaxInterval,
			Multiplier: p.Multiplier,
			Jitter:     p.Jitter,
		}),
		reachable: true,
	}
}

func (c *Client) ReconnectAttempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconnect.backoff.Attempts()
}

// scheduleReconnectLocked (re)starts the retry task. It returns a non-zero
// token when reachability monitoring must be started by the caller, outside
// the lock.
func (c *Client) scheduleReconnectLocked() uint64 {
	r := &c.reconnect
	r.task.stop()
	r.task = startTask(r.backoff.Delay, false, c.reconnectTick)
	if c.opts.reachability == nil || r.watching {
		return 0
	}
	r.watching = true
	r.token++
	return r.token
}

// stopReconnectLocked cancels the retry task. It reports whether reachability
// monitoring must be stopped by the caller, outside the lock.
func (c *Client) stopReconnectLocked(reset bool) bool {
	r := &c.reconnect
	r.task.stop()
	r.task = nil
	if reset {
		r.backoff.Reset()
	}
	if !r.watching {
		return false
	}
	r.watching = false
	r.token++
	return true
}

func (c *Client) watchReachability(token uint64) {
	if token == 0 {
		return
	}
	err := c.opts.reachability.Start(
		func() { c.setReachable(token, true) },
		func() { c.setReachable(token, false) },
	)
	if err != nil {
		c.logger.Warn("failed to start reachability monitor", zap.Error(err))
	}
}

func (c *Client) unwatchReachability(stop bool) {
	if stop {
		c.opts.reachability.Stop()
	}
}

func (c *Client) setReachable(token uint64, reachable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reconnect.token != token {
		return
	}
	if c.reconnect.reachable != reachable {
		c.logger.Info("host reachability changed", zap.Bool("reachable", reachable))
	}
	c.reconnect.reachable = reachable
}

func (c *Client) reconnectTick(ctx context.Context) {
	c.mu.Lock()
	if ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	r := &c.reconnect
	if !r.reachable {
		c.mu.Unlock()
		c.logger.Debug("host unreachable, skipping reconnect attempt")
		return
	}
	if limit := c.opts.reconnect.MaxAttempts; limit > 0 && r.backoff.Attempts() >= limit {
		c.autoReconnect = false
		stop := c.stopReconnectLocked(false)
		c.mu.Unlock()
		c.logger.Warn("giving up reconnecting", zap.Int("attempts", limit))
		c.unwatchReachability(stop)
		return
	}
	attempt := r.backoff.Attempt()
	co := c.connect
	co.AutoReconnect = true
	s, f, err := c.beginConnectLocked(co)
	c.mu.Unlock()

	c.opts.metrics.OnReconnectAttempt(attempt)
	c.logger.Info("reconnecting", zap.Int("attempt", attempt))
	if err := c.finishConnect(ctx, s, f, err, co.Timeout); err != nil {
		c.logger.Debug("reconnect attempt failed", zap.Int("attempt", attempt), zap.Error(err))
	}
}

package stomp_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infigaming-com/go-stomp/stomp"
	"github.com/infigaming-com/go-stomp/stomp/stomptest"
)

func TestAutoPing(t *testing.T) {
	tr := stomptest.NewTransport()
	c := newClient(t, tr)
	connect(t, c, tr, false)

	c.EnableAutoPing(20 * time.Millisecond)
	assert.True(t, c.AutoPingEnabled())
	require.Eventually(t, func() bool { return tr.Pings() >= 2 }, waitFor, tick)

	c.DisableAutoPing()
	assert.False(t, c.AutoPingEnabled())
	time.Sleep(30 * time.Millisecond)
	stopped := tr.Pings()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, stopped, tr.Pings())
}

func TestAutoPing_EnableTwiceDoesNotDuplicate(t *testing.T) {
	tr := stomptest.NewTransport()
	c := newClient(t, tr)
	connect(t, c, tr, false)

	c.EnableAutoPing(40 * time.Millisecond)
	c.EnableAutoPing(40 * time.Millisecond)
	time.Sleep(130 * time.Millisecond)
	pings := tr.Pings()
	assert.GreaterOrEqual(t, pings, 1)
	assert.LessOrEqual(t, pings, 4)
}

func TestAutoPing_DisableIsIdempotent(t *testing.T) {
	tr := stomptest.NewTransport()
	c := newClient(t, tr)

	c.DisableAutoPing()
	c.DisableAutoPing()
	assert.False(t, c.AutoPingEnabled())

	c.EnableAutoPing(0)
	c.DisableAutoPing()
	c.DisableAutoPing()
	assert.False(t, c.AutoPingEnabled())
}

func TestAutoPing_SendResetsCountdown(t *testing.T) {
	tr := stomptest.NewTransport()
	c := newClient(t, tr)
	connect(t, c, tr, false)
	c.EnableAutoPing(50 * time.Millisecond)

	for i := 0; i < 6; i++ {
		time.Sleep(20 * time.Millisecond)
		require.NoError(t, c.SendText(context.Background(), "/queue/a", "busy", stomp.SendOptions{}))
	}
	assert.Zero(t, tr.Pings())
}

func TestAutoPing_SilentWhileDisconnected(t *testing.T) {
	tr := stomptest.NewTransport()
	c := newClient(t, tr)

	c.EnableAutoPing(10 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, tr.Pings())
}

func TestAutoPing_ResumesAfterUnexpectedDisconnect(t *testing.T) {
	tr := stomptest.NewTransport()
	c := newClient(t, tr)
	connect(t, c, tr, false)
	c.EnableAutoPing(20 * time.Millisecond)

	tr.Drop(1006, "gone")
	assert.True(t, c.AutoPingEnabled())

	connect(t, c, tr, false)
	before := tr.Pings()
	require.Eventually(t, func() bool { return tr.Pings() > before }, waitFor, tick)
}

func TestPing(t *testing.T) {
	tr := stomptest.NewTransport()
	c := newClient(t, tr)

	err := c.Ping(context.Background())
	assert.True(t, errors.Is(err, stomp.ErrNotConnected))

	require.NoError(t, c.Connect(context.Background(), stomp.ConnectOptions{}))
	tr.AcceptOpen()
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, 1, tr.Pings())

	tr.FailPing(errors.New("write timeout"))
	err = c.Ping(context.Background())
	assert.True(t, errors.Is(err, stomp.ErrTransport))
}

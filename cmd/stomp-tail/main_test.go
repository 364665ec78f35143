package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infigaming-com/go-stomp/frame"
	"github.com/infigaming-com/go-stomp/stomp"
	"github.com/infigaming-com/go-stomp/stomp/stomptest"
)

func newClient(t *testing.T, tr *stomptest.Transport) *stomp.Client {
	t.Helper()
	c, err := stomp.New("ws://broker.test/ws", tr)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = c.Shutdown(ctx)
	})
	return c
}

func TestDisconnect_WaitsForReceipt(t *testing.T) {
	tr := stomptest.NewTransport().AutoOpen().AutoConnect()
	c := newClient(t, tr)
	require.NoError(t, c.Connect(context.Background(), stomp.ConnectOptions{}))
	require.Eventually(t, c.IsConnected, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.True(t, disconnect(ctx, c))

	assert.Equal(t, stomp.StatusDisconnected, c.Status())
	assert.Contains(t, tr.SentCommands(), frame.Disconnect)
	assert.Equal(t, []int{stomp.CloseNormal}, tr.Closes())
}

func TestDisconnect_GivesUpWithoutReceipt(t *testing.T) {
	tr := stomptest.NewTransport()
	c := newClient(t, tr)
	require.NoError(t, c.Connect(context.Background(), stomp.ConnectOptions{}))
	tr.AcceptOpen()
	tr.Deliver("CONNECTED\nversion:1.2\n\n\x00")
	require.True(t, c.IsConnected())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.False(t, disconnect(ctx, c))
	assert.Contains(t, tr.SentCommands(), frame.Disconnect)
}

func TestDisconnect_NotConnected(t *testing.T) {
	c := newClient(t, stomptest.NewTransport())
	assert.True(t, disconnect(context.Background(), c))
	assert.Equal(t, stomp.StatusDisconnected, c.Status())
}

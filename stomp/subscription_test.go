package stomp_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infigaming-com/go-stomp/frame"
	"github.com/infigaming-com/go-stomp/stomp"
	"github.com/infigaming-com/go-stomp/stomp/stomptest"
)

func lastSent(t *testing.T, tr *stomptest.Transport) *frame.Frame[frame.RequestCommand] {
	t.Helper()
	frames := tr.SentFrames()
	require.NotEmpty(t, frames)
	return frames[len(frames)-1]
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		mode   stomp.AckMode
		extra  map[string]string
		wantID string
		want   map[string]string
	}{
		{
			name:   "auto",
			mode:   stomp.AckAuto,
			wantID: "/topic/prices",
			want:   map[string]string{"destination": "/topic/prices", "id": "/topic/prices", "ack": "auto"},
		},
		{
			name:   "client individual with extras",
			mode:   stomp.AckClientIndividual,
			extra:  map[string]string{"selector": "region = 'eu'"},
			wantID: "/topic/prices",
			want: map[string]string{
				"destination": "/topic/prices",
				"id":          "/topic/prices",
				"ack":         "client-individual",
				"selector":    "region = 'eu'",
			},
		},
		{
			name:   "caller id overrides",
			mode:   stomp.AckClient,
			extra:  map[string]string{"id": "sub-7"},
			wantID: "sub-7",
			want:   map[string]string{"destination": "/topic/prices", "id": "sub-7", "ack": "client"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := stomptest.NewTransport()
			c := newClient(t, tr)
			connect(t, c, tr, false)

			id, err := c.Subscribe(ctx, "/topic/prices", tt.mode, tt.extra)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)

			f := lastSent(t, tr)
			assert.Equal(t, frame.Subscribe, f.Command())
			assert.Equal(t, tt.want, f.Header().Map())
			assert.True(t, f.Body().IsEmpty())
		})
	}
}

func TestSubscribe_RequiresDestination(t *testing.T) {
	tr := stomptest.NewTransport()
	c := newClient(t, tr)
	connect(t, c, tr, false)

	_, err := c.Subscribe(context.Background(), "", stomp.AckAuto, nil)
	assert.Error(t, err)
	assert.Len(t, tr.Sent(), 1)
}

func TestUnsubscribe(t *testing.T) {
	tr := stomptest.NewTransport()
	c := newClient(t, tr)
	connect(t, c, tr, false)

	require.NoError(t, c.Unsubscribe(context.Background(), "/topic/prices", stomp.AckClient, map[string]string{"x-reason": "done"}))
	f := lastSent(t, tr)
	assert.Equal(t, frame.Unsubscribe, f.Command())
	assert.Equal(t, map[string]string{"id": "/topic/prices", "x-reason": "done"}, f.Header().Map())
}

func TestUniqueSubscriptionIDs(t *testing.T) {
	ctx := context.Background()
	tr := stomptest.NewTransport()
	c := newClient(t, tr, stomp.WithUniqueSubscriptionIDs())
	connect(t, c, tr, false)

	first, err := c.Subscribe(ctx, "/topic/prices", stomp.AckAuto, nil)
	require.NoError(t, err)
	second, err := c.Subscribe(ctx, "/topic/prices", stomp.AckAuto, nil)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, "sub-"))
	assert.Equal(t, "/topic/prices", lastSent(t, tr).Get(frame.HeaderDestination))

	require.NoError(t, c.Unsubscribe(ctx, "/topic/prices", stomp.AckAuto, nil))
	frames := tr.SentFrames()
	require.Len(t, frames, 5)
	assert.Equal(t, frame.Unsubscribe, frames[3].Command())
	assert.Equal(t, first, frames[3].Get(frame.HeaderID))
	assert.Equal(t, second, frames[4].Get(frame.HeaderID))
}

func TestUniqueSubscriptionIDs_UnsubscribeOneKeepsSiblings(t *testing.T) {
	ctx := context.Background()
	tr := stomptest.NewTransport()
	c := newClient(t, tr, stomp.WithUniqueSubscriptionIDs())
	connect(t, c, tr, false)

	first, err := c.Subscribe(ctx, "/q", stomp.AckAuto, nil)
	require.NoError(t, err)
	second, err := c.Subscribe(ctx, "/q", stomp.AckAuto, nil)
	require.NoError(t, err)

	require.NoError(t, c.Unsubscribe(ctx, "/q", stomp.AckAuto, map[string]string{"id": first}))
	assert.Equal(t, first, lastSent(t, tr).Get(frame.HeaderID))

	require.NoError(t, c.Unsubscribe(ctx, "/q", stomp.AckAuto, nil))
	f := lastSent(t, tr)
	assert.Equal(t, frame.Unsubscribe, f.Command())
	assert.Equal(t, second, f.Get(frame.HeaderID))
	assert.Len(t, tr.SentFrames(), 5)

	// Nothing recorded any more: falls back to the destination.
	require.NoError(t, c.Unsubscribe(ctx, "/q", stomp.AckAuto, nil))
	assert.Equal(t, "/q", lastSent(t, tr).Get(frame.HeaderID))
}

func TestAckNack(t *testing.T) {
	tr := stomptest.NewTransport()
	c := newClient(t, tr)
	connect(t, c, tr, false)
	ctx := context.Background()

	require.NoError(t, c.Ack(ctx, "m-1", ""))
	f := lastSent(t, tr)
	assert.Equal(t, frame.Ack, f.Command())
	assert.Equal(t, map[string]string{"id": "m-1"}, f.Header().Map())

	require.NoError(t, c.Nack(ctx, "m-2", "tx-1"))
	f = lastSent(t, tr)
	assert.Equal(t, frame.Nack, f.Command())
	assert.Equal(t, map[string]string{"id": "m-2", "transaction": "tx-1"}, f.Header().Map())
}

func TestTransactions(t *testing.T) {
	tr := stomptest.NewTransport()
	c := newClient(t, tr)
	connect(t, c, tr, false)
	ctx := context.Background()

	require.NoError(t, c.Begin(ctx, "tx-1"))
	require.NoError(t, c.SendText(ctx, "/queue/a", "in tx", stomp.SendOptions{Headers: map[string]string{"transaction": "tx-1"}}))
	require.NoError(t, c.Commit(ctx, "tx-1"))
	require.NoError(t, c.Begin(ctx, "tx-2"))
	require.NoError(t, c.Abort(ctx, "tx-2"))

	frames := tr.SentFrames()[1:]
	require.Len(t, frames, 5)
	assert.Equal(t, []frame.RequestCommand{frame.Begin, frame.Send, frame.Commit, frame.Begin, frame.Abort}, tr.SentCommands()[1:])
	for _, f := range frames {
		assert.NotEmpty(t, f.Get(frame.HeaderTransaction))
	}
	assert.Equal(t, map[string]string{"transaction": "tx-2"}, frames[4].Header().Map())
}

func TestSendText(t *testing.T) {
	tr := stomptest.NewTransport()
	c := newClient(t, tr)
	connect(t, c, tr, false)

	require.NoError(t, c.SendText(context.Background(), "/topic/x", "hello", stomp.SendOptions{}))
	assert.Equal(t, "SEND\ndestination:/topic/x\ncontent-type:text/plain\n\nhello\x00", tr.Sent()[1])

	require.NoError(t, c.SendText(context.Background(), "/topic/x", "a,b", stomp.SendOptions{
		ReceiptID: "r-1",
		Headers:   map[string]string{"content-type": "text/csv", "destination": "/topic/override"},
	}))
	f := lastSent(t, tr)
	assert.Equal(t, map[string]string{
		"destination":  "/topic/override",
		"receipt":      "r-1",
		"content-type": "text/csv",
	}, f.Header().Map())
}

func TestSendBinary(t *testing.T) {
	tr := stomptest.NewTransport()
	c := newClient(t, tr)
	connect(t, c, tr, false)

	require.NoError(t, c.SendBinary(context.Background(), "/queue/bin", []byte{0xde, 0xad, 0xbe, 0xef}, stomp.SendOptions{}))
	assert.Equal(t, "SEND\ndestination:/queue/bin\n\n3q2+7w==\x00", tr.Sent()[1])
}

func TestSendJSON(t *testing.T) {
	tr := stomptest.NewTransport()
	c := newClient(t, tr)
	connect(t, c, tr, false)

	payload := struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}{"ACME", 12.5}
	require.NoError(t, c.SendJSON(context.Background(), "/topic/prices", payload, stomp.SendOptions{
		Headers: map[string]string{"content-type": "text/plain"},
	}))

	f := lastSent(t, tr)
	assert.Equal(t, frame.ContentTypeJSON, f.Get(frame.HeaderContentType))
	assert.Equal(t, `{"symbol":"ACME","price":12.5}`, f.Body().Text())
}

type failingSerializer struct{}

func (failingSerializer) Serialize(any) (string, string, error) {
	return "", "", errors.New("unsupported value")
}

func TestSendJSON_SerializationFailure(t *testing.T) {
	tests := []struct {
		name  string
		opts  []stomp.Option
		value any
	}{
		{name: "json cannot encode channels", value: make(chan int)},
		{name: "custom serializer", opts: []stomp.Option{stomp.WithSerializer(failingSerializer{})}, value: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := stomptest.NewTransport()
			c := newClient(t, tr, tt.opts...)
			connect(t, c, tr, false)

			err := c.SendJSON(context.Background(), "/topic/x", tt.value, stomp.SendOptions{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, stomp.ErrSerialization))

			var serErr *stomp.SerializationError
			assert.True(t, errors.As(err, &serErr))
			assert.Len(t, tr.Sent(), 1)
		})
	}
}

package stomp

import (
	"context"
	"slices"

	"github.com/infigaming-com/go-stomp/frame"
)

type requestFrame = frame.Frame[frame.RequestCommand]

func buildSubscribe(destination, id string, mode AckMode, extra map[string]string) *requestFrame {
	h := frame.NewHeaderBuilder().
		Add(frame.HeaderDestination, destination).
		Add(frame.HeaderID, id).
		Add(frame.HeaderAck, mode.String()).
		Merge(extra).
		Build()
	return frame.New(frame.Subscribe, h)
}

func buildUnsubscribe(id string, extra map[string]string) *requestFrame {
	h := frame.NewHeaderBuilder().Add(frame.HeaderID, id).Merge(extra).Build()
	return frame.New(frame.Unsubscribe, h)
}

func buildAck(cmd frame.RequestCommand, messageID, transaction string) *requestFrame {
	h := frame.NewHeaderBuilder().
		Add(frame.HeaderID, messageID).
		AddIf(frame.HeaderTransaction, transaction).
		Build()
	return frame.New(cmd, h)
}

func buildTransaction(cmd frame.RequestCommand, name string) *requestFrame {
	return frame.New(cmd, frame.NewHeaderBuilder().Add(frame.HeaderTransaction, name).Build())
}

func sendHeader(destination string, opts SendOptions) frame.Header {
	return frame.NewHeaderBuilder().
		Add(frame.HeaderDestination, destination).
		AddIf(frame.HeaderReceipt, opts.ReceiptID).
		Merge(opts.Headers).
		Build()
}

// Subscribe sends SUBSCRIBE and returns the subscription id, which MESSAGE
// frames carry in their subscription header. The id is the destination itself
// unless WithUniqueSubscriptionIDs is set or extra carries an id.
func (c *Client) Subscribe(ctx context.Context, destination string, mode AckMode, extra map[string]string) (string, error) {
	if destination == "" {
		return "", invalidArgument("destination is required")
	}
	id := destination
	if c.opts.uniqueSubIDs {
		id = "sub-" + newID()
	}
	if v, ok := extra[string(frame.HeaderID)]; ok {
		id = v
	}
	if err := c.send(ctx, buildSubscribe(destination, id, mode, extra)); err != nil {
		return "", err
	}
	if c.opts.uniqueSubIDs {
		c.mu.Lock()
		c.subscriptions[destination] = append(c.subscriptions[destination], id)
		c.mu.Unlock()
	}
	return id, nil
}

// Unsubscribe sends UNSUBSCRIBE for every subscription to destination made in
// this session, or only for the id given in extra. mode is not part of the
// frame.
func (c *Client) Unsubscribe(ctx context.Context, destination string, mode AckMode, extra map[string]string) error {
	if destination == "" {
		return invalidArgument("destination is required")
	}
	ids := []string{destination}
	if id, ok := extra[string(frame.HeaderID)]; ok {
		ids = []string{id}
	} else if c.opts.uniqueSubIDs {
		c.mu.Lock()
		if recorded := c.subscriptions[destination]; len(recorded) > 0 {
			ids = slices.Clone(recorded)
		}
		c.mu.Unlock()
	}
	for _, id := range ids {
		if err := c.send(ctx, buildUnsubscribe(id, extra)); err != nil {
			return err
		}
		c.forgetSubscription(destination, id)
	}
	return nil
}

func (c *Client) forgetSubscription(destination, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	recorded := c.subscriptions[destination]
	if i := slices.Index(recorded, id); i >= 0 {
		recorded = slices.Delete(recorded, i, i+1)
	}
	if len(recorded) == 0 {
		delete(c.subscriptions, destination)
		return
	}
	c.subscriptions[destination] = recorded
}

// Ack acknowledges a message. transaction may be empty.
func (c *Client) Ack(ctx context.Context, messageID, transaction string) error {
	return c.send(ctx, buildAck(frame.Ack, messageID, transaction))
}

func (c *Client) Nack(ctx context.Context, messageID, transaction string) error {
	return c.send(ctx, buildAck(frame.Nack, messageID, transaction))
}

func (c *Client) Begin(ctx context.Context, name string) error {
	return c.send(ctx, buildTransaction(frame.Begin, name))
}

func (c *Client) Commit(ctx context.Context, name string) error {
	return c.send(ctx, buildTransaction(frame.Commit, name))
}

func (c *Client) Abort(ctx context.Context, name string) error {
	return c.send(ctx, buildTransaction(frame.Abort, name))
}

// SendText sends a text body. content-type defaults to text/plain.
func (c *Client) SendText(ctx context.Context, destination, body string, opts SendOptions) error {
	return c.send(ctx, frame.NewText(frame.Send, sendHeader(destination, opts), body))
}

// SendBinary sends a body that travels base64 encoded.
func (c *Client) SendBinary(ctx context.Context, destination string, body []byte, opts SendOptions) error {
	return c.send(ctx, frame.NewBinary(frame.Send, sendHeader(destination, opts), body))
}

// SendJSON serializes v with the configured Serializer and sends it as text
// with the content type the serializer reports. Nothing is sent when
// serialization fails.
func (c *Client) SendJSON(ctx context.Context, destination string, v any, opts SendOptions) error {
	body, contentType, err := c.opts.serializer.Serialize(v)
	if err != nil {
		return newSerializationError(err)
	}
	h := sendHeader(destination, opts)
	if contentType != "" {
		h.Set(string(frame.HeaderContentType), contentType)
	}
	return c.send(ctx, frame.NewText(frame.Send, h, body))
}

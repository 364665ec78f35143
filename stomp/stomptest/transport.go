// Package stomptest provides in-memory collaborators for exercising a
// stomp.Client without a network.
package stomptest

import (
	"context"
	"sync"

	"github.com/infigaming-com/go-stomp/frame"
	"github.com/infigaming-com/go-stomp/stomp"
)

// Transport records what the client sends and lets a test play the broker.
// Open never connects by itself; call AcceptOpen.
type Transport struct {
	mu        sync.Mutex
	listener  stomp.TransportListener
	opens     []stomp.OpenRequest
	sent      []string
	pings     int
	closes    []int
	openErr   error
	sendErr   error
	pingErr   error
	autoOpen  bool
	autoReply bool
	hold      chan struct{}
}

func NewTransport() *Transport {
	return &Transport{}
}

// AutoOpen makes every Open report OnOpen asynchronously.
func (t *Transport) AutoOpen() *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.autoOpen = true
	return t
}

// AutoConnect answers every CONNECT with CONNECTED and every frame asking for
// a receipt with RECEIPT.
func (t *Transport) AutoConnect() *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.autoReply = true
	return t
}

func (t *Transport) FailOpen(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.openErr = err
}

// HoldOpen makes later Open calls block, as a slow dial would, until release
// is called.
func (t *Transport) HoldOpen() (release func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	hold := make(chan struct{})
	t.hold = hold
	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			if t.hold == hold {
				t.hold = nil
			}
			t.mu.Unlock()
			close(hold)
		})
	}
}

func (t *Transport) FailSend(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendErr = err
}

func (t *Transport) FailPing(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pingErr = err
}

func (t *Transport) Open(_ context.Context, req stomp.OpenRequest, l stomp.TransportListener) error {
	t.mu.Lock()
	t.opens = append(t.opens, req)
	if hold := t.hold; hold != nil {
		t.mu.Unlock()
		<-hold
		t.mu.Lock()
	}
	if t.openErr != nil {
		err := t.openErr
		t.mu.Unlock()
		return err
	}
	t.listener = l
	auto := t.autoOpen
	t.mu.Unlock()
	if auto {
		go l.OnOpen("v12.stomp")
	}
	return nil
}

func (t *Transport) Send(_ context.Context, text string) error {
	t.mu.Lock()
	if t.sendErr != nil {
		err := t.sendErr
		t.mu.Unlock()
		return err
	}
	t.sent = append(t.sent, text)
	reply, l := t.autoReply, t.listener
	t.mu.Unlock()
	if reply && l != nil {
		go t.reply(l, text)
	}
	return nil
}

func (t *Transport) reply(l stomp.TransportListener, text string) {
	f, err := frame.DecodeRequest(text)
	if err != nil {
		return
	}
	if f.Command() == frame.Connect {
		l.OnText("CONNECTED\nversion:1.2\nsession:test-session\nserver:stomptest/1.0\n\n\x00")
		return
	}
	if id, ok := f.Lookup(frame.HeaderReceipt); ok {
		l.OnText("RECEIPT\nreceipt-id:" + id + "\n\n\x00")
	}
}

func (t *Transport) Ping(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pingErr != nil {
		return t.pingErr
	}
	t.pings++
	return nil
}

func (t *Transport) Close(code int, _ string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closes = append(t.closes, code)
	return nil
}

// Listener returns the listener of the latest Open.
func (t *Transport) Listener() stomp.TransportListener {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.listener
}

func (t *Transport) AcceptOpen() {
	if l := t.Listener(); l != nil {
		l.OnOpen("v12.stomp")
	}
}

// Deliver hands raw frame text to the client as a text message.
func (t *Transport) Deliver(text string) {
	if l := t.Listener(); l != nil {
		l.OnText(text)
	}
}

func (t *Transport) DeliverBinary(data []byte) {
	if l := t.Listener(); l != nil {
		l.OnBinary(data)
	}
}

// Drop simulates the broker closing the connection.
func (t *Transport) Drop(code int, reason string) {
	if l := t.Listener(); l != nil {
		l.OnClose(code, reason)
	}
}

// Fail simulates a transport error.
func (t *Transport) Fail(err error) {
	if l := t.Listener(); l != nil {
		l.OnError(err)
	}
}

func (t *Transport) Opens() []stomp.OpenRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]stomp.OpenRequest(nil), t.opens...)
}

func (t *Transport) Sent() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.sent...)
}

// SentFrames decodes everything sent so far.
func (t *Transport) SentFrames() []*frame.Frame[frame.RequestCommand] {
	var frames []*frame.Frame[frame.RequestCommand]
	for _, text := range t.Sent() {
		if f, err := frame.DecodeRequest(text); err == nil {
			frames = append(frames, f)
		}
	}
	return frames
}

// SentCommands lists the commands sent so far, in order.
func (t *Transport) SentCommands() []frame.RequestCommand {
	var cmds []frame.RequestCommand
	for _, f := range t.SentFrames() {
		cmds = append(cmds, f.Command())
	}
	return cmds
}

func (t *Transport) Pings() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pings
}

func (t *Transport) Closes() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]int(nil), t.closes...)
}

package stomptest

import (
	"sync"

	"github.com/infigaming-com/go-stomp/stomp"
)

// Recorder collects everything a Client dispatches.
type Recorder struct {
	mu       sync.Mutex
	events   []stomp.ConnectionEvent
	messages []stomp.Message
	receipts []stomp.Receipt
}

func NewRecorder(c *stomp.Client) *Recorder {
	r := &Recorder{}
	c.OnEvent(func(ev stomp.ConnectionEvent) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, ev)
	})
	c.OnMessage(func(m stomp.Message) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.messages = append(r.messages, m)
	})
	c.OnReceipt(func(rc stomp.Receipt) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.receipts = append(r.receipts, rc)
	})
	return r
}

func (r *Recorder) Events() []stomp.ConnectionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]stomp.ConnectionEvent(nil), r.events...)
}

func (r *Recorder) Kinds() []stomp.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]stomp.EventKind, 0, len(r.events))
	for _, ev := range r.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

func (r *Recorder) Count(kind stomp.EventKind) int {
	n := 0
	for _, k := range r.Kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

// Last returns the most recent event of kind, if any.
func (r *Recorder) Last(kind stomp.EventKind) (stomp.ConnectionEvent, bool) {
	events := r.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind == kind {
			return events[i], true
		}
	}
	return stomp.ConnectionEvent{}, false
}

func (r *Recorder) Messages() []stomp.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]stomp.Message(nil), r.messages...)
}

func (r *Recorder) Receipts() []stomp.Receipt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]stomp.Receipt(nil), r.receipts...)
}

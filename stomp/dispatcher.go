package stomp

import (
	"context"
	"slices"
	"sync"
)

type listener[T any] struct {
	id uint64
	fn func(T)
}

// broadcaster fans a value out to the listeners registered when it was
// published. Delivery happens on the executor, one job per value, so a serial
// executor keeps values in publish order.
type broadcaster[T any] struct {
	mu        sync.Mutex
	nextID    uint64
	listeners []listener[T]
	exec      Executor
}

func newBroadcaster[T any](exec Executor) *broadcaster[T] {
	return &broadcaster[T]{exec: exec}
}

func (b *broadcaster[T]) subscribe(fn func(T)) (cancel func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, listener[T]{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.listeners = slices.DeleteFunc(b.listeners, func(l listener[T]) bool { return l.id == id })
			b.mu.Unlock()
		})
	}
}

func (b *broadcaster[T]) publish(v T) {
	b.mu.Lock()
	snapshot := slices.Clone(b.listeners)
	b.mu.Unlock()
	if len(snapshot) == 0 {
		return
	}
	b.exec.Execute(func() {
		for _, l := range snapshot {
			l.fn(v)
		}
	})
}

func (b *broadcaster[T]) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// stream adapts a broadcaster to a channel that is closed when ctx is done.
// A full channel blocks the executor until the reader catches up or ctx ends.
func stream[T any](ctx context.Context, b *broadcaster[T], buffer int) <-chan T {
	ch := make(chan T, buffer)
	var (
		mu     sync.Mutex
		closed bool
	)
	cancel := b.subscribe(func(v T) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- v:
		case <-ctx.Done():
		}
	})
	go func() {
		<-ctx.Done()
		cancel()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()
	return ch
}

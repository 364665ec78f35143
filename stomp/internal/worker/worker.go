// Package worker provides the serial execution context used to deliver events
// to subscribers.
package worker

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("worker: queue closed")

// Queue runs submitted jobs one at a time, in submission order, on a single
// goroutine. Submit never blocks: the backlog is unbounded.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	jobs    []func()
	closed  bool
	once    sync.Once
	done    chan struct{}
	onPanic func(any)
}

func New(onPanic func(any)) *Queue {
	q := &Queue{
		done:    make(chan struct{}),
		onPanic: onPanic,
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

func (q *Queue) Submit(fn func()) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.jobs = append(q.jobs, fn)
	q.cond.Signal()
	return nil
}

// Execute is Submit without the error, for use as an executor.
func (q *Queue) Execute(fn func()) {
	_ = q.Submit(fn)
}

// Close stops accepting jobs. Jobs already queued still run.
func (q *Queue) Close() {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.cond.Broadcast()
		q.mu.Unlock()
	})
}

// Wait blocks until Close was called and the backlog is drained.
func (q *Queue) Wait() {
	<-q.done
}

// Done is closed once the queue has drained after Close.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.jobs) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.jobs) == 0 {
			q.mu.Unlock()
			return
		}
		fn := q.jobs[0]
		q.jobs[0] = nil
		q.jobs = q.jobs[1:]
		q.mu.Unlock()
		q.call(fn)
	}
}

func (q *Queue) call(fn func()) {
	defer func() {
		if r := recover(); r != nil && q.onPanic != nil {
			q.onPanic(r)
		}
	}()
	fn()
}

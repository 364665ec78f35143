package stomp

import (
	"context"
	"time"
)

// task runs fn after every delay returned by next until stopped. fn receives a
// context that is cancelled by stop; callers check it under the client lock to
// discard ticks that raced with a stop.
type task struct {
	cancel context.CancelFunc
}

func startTask(next func() time.Duration, once bool, fn func(ctx context.Context)) *task {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for {
			timer := time.NewTimer(next())
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			fn(ctx)
			if once || ctx.Err() != nil {
				return
			}
		}
	}()
	return &task{cancel: cancel}
}

func every(d time.Duration, fn func(ctx context.Context)) *task {
	return startTask(func() time.Duration { return d }, false, fn)
}

func after(d time.Duration, fn func(ctx context.Context)) *task {
	return startTask(func() time.Duration { return d }, true, fn)
}

func (t *task) stop() {
	if t != nil {
		t.cancel()
	}
}

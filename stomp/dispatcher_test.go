package stomp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infigaming-com/go-stomp/stomp/internal/worker"
)

func TestBroadcaster_OrderAndFanOut(t *testing.T) {
	q := worker.New(nil)
	b := newBroadcaster[int](q)

	var mu sync.Mutex
	var first, second []int
	b.subscribe(func(v int) { mu.Lock(); first = append(first, v); mu.Unlock() })
	b.subscribe(func(v int) { mu.Lock(); second = append(second, v); mu.Unlock() })

	for i := 0; i < 100; i++ {
		b.publish(i)
	}
	q.Close()
	q.Wait()

	require.Len(t, first, 100)
	assert.Equal(t, first, second)
	for i, v := range first {
		assert.Equal(t, i, v)
	}
}

func TestBroadcaster_NoReplayAndCancel(t *testing.T) {
	q := worker.New(nil)
	b := newBroadcaster[string](q)

	b.publish("before")
	var got []string
	cancel := b.subscribe(func(v string) { got = append(got, v) })
	b.publish("during")
	cancel()
	cancel()
	b.publish("after")
	q.Close()
	q.Wait()

	assert.Equal(t, []string{"during"}, got)
	assert.Zero(t, b.count())
}

func TestStream(t *testing.T) {
	q := worker.New(nil)
	defer q.Close()
	b := newBroadcaster[int](q)

	ctx, cancel := context.WithCancel(context.Background())
	ch := stream(ctx, b, 1)
	require.Eventually(t, func() bool { return b.count() == 1 }, time.Second, time.Millisecond)

	b.publish(1)
	b.publish(2)
	assert.Equal(t, 1, <-ch)
	assert.Equal(t, 2, <-ch)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, time.Millisecond)
	assert.Zero(t, b.count())
}

func TestStream_BlockedReaderReleasedByCancel(t *testing.T) {
	q := worker.New(nil)
	b := newBroadcaster[int](q)

	ctx, cancel := context.WithCancel(context.Background())
	_ = stream(ctx, b, 0)
	b.publish(1)

	cancel()
	q.Close()
	select {
	case <-q.Done():
	case <-time.After(time.Second):
		t.Fatal("executor stayed blocked on an abandoned stream")
	}
}

func TestTask_StopPreventsFurtherRuns(t *testing.T) {
	var mu sync.Mutex
	runs := 0
	tk := every(5*time.Millisecond, func(context.Context) {
		mu.Lock()
		runs++
		mu.Unlock()
	})
	require.Eventually(t, func() bool { mu.Lock(); defer mu.Unlock(); return runs >= 2 }, time.Second, time.Millisecond)
	tk.stop()
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	stopped := runs
	mu.Unlock()
	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, stopped, runs)

	var nilTask *task
	assert.NotPanics(t, nilTask.stop)
}

func TestTask_AfterRunsOnce(t *testing.T) {
	done := make(chan struct{}, 2)
	after(5*time.Millisecond, func(context.Context) { done <- struct{}{} })
	<-done
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, done)
}

package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// next mirrors the reconnect loop: wait, then attempt.
func next(s *Schedule) time.Duration {
	d := s.Delay()
	s.Attempt()
	return d
}

func TestFixedInterval(t *testing.T) {
	b := New(Config{Initial: 3 * time.Second, Multiplier: 1})
	for i := 0; i < 5; i++ {
		assert.Equal(t, 3*time.Second, next(b))
	}
	assert.Equal(t, 5, b.Attempts())
}

func TestDefaults(t *testing.T) {
	b := New(Config{})
	assert.Equal(t, 3*time.Second, next(b))
	assert.Equal(t, 3*time.Second, next(b))
}

func TestGrowthIsCapped(t *testing.T) {
	b := New(Config{Initial: 100 * time.Millisecond, Max: 350 * time.Millisecond, Multiplier: 2})
	assert.Equal(t, 100*time.Millisecond, next(b))
	assert.Equal(t, 200*time.Millisecond, next(b))
	assert.Equal(t, 350*time.Millisecond, next(b))
	assert.Equal(t, 350*time.Millisecond, next(b))

	b.Reset()
	assert.Equal(t, 0, b.Attempts())
	assert.Equal(t, 100*time.Millisecond, next(b))
}

func TestDelayGrowsOnlyWithAttempts(t *testing.T) {
	b := New(Config{Initial: 100 * time.Millisecond, Max: time.Second, Multiplier: 2})
	for i := 0; i < 10; i++ {
		assert.Equal(t, 100*time.Millisecond, b.Delay())
	}
	assert.Equal(t, 0, b.Attempts())

	assert.Equal(t, 1, b.Attempt())
	assert.Equal(t, 200*time.Millisecond, b.Delay())
	assert.Equal(t, 200*time.Millisecond, b.Delay())
}

func TestJitterBounds(t *testing.T) {
	b := New(Config{Initial: time.Second, Multiplier: 1, Jitter: 0.2})
	for i := 0; i < 100; i++ {
		d := next(b)
		assert.GreaterOrEqual(t, d, 800*time.Millisecond)
		assert.LessOrEqual(t, d, 1200*time.Millisecond)
	}
}

func TestMultiplierBelowOneIsFixed(t *testing.T) {
	b := New(Config{Initial: time.Second, Multiplier: 0.5})
	assert.Equal(t, time.Second, next(b))
	assert.Equal(t, time.Second, next(b))
}

// Package backoff computes reconnect intervals. A multiplier of 1 yields a
// fixed interval.
package backoff

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

type Config struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

// Schedule hands out the delay before each reconnect attempt. The n-th delay
// is Initial*Multiplier^(n-1), capped at Max, then spread by ±Jitter.
type Schedule struct {
	cfg Config

	mu    sync.Mutex
	tries int
}

func New(cfg Config) *Schedule {
	if cfg.Initial <= 0 {
		cfg.Initial = 3 * time.Second
	}
	cfg.Multiplier = max(cfg.Multiplier, 1)
	cfg.Max = max(cfg.Max, cfg.Initial)
	cfg.Jitter = min(max(cfg.Jitter, 0), 1)
	return &Schedule{cfg: cfg}
}

// Delay returns the wait before the next attempt. It only grows once Attempt
// is called, so polling it while attempts are held back keeps it steady.
func (s *Schedule) Delay() time.Duration {
	s.mu.Lock()
	n := s.tries + 1
	s.mu.Unlock()
	return s.delay(n)
}

// Attempt counts an attempt and returns its number, starting at 1.
func (s *Schedule) Attempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tries++
	return s.tries
}

func (s *Schedule) delay(attempt int) time.Duration {
	d := float64(s.cfg.Initial) * math.Pow(s.cfg.Multiplier, float64(attempt-1))
	d = min(d, float64(s.cfg.Max))
	if s.cfg.Jitter > 0 {
		d += d * s.cfg.Jitter * (2*rand.Float64() - 1)
	}
	if d <= 0 {
		return s.cfg.Initial
	}
	return time.Duration(d)
}

// Attempts is the number of attempts counted since the last Reset.
func (s *Schedule) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tries
}

func (s *Schedule) Reset() {
	s.mu.Lock()
	s.tries = 0
	s.mu.Unlock()
}

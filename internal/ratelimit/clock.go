package ratelimit

import (
	"sync"
	"time"
)

// Clock abstracts the time source so limiter behavior can be tested
// deterministically without sleeps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock. Safe to share across goroutines.
type SystemClock struct{}

// NewSystemClock returns a stateless system clock.
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a controllable clock for tests. Time only moves when the
// test advances it, so window expiry can be simulated exactly.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a manual clock starting at the given instant.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Package ratelimit implements a per-client fixed-window request limiter.
//
// Each client key owns a counter that resets lazily when a full window has
// elapsed since the last observed request. Steady traffic inside the window
// keeps extending it, which is the classic fixed-window quirk rather than
// sliding-log precision; rejection timing depends on it, so it is preserved
// deliberately.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Policy is the immutable limiter configuration.
type Policy struct {
	// MaxRequests is the admission ceiling per window. Must be positive.
	MaxRequests int

	// Window is the counting window length. Must be positive.
	Window time.Duration
}

// Validate reports whether the policy values are usable.
func (p Policy) Validate() error {
	if p.MaxRequests <= 0 {
		return fmt.Errorf("max requests must be > 0, got %d", p.MaxRequests)
	}
	if p.Window <= 0 {
		return fmt.Errorf("window must be > 0, got %v", p.Window)
	}
	return nil
}

// Decision is the outcome of one admission check. The header fields are
// populated on both the admitted and the rejected path.
type Decision struct {
	Allowed bool

	// Limit echoes Policy.MaxRequests.
	Limit int

	// Remaining is how many admissions are left in the current window,
	// never negative.
	Remaining int

	// Reset is the epoch second at which the current window is expected
	// to expire, computed from the most recent observation.
	Reset int64
}

type counter struct {
	count       int
	windowStart time.Time
}

// Limiter tracks request counters per client key. It performs no I/O and is
// safe for concurrent use; the counter read-modify-write is a single
// critical section so two racing requests at the limit boundary cannot both
// be admitted.
type Limiter struct {
	policy Policy
	clock  Clock

	mu      sync.Mutex
	clients map[string]*counter
}

// NewLimiter creates a limiter with the given policy. A nil clock defaults
// to the system clock.
func NewLimiter(policy Policy, clock Clock) (*Limiter, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate limit policy: %w", err)
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	return &Limiter{
		policy:  policy,
		clock:   clock,
		clients: make(map[string]*counter),
	}, nil
}

// Policy returns the limiter's configuration.
func (l *Limiter) Policy() Policy {
	return l.policy
}

// Allow decides whether the request identified by key is admitted.
//
// A key seen for the first time, or one whose last request is more than a
// full window old, starts a fresh window with count 1. Inside a live window
// the counter increments until it reaches the ceiling; beyond that the
// request is rejected and the count stays pinned at the limit. Every call
// stamps the window to now, so the reset header always reflects the most
// recent observation.
func (l *Limiter) Allow(key string) Decision {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[key]
	if !ok {
		c = &counter{}
		l.clients[key] = c
	}

	allowed := true
	if now.Sub(c.windowStart) > l.policy.Window {
		c.count = 1
	} else if c.count < l.policy.MaxRequests {
		c.count++
	} else {
		allowed = false
	}
	c.windowStart = now

	remaining := l.policy.MaxRequests - c.count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   allowed,
		Limit:     l.policy.MaxRequests,
		Remaining: remaining,
		Reset:     now.Add(l.policy.Window).Unix(),
	}
}

// Len returns the number of tracked client keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Sweep drops counters whose window expired more than a full window ago and
// returns how many were evicted. The observed upstream behavior never evicts;
// this bounds memory for long-running deployments without changing any
// admission decision, since a swept key would have started a fresh window
// anyway.
func (l *Limiter) Sweep() int {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	evicted := 0
	for key, c := range l.clients {
		if now.Sub(c.windowStart) > l.policy.Window {
			delete(l.clients, key)
			evicted++
		}
	}
	return evicted
}

// StartJanitor sweeps stale counters every interval until ctx is cancelled.
func (l *Limiter) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}

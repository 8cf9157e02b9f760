package ratelimit_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prsentry/prsentry/internal/ratelimit"
)

func testClock() *ratelimit.ManualClock {
	return ratelimit.NewManualClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
}

func TestNewLimiter_RejectsInvalidPolicy(t *testing.T) {
	_, err := ratelimit.NewLimiter(ratelimit.Policy{MaxRequests: 0, Window: time.Minute}, nil)
	require.Error(t, err)

	_, err = ratelimit.NewLimiter(ratelimit.Policy{MaxRequests: 10, Window: 0}, nil)
	require.Error(t, err)
}

func TestAllow_RemainingDecreasesUnderLimit(t *testing.T) {
	clk := testClock()
	limiter, err := ratelimit.NewLimiter(ratelimit.Policy{MaxRequests: 5, Window: time.Minute}, clk)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		d := limiter.Allow("10.0.0.1")
		assert.True(t, d.Allowed, "request %d should be admitted", i)
		assert.Equal(t, 5, d.Limit)
		assert.Equal(t, 5-i, d.Remaining, "remaining after request %d", i)
	}
}

func TestAllow_RejectsAboveLimit(t *testing.T) {
	clk := testClock()
	limiter, err := ratelimit.NewLimiter(ratelimit.Policy{MaxRequests: 3, Window: time.Minute}, clk)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.True(t, limiter.Allow("10.0.0.1").Allowed)
	}

	d := limiter.Allow("10.0.0.1")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	// The count stays pinned at the limit across further rejections.
	d = limiter.Allow("10.0.0.1")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
}

func TestAllow_ResetAfterWindowElapses(t *testing.T) {
	clk := testClock()
	limiter, err := ratelimit.NewLimiter(ratelimit.Policy{MaxRequests: 2, Window: time.Minute}, clk)
	require.NoError(t, err)

	require.True(t, limiter.Allow("10.0.0.1").Allowed)
	require.True(t, limiter.Allow("10.0.0.1").Allowed)
	require.False(t, limiter.Allow("10.0.0.1").Allowed)

	clk.Advance(time.Minute + time.Second)

	d := limiter.Allow("10.0.0.1")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining, "counter should restart at 1 in the fresh window")
}

func TestAllow_ClientsAreIndependent(t *testing.T) {
	clk := testClock()
	limiter, err := ratelimit.NewLimiter(ratelimit.Policy{MaxRequests: 1, Window: time.Minute}, clk)
	require.NoError(t, err)

	require.True(t, limiter.Allow("10.0.0.1").Allowed)
	require.False(t, limiter.Allow("10.0.0.1").Allowed)

	assert.True(t, limiter.Allow("10.0.0.2").Allowed, "a different client gets its own counter")
}

func TestAllow_ResetReflectsLatestObservation(t *testing.T) {
	clk := testClock()
	window := time.Minute
	limiter, err := ratelimit.NewLimiter(ratelimit.Policy{MaxRequests: 10, Window: window}, clk)
	require.NoError(t, err)

	d := limiter.Allow("10.0.0.1")
	assert.Equal(t, clk.Now().Add(window).Unix(), d.Reset)

	clk.Advance(10 * time.Second)
	d = limiter.Allow("10.0.0.1")
	assert.Equal(t, clk.Now().Add(window).Unix(), d.Reset, "reset advances with each observation")
}

func TestAllow_ConcurrentRequestsAtBoundaryAdmitExactlyOne(t *testing.T) {
	clk := testClock()
	limiter, err := ratelimit.NewLimiter(ratelimit.Policy{MaxRequests: 5, Window: time.Minute}, clk)
	require.NoError(t, err)

	// Consume all but one slot.
	for i := 0; i < 4; i++ {
		require.True(t, limiter.Allow("10.0.0.1").Allowed)
	}

	var wg sync.WaitGroup
	results := make(chan bool, 2)
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results <- limiter.Allow("10.0.0.1").Allowed
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	admitted := 0
	for ok := range results {
		if ok {
			admitted++
		}
	}
	assert.Equal(t, 1, admitted, "exactly one of two racing requests may take the last slot")
}

func TestAllow_ConcurrentMixedClients(t *testing.T) {
	limiter, err := ratelimit.NewLimiter(ratelimit.Policy{MaxRequests: 50, Window: time.Minute}, testClock())
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := map[string]int{}
	for _, key := range []string{"a", "b", "c"} {
		key := key
		for i := 0; i < 80; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow(key).Allowed {
					mu.Lock()
					admitted[key]++
					mu.Unlock()
				}
			}()
		}
	}
	wg.Wait()

	for key, n := range admitted {
		assert.Equal(t, 50, n, "client %s must be admitted exactly up to the limit", key)
	}
}

func TestSweep_EvictsStaleCounters(t *testing.T) {
	clk := testClock()
	limiter, err := ratelimit.NewLimiter(ratelimit.Policy{MaxRequests: 5, Window: time.Minute}, clk)
	require.NoError(t, err)

	limiter.Allow("10.0.0.1")
	clk.Advance(30 * time.Second)
	limiter.Allow("10.0.0.2")
	require.Equal(t, 2, limiter.Len())

	// Only the first client is beyond a full window of inactivity.
	clk.Advance(45 * time.Second)
	assert.Equal(t, 1, limiter.Sweep())
	assert.Equal(t, 1, limiter.Len())

	// A swept client simply starts over.
	d := limiter.Allow("10.0.0.1")
	assert.True(t, d.Allowed)
	assert.Equal(t, 4, d.Remaining)
}

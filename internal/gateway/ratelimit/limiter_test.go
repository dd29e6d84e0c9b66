package ratelimit_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusauth/internal/gateway/ratelimit"
	"campusauth/pkg/clock"
)

const clientIP = "203.0.113.7"

func limiterFixture(limit int) (*ratelimit.Limiter, *clock.Fake) {
	clk := clock.NewFake(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	return ratelimit.New(limit, clk), clk
}

func TestLimiterAllowsUpToLimit(t *testing.T) {
	limiter, _ := limiterFixture(100)

	for i := 0; i < 100; i++ {
		require.True(t, limiter.Allow(clientIP), "request %d should be allowed", i+1)
	}

	assert.False(t, limiter.Allow(clientIP))
	assert.Equal(t, 0, limiter.Remaining(clientIP))
}

func TestLimiterResetsOnWindowBoundary(t *testing.T) {
	limiter, clk := limiterFixture(5)

	for i := 0; i < 5; i++ {
		require.True(t, limiter.Allow(clientIP))
	}
	require.False(t, limiter.Allow(clientIP))

	// Следующее минутное окно начинается с чистого счетчика.
	clk.Advance(time.Minute)

	assert.True(t, limiter.Allow(clientIP))
	assert.Equal(t, 4, limiter.Remaining(clientIP))
}

func TestLimiterTracksClientsIndependently(t *testing.T) {
	limiter, _ := limiterFixture(2)

	require.True(t, limiter.Allow("198.51.100.1"))
	require.True(t, limiter.Allow("198.51.100.1"))
	require.False(t, limiter.Allow("198.51.100.1"))

	assert.True(t, limiter.Allow("198.51.100.2"))
	assert.Equal(t, 1, limiter.Remaining("198.51.100.2"))
}

func TestLimiterRemainingForUnseenClient(t *testing.T) {
	limiter, _ := limiterFixture(10)

	assert.Equal(t, 10, limiter.Remaining("unseen"))
	assert.Equal(t, 10, limiter.Limit())
}

func TestLimiterDefaultsOnInvalidLimit(t *testing.T) {
	limiter, _ := limiterFixture(0)

	assert.Equal(t, ratelimit.DefaultRequestsPerMinute, limiter.Limit())

	limiter, _ = limiterFixture(-5)
	assert.Equal(t, ratelimit.DefaultRequestsPerMinute, limiter.Limit())
}

func TestLimiterRetryAfter(t *testing.T) {
	limiter, clk := limiterFixture(1)

	clk.Set(time.Date(2025, 6, 15, 12, 0, 40, 0, time.UTC))

	assert.Equal(t, 20*time.Second, limiter.RetryAfter())

	clk.Set(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Minute, limiter.RetryAfter())
}

func TestLimiterConcurrentRequests(t *testing.T) {
	limiter, _ := limiterFixture(100)

	var allowed atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 150; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow(clientIP) {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	// Ровно лимит запросов проходит, остальные отклоняются.
	assert.Equal(t, int64(100), allowed.Load())
}

func TestLimiterSweepDropsStaleWindows(t *testing.T) {
	limiter, clk := limiterFixture(10)

	for i := 0; i < 20; i++ {
		limiter.Allow(fmt.Sprintf("192.0.2.%d", i))
	}

	// После сдвига на несколько окон старые счетчики вычищаются,
	// а клиенты получают свежий лимит.
	clk.Advance(5 * time.Minute)
	require.True(t, limiter.Allow("192.0.2.1"))
	assert.Equal(t, 9, limiter.Remaining("192.0.2.1"))
}

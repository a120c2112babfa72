package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/config"
)

func testConfig(ceiling int) config.RateLimitConfig {
	return config.RateLimitConfig{
		RequestsPerMinute: ceiling,
		Window:            time.Minute,
	}
}

func TestAdmit_CeilingWithinWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLimiterWithClock(testConfig(5), func() time.Time { return now })

	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Admit("1.2.3.4")
		assert.True(t, allowed, "request %d should be admitted", i+1)
	}

	allowed, retryAfter := limiter.Admit("1.2.3.4")
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, 0)
	assert.LessOrEqual(t, retryAfter, 60)
}

func TestAdmit_WindowReset(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLimiterWithClock(testConfig(2), func() time.Time { return now })

	limiter.Admit("client")
	limiter.Admit("client")
	allowed, _ := limiter.Admit("client")
	assert.False(t, allowed)

	now = now.Add(61 * time.Second)
	allowed, _ = limiter.Admit("client")
	assert.True(t, allowed)
}

func TestAdmit_IdentifiersIndependent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLimiterWithClock(testConfig(1), func() time.Time { return now })

	allowed, _ := limiter.Admit("a")
	assert.True(t, allowed)
	allowed, _ = limiter.Admit("b")
	assert.True(t, allowed)
	allowed, _ = limiter.Admit("a")
	assert.False(t, allowed)
}

func TestAdmit_RetryAfterCountsDown(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLimiterWithClock(testConfig(1), func() time.Time { return now })

	limiter.Admit("client")
	_, retryAfter := limiter.Admit("client")
	assert.Equal(t, 60, retryAfter)

	now = now.Add(45 * time.Second)
	_, retryAfter = limiter.Admit("client")
	assert.Equal(t, 15, retryAfter)
}

func TestSweep_RemovesExpiredEntries(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLimiterWithClock(testConfig(10), func() time.Time { return now })

	limiter.Admit("a")
	limiter.Admit("b")
	assert.Equal(t, 2, limiter.Len())

	now = now.Add(2 * time.Minute)
	limiter.Admit("c")
	limiter.Sweep()
	assert.Equal(t, 1, limiter.Len())
}

func TestAdmit_ConcurrentSameIdentifier(t *testing.T) {
	limiter := NewLimiterWithClock(testConfig(50), time.Now)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Admit("shared"); ok {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, admitted)
}

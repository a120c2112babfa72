package ratelimit

import (
	"math"
	"sync"
	"time"

	"github.com/yannsunn/amazon-fba-image-optimizer/internal/config"
)

type entry struct {
	count       int
	windowReset time.Time
}

// Limiter is a fixed-window request counter keyed by client identifier.
// State is process-local; entries are reset lazily on access and removed by
// a periodic sweep once their window has passed.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	ceiling int
	window  time.Duration

	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewLimiter(cfg config.RateLimitConfig) *Limiter {
	l := NewLimiterWithClock(cfg, time.Now)
	if cfg.SweepInterval > 0 {
		go l.sweepLoop(cfg.SweepInterval)
	}
	return l
}

// NewLimiterWithClock builds a limiter without a background sweeper, using
// the given clock. Tests drive the window deterministically through it.
func NewLimiterWithClock(cfg config.RateLimitConfig, now func() time.Time) *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		ceiling: cfg.RequestsPerMinute,
		window:  cfg.Window,
		now:     now,
		stop:    make(chan struct{}),
	}
}

// Admit records one request for the identifier. It returns false together
// with the whole seconds remaining until the window resets when the caller
// is over the ceiling.
func (l *Limiter) Admit(identifier string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[identifier]
	if !ok || !now.Before(e.windowReset) {
		l.entries[identifier] = &entry{count: 1, windowReset: now.Add(l.window)}
		return true, 0
	}

	if e.count < l.ceiling {
		e.count++
		return true, 0
	}

	retryAfter := int(math.Ceil(e.windowReset.Sub(now).Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	return false, retryAfter
}

// Len reports the number of tracked identifiers.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Sweep removes entries whose window has already passed.
func (l *Limiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for identifier, e := range l.entries {
		if !now.Before(e.windowReset) {
			delete(l.entries, identifier)
		}
	}
}

func (l *Limiter) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// Close stops the background sweeper.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

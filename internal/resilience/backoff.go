package resilience

import (
	"sync"
	"time"

	"github.com/i474232898/park-forecast-planner/internal/store"
)

const (
	// DefaultMaxFailures is the number of consecutive failures after which a key
	// is served its fallback without calling upstream.
	DefaultMaxFailures = 3

	// DefaultRateLimitCooldown is how long every fetch is masked after a 429.
	DefaultRateLimitCooldown = 60 * time.Second
)

// FailureRecord tracks consecutive failures for one key.
type FailureRecord struct {
	Count       int
	LastAttempt time.Time
}

// BackoffTracker counts consecutive failures per key.
type BackoffTracker struct {
	mu sync.Mutex

	records map[string]FailureRecord

	maxFailures int
	// resetAfter forgets a record whose last attempt is older than this.
	// Zero keeps records until the next success.
	resetAfter time.Duration
	now        store.Clock
}

// NewBackoffTracker creates a tracker. A maxFailures <= 0 falls back to DefaultMaxFailures.
func NewBackoffTracker(maxFailures int, resetAfter time.Duration) *BackoffTracker {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	return &BackoffTracker{
		records:     make(map[string]FailureRecord),
		maxFailures: maxFailures,
		resetAfter:  resetAfter,
		now:         time.Now,
	}
}

// WithClock replaces the time source.
func (b *BackoffTracker) WithClock(now store.Clock) *BackoffTracker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
	return b
}

// RecordFailure increments the failure count for key.
func (b *BackoffTracker) RecordFailure(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec := b.records[key]
	rec.Count++
	rec.LastAttempt = b.now()
	b.records[key] = rec
}

// RecordSuccess forgets any failures recorded for key.
func (b *BackoffTracker) RecordSuccess(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.records, key)
}

// ShouldFallback reports whether key has reached the failure ceiling.
func (b *BackoffTracker) ShouldFallback(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.records[key]
	if !ok {
		return false
	}
	if b.resetAfter > 0 && b.now().Sub(rec.LastAttempt) >= b.resetAfter {
		delete(b.records, key)
		return false
	}
	return rec.Count >= b.maxFailures
}

// Failures returns the current record for key, if any.
func (b *BackoffTracker) Failures(key string) (FailureRecord, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.records[key]
	return rec, ok
}

// RateLimitGate masks every fetch sharing it for a cooldown after an upstream
// rate-limit signal.
type RateLimitGate struct {
	mu sync.Mutex

	limited  bool
	resetAt  time.Time
	cooldown time.Duration
	now      store.Clock
}

// NewRateLimitGate creates a gate. A cooldown <= 0 falls back to DefaultRateLimitCooldown.
func NewRateLimitGate(cooldown time.Duration) *RateLimitGate {
	if cooldown <= 0 {
		cooldown = DefaultRateLimitCooldown
	}
	return &RateLimitGate{
		cooldown: cooldown,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (g *RateLimitGate) WithClock(now store.Clock) *RateLimitGate {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
	return g
}

// MarkRateLimited starts (or restarts) the cooldown window.
func (g *RateLimitGate) MarkRateLimited() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.limited = true
	g.resetAt = g.now().Add(g.cooldown)
}

// IsRateLimited reports whether the cooldown is still running. An elapsed
// window is cleared here.
func (g *RateLimitGate) IsRateLimited() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.limited {
		return false
	}
	if g.now().Before(g.resetAt) {
		return true
	}
	g.limited = false
	g.resetAt = time.Time{}
	return false
}

// ResetAt returns the end of the current cooldown, or the zero time.
func (g *RateLimitGate) ResetAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resetAt
}

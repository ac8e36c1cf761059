package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/park-forecast-planner/internal/store"
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type countingObserver struct {
	mu     sync.Mutex
	events map[string]int
}

func (o *countingObserver) ObserveFetch(_ string, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.events == nil {
		o.events = make(map[string]int)
	}
	o.events[outcome]++
}

type fixture struct {
	clock   *testClock
	gate    *RateLimitGate
	tracker *BackoffTracker
	obs     *countingObserver
	fetcher *Fetcher[[]string]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := &testClock{t: time.Date(2024, 7, 4, 9, 0, 0, 0, time.UTC)}
	cache := store.NewTTLCache[Result[[]string]](24 * time.Hour).WithClock(clk.Now)
	tracker := NewBackoffTracker(3, 0).WithClock(clk.Now)
	gate := NewRateLimitGate(60 * time.Second).WithClock(clk.Now)
	obs := &countingObserver{}

	return &fixture{
		clock:   clk,
		gate:    gate,
		tracker: tracker,
		obs:     obs,
		fetcher: NewFetcher("images", cache, tracker, gate, WithObserver[[]string](obs)),
	}
}

var placeholder = []string{"/placeholder.svg"}

func usePlaceholder() []string { return placeholder }

func TestFetchCachesSuccess(t *testing.T) {
	f := newFixture(t)
	calls := 0
	call := func(context.Context) ([]string, error) {
		calls++
		return []string{"https://nps.gov/yell-1.jpg", "https://nps.gov/yell-2.jpg"}, nil
	}

	first := f.fetcher.Fetch(context.Background(), "yell", usePlaceholder, call)
	require.True(t, first.OK())
	assert.Equal(t, 1, calls)

	f.clock.Advance(23 * time.Hour)
	second := f.fetcher.Fetch(context.Background(), "yell", usePlaceholder, call)

	assert.Equal(t, 1, calls, "cache hit must not call upstream")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.obs.events[OutcomeCacheHit])
}

func TestFetchBacksOffAfterThreeFailures(t *testing.T) {
	f := newFixture(t)
	calls := 0
	call := func(context.Context) ([]string, error) {
		calls++
		return nil, errors.New("connection refused")
	}

	for i := 0; i < 3; i++ {
		res := f.fetcher.Fetch(context.Background(), "zion", usePlaceholder, call)
		assert.True(t, res.Degraded)
		assert.Equal(t, ReasonUpstreamError, res.Reason)
		assert.Equal(t, placeholder, res.Value)
	}
	require.Equal(t, 3, calls, "failures are not cached, so every call retries")

	res := f.fetcher.Fetch(context.Background(), "zion", usePlaceholder, call)
	assert.Equal(t, 3, calls, "fourth call must skip upstream")
	assert.Equal(t, ReasonBackoff, res.Reason)
	assert.Equal(t, placeholder, res.Value)

	// Other keys are unaffected.
	f.fetcher.Fetch(context.Background(), "yose", usePlaceholder, call)
	assert.Equal(t, 4, calls)
}

func TestFetchSuccessClearsFailures(t *testing.T) {
	f := newFixture(t)
	fail := true
	call := func(context.Context) ([]string, error) {
		if fail {
			return nil, errors.New("bad gateway")
		}
		return []string{"ok.jpg"}, nil
	}

	f.fetcher.Fetch(context.Background(), "acad", usePlaceholder, call)
	f.fetcher.Fetch(context.Background(), "acad", usePlaceholder, call)
	rec, ok := f.tracker.Failures("acad")
	require.True(t, ok)
	assert.Equal(t, 2, rec.Count)

	fail = false
	res := f.fetcher.Fetch(context.Background(), "acad", usePlaceholder, call)
	assert.True(t, res.OK())

	_, ok = f.tracker.Failures("acad")
	assert.False(t, ok)
}

func TestRateLimitMasksEveryKeyUntilReset(t *testing.T) {
	f := newFixture(t)
	calls := 0
	limited := func(context.Context) ([]string, error) {
		calls++
		return nil, fmt.Errorf("nps: %w", ErrRateLimited)
	}
	ok := func(context.Context) ([]string, error) {
		calls++
		return []string{"fresh.jpg"}, nil
	}

	res := f.fetcher.Fetch(context.Background(), "grca", usePlaceholder, limited)
	require.Equal(t, ReasonRateLimited, res.Reason)
	require.Equal(t, 1, calls)
	resetAt := f.gate.ResetAt()

	// A different key is masked as well.
	res = f.fetcher.Fetch(context.Background(), "romo", usePlaceholder, ok)
	assert.Equal(t, ReasonRateLimited, res.Reason)
	assert.Equal(t, 1, calls)

	f.clock.t = resetAt.Add(-time.Millisecond)
	for _, key := range []string{"grca", "romo", "glac"} {
		res = f.fetcher.Fetch(context.Background(), key, usePlaceholder, ok)
		assert.Equal(t, ReasonRateLimited, res.Reason, key)
	}
	assert.Equal(t, 1, calls)

	// The keys fetched during the cooldown go upstream again right after it.
	f.clock.t = resetAt.Add(time.Millisecond)
	for i, key := range []string{"grca", "romo"} {
		res = f.fetcher.Fetch(context.Background(), key, usePlaceholder, ok)
		assert.True(t, res.OK(), key)
		assert.Equal(t, []string{"fresh.jpg"}, res.Value)
		assert.Equal(t, 2+i, calls)
	}

	// Successful results are cached normally from then on.
	f.fetcher.Fetch(context.Background(), "grca", usePlaceholder, ok)
	assert.Equal(t, 3, calls)
}

func TestRateLimitedFallbackIsCachedOnlyDuringCooldown(t *testing.T) {
	f := newFixture(t)
	calls := 0
	limited := func(context.Context) ([]string, error) {
		calls++
		return nil, ErrRateLimited
	}

	f.fetcher.Fetch(context.Background(), "ever", usePlaceholder, limited)
	f.clock.Advance(30 * time.Second)

	res := f.fetcher.Fetch(context.Background(), "ever", usePlaceholder, limited)
	assert.Equal(t, 1, calls)
	assert.Equal(t, ReasonRateLimited, res.Reason)
	assert.Equal(t, 1, f.obs.events[OutcomeCacheHit])

	f.clock.Advance(2 * time.Minute)
	res = f.fetcher.Fetch(context.Background(), "ever", usePlaceholder, limited)
	assert.Equal(t, 2, calls, "cooldown is over, so the cached fallback is not reused")
	assert.Equal(t, ReasonRateLimited, res.Reason)
}

func TestFallbackBuiltOnlyWhenDegraded(t *testing.T) {
	f := newFixture(t)
	built := 0
	fallback := func() []string {
		built++
		return placeholder
	}
	call := func(context.Context) ([]string, error) { return []string{"a.jpg"}, nil }

	f.fetcher.Fetch(context.Background(), "arch", fallback, call)
	f.fetcher.Fetch(context.Background(), "arch", fallback, call)
	assert.Zero(t, built)

	res := f.fetcher.Fetch(context.Background(), "brca", fallback, func(context.Context) ([]string, error) {
		return nil, errors.New("timeout")
	})
	assert.Equal(t, 1, built)
	assert.Equal(t, placeholder, res.Value)
}

func TestCancelledCallerDoesNotCountAsFailure(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	call := func(context.Context) ([]string, error) {
		calls++
		return []string{"a.jpg"}, nil
	}

	for i := 0; i < 4; i++ {
		res := f.fetcher.Fetch(ctx, "cong", usePlaceholder, call)
		assert.Equal(t, ReasonCancelled, res.Reason)
		assert.Equal(t, placeholder, res.Value)
	}
	assert.Zero(t, calls)
	_, recorded := f.tracker.Failures("cong")
	assert.False(t, recorded)

	res := f.fetcher.Fetch(context.Background(), "cong", usePlaceholder, call)
	assert.True(t, res.OK())
}

func TestSharedCallOutlivesCancelledCaller(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	started := make(chan struct{})
	call := func(ctx context.Context) ([]string, error) {
		close(started)
		select {
		case <-release:
			return []string{"late.jpg"}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Result[[]string])
	go func() { done <- f.fetcher.Fetch(ctx, "kefj", usePlaceholder, call) }()

	<-started
	cancel()
	res := <-done
	assert.Equal(t, ReasonCancelled, res.Reason)

	close(release)
	require.Eventually(t, func() bool {
		_, cached := f.fetcher.cache.Get("kefj")
		return cached
	}, time.Second, time.Millisecond)

	_, recorded := f.tracker.Failures("kefj")
	assert.False(t, recorded)
	res = f.fetcher.Fetch(context.Background(), "kefj", usePlaceholder, call)
	assert.Equal(t, []string{"late.jpg"}, res.Value)
}

func TestCallCancellationIsNotAFailure(t *testing.T) {
	f := newFixture(t)
	res := f.fetcher.Fetch(context.Background(), "olym", usePlaceholder, func(context.Context) ([]string, error) {
		return nil, fmt.Errorf("nps: %w", context.Canceled)
	})
	assert.Equal(t, ReasonCancelled, res.Reason)
	_, recorded := f.tracker.Failures("olym")
	assert.False(t, recorded)
}

func TestBackoffTrackerResetAfter(t *testing.T) {
	clk := &testClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	tr := NewBackoffTracker(3, 5*time.Minute).WithClock(clk.Now)

	for i := 0; i < 3; i++ {
		tr.RecordFailure("dena")
	}
	assert.True(t, tr.ShouldFallback("dena"))

	clk.Advance(5 * time.Minute)
	assert.False(t, tr.ShouldFallback("dena"))

	_, ok := tr.Failures("dena")
	assert.False(t, ok, "expired record is dropped")
}

func TestDefaultsApplied(t *testing.T) {
	tr := NewBackoffTracker(0, 0)
	assert.Equal(t, DefaultMaxFailures, tr.maxFailures)

	g := NewRateLimitGate(0)
	assert.Equal(t, DefaultRateLimitCooldown, g.cooldown)
	assert.False(t, g.IsRateLimited())
}

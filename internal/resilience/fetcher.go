package resilience

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/i474232898/park-forecast-planner/internal/store"
)

// ErrRateLimited is returned (wrapped) by a call that received an upstream
// rate-limit signal such as HTTP 429.
var ErrRateLimited = errors.New("rate limited")

// Reason explains why a Result carries a fallback value.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonRateLimited   Reason = "rate_limited"
	ReasonBackoff       Reason = "backoff"
	ReasonUpstreamError Reason = "upstream_error"
	ReasonCancelled     Reason = "cancelled"
)

// Outcome labels reported to the Observer.
const (
	OutcomeCacheHit      = "cache_hit"
	OutcomeRateLimited   = "rate_limited"
	OutcomeBackoff       = "backoff"
	OutcomeUpstreamError = "upstream_error"
	OutcomeSuccess       = "success"
	OutcomeCancelled     = "cancelled"
)

// DefaultCallTimeout bounds a shared upstream call once it is detached from
// the request that started it.
const DefaultCallTimeout = 30 * time.Second

// Result is what a Fetch returns. Value is always usable; Degraded marks a
// fallback and Reason says why.
type Result[V any] struct {
	Value    V      `json:"value"`
	Degraded bool   `json:"degraded"`
	Reason   Reason `json:"reason,omitempty"`
}

// OK reports whether the value came from upstream (directly or via cache).
func (r Result[V]) OK() bool {
	return !r.Degraded
}

// Observer receives one event per Fetch. *metrics.Metrics implements it.
type Observer interface {
	ObserveFetch(fetcher, outcome string)
}

// Call performs the upstream request and parses its payload.
type Call[V any] func(ctx context.Context) (V, error)

// Fallback builds the value served when upstream cannot be used. It is only
// invoked on degraded paths.
type Fallback[V any] func() V

// Fetcher applies the cache, rate-limit and backoff policy around an upstream call.
type Fetcher[V any] struct {
	name     string
	cache    *store.TTLCache[Result[V]]
	tracker  *BackoffTracker
	gate     *RateLimitGate
	group    singleflight.Group
	observer Observer
	logger   *zap.Logger

	callTimeout time.Duration
}

// Option configures a Fetcher.
type Option[V any] func(*Fetcher[V])

// WithObserver reports fetch outcomes to o.
func WithObserver[V any](o Observer) Option[V] {
	return func(f *Fetcher[V]) { f.observer = o }
}

// WithLogger sets the logger used for degraded outcomes.
func WithLogger[V any](l *zap.Logger) Option[V] {
	return func(f *Fetcher[V]) { f.logger = l }
}

// WithCallTimeout bounds each upstream call. Non-positive values are ignored.
func WithCallTimeout[V any](d time.Duration) Option[V] {
	return func(f *Fetcher[V]) {
		if d > 0 {
			f.callTimeout = d
		}
	}
}

// NewFetcher creates a Fetcher. The gate may be shared between fetchers that
// talk to the same upstream.
func NewFetcher[V any](
	name string,
	cache *store.TTLCache[Result[V]],
	tracker *BackoffTracker,
	gate *RateLimitGate,
	opts ...Option[V],
) *Fetcher[V] {
	f := &Fetcher[V]{
		name:    name,
		cache:   cache,
		tracker: tracker,
		gate:    gate,
		logger:  zap.NewNop(),

		callTimeout: DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the fetcher's name, used as the metrics label.
func (f *Fetcher[V]) Name() string {
	return f.name
}

// Fetch returns the value for key. It never fails: when upstream cannot be
// used the fallback is returned with Degraded set.
//
// Concurrent calls for one key share a single upstream call, which runs on a
// context detached from any one caller. A caller whose ctx ends first gets the
// fallback; the shared call carries on and fills the cache for the others.
func (f *Fetcher[V]) Fetch(ctx context.Context, key string, fallback Fallback[V], call Call[V]) Result[V] {
	if cached, ok := f.cache.Get(key); ok && !f.staleRateLimited(cached) {
		f.observe(OutcomeCacheHit)
		return cached
	}

	if ctx.Err() != nil {
		return f.cancelled(fallback)
	}

	ch := f.group.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.callTimeout)
		defer cancel()
		return f.fetch(callCtx, key, fallback, call), nil
	})

	select {
	case r := <-ch:
		return r.Val.(Result[V])
	case <-ctx.Done():
		return f.cancelled(fallback)
	}
}

// staleRateLimited reports whether res is a cooldown fallback whose cooldown
// has ended. Such entries are treated as misses.
func (f *Fetcher[V]) staleRateLimited(res Result[V]) bool {
	return res.Reason == ReasonRateLimited && !f.gate.IsRateLimited()
}

func (f *Fetcher[V]) cancelled(fallback Fallback[V]) Result[V] {
	f.observe(OutcomeCancelled)
	return Result[V]{Value: fallback(), Degraded: true, Reason: ReasonCancelled}
}

func (f *Fetcher[V]) fetch(ctx context.Context, key string, fallback Fallback[V], call Call[V]) Result[V] {
	log := f.logger.With(zap.String("fetcher", f.name), zap.String("key", key))

	if f.gate.IsRateLimited() {
		log.Debug("rate limited; serving fallback", zap.Time("reset_at", f.gate.ResetAt()))
		res := Result[V]{Value: fallback(), Degraded: true, Reason: ReasonRateLimited}
		f.cache.Set(key, res)
		f.observe(OutcomeRateLimited)
		return res
	}

	if f.tracker.ShouldFallback(key) {
		log.Debug("too many failed requests; serving fallback")
		f.observe(OutcomeBackoff)
		return Result[V]{Value: fallback(), Degraded: true, Reason: ReasonBackoff}
	}

	start := time.Now()
	value, err := call(ctx)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			log.Warn("upstream rate limit; masking fetches for cooldown", zap.Error(err))
			f.gate.MarkRateLimited()
			res := Result[V]{Value: fallback(), Degraded: true, Reason: ReasonRateLimited}
			f.cache.Set(key, res)
			f.observe(OutcomeRateLimited)
			return res
		}

		if errors.Is(err, context.Canceled) {
			// Shutdown, not an upstream fault.
			log.Debug("upstream call cancelled", zap.Error(err))
			f.observe(OutcomeCancelled)
			return Result[V]{Value: fallback(), Degraded: true, Reason: ReasonCancelled}
		}

		log.Warn("upstream call failed; serving fallback", zap.Error(err))
		f.tracker.RecordFailure(key)
		f.observe(OutcomeUpstreamError)
		return Result[V]{Value: fallback(), Degraded: true, Reason: ReasonUpstreamError}
	}

	log.Debug("upstream call succeeded", zap.Duration("took", time.Since(start)))
	f.tracker.RecordSuccess(key)
	res := Result[V]{Value: value}
	f.cache.Set(key, res)
	f.observe(OutcomeSuccess)
	return res
}

func (f *Fetcher[V]) observe(outcome string) {
	if f.observer != nil {
		f.observer.ObserveFetch(f.name, outcome)
	}
}

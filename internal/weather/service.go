package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/park-forecast-planner/internal/resilience"
	"github.com/i474232898/park-forecast-planner/internal/store"
)

var (
	// ErrInvalidDays is returned when a forecast is requested for a non-positive number of days.
	ErrInvalidDays = errors.New("days must be greater than zero")
	// ErrGeocodingUnavailable is returned when no geocoder is configured.
	ErrGeocodingUnavailable = errors.New("geocoding is not configured")
	// ErrLocationNotFound is returned when a place name cannot be resolved.
	ErrLocationNotFound = errors.New("location not found")
)

// geocodeTTL bounds how long resolved place names are reused.
const geocodeTTL = 24 * time.Hour

// ForecastResult is an aggregated forecast plus the fetch boundary's degraded marker.
type ForecastResult struct {
	Days      []DailySummary    `json:"days"`
	Degraded  bool              `json:"degraded"`
	Reason    resilience.Reason `json:"reason,omitempty"`
	Simulated bool              `json:"simulated"`
}

// Service fetches current conditions and forecasts through resilient fetchers.
type Service struct {
	source   Source
	current  *resilience.Fetcher[CurrentConditions]
	forecast *resilience.Fetcher[ForecastPayload]
	sim      *Simulator
	logger   *zap.Logger

	geocoder Geocoder
	geocache *store.TTLCache[Coordinates]
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithGeocoder enables place-name lookups.
func WithGeocoder(g Geocoder) ServiceOption {
	return func(s *Service) { s.geocoder = g }
}

// NewService creates a new Service.
func NewService(
	source Source,
	current *resilience.Fetcher[CurrentConditions],
	forecast *resilience.Fetcher[ForecastPayload],
	sim *Simulator,
	logger *zap.Logger,
	opts ...ServiceOption,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		source:   source,
		current:  current,
		forecast: forecast,
		sim:      sim,
		logger:   logger,
		geocache: store.NewTTLCache[Coordinates](geocodeTTL),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SourceName reports which provider backs the service.
func (s *Service) SourceName() string {
	return s.source.Name()
}

// Current returns current conditions at the given coordinates. Upstream
// failures yield simulated conditions marked as degraded.
func (s *Service) Current(ctx context.Context, at Coordinates) resilience.Result[CurrentConditions] {
	return s.current.Fetch(ctx, at.Key(), func() CurrentConditions { return s.sim.Current(at) }, func(ctx context.Context) (CurrentConditions, error) {
		return s.source.FetchCurrent(ctx, at)
	})
}

// Forecast fetches a forecast for the given coordinates and aggregates it into
// at most days daily summaries.
func (s *Service) Forecast(ctx context.Context, at Coordinates, days int) (ForecastResult, error) {
	if days <= 0 {
		return ForecastResult{}, ErrInvalidDays
	}

	key := fmt.Sprintf("%s,%d", at.Key(), days)
	simulated := func() ForecastPayload { return s.sim.Forecast(at, days) }
	res := s.forecast.Fetch(ctx, key, simulated, func(ctx context.Context) (ForecastPayload, error) {
		p, err := s.source.FetchForecast(ctx, at, days)
		if err != nil {
			return ForecastPayload{}, err
		}
		// Reject malformed payloads here so they count as upstream failures.
		if _, err := AggregatePayload(p); err != nil {
			return ForecastPayload{}, fmt.Errorf("%s forecast payload: %w", s.source.Name(), err)
		}
		return p, nil
	})

	summaries, err := AggregatePayload(res.Value)
	if err != nil {
		return ForecastResult{}, err
	}
	if len(summaries) > days {
		summaries = summaries[:days]
	}

	s.logger.Debug("forecast aggregated",
		zap.String("key", key),
		zap.Int("days", len(summaries)),
		zap.Bool("degraded", res.Degraded),
	)

	return ForecastResult{
		Days:      summaries,
		Degraded:  res.Degraded,
		Reason:    res.Reason,
		Simulated: res.Value.Simulated,
	}, nil
}

// Locate resolves a city and country to coordinates.
func (s *Service) Locate(ctx context.Context, city, country string) (Coordinates, error) {
	if s.geocoder == nil {
		return Coordinates{}, ErrGeocodingUnavailable
	}

	key := strings.ToLower(strings.TrimSpace(city) + ":" + strings.TrimSpace(country))
	if c, ok := s.geocache.Get(key); ok {
		return c, nil
	}

	c, err := s.geocoder.Geocode(ctx, city, country)
	if err != nil {
		s.logger.Warn("geocoding failed", zap.String("city", city), zap.String("country", country), zap.Error(err))
		return Coordinates{}, err
	}
	s.geocache.Set(key, c)
	return c, nil
}

package weather

import (
	"context"
)

// Source abstracts a weather data provider (e.g. OpenWeatherMap, Open-Meteo).
// Implementations return an error wrapping resilience.ErrRateLimited when the
// provider signals a rate limit.
type Source interface {
	Name() string
	FetchCurrent(ctx context.Context, at Coordinates) (CurrentConditions, error)
	FetchForecast(ctx context.Context, at Coordinates, days int) (ForecastPayload, error)
}

// Geocoder resolves a place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, city, country string) (Coordinates, error)
}

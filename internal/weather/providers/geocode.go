package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/park-forecast-planner/internal/weather"
)

// geocoderMu guards the package-level API key of the geocoder library.
var geocoderMu sync.Mutex

// GoogleGeocoder resolves place names with the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey string
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey}
}

// Geocode implements weather.Geocoder. The library call does not take a
// context; the HTTP client timeout bounds it instead.
func (g *GoogleGeocoder) Geocode(_ context.Context, city, country string) (weather.Coordinates, error) {
	if g.apiKey == "" {
		return weather.Coordinates{}, fmt.Errorf("geocoder: %w", errMissingAPIKey)
	}

	geocoderMu.Lock()
	geocoder.ApiKey = g.apiKey
	loc, err := geocoder.Geocoding(geocoder.Address{
		City:    city,
		Country: country,
	})
	geocoderMu.Unlock()

	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("%w: %s, %s: %v", weather.ErrLocationNotFound, city, country, err)
	}
	return weather.Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude}, nil
}

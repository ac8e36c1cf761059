package weather

import (
	"fmt"
	"time"
)

// Coordinates identifies a point on the map.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key returns a canonical string key for caching lookups at these coordinates.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// Label renders the coordinates for display, e.g. "36.0544°N 112.2401°W".
func (c Coordinates) Label() string {
	ns, ew := "N", "E"
	lat, lon := c.Latitude, c.Longitude
	if lat < 0 {
		ns, lat = "S", -lat
	}
	if lon < 0 {
		ew, lon = "W", -lon
	}
	return fmt.Sprintf("%.4f°%s %.4f°%s", lat, ns, lon, ew)
}

// RawSample is one 3-hour forecast interval as reported by the provider.
// Temperatures are °F and wind speed is mph.
type RawSample struct {
	Timestamp   time.Time `json:"timestamp"` // always UTC
	Temperature float64   `json:"temperature"`
	Condition   string    `json:"condition"`
	Icon        string    `json:"icon"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"windSpeed"`
}

// ForecastPayload is a provider forecast response before aggregation.
// Sources that do not resolve place names label the location with its
// coordinates and leave Region empty.
type ForecastPayload struct {
	LocationName string      `json:"cityName"`
	Region       string      `json:"countryCode"`
	Samples      []RawSample `json:"samples"`

	// Simulated is set when the payload was generated locally instead of fetched.
	Simulated bool `json:"isMockData,omitempty"`
}

// DailySummary condenses one UTC calendar day of samples.
type DailySummary struct {
	Date           string `json:"date"` // 2006-01-02
	HighTemp       int    `json:"highTemp"`
	LowTemp        int    `json:"lowTemp"`
	AvgTemp        int    `json:"avgTemp"`
	Condition      string `json:"condition"`
	Icon           string `json:"icon"`
	Humidity       int    `json:"humidity"`
	WindSpeed      int    `json:"windSpeed"`
	LocationName   string `json:"cityName"`
	LocationRegion string `json:"countryCode"`
}

// CurrentConditions is the present weather at a location.
type CurrentConditions struct {
	Temperature int       `json:"temperature"`
	FeelsLike   int       `json:"feelsLike"`
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Humidity    int       `json:"humidity"`
	WindSpeed   int       `json:"windSpeed"`
	CityName    string    `json:"cityName"`
	CountryCode string    `json:"countryCode"`
	Timestamp   time.Time `json:"timestamp"`

	Simulated bool `json:"isMockData,omitempty"`
}

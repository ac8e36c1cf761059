package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/i474232898/park-forecast-planner/internal/weather"
)

// OpenMeteoProvider implements weather.Source for Open-Meteo. It needs no API
// key and is used when OpenWeatherMap is not configured.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *resty.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff,
		},
		circuit: newBreaker("openmeteo"),
	}
}

// WithBaseURL points the provider at another endpoint, e.g. a test server.
func (p *OpenMeteoProvider) WithBaseURL(u string) *OpenMeteoProvider {
	p.baseURL = u
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) get(ctx context.Context, at weather.Coordinates, params map[string]string) ([]byte, error) {
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetQueryParam("latitude", strconv.FormatFloat(at.Latitude, 'f', 4, 64)).
			SetQueryParam("longitude", strconv.FormatFloat(at.Longitude, 'f', 4, 64)).
			SetQueryParam("temperature_unit", "fahrenheit").
			SetQueryParam("wind_speed_unit", "mph").
			SetQueryParam("timeformat", "unixtime").
			SetQueryParam("timezone", "UTC").
			SetQueryParams(params).
			Get(p.baseURL)
	})
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context, at weather.Coordinates) (weather.CurrentConditions, error) {
	body, err := p.get(ctx, at, map[string]string{
		"current": "temperature_2m,apparent_temperature,relative_humidity_2m,weather_code,wind_speed_10m",
	})
	if err != nil {
		return weather.CurrentConditions{}, err
	}

	var payload struct {
		Current *struct {
			Time        int64   `json:"time"`
			Temperature float64 `json:"temperature_2m"`
			Apparent    float64 `json:"apparent_temperature"`
			Humidity    float64 `json:"relative_humidity_2m"`
			WeatherCode int     `json:"weather_code"`
			WindSpeed   float64 `json:"wind_speed_10m"`
		} `json:"current"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.CurrentConditions{}, fmt.Errorf("openmeteo current payload: %w", err)
	}
	if payload.Current == nil {
		return weather.CurrentConditions{}, fmt.Errorf("openmeteo current payload: missing current block")
	}

	c := payload.Current
	cond, desc, icon := mapOpenMeteoCondition(c.WeatherCode)
	return weather.CurrentConditions{
		Temperature: int(math.Round(c.Temperature)),
		FeelsLike:   int(math.Round(c.Apparent)),
		Condition:   cond,
		Description: desc,
		Icon:        icon,
		Humidity:    int(math.Round(c.Humidity)),
		WindSpeed:   int(math.Round(c.WindSpeed)),
		CityName:    at.Label(),
		Timestamp:   time.Unix(c.Time, 0).UTC(),
	}, nil
}

func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, at weather.Coordinates, days int) (weather.ForecastPayload, error) {
	body, err := p.get(ctx, at, map[string]string{
		"hourly":        "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m",
		"forecast_days": strconv.Itoa(days),
	})
	if err != nil {
		return weather.ForecastPayload{}, err
	}

	var payload struct {
		Hourly struct {
			Time        []int64   `json:"time"`
			Temperature []float64 `json:"temperature_2m"`
			Humidity    []float64 `json:"relative_humidity_2m"`
			WeatherCode []int     `json:"weather_code"`
			WindSpeed   []float64 `json:"wind_speed_10m"`
		} `json:"hourly"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.ForecastPayload{}, fmt.Errorf("openmeteo forecast payload: %w", err)
	}

	h := payload.Hourly
	n := len(h.Time)
	if len(h.Temperature) != n || len(h.Humidity) != n || len(h.WeatherCode) != n || len(h.WindSpeed) != n {
		return weather.ForecastPayload{}, fmt.Errorf("openmeteo forecast payload: hourly series lengths differ")
	}

	out := weather.ForecastPayload{
		LocationName: at.Label(),
		Samples:      make([]weather.RawSample, 0, n/3+1),
	}
	// Keep every third hour to match the 3-hour sampling of other feeds.
	for i := 0; i < n; i += 3 {
		cond, _, icon := mapOpenMeteoCondition(h.WeatherCode[i])
		out.Samples = append(out.Samples, weather.RawSample{
			Timestamp:   time.Unix(h.Time[i], 0).UTC(),
			Temperature: h.Temperature[i],
			Condition:   cond,
			Icon:        icon,
			Humidity:    h.Humidity[i],
			WindSpeed:   h.WindSpeed[i],
		})
	}
	return out, nil
}

// mapOpenMeteoCondition translates WMO weather codes into OpenWeatherMap-style
// condition names, descriptions and icon codes.
func mapOpenMeteoCondition(code int) (condition, description, icon string) {
	switch {
	case code == 0:
		return "Clear", "clear sky", "01d"
	case code >= 1 && code <= 3:
		return "Clouds", "partly cloudy", "03d"
	case code == 45 || code == 48:
		return "Fog", "fog", "50d"
	case code >= 51 && code <= 57:
		return "Drizzle", "drizzle", "09d"
	case (code >= 61 && code <= 67) || (code >= 80 && code <= 82):
		return "Rain", "rain", "10d"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return "Snow", "snow", "13d"
	case code >= 95:
		return "Thunderstorm", "thunderstorm", "11d"
	default:
		return "Clouds", "overcast", "04d"
	}
}

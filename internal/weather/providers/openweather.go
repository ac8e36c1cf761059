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

// OpenWeatherProvider implements weather.Source for OpenWeatherMap (imperial units).
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *resty.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff,
		},
		circuit: newBreaker("openweather"),
	}
}

// WithBaseURL points the provider at another host, e.g. a test server.
func (p *OpenWeatherProvider) WithBaseURL(u string) *OpenWeatherProvider {
	p.baseURL = u
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func (p *OpenWeatherProvider) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather: %w", errMissingAPIKey)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetQueryParams(params).
			SetQueryParam("appid", p.apiKey).
			SetQueryParam("units", "imperial").
			Get(p.baseURL + path)
	})
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func coordParams(at weather.Coordinates) map[string]string {
	return map[string]string{
		"lat": strconv.FormatFloat(at.Latitude, 'f', -1, 64),
		"lon": strconv.FormatFloat(at.Longitude, 'f', -1, 64),
	}
}

func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, at weather.Coordinates) (weather.CurrentConditions, error) {
	body, err := p.get(ctx, "/weather", coordParams(at))
	if err != nil {
		return weather.CurrentConditions{}, err
	}

	var payload struct {
		Dt   int64  `json:"dt"`
		Name string `json:"name"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Weather []owmCondition `json:"weather"`
		Sys     struct {
			Country string `json:"country"`
		} `json:"sys"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.CurrentConditions{}, fmt.Errorf("openweather current payload: %w", err)
	}
	if len(payload.Weather) == 0 {
		return weather.CurrentConditions{}, fmt.Errorf("openweather current payload: no weather entries")
	}

	ts := time.Unix(payload.Dt, 0).UTC()
	if payload.Dt == 0 {
		ts = time.Now().UTC()
	}

	w := payload.Weather[0]
	return weather.CurrentConditions{
		Temperature: int(math.Round(payload.Main.Temp)),
		FeelsLike:   int(math.Round(payload.Main.FeelsLike)),
		Condition:   w.Main,
		Description: w.Description,
		Icon:        w.Icon,
		Humidity:    int(math.Round(payload.Main.Humidity)),
		WindSpeed:   int(math.Round(payload.Wind.Speed)),
		CityName:    payload.Name,
		CountryCode: payload.Sys.Country,
		Timestamp:   ts,
	}, nil
}

func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, at weather.Coordinates, days int) (weather.ForecastPayload, error) {
	params := coordParams(at)
	// 8 data points per day (every 3 hours).
	params["cnt"] = strconv.Itoa(days * 8)

	body, err := p.get(ctx, "/forecast", params)
	if err != nil {
		return weather.ForecastPayload{}, err
	}

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp     float64 `json:"temp"`
				Humidity float64 `json:"humidity"`
			} `json:"main"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
			Weather []owmCondition `json:"weather"`
		} `json:"list"`
		City struct {
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"city"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.ForecastPayload{}, fmt.Errorf("openweather forecast payload: %w", err)
	}

	out := weather.ForecastPayload{
		LocationName: payload.City.Name,
		Region:       payload.City.Country,
		Samples:      make([]weather.RawSample, 0, len(payload.List)),
	}
	for i, item := range payload.List {
		if len(item.Weather) == 0 {
			return weather.ForecastPayload{}, fmt.Errorf("openweather forecast payload: entry %d has no weather", i)
		}
		out.Samples = append(out.Samples, weather.RawSample{
			Timestamp:   time.Unix(item.Dt, 0).UTC(),
			Temperature: item.Main.Temp,
			Condition:   item.Weather[0].Main,
			Icon:        item.Weather[0].Icon,
			Humidity:    item.Main.Humidity,
			WindSpeed:   item.Wind.Speed,
		})
	}
	return out, nil
}

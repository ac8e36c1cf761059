package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

// NPSProvider fetches park imagery from the National Park Service API.
type NPSProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewNPSProvider(client *resty.Client, apiKey string) *NPSProvider {
	return &NPSProvider{
		name:    "nps",
		apiKey:  apiKey,
		baseURL: "https://developer.nps.gov/api/v1",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff,
		},
		circuit: newBreaker("nps"),
	}
}

// WithBaseURL points the provider at another host, e.g. a test server.
func (p *NPSProvider) WithBaseURL(u string) *NPSProvider {
	p.baseURL = u
	return p
}

func (p *NPSProvider) Name() string {
	return p.name
}

// FetchImages returns the image URLs NPS lists for parkCode. An empty slice
// means the park has no images.
func (p *NPSProvider) FetchImages(ctx context.Context, parkCode string) ([]string, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("nps: %w", errMissingAPIKey)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetHeader("X-Api-Key", p.apiKey).
			SetQueryParam("parkCode", parkCode).
			SetQueryParam("fields", "images").
			Get(p.baseURL + "/parks")
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []struct {
			Images []struct {
				URL     string `json:"url"`
				Title   string `json:"title"`
				AltText string `json:"altText"`
			} `json:"images"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("nps images payload: %w", err)
	}

	if len(payload.Data) == 0 {
		return nil, nil
	}
	urls := make([]string, 0, len(payload.Data[0].Images))
	for _, img := range payload.Data[0].Images {
		if img.URL != "" {
			urls = append(urls, img.URL)
		}
	}
	return urls, nil
}

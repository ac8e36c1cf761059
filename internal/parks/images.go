package parks

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/i474232898/park-forecast-planner/internal/resilience"
)

// ImageSource looks up image URLs by NPS park code.
type ImageSource interface {
	FetchImages(ctx context.Context, parkCode string) ([]string, error)
}

// ParkImages is the image lookup result for one park.
type ParkImages struct {
	Park     Park              `json:"park"`
	Image    string            `json:"image"`
	Images   []string          `json:"images"`
	Degraded bool              `json:"degraded"`
	Reason   resilience.Reason `json:"reason,omitempty"`
}

// PlaceholderImage returns the generated placeholder URL for a park.
func PlaceholderImage(parkName string) string {
	q := strings.ReplaceAll(url.QueryEscape(parkName+" National Park scenic landscape"), "+", "%20")
	return "/placeholder.svg?height=800&width=1200&query=" + q
}

// ImageService resolves park imagery through a resilient fetcher and loads
// the whole catalogue in throttled batches.
type ImageService struct {
	source    ImageSource
	fetcher   *resilience.Fetcher[[]string]
	batchSize int
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// NewImageService creates an ImageService. Batches of batchSize parks are
// started at most once per batchDelay.
func NewImageService(
	source ImageSource,
	fetcher *resilience.Fetcher[[]string],
	batchSize int,
	batchDelay time.Duration,
	logger *zap.Logger,
) *ImageService {
	if batchSize <= 0 {
		batchSize = 1
	}
	limit := rate.Inf
	if batchDelay > 0 {
		limit = rate.Every(batchDelay)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageService{
		source:    source,
		fetcher:   fetcher,
		batchSize: batchSize,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger,
	}
}

// Images returns the image URLs for p, or a placeholder when upstream is
// unavailable. A park with no images gets the placeholder as a normal result.
func (s *ImageService) Images(ctx context.Context, p Park) ParkImages {
	code := p.Code
	if code == "" {
		code = Code(p.Name)
	}
	placeholder := func() []string { return []string{PlaceholderImage(p.Name)} }

	res := s.fetcher.Fetch(ctx, code, placeholder, func(ctx context.Context) ([]string, error) {
		urls, err := s.source.FetchImages(ctx, code)
		if err != nil {
			return nil, err
		}
		if len(urls) == 0 {
			s.logger.Info("no images found; using placeholder", zap.String("park", p.Name))
			return placeholder(), nil
		}
		return urls, nil
	})

	out := ParkImages{
		Park:     p,
		Images:   res.Value,
		Degraded: res.Degraded,
		Reason:   res.Reason,
	}
	if len(res.Value) > 0 {
		out.Image = res.Value[0]
	}
	return out
}

// LoadAll resolves images for every park, one batch at a time, waiting
// between batches to stay under upstream rate limits. It stops early if ctx
// is cancelled and returns what was loaded so far.
func (s *ImageService) LoadAll(ctx context.Context, parks []Park) ([]ParkImages, error) {
	out := make([]ParkImages, 0, len(parks))

	for start := 0; start < len(parks); start += s.batchSize {
		if err := s.limiter.Wait(ctx); err != nil {
			return out, err
		}

		end := min(start+s.batchSize, len(parks))
		for _, p := range parks[start:end] {
			out = append(out, s.Images(ctx, p))
		}
		s.logger.Debug("image batch loaded", zap.Int("loaded", len(out)), zap.Int("total", len(parks)))
	}
	return out, nil
}

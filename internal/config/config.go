package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type AppConfig struct {
	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn error"`

	OpenWeatherAPIKey string
	NPSAPIKey         string
	GeocoderAPIKey    string

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration `validate:"gt=0"`

	// Cache lifetimes per data kind.
	CurrentTTL  time.Duration `validate:"gt=0"`
	ForecastTTL time.Duration `validate:"gt=0"`
	ImageTTL    time.Duration `validate:"gt=0"`

	// Fetch policy.
	RateLimitCooldown time.Duration `validate:"gt=0"`
	MaxFailures       int           `validate:"min=1"`
	BackoffReset      time.Duration `validate:"gte=0"` // 0 = never forget failures

	// Image warm-up.
	ImageBatchSize    int           `validate:"min=1"`
	ImageBatchDelay   time.Duration `validate:"gte=0"`
	ImageWarmInterval time.Duration `validate:"gte=0"` // 0 disables the job
}

var validate = validator.New()

// Load reads configuration from the environment with sensible defaults.
// Call godotenv.Load beforehand to pick up a .env file.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:     getenvDefault("PORT", "8080"),
		LogLevel: strings.ToLower(getenvDefault("LOG_LEVEL", "info")),

		OpenWeatherAPIKey: getenvTrimmed("OPENWEATHER_API_KEY"),
		NPSAPIKey:         getenvTrimmed("NPS_API_KEY"),
		GeocoderAPIKey:    getenvTrimmed("GOOGLE_GEOCODER_API_KEY"),

		MaxFailures:    getenvInt("MAX_FAILURES", 3),
		ImageBatchSize: getenvInt("IMAGE_BATCH_SIZE", 2),
	}

	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"HTTP_TIMEOUT", "10s", &cfg.HTTPTimeout},
		{"CURRENT_TTL", "10m", &cfg.CurrentTTL},
		{"FORECAST_TTL", "1h", &cfg.ForecastTTL},
		{"IMAGE_TTL", "24h", &cfg.ImageTTL},
		{"RATE_LIMIT_COOLDOWN", "60s", &cfg.RateLimitCooldown},
		{"BACKOFF_RESET", "5m", &cfg.BackoffReset},
		{"IMAGE_BATCH_DELAY", "5s", &cfg.ImageBatchDelay},
		{"IMAGE_WARM_INTERVAL", "6h", &cfg.ImageWarmInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getenvDefault(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dest = v
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := getenvTrimmed(key); v != "" {
		return v
	}
	return def
}

func getenvTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getenvInt(key string, def int) int {
	if v := getenvTrimmed(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

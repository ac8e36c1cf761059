package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "OPENWEATHER_API_KEY", "FORECAST_TTL", "MAX_FAILURES", "IMAGE_WARM_INTERVAL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Minute, cfg.CurrentTTL)
	assert.Equal(t, time.Hour, cfg.ForecastTTL)
	assert.Equal(t, 24*time.Hour, cfg.ImageTTL)
	assert.Equal(t, 60*time.Second, cfg.RateLimitCooldown)
	assert.Equal(t, 3, cfg.MaxFailures)
	assert.Equal(t, 2, cfg.ImageBatchSize)
	assert.Equal(t, 5*time.Second, cfg.ImageBatchDelay)
	assert.Equal(t, 6*time.Hour, cfg.ImageWarmInterval)
	assert.Empty(t, cfg.OpenWeatherAPIKey)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "  abcd1234efgh  ")
	t.Setenv("FORECAST_TTL", "30m")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("IMAGE_WARM_INTERVAL", "0s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "abcd1234efgh", cfg.OpenWeatherAPIKey)
	assert.Equal(t, 30*time.Minute, cfg.ForecastTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Zero(t, cfg.ImageWarmInterval)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("FORECAST_TTL", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "FORECAST_TTL")

	t.Setenv("FORECAST_TTL", "1h")
	t.Setenv("MAX_FAILURES", "0")
	_, err = Load()
	assert.ErrorContains(t, err, "MaxFailures")

	t.Setenv("MAX_FAILURES", "3")
	t.Setenv("LOG_LEVEL", "verbose")
	_, err = Load()
	assert.ErrorContains(t, err, "LogLevel")
}

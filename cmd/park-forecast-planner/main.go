package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/park-forecast-planner/internal/api/http"
	"github.com/i474232898/park-forecast-planner/internal/config"
	"github.com/i474232898/park-forecast-planner/internal/metrics"
	"github.com/i474232898/park-forecast-planner/internal/parks"
	"github.com/i474232898/park-forecast-planner/internal/resilience"
	"github.com/i474232898/park-forecast-planner/internal/scheduler"
	"github.com/i474232898/park-forecast-planner/internal/store"
	"github.com/i474232898/park-forecast-planner/internal/weather"
	"github.com/i474232898/park-forecast-planner/internal/weather/providers"
)

const serviceName = "park-forecast-planner"

func main() {
	envErr := godotenv.Load()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if envErr != nil {
		lg.Info("no .env file loaded", zap.Error(envErr))
	}

	m := metrics.New()

	// Shared HTTP client for outbound provider calls.
	httpClient := providers.NewRestyClient(cfg.HTTPTimeout)

	// Forecast source: OpenWeather when keyed, otherwise the keyless Open-Meteo API.
	var source weather.Source
	if cfg.OpenWeatherAPIKey != "" {
		source = providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey)
	} else {
		lg.Warn("OPENWEATHER_API_KEY not set; using Open-Meteo")
		source = providers.NewOpenMeteoProvider(httpClient)
	}
	if cfg.NPSAPIKey == "" {
		lg.Warn("NPS_API_KEY not set; park images will use placeholders")
	}
	lg.Info("providers configured",
		zap.String("weather_source", source.Name()),
		zap.String("openweather_key", providers.MaskKey(cfg.OpenWeatherAPIKey)),
		zap.String("nps_key", providers.MaskKey(cfg.NPSAPIKey)),
		zap.String("geocoder_key", providers.MaskKey(cfg.GeocoderAPIKey)),
	)

	// Room for the provider's in-call retries.
	callTimeout := 4 * cfg.HTTPTimeout

	// Current conditions and forecasts share one upstream, so they share a gate.
	weatherGate := resilience.NewRateLimitGate(cfg.RateLimitCooldown)
	currentFetcher := resilience.NewFetcher("current",
		store.NewTTLCache[resilience.Result[weather.CurrentConditions]](cfg.CurrentTTL),
		resilience.NewBackoffTracker(cfg.MaxFailures, cfg.BackoffReset),
		weatherGate,
		resilience.WithObserver[weather.CurrentConditions](m),
		resilience.WithLogger[weather.CurrentConditions](lg),
		resilience.WithCallTimeout[weather.CurrentConditions](callTimeout),
	)
	forecastFetcher := resilience.NewFetcher("forecast",
		store.NewTTLCache[resilience.Result[weather.ForecastPayload]](cfg.ForecastTTL),
		resilience.NewBackoffTracker(cfg.MaxFailures, cfg.BackoffReset),
		weatherGate,
		resilience.WithObserver[weather.ForecastPayload](m),
		resilience.WithLogger[weather.ForecastPayload](lg),
		resilience.WithCallTimeout[weather.ForecastPayload](callTimeout),
	)
	imageFetcher := resilience.NewFetcher("images",
		store.NewTTLCache[resilience.Result[[]string]](cfg.ImageTTL),
		resilience.NewBackoffTracker(cfg.MaxFailures, cfg.BackoffReset),
		resilience.NewRateLimitGate(cfg.RateLimitCooldown),
		resilience.WithObserver[[]string](m),
		resilience.WithLogger[[]string](lg),
		resilience.WithCallTimeout[[]string](callTimeout),
	)

	var svcOpts []weather.ServiceOption
	if cfg.GeocoderAPIKey != "" {
		svcOpts = append(svcOpts, weather.WithGeocoder(providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)))
	}
	sim := weather.NewSimulator(nil)
	weatherSvc := weather.NewService(source, currentFetcher, forecastFetcher, sim, lg.Named("weather"), svcOpts...)

	imageSvc := parks.NewImageService(
		providers.NewNPSProvider(httpClient, cfg.NPSAPIKey),
		imageFetcher,
		cfg.ImageBatchSize,
		cfg.ImageBatchDelay,
		lg.Named("images"),
	)

	// Scheduler that keeps the image cache warm.
	sched := scheduler.New(parks.Catalog, cfg.ImageWarmInterval, imageSvc, m, lg)
	if err := sched.Start(); err != nil {
		lg.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * time.Minute, // per-park ranking fetches sequentially
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				lg.Error("request failed",
					zap.String("path", c.Path()),
					zap.Any("request_id", c.Locals(requestid.ConfigDefault.ContextKey)),
					zap.Error(err),
				)
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
			"source":  weatherSvc.SourceName(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Weather:  weatherSvc,
		Images:   imageSvc,
		Parks:    parks.Catalog,
		Observer: m,
		Logger:   lg.Named("http"),
	})

	go func() {
		lg.Info("listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		lg.Error("error during shutdown", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	zc.InitialFields = map[string]interface{}{"service": serviceName}
	return zc.Build()
}

package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/park-forecast-planner/internal/parks"
)

// ImageLoader resolves imagery for a list of parks.
type ImageLoader interface {
	LoadAll(ctx context.Context, ps []parks.Park) ([]parks.ParkImages, error)
}

// WarmupObserver records warm-up durations.
type WarmupObserver interface {
	ObserveWarmup(seconds float64)
}

// Scheduler periodically warms the park image cache so that page loads rarely
// wait on the upstream image API.
type Scheduler struct {
	scheduler *gocron.Scheduler
	loader    ImageLoader
	parks     []parks.Park
	interval  time.Duration
	timeout   time.Duration
	observer  WarmupObserver
	logger    *zap.Logger
}

// New creates a new Scheduler. A zero interval disables the job.
func New(ps []parks.Park, interval time.Duration, loader ImageLoader, observer WarmupObserver, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		loader:    loader,
		parks:     ps,
		interval:  interval,
		timeout:   10 * time.Minute,
		observer:  observer,
		logger:    logger.Named("scheduler"),
	}
}

// Start schedules the warm-up job and starts the underlying scheduler. The
// first run happens immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("image warm-up disabled")
		return nil
	}
	if len(s.parks) == 0 {
		s.logger.Info("no parks configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("image warm-up scheduled", zap.Duration("interval", s.interval), zap.Int("parks", len(s.parks)))
	return nil
}

// RunOnce loads images for every park and reports how many were degraded.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.logger.Info("running image warm-up")
	start := time.Now()

	loaded, err := s.loader.LoadAll(ctx, s.parks)

	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveWarmup(elapsed.Seconds())
	}

	degraded := 0
	for _, img := range loaded {
		if img.Degraded {
			degraded++
		}
	}

	fields := []zap.Field{
		zap.Int("loaded", len(loaded)),
		zap.Int("degraded", degraded),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		s.logger.Warn("image warm-up stopped early", append(fields, zap.Error(err))...)
		return
	}
	s.logger.Info("image warm-up completed", fields...)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

package usecase

import (
	"context"
	"time"

	"StockBoard/internal/domain/repository"
	"StockBoard/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically hard-deletes cache entries older than the threshold,
// keeping storage bounded independently of the request path.
type Sweeper struct {
	cache     repository.CacheStore
	metrics   repository.Metrics
	log       *logger.Logger
	schedule  string
	threshold time.Duration
	cron      *cron.Cron
}

func NewSweeper(cache repository.CacheStore, metrics repository.Metrics, log *logger.Logger, schedule string, threshold time.Duration) *Sweeper {
	if schedule == "" {
		schedule = "@every 30m"
	}
	if threshold <= 0 {
		threshold = 24 * time.Hour
	}
	return &Sweeper{
		cache:     cache,
		metrics:   metrics,
		log:       log,
		schedule:  schedule,
		threshold: threshold,
	}
}

// Start registers the sweep job and starts the cron scheduler.
func (s *Sweeper) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("stale sweep scheduled",
		logger.String("schedule", s.schedule),
		logger.Duration("threshold", s.threshold))
	return nil
}

// Stop stops the scheduler, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.cache.DeleteStale(ctx, s.threshold)
	if err != nil {
		s.log.Warn("stale sweep failed", logger.Error(err))
		return
	}
	s.metrics.RecordSweepDeletions(deleted)
	if deleted > 0 {
		s.log.Info("stale sweep done", logger.Int64("deleted", deleted))
	}
}

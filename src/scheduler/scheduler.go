package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"

	"market-sync/src/aggregator"
	"market-sync/src/logger"
	"market-sync/src/models"
	"market-sync/src/request"
)

// -----------------------------------------------------------------------------
// Scheduler runs the periodic maintenance jobs: the optional full refresh of
// snapshots and predictions, and the cache sweep that keeps expired entries
// from piling up between requests.
// -----------------------------------------------------------------------------

type Scheduler struct {
	cfg    models.MSyncConfig
	cron   *gocron.Scheduler
	agg    *aggregator.Aggregator
	client *request.Client
	logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewScheduler(cfg models.MSyncConfig, agg *aggregator.Aggregator, client *request.Client, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		cron:   gocron.NewScheduler(time.UTC),
		agg:    agg,
		client: client,
		logger: log,
	}
}

// -----------------------------------------------------------------------------

// Start registers the jobs and launches the scheduler in the background. A
// refresh interval of zero leaves scheduled refresh off; the stream keeps the
// records current on its own.
func (s *Scheduler) Start() {
	if s.cfg.RefreshIntervalMs > 0 {
		s.cron.Every(s.cfg.RefreshIntervalMs).Milliseconds().Do(func() {
			if err := s.agg.Refresh(); err != nil {
				s.logger.Warning("Scheduled refresh failed: %v", err)
			}
		})
	}

	if s.cfg.CacheSweepIntervalMs > 0 {
		s.cron.Every(s.cfg.CacheSweepIntervalMs).Milliseconds().Do(func() {
			if removed := s.client.SweepCache(); removed > 0 {
				s.logger.Debug("Cache sweep evicted %d entries", removed)
			}
		})
	}

	s.cron.StartAsync()
	s.logger.Info("Scheduler started")
}

// -----------------------------------------------------------------------------

// Stop halts all jobs. Jobs already running finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("Scheduler stopped")
}

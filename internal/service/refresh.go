package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// StatsRefresher recomputes the overview statistics on a schedule so the
// overview page is served warm instead of triggering a full fan-out on every
// visit.
type StatsRefresher struct {
	access      *AccessService
	sampleLimit int
	schedule    string
	timeout     time.Duration
	logger      *slog.Logger
	cron        *cron.Cron
}

// NewStatsRefresher creates a refresher with a cron schedule expression such
// as "@every 5m".
func NewStatsRefresher(access *AccessService, sampleLimit int, schedule string, logger *slog.Logger) *StatsRefresher {
	return &StatsRefresher{
		access:      access,
		sampleLimit: sampleLimit,
		schedule:    schedule,
		timeout:     2 * time.Minute,
		logger:      logger,
		cron:        cron.New(),
	}
}

// Start registers the refresh job and starts the scheduler.
func (r *StatsRefresher) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, r.refresh); err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("stats refresher started", "schedule", r.schedule)
	return nil
}

// Stop stops the scheduler and returns a context that is done once any
// running job has finished.
func (r *StatsRefresher) Stop() context.Context {
	return r.cron.Stop()
}

func (r *StatsRefresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	r.access.InvalidateStats()
	start := time.Now()
	if _, err := r.access.CollectStats(ctx, r.sampleLimit); err != nil {
		r.logger.Warn("scheduled stats refresh failed", "error", err)
		return
	}
	r.logger.Debug("stats refreshed", "elapsed", time.Since(start))
}

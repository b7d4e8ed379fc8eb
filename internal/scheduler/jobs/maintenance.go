package jobs

import (
	"context"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/logger"
)

// Warmer precomputes cached chart data for the current model
type Warmer interface {
	Warm(ctx context.Context) error
}

// StatsWarmupJob fills the stats cache so the first dashboard request after a retrain
// does not pay for the aggregation
type StatsWarmupJob struct {
	warmer   Warmer
	schedule string
	logger   *logger.Logger
}

// NewStatsWarmupJob creates a new stats warmup job
func NewStatsWarmupJob(warmer Warmer, schedule string, log *logger.Logger) *StatsWarmupJob {
	return &StatsWarmupJob{
		warmer:   warmer,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *StatsWarmupJob) Name() string {
	return "stats_warmup"
}

// Schedule returns the cron schedule
func (j *StatsWarmupJob) Schedule() string {
	return j.schedule
}

// Run executes the warmup
func (j *StatsWarmupJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled stats warmup")

	if err := j.warmer.Warm(ctx); err != nil {
		return err
	}

	j.logger.Debug("Stats cache warmed")
	return nil
}

package jobs

import (
	"context"
	"fmt"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/estimation"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/logger"
)

// Refresher reloads the dataset and retrains when it changed
type Refresher interface {
	Reload(ctx context.Context, loader estimation.Loader) (bool, error)
}

// DatasetRefreshJob reloads the dataset on a schedule
// ⭐ SSOT: 주기적 재학습은 이 Job에서만
type DatasetRefreshJob struct {
	service  Refresher
	loader   estimation.Loader
	schedule string
	logger   *logger.Logger
}

// NewDatasetRefreshJob creates a new dataset refresh job
func NewDatasetRefreshJob(service Refresher, loader estimation.Loader, schedule string, log *logger.Logger) *DatasetRefreshJob {
	return &DatasetRefreshJob{
		service:  service,
		loader:   loader,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *DatasetRefreshJob) Name() string {
	return "dataset_refresh"
}

// Schedule returns the configured cron schedule (REFRESH_SCHEDULE)
func (j *DatasetRefreshJob) Schedule() string {
	return j.schedule
}

// Run reloads the dataset. An unchanged dataset is a successful no-op.
func (j *DatasetRefreshJob) Run(ctx context.Context) error {
	j.logger.WithField("source", j.loader.Name()).Info("Starting scheduled dataset refresh")

	changed, err := j.service.Reload(ctx, j.loader)
	if err != nil {
		return fmt.Errorf("dataset refresh: %w", err)
	}

	if changed {
		j.logger.Info("Dataset changed, model replaced")
	} else {
		j.logger.Debug("Dataset unchanged")
	}
	return nil
}

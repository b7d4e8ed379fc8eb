package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/dataset"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/estimation"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/modelconfig"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/config"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/database"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/httputil"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/logger"
)

// runtime bundles what every command needs after startup
type runtime struct {
	cfg       *config.Config
	log       *logger.Logger
	model     *modelconfig.Config
	modelYAML []byte
	db        *database.DB
}

// applyFlags feeds global flags into the environment so config.Load stays the only reader
func applyFlags() error {
	overrides := map[string]string{}
	if env != "" {
		overrides["ENV"] = env
	}
	if modelConfigPath != "" {
		overrides["MODEL_CONFIG"] = modelConfigPath
	}
	if dataPath != "" {
		overrides["DATASET_SOURCE"] = config.SourceCSV
		overrides["DATASET_PATH"] = dataPath
	}
	if verbose {
		overrides["LOG_LEVEL"] = "debug"
	}
	for k, v := range overrides {
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}

// loadRuntime loads env config, logger and model config
func loadRuntime() (*runtime, error) {
	if err := applyFlags(); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	model, raw, err := modelconfig.LoadOrDefault(cfg.ModelConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load model config: %w", err)
	}
	for _, w := range modelconfig.Warn(model) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	return &runtime{cfg: cfg, log: log, model: model, modelYAML: raw}, nil
}

// openDB connects once; later calls reuse the pool
func (rt *runtime) openDB(ctx context.Context) (*database.DB, error) {
	if rt.db != nil {
		return rt.db, nil
	}
	if rt.cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	db, err := database.NewContext(ctx, rt.cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	rt.db = db
	rt.log.Info("Connected to database")
	return db, nil
}

// source builds the configured dataset source
func (rt *runtime) source(ctx context.Context) (dataset.Source, error) {
	var db *database.DB
	if rt.cfg.Dataset.Source == config.SourcePostgres {
		var err error
		if db, err = rt.openDB(ctx); err != nil {
			return nil, err
		}
	}
	client := httputil.NewWithTimeout(rt.cfg, rt.log, rt.cfg.Dataset.Timeout)
	return dataset.FromConfig(rt.cfg, client, db, rt.log.Component("dataset"))
}

// loadListings reads the raw dataset from the configured source
func (rt *runtime) loadListings(ctx context.Context) ([]contracts.RawListing, string, error) {
	src, err := rt.source(ctx)
	if err != nil {
		return nil, "", err
	}
	raw, err := src.Load(ctx)
	if err != nil {
		return nil, src.Name(), err
	}
	return raw, src.Name(), nil
}

// train loads the dataset and fits one model
func (rt *runtime) train(ctx context.Context) (*estimation.TrainedModel, string, error) {
	raw, name, err := rt.loadListings(ctx)
	if err != nil {
		return nil, name, err
	}

	start := time.Now()
	tm, err := estimation.TrainOnceContext(ctx, raw, rt.model.EstimationOptions())
	if err != nil {
		return nil, name, fmt.Errorf("train model: %w", err)
	}
	rt.log.WithFields(map[string]interface{}{
		"source":   name,
		"records":  len(tm.Records()),
		"columns":  tm.Space().Len(),
		"duration": time.Since(start).String(),
	}).Info("Model trained")
	return tm, name, nil
}

// Close releases the database pool if one was opened
func (rt *runtime) Close() {
	if rt.db != nil {
		rt.db.Close()
	}
}

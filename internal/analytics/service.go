package analytics

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/estimation"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/redis"
)

// Settings 차트 기본값
type Settings struct {
	HistogramBins int
	ScatterSample int
	ScatterSeed   int64
}

// DefaultSettings 50 bins, 1000 points, seed 42.
func DefaultSettings() Settings {
	return Settings{HistogramBins: 50, ScatterSample: 1000, ScatterSeed: 42}
}

// ModelSource provides the model currently in service.
type ModelSource interface {
	Current() *estimation.TrainedModel
}

// Service serves chart data for the current model. Payloads are cached in Redis under
// the model version; the option catalog is kept in memory per version.
type Service struct {
	models   ModelSource
	cache    *redis.Cache
	settings Settings

	mu             sync.Mutex
	catalog        *Catalog
	catalogVersion string

	log zerolog.Logger
}

// NewService 새 통계 서비스 생성. cache may be nil.
func NewService(models ModelSource, cache *redis.Cache, settings Settings, log zerolog.Logger) *Service {
	return &Service{
		models:   models,
		cache:    cache,
		settings: settings,
		log:      log.With().Str("component", "analytics").Logger(),
	}
}

// Settings returns the configured defaults.
func (s *Service) Settings() Settings {
	return s.settings
}

// Regions returns mean price per province.
func (s *Service) Regions(ctx context.Context) ([]RegionStat, error) {
	tm := s.models.Current()
	if tm == nil {
		return nil, contracts.ErrNoModel
	}
	return cached(ctx, s, redis.StatsKey(tm.Version(), "regions", 0), func() ([]RegionStat, error) {
		return RegionStats(tm.Records()), nil
	})
}

// Prices returns the price histogram. bins <= 0 uses the configured default.
func (s *Service) Prices(ctx context.Context, bins int) (Histogram, error) {
	tm := s.models.Current()
	if tm == nil {
		return Histogram{}, contracts.ErrNoModel
	}
	if bins <= 0 {
		bins = s.settings.HistogramBins
	}
	return cached(ctx, s, redis.StatsKey(tm.Version(), "prices", bins), func() (Histogram, error) {
		return PriceHistogram(tm.Records(), bins)
	})
}

// Scatter returns the area–price sample. n <= 0 uses the configured default.
func (s *Service) Scatter(ctx context.Context, n int) ([]Point, error) {
	tm := s.models.Current()
	if tm == nil {
		return nil, contracts.ErrNoModel
	}
	if n <= 0 {
		n = s.settings.ScatterSample
	}
	return cached(ctx, s, redis.StatsKey(tm.Version(), "scatter", n), func() ([]Point, error) {
		return ScatterSample(tm.Records(), n, s.settings.ScatterSeed), nil
	})
}

// Catalog returns the option catalog of the current model.
func (s *Service) Catalog() (*Catalog, error) {
	tm := s.models.Current()
	if tm == nil {
		return nil, contracts.ErrNoModel
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.catalog == nil || s.catalogVersion != tm.Version() {
		s.catalog = NewCatalog(tm.Records())
		s.catalogVersion = tm.Version()
	}
	return s.catalog, nil
}

// Warm precomputes the default payloads for the current model.
func (s *Service) Warm(ctx context.Context) error {
	if _, err := s.Regions(ctx); err != nil {
		return err
	}
	if _, err := s.Prices(ctx, 0); err != nil {
		return err
	}
	if _, err := s.Scatter(ctx, 0); err != nil {
		return err
	}
	_, err := s.Catalog()
	return err
}

// cached reads through the Redis stats cache. A nil or disabled cache computes directly.
func cached[T any](ctx context.Context, s *Service, key string, fn func() (T, error)) (T, error) {
	if s.cache == nil {
		return fn()
	}
	var out T
	err := s.cache.GetOrSet(ctx, key, &out, redis.TTLStats, func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("stats cache failed")
	}
	return out, err
}

package modelconfig

import (
	"time"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/analytics"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/estimation"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/forest"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/similar"
)

// Config는 가격 모델의 전체 설정
type Config struct {
	Meta       Meta          `yaml:"meta" json:"meta"`
	Encoding   Encoding      `yaml:"encoding" json:"encoding"`
	Forest     forest.Config `yaml:"forest" json:"forest"`
	Similar    Similar       `yaml:"similar" json:"similar"`
	Stats      Stats         `yaml:"stats" json:"stats"`
	Evaluation Evaluation    `yaml:"evaluation" json:"evaluation"`
}

// Meta 메타 정보
type Meta struct {
	ModelID string `yaml:"model_id" json:"model_id"`
	Version string `yaml:"version" json:"version"`
}

// Encoding 범주형 필드 (순서가 컬럼 순서를 결정함)
type Encoding struct {
	CategoricalFields []string `yaml:"categorical_fields" json:"categorical_fields"`
}

// Similar 유사 매물 조회
type Similar struct {
	AreaTolerance float64 `yaml:"area_tolerance" json:"area_tolerance"` // 0.2 = ±20%
	Limit         int     `yaml:"limit" json:"limit"`
}

// Stats 차트 데이터
type Stats struct {
	HistogramBins int   `yaml:"histogram_bins" json:"histogram_bins"`
	ScatterSample int   `yaml:"scatter_sample" json:"scatter_sample"`
	ScatterSeed   int64 `yaml:"scatter_seed" json:"scatter_seed"`
}

// Evaluation 홀드아웃 평가
type Evaluation struct {
	TestRatio float64 `yaml:"test_ratio" json:"test_ratio"`
	Seed      int64   `yaml:"seed" json:"seed"`
}

// TrainingSnapshot records which configuration produced which model.
type TrainingSnapshot struct {
	ConfigHash     string    `json:"config_hash"`
	ConfigYAML     string    `json:"config_yaml,omitempty"`
	ModelID        string    `json:"model_id"`
	DatasetVersion string    `json:"dataset_version"`
	CreatedAt      time.Time `json:"created_at"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	fields := make([]string, len(contracts.DefaultCategoricalFields))
	for i, f := range contracts.DefaultCategoricalFields {
		fields[i] = string(f)
	}
	return &Config{
		Meta:       Meta{ModelID: "house_price_rf", Version: "1.0.0"},
		Encoding:   Encoding{CategoricalFields: fields},
		Forest:     forest.DefaultConfig(),
		Similar:    Similar{AreaTolerance: 0.2, Limit: 5},
		Stats:      Stats{HistogramBins: 50, ScatterSample: 1000, ScatterSeed: 42},
		Evaluation: Evaluation{TestRatio: 0.2, Seed: 42},
	}
}

// Fields converts the configured field names. Call after Validate.
func (c *Config) Fields() []contracts.CategoricalField {
	out := make([]contracts.CategoricalField, len(c.Encoding.CategoricalFields))
	for i, f := range c.Encoding.CategoricalFields {
		out[i] = contracts.CategoricalField(f)
	}
	return out
}

// EstimationOptions returns the training options for the estimation service.
func (c *Config) EstimationOptions() estimation.Options {
	return estimation.Options{
		Fields: c.Fields(),
		Forest: c.Forest,
	}
}

// SimilarOptions returns the similar-listings settings.
func (c *Config) SimilarOptions() similar.Options {
	return similar.Options{
		AreaTolerance: c.Similar.AreaTolerance,
		Limit:         c.Similar.Limit,
	}
}

// AnalyticsSettings returns the chart defaults.
func (c *Config) AnalyticsSettings() analytics.Settings {
	return analytics.Settings{
		HistogramBins: c.Stats.HistogramBins,
		ScatterSample: c.Stats.ScatterSample,
		ScatterSeed:   c.Stats.ScatterSeed,
	}
}

package modelconfig

import (
	"fmt"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.ModelID == "" {
		return ValidationError{"meta.model_id", "required"}
	}

	// === Encoding ===
	seen := make(map[string]bool)
	for i, f := range cfg.Encoding.CategoricalFields {
		if !contracts.CategoricalField(f).Valid() {
			return ValidationError{
				Field:   fmt.Sprintf("encoding.categorical_fields[%d]", i),
				Message: fmt.Sprintf("unknown field %q", f),
			}
		}
		if seen[f] {
			return ValidationError{
				Field:   fmt.Sprintf("encoding.categorical_fields[%d]", i),
				Message: fmt.Sprintf("duplicate field %q", f),
			}
		}
		seen[f] = true
	}

	// === Forest ===
	if err := cfg.Forest.Validate(); err != nil {
		return ValidationError{"forest", err.Error()}
	}

	// === Similar ===
	if cfg.Similar.AreaTolerance < 0 || cfg.Similar.AreaTolerance >= 1 {
		return ValidationError{"similar.area_tolerance", "must be in [0, 1)"}
	}
	if cfg.Similar.Limit < 1 {
		return ValidationError{"similar.limit", "must be >= 1"}
	}

	// === Stats ===
	if cfg.Stats.HistogramBins < 1 {
		return ValidationError{"stats.histogram_bins", "must be >= 1"}
	}
	if cfg.Stats.ScatterSample < 1 {
		return ValidationError{"stats.scatter_sample", "must be >= 1"}
	}

	// === Evaluation ===
	if cfg.Evaluation.TestRatio <= 0 || cfg.Evaluation.TestRatio >= 1 {
		return ValidationError{"evaluation.test_ratio", "must be in (0, 1)"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 트리 수가 적으면 추정값 분산이 큼
	if cfg.Forest.Trees < 50 {
		warnings = append(warnings, Warning{
			Code:    "FEW_TREES",
			Message: fmt.Sprintf("forest.trees=%d < 50: estimates vary strongly between seeds", cfg.Forest.Trees),
		})
	}

	// 위치 필드가 빠지면 지역 가격 차이를 학습할 수 없음
	hasProvince := false
	for _, f := range cfg.Encoding.CategoricalFields {
		if f == string(contracts.FieldProvince) {
			hasProvince = true
		}
	}
	if !hasProvince {
		warnings = append(warnings, Warning{
			Code:    "NO_PROVINCE",
			Message: "province is not encoded: regional price levels are ignored",
		})
	}

	if cfg.Forest.MaxDepth > 0 && cfg.Forest.MaxDepth < 5 {
		warnings = append(warnings, Warning{
			Code:    "SHALLOW_TREES",
			Message: fmt.Sprintf("forest.max_depth=%d: trees may underfit", cfg.Forest.MaxDepth),
		})
	}

	return warnings
}

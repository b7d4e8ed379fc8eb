package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/config"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/logger"
)

// testLoggerCmd represents the test-logger command
var testLoggerCmd = &cobra.Command{
	Use:   "test-logger",
	Short: "Logger 기능 테스트",
	Long: `구조화된 로깅 기능을 테스트합니다.

이 명령어는:
- JSON/Console 포맷 테스트
- 로그 레벨 테스트
- 구조화된 필드 로깅
- 에러 컨텍스트 로깅

Example:
  go run ./cmd/estimator test-logger`,
	RunE: runTestLogger,
}

func init() {
	rootCmd.AddCommand(testLoggerCmd)
}

func runTestLogger(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Logger Test ===")

	tests := []struct {
		title string
		cfg   *config.Config
		run   func(*logger.Logger)
	}{
		{"1. JSON Format (Production)", loggerConfig("production", "info", "json"), logLevels},
		{"2. Console Format (Development)", loggerConfig("development", "debug", "console"), logLevels},
		{"3. Structured Logging with Fields", loggerConfig("production", "info", "json"), logStructured},
		{"4. Error Logging", loggerConfig("production", "error", "json"), logErrors},
	}

	for _, tt := range tests {
		fmt.Println(tt.title)
		fmt.Println("--------------------------------")
		tt.run(logger.New(tt.cfg))
		fmt.Println()
	}

	fmt.Println("✅ All logger tests completed!")
	return nil
}

func loggerConfig(env, level, format string) *config.Config {
	return &config.Config{
		Env:       env,
		LogLevel:  level,
		LogFormat: format,
	}
}

func logLevels(log *logger.Logger) {
	log.Debug("Parsing dataset header")
	log.Info("Model trained")
	log.Warn("Dataset unchanged, skipping retrain")
	log.Error("Failed to load dataset")
}

func logStructured(log *logger.Logger) {
	// Single field
	log.WithField("source", "processed_turkish_house_sales.csv").Info("Dataset loaded")

	// Multiple fields
	log.WithFields(map[string]interface{}{
		"province":     "İstanbul",
		"district":     "Kadıköy",
		"neighborhood": "Moda",
		"area":         120,
		"price":        4_250_000,
	}).Info("Estimate served")

	// Component logger (internal packages)
	comp := log.Component("estimation")
	comp.Info().Int("records", 18_342).Int("columns", 912).Msg("model trained")
}

func logErrors(log *logger.Logger) {
	// Simple error
	err := errors.New("connection timeout")
	log.WithError(err).Error("Failed to fetch dataset")

	// Error with context
	log.WithError(err).
		WithFields(map[string]interface{}{
			"retry_count": 3,
			"timeout_ms":  30000,
			"source":      "url",
		}).
		Error("Dataset refresh failed after retries")
}

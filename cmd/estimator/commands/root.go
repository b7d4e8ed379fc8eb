package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	env             string
	modelConfigPath string
	dataPath        string
	verbose         bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "estimator",
	Short: "Turkish house price estimator",
	Long: `House Price Estimator CLI

Türkiye konut ilanlarından fiyat tahmini.
데이터셋 정제 → 원-핫 인코딩 → 랜덤 포레스트 학습 → 추정.

Usage:
  go run ./cmd/estimator [command]

Examples:
  go run ./cmd/estimator api
  go run ./cmd/estimator train --data processed_turkish_house_sales.csv
  go run ./cmd/estimator estimate --area 120 --rooms 3+1 --province İstanbul --district Kadıköy --neighborhood Moda --seller Sahibinden
  go run ./cmd/estimator import --file listings.csv --replace
  go run ./cmd/estimator test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().StringVar(&modelConfigPath, "model-config", "", "model config YAML (default is $MODEL_CONFIG or built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "CSV dataset path; overrides DATASET_SOURCE/DATASET_PATH")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (LOG_LEVEL=debug)")
}

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/estimation"
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "홀드아웃 평가",
	Long: `데이터셋을 학습/검증으로 나누어 모델 오차를 측정합니다.
인코더와 포레스트는 학습 분할에만 적합됩니다.

기본 비율과 시드는 모델 설정(evaluation.test_ratio, evaluation.seed)에서 읽습니다.

Example:
  go run ./cmd/estimator evaluate
  go run ./cmd/estimator evaluate --test-ratio 0.25 --seed 7`,
	RunE: runEvaluate,
}

var (
	evalRatio float64
	evalSeed  int64
)

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().Float64Var(&evalRatio, "test-ratio", 0, "holdout share in (0, 1); 0 = model config")
	evaluateCmd.Flags().Int64Var(&evalSeed, "seed", 0, "split seed; 0 = model config")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ratio, seed := rt.model.Evaluation.TestRatio, rt.model.Evaluation.Seed
	if evalRatio != 0 {
		ratio = evalRatio
	}
	if evalSeed != 0 {
		seed = evalSeed
	}

	start := time.Now()
	raw, source, err := rt.loadListings(context.Background())
	if err != nil {
		PrintError(err.Error())
		return err
	}

	ev, err := estimation.Evaluate(raw, rt.model.EstimationOptions(), ratio, seed)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintHeader("Holdout Evaluation")
	PrintKeyValue("Source", source, 10)
	PrintKeyValue("Split", fmt.Sprintf("%d train / %d test (ratio %.2f, seed %d)", ev.Train, ev.Test, ratio, seed), 10)
	PrintKeyValue("Dropped", fmt.Sprintf("%d of %d", ev.Report.Dropped(), ev.Report.Input), 10)
	PrintKeyValue("Columns", fmt.Sprintf("%d", ev.Columns), 10)
	PrintSeparator()
	PrintKeyValue("MAE", FormatPrice(ev.Metrics.MAE), 10)
	PrintKeyValue("RMSE", FormatPrice(ev.Metrics.RMSE), 10)
	PrintKeyValue("R²", fmt.Sprintf("%.4f", ev.Metrics.R2), 10)

	PrintCompletion("Evaluation", time.Since(start))
	return nil
}

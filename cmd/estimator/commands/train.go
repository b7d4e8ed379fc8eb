package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "모델 학습 (1회)",
	Long: `데이터셋을 로드하고 모델을 한 번 학습한 뒤 요약을 출력합니다.

이 명령어는:
- 데이터셋 로드 (DATASET_SOURCE)
- 정제 통계 출력 (버려진 행 사유별)
- 피처 컬럼 수, 포레스트 설정
- 상위 피처 중요도

Example:
  go run ./cmd/estimator train
  go run ./cmd/estimator train --data processed_turkish_house_sales.csv --top 20`,
	RunE: runTrain,
}

var (
	trainTop int
)

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().IntVar(&trainTop, "top", 10, "number of feature importances to list")
}

func runTrain(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	start := time.Now()
	tm, source, err := rt.train(context.Background())
	if err != nil {
		PrintError(err.Error())
		return err
	}

	rep := tm.Report()
	fc := tm.ForestConfig()

	PrintHeader("Training Summary")
	PrintKeyValue("Source", source, 16)
	PrintKeyValue("Version", shortVersion(tm.Version()), 16)
	PrintKeyValue("Input rows", fmt.Sprintf("%d", rep.Input), 16)
	PrintKeyValue("Kept", fmt.Sprintf("%d", rep.Kept), 16)
	PrintKeyValue("Bad room count", fmt.Sprintf("%d", rep.BadRoomCount), 16)
	PrintKeyValue("Missing area", fmt.Sprintf("%d", rep.MissingArea), 16)
	PrintKeyValue("Missing price", fmt.Sprintf("%d", rep.MissingPrice), 16)
	PrintKeyValue("Missing location", fmt.Sprintf("%d", rep.MissingLocation), 16)
	PrintKeyValue("Columns", fmt.Sprintf("%d", tm.Space().Len()), 16)
	PrintKeyValue("Trees", fmt.Sprintf("%d (seed %d)", fc.Trees, fc.Seed), 16)
	PrintSeparator()

	if trainTop > 0 {
		fmt.Println("📊 Feature Importances:")
		widths := []int{40, 10}
		PrintTableHeader([]string{"Column", "Share"}, widths)
		for _, fi := range tm.Importances(trainTop) {
			PrintTableRow([]string{fi.Column, fmt.Sprintf("%.4f", fi.Importance)}, widths)
		}
	}

	PrintCompletion("Training", time.Since(start))
	return nil
}

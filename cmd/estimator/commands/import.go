package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/dataset"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/normalize"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "CSV/HTML 데이터셋을 PostgreSQL로 적재",
	Long: `파일 데이터셋을 listings 테이블로 적재합니다.
테이블이 없으면 생성합니다. 원본 행은 정제 없이 그대로 저장되고,
정제는 학습 시점에 수행됩니다.

이 명령어는:
- CSV (.csv) 또는 HTML 표 (.html, .htm) 파싱
- 한 트랜잭션으로 배치 INSERT
- --replace: 기존 행 삭제 후 적재

Example:
  go run ./cmd/estimator import --file processed_turkish_house_sales.csv
  go run ./cmd/estimator import --file export.html --replace --table listings_2023`,
	RunE: runImport,
}

var (
	importFile    string
	importTable   string
	importReplace bool
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importFile, "file", "", "dataset file (.csv, .html)")
	importCmd.Flags().StringVar(&importTable, "table", "", "target table (default is $DATASET_TABLE)")
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "delete existing rows first")
	_ = importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Listings Import ===")

	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	table := rt.cfg.Dataset.Table
	if importTable != "" {
		table = importTable
	}

	var src dataset.Source
	switch strings.ToLower(filepath.Ext(importFile)) {
	case ".csv":
		src = dataset.NewCSVFile(importFile, rt.log.Component("dataset"))
	case ".html", ".htm":
		src = dataset.NewHTMLSource(importFile, "", nil, rt.log.Component("dataset"))
	default:
		err := fmt.Errorf("unsupported file type %q (want .csv or .html)", filepath.Ext(importFile))
		PrintError(err.Error())
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	raw, err := src.Load(ctx)
	if err != nil {
		PrintError(err.Error())
		return err
	}
	PrintSuccess(fmt.Sprintf("Parsed %d rows from %s", len(raw), src.Name()))

	// 적재 전 미리보기: 학습에 쓰일 행 수
	_, rep := normalize.CleanWithReport(raw)
	PrintInfo(fmt.Sprintf("%d rows usable for training, %d would be dropped", rep.Kept, rep.Dropped()))

	db, err := rt.openDB(ctx)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	repo := dataset.NewRepository(db, table, rt.log.Component("dataset"))
	n, err := repo.Import(ctx, raw, importReplace)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("Imported %d rows into %q (%d total)", n, table, total))
	PrintCompletion("Import", time.Since(start))
	return nil
}

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/dataset"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/normalize"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/similar"
)

// similarCmd represents the similar command
var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "유사 매물 조회",
	Long: `같은 il/ilçe/mahalle에서 면적이 ±허용오차 안에 있는 매물을 가격순으로 보여줍니다.
모델 학습 없이 정제된 데이터셋에서 바로 조회합니다.
postgres 소스는 위치/면적 조건을 SQL로 먼저 좁힙니다.

Example:
  go run ./cmd/estimator similar --province İstanbul --district Kadıköy --neighborhood Moda --area 120`,
	RunE: runSimilar,
}

var (
	similarCriteria similar.Criteria
	similarLimit    int
)

func init() {
	rootCmd.AddCommand(similarCmd)

	f := similarCmd.Flags()
	f.StringVar(&similarCriteria.Province, "province", "", "province (il)")
	f.StringVar(&similarCriteria.District, "district", "", "district (ilçe)")
	f.StringVar(&similarCriteria.Neighborhood, "neighborhood", "", "neighborhood (mahalle)")
	f.Float64Var(&similarCriteria.Area, "area", 0, "net area in m²")
	f.IntVar(&similarLimit, "limit", 0, "max listings; 0 = model config")
}

func runSimilar(cmd *cobra.Command, args []string) error {
	if similarCriteria.Province == "" || similarCriteria.District == "" || similarCriteria.Area <= 0 {
		err := fmt.Errorf("--province, --district and a positive --area are required")
		PrintError(err.Error())
		return err
	}

	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	opts := rt.model.SimilarOptions()
	if similarLimit > 0 {
		opts.Limit = similarLimit
	}

	ctx := context.Background()
	src, err := rt.source(ctx)
	if err != nil {
		return err
	}

	var raw []contracts.RawListing
	if repo, ok := src.(*dataset.Repository); ok {
		lo, hi := similarCriteria.Bounds(opts.AreaTolerance)
		raw, err = repo.List(ctx, dataset.Filter{
			Province:     similarCriteria.Province,
			District:     similarCriteria.District,
			Neighborhood: similarCriteria.Neighborhood,
			MinArea:      lo,
			MaxArea:      hi,
		})
	} else {
		raw, err = src.Load(ctx)
	}
	if err != nil {
		PrintError(err.Error())
		return err
	}

	found := similar.Find(normalize.CleanDataset(raw), similarCriteria, opts)
	printListings(fmt.Sprintf("Similar listings in %s / %s / %s", similarCriteria.Province, similarCriteria.District, similarCriteria.Neighborhood), found)
	return nil
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/estimation"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/similar"
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "단일 매물 가격 추정",
	Long: `모델을 학습한 뒤 한 건의 매물 가격을 추정합니다.
학습 데이터에 없는 지역/판매자 유형도 오류 없이 추정됩니다.

Example:
  go run ./cmd/estimator estimate --area 120 --rooms 3+1 \
    --province İstanbul --district Kadıköy --neighborhood Moda --seller Sahibinden
  go run ./cmd/estimator estimate ... --json`,
	RunE: runEstimate,
}

var (
	estimateQuery contracts.Query
	estimateJSON  bool
)

func init() {
	rootCmd.AddCommand(estimateCmd)

	f := estimateCmd.Flags()
	f.Float64Var(&estimateQuery.Area, "area", 0, "net area in m²")
	f.StringVar(&estimateQuery.RoomCount, "rooms", "", `room count, e.g. "3+1"`)
	f.StringVar(&estimateQuery.Province, "province", "", "province (il)")
	f.StringVar(&estimateQuery.District, "district", "", "district (ilçe)")
	f.StringVar(&estimateQuery.Neighborhood, "neighborhood", "", "neighborhood (mahalle)")
	f.StringVar(&estimateQuery.SellerType, "seller", "", "seller type")
	f.BoolVar(&estimateJSON, "json", false, "print the result as JSON")
}

// estimateResult mirrors the POST /api/estimate response
type estimateResult struct {
	Price        float64                 `json:"price"`
	ModelVersion string                  `json:"model_version"`
	Similar      []contracts.HouseRecord `json:"similar"`
}

func runEstimate(cmd *cobra.Command, args []string) error {
	// 잘못된 질의는 학습 전에 거름
	if err := estimateQuery.Validate(); err != nil {
		PrintError(err.Error())
		return err
	}

	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	tm, _, err := rt.train(context.Background())
	if err != nil {
		PrintError(err.Error())
		return err
	}

	price, err := estimation.Estimate(tm, estimateQuery)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	res := estimateResult{
		Price:        price,
		ModelVersion: tm.Version(),
		Similar:      similar.Find(tm.Records(), similar.FromQuery(estimateQuery), rt.model.SimilarOptions()),
	}

	if estimateJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	PrintHeader("Price Estimate")
	PrintKeyValue("Location", fmt.Sprintf("%s / %s / %s", estimateQuery.Province, estimateQuery.District, estimateQuery.Neighborhood), 10)
	PrintKeyValue("Area", fmt.Sprintf("%.0f m²", estimateQuery.Area), 10)
	PrintKeyValue("Rooms", estimateQuery.RoomCount, 10)
	PrintKeyValue("Seller", estimateQuery.SellerType, 10)
	PrintKeyValue("Model", shortVersion(res.ModelVersion), 10)
	PrintSeparator()
	PrintSuccess("Estimated price: " + FormatPrice(res.Price))

	printListings("Similar listings", res.Similar)
	return nil
}

// printListings renders records as a table
func printListings(title string, records []contracts.HouseRecord) {
	fmt.Println()
	if len(records) == 0 {
		PrintInfo(title + ": none")
		return
	}
	fmt.Printf("🏠 %s (%d):\n", title, len(records))
	widths := []int{8, 6, 18, 16, 18}
	PrintTableHeader([]string{"Area", "Rooms", "Neighborhood", "Seller", "Price"}, widths)
	for _, r := range records {
		PrintTableRow([]string{
			fmt.Sprintf("%.0f", r.Area),
			fmt.Sprintf("%g", r.RoomCount),
			r.Neighborhood,
			r.SellerType,
			FormatPrice(r.Price),
		}, widths)
	}
}

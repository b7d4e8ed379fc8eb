package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/analytics"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/normalize"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "데이터셋 통계",
	Long: `정제된 데이터셋의 차트용 통계를 출력합니다.

이 명령어는:
- il별 평균 가격 (내림차순)
- 가격 히스토그램
- 선택 가능한 il/ilçe/satıcı 수

Example:
  go run ./cmd/estimator stats
  go run ./cmd/estimator stats --bins 20 --regions 10`,
	RunE: runStats,
}

var (
	statsBins    int
	statsRegions int
)

// histogramBarWidth longest bar in characters
const histogramBarWidth = 40

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().IntVar(&statsBins, "bins", 0, "histogram bins; 0 = model config")
	statsCmd.Flags().IntVar(&statsRegions, "regions", 15, "provinces to list; 0 = all")
}

func runStats(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	raw, source, err := rt.loadListings(context.Background())
	if err != nil {
		PrintError(err.Error())
		return err
	}
	records, rep := normalize.CleanWithReport(raw)

	bins := statsBins
	if bins == 0 {
		bins = rt.model.AnalyticsSettings().HistogramBins
	}
	hist, err := analytics.PriceHistogram(records, bins)
	if err != nil {
		PrintError(err.Error())
		return err
	}
	catalog := analytics.NewCatalog(records)

	PrintHeader("Dataset Statistics")
	PrintKeyValue("Source", source, 12)
	PrintKeyValue("Listings", fmt.Sprintf("%d kept of %d", rep.Kept, rep.Input), 12)
	PrintKeyValue("Provinces", fmt.Sprintf("%d", len(catalog.Provinces())), 12)
	PrintKeyValue("Seller types", strings.Join(catalog.SellerTypes(), ", "), 12)
	PrintKeyValue("Mean", FormatPrice(hist.Mean), 12)
	PrintKeyValue("Median", FormatPrice(hist.Median), 12)
	PrintKeyValue("Std dev", FormatPrice(hist.StdDev), 12)
	PrintSeparator()

	regions := analytics.RegionStats(records)
	if statsRegions > 0 && len(regions) > statsRegions {
		regions = regions[:statsRegions]
	}
	fmt.Println("📍 Mean price by province:")
	widths := []int{18, 8, 18}
	PrintTableHeader([]string{"Province", "Count", "Mean"}, widths)
	for _, r := range regions {
		PrintTableRow([]string{r.Province, fmt.Sprintf("%d", r.Count), FormatPrice(r.MeanPrice)}, widths)
	}

	fmt.Println()
	fmt.Println("📊 Price distribution:")
	printHistogram(hist)
	return nil
}

func printHistogram(h analytics.Histogram) {
	peak := 0
	for _, b := range h.Bins {
		peak = max(peak, b.Count)
	}
	if peak == 0 {
		PrintInfo("no listings")
		return
	}
	for _, b := range h.Bins {
		bar := strings.Repeat("█", b.Count*histogramBarWidth/peak)
		fmt.Printf("   %16s  %-*s %d\n", FormatPrice(b.Lo), histogramBarWidth, bar, b.Count)
	}
}

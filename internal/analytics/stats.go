// Package analytics derives read-only chart data from the cleaned dataset.
package analytics

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
)

// RegionStat 지역별 평균 가격
type RegionStat struct {
	Province  string  `json:"province"`
	MeanPrice float64 `json:"mean_price"`
	Count     int     `json:"count"`
}

// RegionStats returns the mean price per province, most expensive first.
// Provinces with the same mean are ordered by name.
func RegionStats(records []contracts.HouseRecord) []RegionStat {
	prices := make(map[string][]float64)
	for _, r := range records {
		prices[r.Province] = append(prices[r.Province], r.Price)
	}

	out := make([]RegionStat, 0, len(prices))
	for province, ps := range prices {
		out = append(out, RegionStat{
			Province:  province,
			MeanPrice: stat.Mean(ps, nil),
			Count:     len(ps),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanPrice != out[j].MeanPrice {
			return out[i].MeanPrice > out[j].MeanPrice
		}
		return out[i].Province < out[j].Province
	})
	return out
}

// Bin is one histogram bucket, [Lo, Hi) except the last which includes Hi.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Histogram 가격 분포
type Histogram struct {
	Bins   []Bin   `json:"bins"`
	Total  int     `json:"total"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
}

// PriceHistogram buckets prices into equal-width bins between the minimum and maximum.
func PriceHistogram(records []contracts.HouseRecord, bins int) (Histogram, error) {
	if bins < 1 {
		return Histogram{}, fmt.Errorf("bins must be positive, got %d", bins)
	}
	if len(records) == 0 {
		return Histogram{Bins: []Bin{}}, nil
	}

	x := make([]float64, len(records))
	for i, r := range records {
		x[i] = r.Price
	}
	sort.Float64s(x)

	lo, hi := x[0], x[len(x)-1]
	dividers := make([]float64, bins+1)
	if lo == hi {
		for i := range dividers {
			dividers[i] = lo
		}
	} else {
		floats.Span(dividers, lo, hi)
	}
	// stat.Histogram은 마지막 경계를 포함하지 않으므로 최댓값이 들어가도록 살짝 올림
	edges := append([]float64(nil), dividers...)
	edges[bins] = math.Nextafter(hi, math.Inf(1))
	if lo == hi {
		for i := 1; i < bins; i++ {
			edges[i] = edges[bins]
		}
	}

	counts := stat.Histogram(nil, edges, x, nil)

	h := Histogram{
		Bins:   make([]Bin, bins),
		Total:  len(x),
		Median: stat.Quantile(0.5, stat.Empirical, x, nil),
	}
	h.Mean, h.StdDev = stat.MeanStdDev(x, nil)
	if len(x) < 2 {
		h.StdDev = 0
	}
	for i := range h.Bins {
		h.Bins[i] = Bin{Lo: dividers[i], Hi: dividers[i+1], Count: int(counts[i])}
	}
	return h, nil
}

// Point 면적-가격 산점도 한 점
type Point struct {
	Area     float64 `json:"area"`
	Price    float64 `json:"price"`
	Province string  `json:"province"`
}

// ScatterSample draws at most n records without replacement. The draw is fixed by seed
// and points keep dataset order.
func ScatterSample(records []contracts.HouseRecord, n int, seed int64) []Point {
	if n <= 0 {
		return []Point{}
	}
	idx := make([]int, 0, min(n, len(records)))
	if len(records) <= n {
		for i := range records {
			idx = append(idx, i)
		}
	} else {
		rnd := rand.New(rand.NewSource(seed))
		idx = append(idx, rnd.Perm(len(records))[:n]...)
		sort.Ints(idx)
	}

	out := make([]Point, len(idx))
	for i, j := range idx {
		r := records[j]
		out[i] = Point{Area: r.Area, Price: r.Price, Province: r.Province}
	}
	return out
}

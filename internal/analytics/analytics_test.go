package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
)

func rec(province, district, neighborhood, seller string, area, price float64) contracts.HouseRecord {
	return contracts.HouseRecord{
		Area: area, RoomCount: 3, Province: province, District: district,
		Neighborhood: neighborhood, SellerType: seller, Price: price,
	}
}

func records() []contracts.HouseRecord {
	return []contracts.HouseRecord{
		rec("İstanbul", "Kadıköy", "Moda", "owner", 100, 3_000_000),
		rec("İstanbul", "Beşiktaş", "Levent", "agency", 120, 5_000_000),
		rec("Ankara", "Çankaya", "Bahçelievler", "owner", 110, 1_500_000),
		rec("Ankara", "Çankaya", "Ayrancı", "bank", 90, 1_300_000),
		rec("İzmir", "Bornova", "Erzene", "", 95, 2_000_000),
		rec("İstanbul", "Kadıköy", "", "owner", 80, 1_000_000),
	}
}

func TestRegionStats(t *testing.T) {
	got := RegionStats(records())

	require.Len(t, got, 3)
	assert.Equal(t, RegionStat{Province: "İstanbul", MeanPrice: 3_000_000, Count: 3}, got[0])
	assert.Equal(t, RegionStat{Province: "İzmir", MeanPrice: 2_000_000, Count: 1}, got[1])
	assert.Equal(t, RegionStat{Province: "Ankara", MeanPrice: 1_400_000, Count: 2}, got[2])

	assert.Empty(t, RegionStats(nil))
}

func TestRegionStats_TieOrderedByName(t *testing.T) {
	got := RegionStats([]contracts.HouseRecord{
		rec("B", "x", "", "", 1, 10),
		rec("A", "x", "", "", 1, 10),
	})
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Province)
}

func TestPriceHistogram(t *testing.T) {
	var rs []contracts.HouseRecord
	for i := 0; i <= 10; i++ {
		rs = append(rs, rec("A", "x", "", "", 100, float64(i*10)))
	}

	h, err := PriceHistogram(rs, 5)
	require.NoError(t, err)

	require.Len(t, h.Bins, 5)
	assert.Equal(t, 11, h.Total)
	assert.Equal(t, 0.0, h.Bins[0].Lo)
	assert.Equal(t, 100.0, h.Bins[4].Hi)

	// [0,20) [20,40) [40,60) [60,80) [80,100]
	counts := make([]int, len(h.Bins))
	sum := 0
	for i, b := range h.Bins {
		counts[i] = b.Count
		sum += b.Count
	}
	assert.Equal(t, []int{2, 2, 2, 2, 3}, counts)
	assert.Equal(t, 11, sum)
	assert.InDelta(t, 50.0, h.Mean, 1e-9)
	assert.InDelta(t, 50.0, h.Median, 1e-9)
}

func TestPriceHistogram_Degenerate(t *testing.T) {
	h, err := PriceHistogram([]contracts.HouseRecord{rec("A", "x", "", "", 1, 7)}, 3)
	require.NoError(t, err)
	require.Len(t, h.Bins, 3)
	assert.Equal(t, 1, h.Bins[0].Count)
	assert.Equal(t, 0, h.Bins[1].Count+h.Bins[2].Count)
	assert.Zero(t, h.StdDev)

	h, err = PriceHistogram(nil, 50)
	require.NoError(t, err)
	assert.Empty(t, h.Bins)

	_, err = PriceHistogram(records(), 0)
	assert.Error(t, err)
}

func TestScatterSample(t *testing.T) {
	rs := records()

	all := ScatterSample(rs, 1000, 42)
	require.Len(t, all, len(rs))
	assert.Equal(t, Point{Area: 100, Price: 3_000_000, Province: "İstanbul"}, all[0])

	a := ScatterSample(rs, 3, 42)
	b := ScatterSample(rs, 3, 42)
	require.Len(t, a, 3)
	assert.Equal(t, a, b, "same seed must draw the same sample")

	seen := map[Point]bool{}
	for _, p := range a {
		assert.False(t, seen[p], "sampled twice")
		seen[p] = true
	}

	assert.Empty(t, ScatterSample(rs, 0, 42))
}

func TestCatalog(t *testing.T) {
	c := NewCatalog(records())

	assert.Equal(t, []string{"Ankara", "İstanbul", "İzmir"}, c.Provinces())
	assert.Equal(t, []string{"Beşiktaş", "Kadıköy"}, c.Districts("İstanbul"))
	assert.Equal(t, []string{"Ayrancı", "Bahçelievler"}, c.Neighborhoods("Ankara", "Çankaya"))
	assert.Equal(t, []string{"Moda"}, c.Neighborhoods("İstanbul", "Kadıköy"))
	assert.Equal(t, []string{"agency", "bank", "owner"}, c.SellerTypes())

	assert.Empty(t, c.Districts("Bursa"))
	assert.NotNil(t, c.Districts("Bursa"))

	// 반환값 수정이 카탈로그에 영향 없음
	p := c.Provinces()
	p[0] = "X"
	assert.Equal(t, "Ankara", c.Provinces()[0])
}

package similar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
)

func moda(area, price float64) contracts.HouseRecord {
	return contracts.HouseRecord{
		Area: area, RoomCount: 3, Province: "İstanbul", District: "Kadıköy", Neighborhood: "Moda",
		SellerType: "owner", Price: price,
	}
}

func dataset() []contracts.HouseRecord {
	other := moda(100, 1)
	other.Neighborhood = "Fenerbahçe"
	otherProvince := moda(100, 2)
	otherProvince.Province = "Ankara"

	return []contracts.HouseRecord{
		moda(79.99, 100),
		moda(80, 900),
		moda(120, 800),
		moda(120.01, 50),
		moda(100, 700),
		moda(95, 700),
		moda(110, 600),
		moda(105, 1000),
		moda(90, 650),
		other,
		otherProvince,
	}
}

func TestFind_Properties(t *testing.T) {
	c := Criteria{Province: "İstanbul", District: "Kadıköy", Neighborhood: "Moda", Area: 100}
	got := Find(dataset(), c, DefaultOptions())

	require.Len(t, got, 5)
	for i, r := range got {
		assert.GreaterOrEqual(t, r.Area, 80.0)
		assert.LessOrEqual(t, r.Area, 120.0)
		assert.Equal(t, "İstanbul", r.Province)
		assert.Equal(t, "Kadıköy", r.District)
		assert.Equal(t, "Moda", r.Neighborhood)
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].Price, r.Price)
		}
	}

	// 600, 650, 700(100m²), 700(95m²), 800: 동일 가격은 입력 순서 유지
	assert.Equal(t, []float64{600, 650, 700, 700, 800}, []float64{got[0].Price, got[1].Price, got[2].Price, got[3].Price, got[4].Price})
	assert.Equal(t, 100.0, got[2].Area)
	assert.Equal(t, 95.0, got[3].Area)
}

func TestFind_BoundsInclusive(t *testing.T) {
	c := Criteria{Province: "İstanbul", District: "Kadıköy", Neighborhood: "Moda", Area: 100}
	got := Find(dataset(), c, Options{AreaTolerance: 0.2})

	areas := make(map[float64]bool)
	for _, r := range got {
		areas[r.Area] = true
	}
	assert.True(t, areas[80])
	assert.True(t, areas[120])
	assert.False(t, areas[79.99])
	assert.False(t, areas[120.01])
	assert.Len(t, got, 7)
}

func TestFind_NoMatch(t *testing.T) {
	got := Find(dataset(), Criteria{Province: "İzmir", District: "Bornova", Neighborhood: "Erzene", Area: 100}, DefaultOptions())
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, Find(nil, Criteria{Area: 100}, DefaultOptions()))
}

func TestFind_DoesNotReorderInput(t *testing.T) {
	records := dataset()
	before := append([]contracts.HouseRecord(nil), records...)
	Find(records, Criteria{Province: "İstanbul", District: "Kadıköy", Neighborhood: "Moda", Area: 100}, DefaultOptions())
	assert.Equal(t, before, records)
}

func TestFromQuery(t *testing.T) {
	c := FromQuery(contracts.Query{Area: 90, RoomCount: "2+1", Province: " İstanbul ", District: "Kadıköy", Neighborhood: "Moda", SellerType: "owner"})
	assert.Equal(t, Criteria{Province: "İstanbul", District: "Kadıköy", Neighborhood: "Moda", Area: 90}, c)

	lo, hi := c.Bounds(0.2)
	assert.InDelta(t, 72.0, lo, 1e-9)
	assert.InDelta(t, 108.0, hi, 1e-9)
}

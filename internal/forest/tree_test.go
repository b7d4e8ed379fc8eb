package forest

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hierarchicalData mimics the encoded listings: scaled area and room count,
// then one-hot provinces, districts and neighborhoods nested under each other.
func hierarchicalData(n, provinces, districts, neighborhoods int, seed int64) ([][]float64, []float64) {
	rnd := rand.New(rand.NewSource(seed))
	width := 2 + provinces + districts + neighborhoods
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := range x {
		hood := rnd.Intn(neighborhoods)
		district := hood % districts
		province := district % provinces

		row := make([]float64, width)
		row[0] = rnd.NormFloat64()
		row[1] = float64(rnd.Intn(6)) - 2.5
		row[2+province] = 1
		row[2+provinces+district] = 1
		row[2+provinces+districts+hood] = 1
		x[i] = row

		y[i] = 1e6*(1+row[0]*0.3) + float64(province)*5e4 + float64(hood%7)*1e4 + rnd.Float64()*1e3
	}
	return x, y
}

// sortedLayout treats every column as continuous so bestSplit sorts all of them.
func sortedLayout(x [][]float64) *layout {
	columns := make([]column, len(x[0]))
	for f := range columns {
		columns[f] = column{kind: columnContinuous}
	}
	return &layout{columns: columns, active: make([][]int, len(x))}
}

func newTestBuilder(x [][]float64, y []float64, cfg Config, lay *layout) *builder {
	nFeatures := len(x[0])
	return &builder{
		x:          x,
		y:          y,
		cfg:        cfg,
		rnd:        rand.New(rand.NewSource(1)),
		layout:     lay,
		nFeatures:  nFeatures,
		importance: make([]float64, nFeatures),
		count:      make([]int, nFeatures),
		sumHi:      make([]float64, nFeatures),
	}
}

func TestNewLayout(t *testing.T) {
	x := [][]float64{
		{0.5, 1, 7, 0, 2},
		{1.5, 0, 7, 0, 3},
		{2.5, 1, 7, 1, 2},
	}
	lay := newLayout(x)

	kinds := make([]columnKind, len(lay.columns))
	for f, c := range lay.columns {
		kinds[f] = c.kind
	}
	assert.Equal(t, []columnKind{columnContinuous, columnBinary, columnConstant, columnBinary, columnBinary}, kinds)
	assert.Equal(t, column{kind: columnBinary, lo: 2, hi: 3}, lay.columns[4])
	assert.Equal(t, [][]int{{1}, {4}, {1, 3}}, lay.active)
}

func TestBestSplit_IndicatorMatchesSortedSweep(t *testing.T) {
	x, y := hierarchicalData(600, 4, 12, 40, 3)
	cfg := DefaultConfig()
	cfg.MinSamplesLeaf = 2

	fast := newTestBuilder(x, y, cfg, newLayout(x))
	ref := newTestBuilder(x, y, cfg, sortedLayout(x))

	rnd := rand.New(rand.NewSource(9))
	for _, size := range []int{600, 300, 80, 20, 5} {
		for rep := 0; rep < 5; rep++ {
			idx := make([]int, size)
			total := 0.0
			for k := range idx {
				idx[k] = rnd.Intn(len(y))
				total += y[idx[k]]
			}

			got, gotOK := fast.bestSplit(idx, total)
			want, wantOK := ref.bestSplit(idx, total)
			require.Equal(t, wantOK, gotOK, "size %d", size)
			if !wantOK {
				continue
			}
			assert.InEpsilon(t, want.gain, got.gain, 1e-9, "size %d", size)
			if got.feature == want.feature {
				assert.Equal(t, want.threshold, got.threshold)
				assert.Equal(t, want.nLeft, got.nLeft)
			}
		}
	}

	// scratch counters are cleared between nodes
	assert.Empty(t, fast.touched)
	for f := range fast.count {
		assert.Zero(t, fast.count[f])
		assert.Zero(t, fast.sumHi[f])
	}
}

func TestBestSplit_IndicatorRespectsMinSamplesLeaf(t *testing.T) {
	// 한 행만 1인 지시 열: minLeaf 2에서는 분할 불가
	x := [][]float64{{1}, {0}, {0}, {0}}
	y := []float64{100, 1, 1, 1}
	idx := []int{0, 1, 2, 3}

	cfg := DefaultConfig()
	cfg.MinSamplesLeaf = 1
	s, ok := newTestBuilder(x, y, cfg, newLayout(x)).bestSplit(idx, 103)
	require.True(t, ok)
	assert.Equal(t, 0.5, s.threshold)
	assert.Equal(t, 3, s.nLeft)

	cfg.MinSamplesLeaf = 2
	_, ok = newTestBuilder(x, y, cfg, newLayout(x)).bestSplit(idx, 103)
	assert.False(t, ok)
}

func TestTrain_WideIndicators(t *testing.T) {
	x, y := hierarchicalData(800, 5, 20, 60, 11)
	cfg := smallConfig()
	cfg.Trees = 10

	f, err := Train(x, y, cfg)
	require.NoError(t, err)

	pred, err := f.PredictBatch(x)
	require.NoError(t, err)
	m, err := Evaluate(y, pred)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(m.R2))
	assert.Greater(t, m.R2, 0.8)
}

// BenchmarkTrain_WideIndicators covers roughly a thousand encoded columns,
// the shape a full listings dataset produces.
func BenchmarkTrain_WideIndicators(b *testing.B) {
	x, y := hierarchicalData(5000, 30, 200, 796, 42)
	cfg := DefaultConfig()
	cfg.Trees = 10
	cfg.Workers = 1

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Train(x, y, cfg); err != nil {
			b.Fatal(err)
		}
	}
}

package forest

import (
	"math/rand"
	"sort"
)

const leaf = -1

// node is one entry of a flattened regression tree. Leaves have feature == leaf.
type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

type tree struct {
	nodes []node
}

func (t *tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.feature == leaf {
			return n.value
		}
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// builder grows one tree over a bootstrap sample. Not safe for concurrent use;
// each tree gets its own builder and random source.
type builder struct {
	x          [][]float64
	y          []float64
	cfg        Config
	rnd        *rand.Rand
	layout     *layout
	nFeatures  int
	nodes      []node
	importance []float64

	// per-node scratch for binary columns, reset after every bestSplit
	count   []int
	sumHi   []float64
	touched []int
}

type split struct {
	feature   int
	threshold float64
	gain      float64
	nLeft     int
}

type columnKind uint8

const (
	columnConstant columnKind = iota
	columnBinary
	columnContinuous
)

type column struct {
	kind   columnKind
	lo, hi float64
}

// layout classifies the training columns once per run. Shared read-only by all trees.
type layout struct {
	columns []column
	// active[i] lists the binary columns where row i holds the high value
	active [][]int
}

// newLayout marks columns with exactly two distinct values as binary.
// One-hot indicators dominate the encoded width, and a binary column has a single
// split point, so its split can be scored from a count and a sum without sorting.
func newLayout(x [][]float64) *layout {
	nFeatures := len(x[0])
	columns := make([]column, nFeatures)
	for f := range columns {
		lo, hi := x[0][f], x[0][f]
		kind := columnConstant
		for _, row := range x[1:] {
			v := row[f]
			if v == lo || v == hi {
				continue
			}
			if kind == columnConstant {
				lo, hi = min(lo, v), max(hi, v)
				kind = columnBinary
				continue
			}
			kind = columnContinuous
			break
		}
		columns[f] = column{kind: kind, lo: lo, hi: hi}
	}

	active := make([][]int, len(x))
	for i, row := range x {
		for f, c := range columns {
			if c.kind == columnBinary && row[f] == c.hi {
				active[i] = append(active[i], f)
			}
		}
	}
	return &layout{columns: columns, active: active}
}

func growTree(x [][]float64, y []float64, cfg Config, lay *layout, seed int64) (tree, []float64) {
	rnd := rand.New(rand.NewSource(seed))
	n := len(y)

	// bootstrap: 복원 추출
	sample := make([]int, n)
	for i := range sample {
		sample[i] = rnd.Intn(n)
	}

	nFeatures := len(x[0])
	b := &builder{
		x:          x,
		y:          y,
		cfg:        cfg,
		rnd:        rnd,
		layout:     lay,
		nFeatures:  nFeatures,
		importance: make([]float64, nFeatures),
		count:      make([]int, nFeatures),
		sumHi:      make([]float64, nFeatures),
	}
	b.build(sample, 0)
	return tree{nodes: b.nodes}, b.importance
}

// build appends the subtree for idx and returns its node index.
func (b *builder) build(idx []int, depth int) int {
	sum := 0.0
	lo, hi := b.y[idx[0]], b.y[idx[0]]
	for _, i := range idx {
		v := b.y[i]
		sum += v
		lo = min(lo, v)
		hi = max(hi, v)
	}
	mean := sum / float64(len(idx))

	self := len(b.nodes)
	b.nodes = append(b.nodes, node{feature: leaf, value: mean})

	if len(idx) < b.cfg.MinSamplesSplit || lo == hi {
		return self
	}
	if b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth {
		return self
	}

	best, ok := b.bestSplit(idx, sum)
	if !ok {
		return self
	}

	left := make([]int, 0, best.nLeft)
	right := make([]int, 0, len(idx)-best.nLeft)
	for _, i := range idx {
		if b.x[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	b.importance[best.feature] += best.gain
	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[self] = node{feature: best.feature, threshold: best.threshold, left: l, right: r, value: mean}
	return self
}

// splitSearch keeps the best split seen so far at one node.
// Maximizing sumL²/nL + sumR²/nR is the same as minimizing the children's squared error.
type splitSearch struct {
	n       int
	total   float64
	parent  float64
	minLeaf int
	proxy   float64
	best    split
}

func newSplitSearch(n int, total float64, minLeaf int) *splitSearch {
	parent := total * total / float64(n)
	return &splitSearch{
		n:       n,
		total:   total,
		parent:  parent,
		minLeaf: minLeaf,
		proxy:   parent,
		best:    split{feature: leaf},
	}
}

// offer scores the boundary between cur and next, with nl rows (summing to sumLeft) at or below cur.
// Ties keep the earlier offer.
func (s *splitSearch) offer(f int, cur, next float64, nl int, sumLeft float64) {
	nr := s.n - nl
	if nl < s.minLeaf || nr < s.minLeaf {
		return
	}
	sumRight := s.total - sumLeft
	proxy := sumLeft*sumLeft/float64(nl) + sumRight*sumRight/float64(nr)
	if proxy <= s.proxy {
		return
	}
	thr := cur + (next-cur)/2
	if thr >= next {
		thr = cur
	}
	s.proxy = proxy
	s.best = split{
		feature:   f,
		threshold: thr,
		gain:      proxy - s.parent,
		nLeft:     nl,
	}
}

// bestSplit scores every candidate feature in candidate order.
// Binary columns use one sparse pass over idx; continuous columns are sorted and swept.
func (b *builder) bestSplit(idx []int, total float64) (split, bool) {
	s := newSplitSearch(len(idx), total, b.cfg.MinSamplesLeaf)

	for _, i := range idx {
		for _, f := range b.layout.active[i] {
			if b.count[f] == 0 {
				b.touched = append(b.touched, f)
			}
			b.count[f]++
			b.sumHi[f] += b.y[i]
		}
	}

	var order []int
	for _, f := range b.candidates() {
		col := b.layout.columns[f]
		switch col.kind {
		case columnBinary:
			// lo 쪽이 왼쪽 자식; 한쪽이 비면 minLeaf에서 걸러짐
			s.offer(f, col.lo, col.hi, len(idx)-b.count[f], total-b.sumHi[f])
		case columnContinuous:
			if order == nil {
				order = make([]int, len(idx))
			}
			b.sweep(s, f, idx, order)
		}
	}

	for _, f := range b.touched {
		b.count[f] = 0
		b.sumHi[f] = 0
	}
	b.touched = b.touched[:0]

	return s.best, s.best.feature != leaf
}

// sweep sorts idx by feature f into order and offers every boundary between distinct values.
func (b *builder) sweep(s *splitSearch, f int, idx, order []int) {
	copy(order, idx)
	sort.SliceStable(order, func(a, c int) bool {
		return b.x[order[a]][f] < b.x[order[c]][f]
	})
	if b.x[order[0]][f] == b.x[order[len(order)-1]][f] {
		return
	}

	sumLeft := 0.0
	for k := 0; k < len(order)-1; k++ {
		sumLeft += b.y[order[k]]
		cur, next := b.x[order[k]][f], b.x[order[k+1]][f]
		if cur == next {
			continue
		}
		s.offer(f, cur, next, k+1, sumLeft)
	}
}

// candidates returns the features examined at one node.
func (b *builder) candidates() []int {
	k := b.cfg.MaxFeatures
	if k <= 0 || k >= b.nFeatures {
		all := make([]int, b.nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return b.rnd.Perm(b.nFeatures)[:k]
}

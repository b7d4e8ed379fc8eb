// Package forest implements a bagged regression forest of variance-reduction CART trees.
package forest

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
)

// Forest is a trained regressor. Immutable after Train returns; safe for concurrent Predict.
type Forest struct {
	trees       []tree
	nFeatures   int
	importances []float64
	cfg         Config
}

// Train fits a forest on X (rows × columns) and targets y.
func Train(x [][]float64, y []float64, cfg Config) (*Forest, error) {
	return TrainContext(context.Background(), x, y, cfg)
}

// TrainContext is Train with cancellation between trees.
//
// Per-tree seeds are drawn from the master seed before any tree is built, and every tree
// is stored at its own index, so the result does not depend on cfg.Workers.
func TrainContext(ctx context.Context, x [][]float64, y []float64, cfg Config) (*Forest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("forest config: %w", err)
	}
	if len(x) == 0 || len(x[0]) == 0 {
		return nil, &contracts.InsufficientDataError{Input: len(x)}
	}
	if len(y) != len(x) {
		return nil, &contracts.DimensionMismatchError{Want: len(x), Got: len(y)}
	}
	nFeatures := len(x[0])
	for _, row := range x {
		if len(row) != nFeatures {
			return nil, &contracts.DimensionMismatchError{Want: nFeatures, Got: len(row)}
		}
	}

	master := rand.New(rand.NewSource(cfg.Seed))
	seeds := make([]int64, cfg.Trees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	lay := newLayout(x)
	trees := make([]tree, cfg.Trees)
	perTree := make([][]float64, cfg.Trees)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trees[i], perTree[i] = growTree(x, y, cfg, lay, seeds[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("train forest: %w", err)
	}

	return &Forest{
		trees:       trees,
		nFeatures:   nFeatures,
		importances: averageImportances(perTree, nFeatures),
		cfg:         cfg,
	}, nil
}

// Predict returns the mean of all tree outputs. Negative values are not clamped.
func (f *Forest) Predict(vec []float64) (float64, error) {
	if len(vec) != f.nFeatures {
		return 0, &contracts.DimensionMismatchError{Want: f.nFeatures, Got: len(vec)}
	}
	sum := 0.0
	for i := range f.trees {
		sum += f.trees[i].predict(vec)
	}
	return sum / float64(len(f.trees)), nil
}

// PredictBatch predicts every row of x.
func (f *Forest) PredictBatch(x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		p, err := f.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

// NumFeatures returns the trained column count.
func (f *Forest) NumFeatures() int {
	return f.nFeatures
}

// NumTrees returns the number of trees.
func (f *Forest) NumTrees() int {
	return len(f.trees)
}

// Config returns the settings the forest was trained with.
func (f *Forest) Config() Config {
	return f.cfg
}

// FeatureImportances returns impurity-based importances in column order, summing to 1
// (all zeros when no tree ever split).
func (f *Forest) FeatureImportances() []float64 {
	out := make([]float64, len(f.importances))
	copy(out, f.importances)
	return out
}

// averageImportances normalizes each tree's gains, averages over trees and renormalizes.
func averageImportances(perTree [][]float64, nFeatures int) []float64 {
	out := make([]float64, nFeatures)
	for _, imp := range perTree {
		total := 0.0
		for _, v := range imp {
			total += v
		}
		if total == 0 {
			continue
		}
		for j, v := range imp {
			out[j] += v / total
		}
	}
	total := 0.0
	for _, v := range out {
		total += v
	}
	if total == 0 {
		return out
	}
	for j := range out {
		out[j] /= total
	}
	return out
}

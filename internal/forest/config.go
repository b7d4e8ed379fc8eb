package forest

import "fmt"

// Config controls forest training. Zero MaxDepth and MaxFeatures mean "unlimited" and "all".
type Config struct {
	Trees           int   `json:"trees" yaml:"trees"`
	Seed            int64 `json:"seed" yaml:"seed"`
	MaxDepth        int   `json:"max_depth" yaml:"max_depth"`
	MinSamplesSplit int   `json:"min_samples_split" yaml:"min_samples_split"`
	MinSamplesLeaf  int   `json:"min_samples_leaf" yaml:"min_samples_leaf"`
	MaxFeatures     int   `json:"max_features" yaml:"max_features"`
	Workers         int   `json:"workers" yaml:"workers"` // 0 = GOMAXPROCS
}

// DefaultConfig returns the production settings: 100 trees, seed 42.
func DefaultConfig() Config {
	return Config{
		Trees:           100,
		Seed:            42,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     0,
		Workers:         0,
	}
}

// Validate checks the numeric bounds.
func (c Config) Validate() error {
	switch {
	case c.Trees < 1:
		return fmt.Errorf("trees must be >= 1, got %d", c.Trees)
	case c.MaxDepth < 0:
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	case c.MinSamplesSplit < 2:
		return fmt.Errorf("min_samples_split must be >= 2, got %d", c.MinSamplesSplit)
	case c.MinSamplesLeaf < 1:
		return fmt.Errorf("min_samples_leaf must be >= 1, got %d", c.MinSamplesLeaf)
	case c.MaxFeatures < 0:
		return fmt.Errorf("max_features must be >= 0, got %d", c.MaxFeatures)
	case c.Workers < 0:
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	return nil
}

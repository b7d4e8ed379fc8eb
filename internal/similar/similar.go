// Package similar looks up comparable listings in the training dataset.
package similar

import (
	"sort"
	"strings"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
)

// Criteria 비교 대상 조건
type Criteria struct {
	Province     string  `json:"province"`
	District     string  `json:"district"`
	Neighborhood string  `json:"neighborhood"`
	Area         float64 `json:"area"`
}

// Options controls the area window and result size.
type Options struct {
	// AreaTolerance is the relative half-width of the area window (0.2 → ±20%)
	AreaTolerance float64 `json:"area_tolerance" yaml:"area_tolerance"`
	// Limit caps the result; 0 means no cap
	Limit int `json:"limit" yaml:"limit"`
}

// DefaultOptions ±20%, 5 listings.
func DefaultOptions() Options {
	return Options{AreaTolerance: 0.2, Limit: 5}
}

// FromQuery takes the location and area of an inference query.
func FromQuery(q contracts.Query) Criteria {
	return Criteria{
		Province:     strings.TrimSpace(q.Province),
		District:     strings.TrimSpace(q.District),
		Neighborhood: strings.TrimSpace(q.Neighborhood),
		Area:         q.Area,
	}
}

// Bounds returns the inclusive area window.
func (c Criteria) Bounds(tolerance float64) (lo, hi float64) {
	return c.Area * (1 - tolerance), c.Area * (1 + tolerance)
}

// Find returns records in the same province, district and neighborhood whose area lies
// within the window, cheapest first. Equal prices keep dataset order.
func Find(records []contracts.HouseRecord, c Criteria, opts Options) []contracts.HouseRecord {
	lo, hi := c.Bounds(opts.AreaTolerance)

	out := make([]contracts.HouseRecord, 0)
	for _, r := range records {
		if r.Province != c.Province || r.District != c.District || r.Neighborhood != c.Neighborhood {
			continue
		}
		if r.Area < lo || r.Area > hi {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Price < out[j].Price
	})

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

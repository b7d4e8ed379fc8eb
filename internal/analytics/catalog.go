package analytics

import (
	"sort"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
)

// Catalog lists the selectable values for cascading province → district → neighborhood
// selection. Built once per model.
type Catalog struct {
	provinces     []string
	sellerTypes   []string
	districts     map[string][]string
	neighborhoods map[[2]string][]string
}

// NewCatalog collects sorted distinct values from the records. Empty values are skipped.
func NewCatalog(records []contracts.HouseRecord) *Catalog {
	provinces := set{}
	sellers := set{}
	districts := map[string]set{}
	neighborhoods := map[[2]string]set{}

	for _, r := range records {
		provinces.add(r.Province)
		sellers.add(r.SellerType)
		if districts[r.Province] == nil {
			districts[r.Province] = set{}
		}
		districts[r.Province].add(r.District)

		key := [2]string{r.Province, r.District}
		if neighborhoods[key] == nil {
			neighborhoods[key] = set{}
		}
		neighborhoods[key].add(r.Neighborhood)
	}

	c := &Catalog{
		provinces:     provinces.sorted(),
		sellerTypes:   sellers.sorted(),
		districts:     make(map[string][]string, len(districts)),
		neighborhoods: make(map[[2]string][]string, len(neighborhoods)),
	}
	for k, s := range districts {
		c.districts[k] = s.sorted()
	}
	for k, s := range neighborhoods {
		c.neighborhoods[k] = s.sorted()
	}
	return c
}

// Provinces 전체 il 목록
func (c *Catalog) Provinces() []string {
	return clone(c.provinces)
}

// Districts returns the districts of a province, empty for an unknown province.
func (c *Catalog) Districts(province string) []string {
	return clone(c.districts[province])
}

// Neighborhoods returns the neighborhoods of a province and district.
func (c *Catalog) Neighborhoods(province, district string) []string {
	return clone(c.neighborhoods[[2]string{province, district}])
}

// SellerTypes 판매자 유형 목록
func (c *Catalog) SellerTypes() []string {
	return clone(c.sellerTypes)
}

type set map[string]struct{}

func (s set) add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

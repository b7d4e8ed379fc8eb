package contracts

import (
	"math"
	"strings"
)

// RawListing is one dataset row as it comes out of a source, before normalization.
// Missing numbers are nil, missing strings are empty.
type RawListing struct {
	Area         *float64 `json:"area"`
	RoomCount    string   `json:"room_count"`
	Province     string   `json:"province"`
	District     string   `json:"district"`
	Neighborhood string   `json:"neighborhood"`
	SellerType   string   `json:"seller_type"`
	Price        *float64 `json:"price"`
	Date         string   `json:"date,omitempty"` // 정규화 단계에서 제거됨
}

// HouseRecord is a cleaned, usable listing
// ⭐ SSOT: Normalizer → Encoder 사이의 유일한 레코드 형태
type HouseRecord struct {
	Area         float64 `json:"area"`
	RoomCount    float64 `json:"room_count"`
	Province     string  `json:"province"`
	District     string  `json:"district"`
	Neighborhood string  `json:"neighborhood,omitempty"`
	SellerType   string  `json:"seller_type,omitempty"`
	Price        float64 `json:"price"`
}

// Query is a single inference request. Every field is required.
type Query struct {
	Area         float64 `json:"area"`
	RoomCount    string  `json:"room_count"`
	Province     string  `json:"province"`
	District     string  `json:"district"`
	Neighborhood string  `json:"neighborhood"`
	SellerType   string  `json:"seller_type"`
}

// Validate checks that every field of the query is present.
func (q Query) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"room_count", q.RoomCount},
		{"province", q.Province},
		{"district", q.District},
		{"neighborhood", q.Neighborhood},
		{"seller_type", q.SellerType},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &QueryError{Field: r.field, Message: "required"}
		}
	}
	if math.IsNaN(q.Area) || math.IsInf(q.Area, 0) || q.Area <= 0 {
		return &QueryError{Field: "area", Message: "must be a positive number"}
	}
	return nil
}

// CategoricalField names a string attribute of a record that gets expanded into indicators.
type CategoricalField string

const (
	FieldProvince     CategoricalField = "province"
	FieldDistrict     CategoricalField = "district"
	FieldNeighborhood CategoricalField = "neighborhood"
	FieldSellerType   CategoricalField = "seller_type"
)

// DefaultCategoricalFields is the field order used when nothing else is configured.
var DefaultCategoricalFields = []CategoricalField{
	FieldProvince,
	FieldDistrict,
	FieldNeighborhood,
	FieldSellerType,
}

// Valid reports whether f is one of the known categorical fields.
func (f CategoricalField) Valid() bool {
	switch f {
	case FieldProvince, FieldDistrict, FieldNeighborhood, FieldSellerType:
		return true
	}
	return false
}

// Value returns the record's value for the field. Empty means missing.
func (f CategoricalField) Value(r HouseRecord) string {
	switch f {
	case FieldProvince:
		return r.Province
	case FieldDistrict:
		return r.District
	case FieldNeighborhood:
		return r.Neighborhood
	case FieldSellerType:
		return r.SellerType
	}
	return ""
}

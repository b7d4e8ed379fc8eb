// Package dataset loads raw listings from CSV files, HTTP exports, HTML tables and PostgreSQL.
package dataset

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/config"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/database"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/httputil"
)

// Source 데이터셋 소스 인터페이스
type Source interface {
	Name() string
	Load(ctx context.Context) ([]contracts.RawListing, error)
}

// FromConfig picks the source named by DATASET_SOURCE.
// client is needed for url/html over HTTP, db for postgres.
func FromConfig(cfg *config.Config, client *httputil.Client, db *database.DB, log zerolog.Logger) (Source, error) {
	ds := cfg.Dataset
	switch ds.Source {
	case config.SourceCSV:
		return NewCSVFile(ds.Path, log), nil
	case config.SourceURL:
		if client == nil {
			return nil, fmt.Errorf("url source requires an HTTP client")
		}
		return NewURLSource(ds.URL, client, log), nil
	case config.SourceHTML:
		if ds.URL != "" && client == nil {
			return nil, fmt.Errorf("html source over HTTP requires an HTTP client")
		}
		return NewHTMLSource(ds.Path, ds.URL, client, log), nil
	case config.SourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres source requires a database connection")
		}
		return NewRepository(db, ds.Table, log), nil
	}
	return nil, fmt.Errorf("unknown dataset source %q", ds.Source)
}

// field is a canonical dataset column
type field int

const (
	fieldArea field = iota
	fieldRoomCount
	fieldProvince
	fieldDistrict
	fieldNeighborhood
	fieldSellerType
	fieldPrice
	fieldDate
)

var fieldNames = map[field]string{
	fieldArea:         "area",
	fieldRoomCount:    "room_count",
	fieldProvince:     "province",
	fieldDistrict:     "district",
	fieldNeighborhood: "neighborhood",
	fieldSellerType:   "seller_type",
	fieldPrice:        "price",
	fieldDate:         "date",
}

// headerAliases: 원본 터키어 헤더 + 영어 snake_case
var headerAliases = map[string]field{
	"metrekare":    fieldArea,
	"area":         fieldArea,
	"oda_sayisi":   fieldRoomCount,
	"room_count":   fieldRoomCount,
	"rooms":        fieldRoomCount,
	"il":           fieldProvince,
	"province":     fieldProvince,
	"ilce":         fieldDistrict,
	"ilçe":         fieldDistrict,
	"district":     fieldDistrict,
	"mahalle":      fieldNeighborhood,
	"neighborhood": fieldNeighborhood,
	"satici_tip":   fieldSellerType,
	"seller_type":  fieldSellerType,
	"fiyat":        fieldPrice,
	"price":        fieldPrice,
	"tarih":        fieldDate,
	"date":         fieldDate,
}

var requiredFields = []field{fieldArea, fieldRoomCount, fieldProvince, fieldDistrict, fieldPrice}

// columnMap maps canonical fields to positions in a row
type columnMap struct {
	index map[field]int
	width int
}

// mapHeader resolves header cells. Unknown columns are ignored; a missing required
// column fails the whole load.
func mapHeader(header []string) (columnMap, error) {
	m := columnMap{index: make(map[field]int), width: len(header)}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if f, ok := headerAliases[key]; ok {
			if _, dup := m.index[f]; !dup {
				m.index[f] = i
			}
		}
	}
	var missing []string
	for _, f := range requiredFields {
		if _, ok := m.index[f]; !ok {
			missing = append(missing, fieldNames[f])
		}
	}
	if len(missing) > 0 {
		return columnMap{}, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return m, nil
}

// build converts one row. Unparseable numbers become nil and are dropped later by normalization.
func (m columnMap) build(cells []string) contracts.RawListing {
	get := func(f field) string {
		i, ok := m.index[f]
		if !ok || i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}
	return contracts.RawListing{
		Area:         parseNumber(get(fieldArea)),
		RoomCount:    get(fieldRoomCount),
		Province:     get(fieldProvince),
		District:     get(fieldDistrict),
		Neighborhood: get(fieldNeighborhood),
		SellerType:   get(fieldSellerType),
		Price:        parseNumber(get(fieldPrice)),
		Date:         get(fieldDate),
	}
}

func parseNumber(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

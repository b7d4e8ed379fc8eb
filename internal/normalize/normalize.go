package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
)

// ParseRoomCount parses composite room counts such as "3+1" or "2+1+1" into their sum.
// ok is false when any part is not a number or the sum is not finite; that marks the
// room count as unusable without failing the pipeline.
func ParseRoomCount(raw string) (float64, bool) {
	sum := 0.0
	for _, part := range strings.Split(raw, "+") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return 0, false
		}
		sum += v
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return 0, false
	}
	return sum, true
}

// Report counts what cleaning kept and why the rest was dropped.
// A record missing several fields is counted under the first failing check.
type Report struct {
	Input           int `json:"input"`
	Kept            int `json:"kept"`
	BadRoomCount    int `json:"bad_room_count"`
	MissingArea     int `json:"missing_area"`
	MissingPrice    int `json:"missing_price"`
	MissingLocation int `json:"missing_location"`
}

// Dropped returns the number of discarded records.
func (r Report) Dropped() int {
	return r.Input - r.Kept
}

// CleanDataset parses room counts and drops every record that lacks area, room count,
// province, district or price. Output order follows input order.
func CleanDataset(raw []contracts.RawListing) []contracts.HouseRecord {
	out, _ := CleanWithReport(raw)
	return out
}

// CleanWithReport is CleanDataset plus drop statistics.
func CleanWithReport(raw []contracts.RawListing) ([]contracts.HouseRecord, Report) {
	rep := Report{Input: len(raw)}
	out := make([]contracts.HouseRecord, 0, len(raw))

	for _, r := range raw {
		rooms, ok := ParseRoomCount(r.RoomCount)
		if !ok {
			rep.BadRoomCount++
			continue
		}
		if !usable(r.Area) {
			rep.MissingArea++
			continue
		}
		if !usable(r.Price) {
			rep.MissingPrice++
			continue
		}
		province := strings.TrimSpace(r.Province)
		district := strings.TrimSpace(r.District)
		if province == "" || district == "" {
			rep.MissingLocation++
			continue
		}

		// Tarih(date) 컬럼은 여기서 버려짐
		out = append(out, contracts.HouseRecord{
			Area:         *r.Area,
			RoomCount:    rooms,
			Province:     province,
			District:     district,
			Neighborhood: strings.TrimSpace(r.Neighborhood),
			SellerType:   strings.TrimSpace(r.SellerType),
			Price:        *r.Price,
		})
	}

	rep.Kept = len(out)
	return out, rep
}

// ToRaw projects a clean record back into the raw shape.
func ToRaw(r contracts.HouseRecord) contracts.RawListing {
	area, price := r.Area, r.Price
	return contracts.RawListing{
		Area:         &area,
		RoomCount:    strconv.FormatFloat(r.RoomCount, 'g', -1, 64),
		Province:     r.Province,
		District:     r.District,
		Neighborhood: r.Neighborhood,
		SellerType:   r.SellerType,
		Price:        &price,
	}
}

func usable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

package encoding

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
)

// Fit derives the feature space and scaling state from clean training records.
//
// Columns are area and room_count, then one indicator per distinct observed value of each
// field (in the given field order), values sorted ascending with the first one dropped as
// the reference. Empty values are treated as missing and never get a column.
func Fit(records []contracts.HouseRecord, fields []contracts.CategoricalField) (contracts.FeatureSpace, contracts.ScalingState, error) {
	if len(records) == 0 {
		return contracts.FeatureSpace{}, contracts.ScalingState{}, &contracts.InsufficientDataError{}
	}
	if err := checkFields(fields); err != nil {
		return contracts.FeatureSpace{}, contracts.ScalingState{}, err
	}

	cols := make([]contracts.Column, 0, len(contracts.ContinuousColumns))
	for _, name := range contracts.ContinuousColumns {
		cols = append(cols, contracts.ContinuousColumn(name))
	}

	for _, field := range fields {
		values := distinctValues(records, field)
		// drop-first: 첫 번째 값은 기준 범주로 컬럼 없음
		for _, v := range values[min(1, len(values)):] {
			cols = append(cols, contracts.IndicatorColumn(field, v))
		}
	}

	space, err := contracts.NewFeatureSpace(cols)
	if err != nil {
		return contracts.FeatureSpace{}, contracts.ScalingState{}, fmt.Errorf("build feature space: %w", err)
	}

	areas := make([]float64, len(records))
	rooms := make([]float64, len(records))
	for i, r := range records {
		areas[i] = r.Area
		rooms[i] = r.RoomCount
	}
	areaMean, areaStd := stat.PopMeanStdDev(areas, nil)
	roomMean, roomStd := stat.PopMeanStdDev(rooms, nil)

	scaling, err := contracts.NewScalingState(
		[]float64{areaMean, roomMean},
		[]float64{areaStd, roomStd},
	)
	if err != nil {
		return contracts.FeatureSpace{}, contracts.ScalingState{}, err
	}

	return space, scaling, nil
}

// TransformBatch encodes records against an already fixed space.
func TransformBatch(records []contracts.HouseRecord, space contracts.FeatureSpace, scaling contracts.ScalingState) ([][]float64, error) {
	if err := checkPairing(space, scaling); err != nil {
		return nil, err
	}
	out := make([][]float64, len(records))
	for i, r := range records {
		out[i] = encode(r, space, scaling)
	}
	return out, nil
}

// TransformSingle encodes one record. The result has exactly space.Len() entries in space order.
func TransformSingle(record contracts.HouseRecord, space contracts.FeatureSpace, scaling contracts.ScalingState) ([]float64, error) {
	if err := checkPairing(space, scaling); err != nil {
		return nil, err
	}
	return encode(record, space, scaling), nil
}

// encode walks the fixed column list and looks each column up in the record's own local
// encoding. Columns the record cannot produce default to 0. Local entries with no column
// in the space (unseen categories, reference values, fields not fitted) are never read.
func encode(r contracts.HouseRecord, space contracts.FeatureSpace, scaling contracts.ScalingState) []float64 {
	local := localEncoding(r, scaling)

	vec := make([]float64, space.Len())
	for i := 0; i < space.Len(); i++ {
		v, ok := local[space.Column(i).Key()]
		if !ok {
			v = 0
		}
		vec[i] = v
	}
	return vec
}

// localEncoding is what the record alone would encode to, without knowing the training set.
func localEncoding(r contracts.HouseRecord, scaling contracts.ScalingState) map[contracts.ColumnKey]float64 {
	local := make(map[contracts.ColumnKey]float64, len(contracts.ContinuousColumns)+len(contracts.DefaultCategoricalFields))

	raw := map[string]float64{
		contracts.ColumnArea:      r.Area,
		contracts.ColumnRoomCount: r.RoomCount,
	}
	for i, name := range contracts.ContinuousColumns {
		local[contracts.ContinuousColumn(name).Key()] = scaling.Scale(i, raw[name])
	}

	for _, field := range contracts.DefaultCategoricalFields {
		if v := field.Value(r); v != "" {
			local[contracts.IndicatorColumn(field, v).Key()] = 1
		}
	}
	return local
}

func distinctValues(records []contracts.HouseRecord, field contracts.CategoricalField) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if v := field.Value(r); v != "" {
			seen[v] = struct{}{}
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func checkFields(fields []contracts.CategoricalField) error {
	seen := make(map[contracts.CategoricalField]bool, len(fields))
	for _, f := range fields {
		if !f.Valid() {
			return fmt.Errorf("unknown categorical field %q", f)
		}
		if seen[f] {
			return fmt.Errorf("categorical field %q listed twice", f)
		}
		seen[f] = true
	}
	return nil
}

// checkPairing rejects a scaling state that was not produced for this space's continuous columns.
func checkPairing(space contracts.FeatureSpace, scaling contracts.ScalingState) error {
	continuous := 0
	for i := 0; i < space.Len(); i++ {
		if space.Column(i).Kind == contracts.ColumnContinuous {
			continuous++
		}
	}
	if continuous != len(contracts.ContinuousColumns) || scaling.Len() != continuous {
		return &contracts.DimensionMismatchError{Want: continuous, Got: scaling.Len()}
	}
	return nil
}

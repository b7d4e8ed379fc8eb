package encoding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
)

func trainingRecords() []contracts.HouseRecord {
	return []contracts.HouseRecord{
		{Area: 100, RoomCount: 4, Province: "İzmir", District: "Bornova", Neighborhood: "Erzene", SellerType: "owner", Price: 1_000_000},
		{Area: 120, RoomCount: 4, Province: "Ankara", District: "Çankaya", Neighborhood: "Bahçelievler", SellerType: "agency", Price: 1_500_000},
		{Area: 80, RoomCount: 3, Province: "İstanbul", District: "Kadıköy", Neighborhood: "Moda", SellerType: "owner", Price: 2_500_000},
		{Area: 140, RoomCount: 5, Province: "Ankara", District: "Çankaya", Neighborhood: "", SellerType: "bank", Price: 1_900_000},
	}
}

func TestFit_ColumnOrder(t *testing.T) {
	space, _, err := Fit(trainingRecords(), contracts.DefaultCategoricalFields)
	require.NoError(t, err)

	// byte order: "Ankara" < "İstanbul" < "İzmir"; Ankara is the reference
	want := []string{
		"area",
		"room_count",
		"province_İstanbul",
		"province_İzmir",
		"district_Kadıköy",
		"district_Çankaya",
		"neighborhood_Erzene",
		"neighborhood_Moda",
		"seller_type_bank",
		"seller_type_owner",
	}
	assert.Equal(t, want, space.Names())

	_, ok := space.Index(contracts.IndicatorColumn(contracts.FieldProvince, "Ankara").Key())
	assert.False(t, ok, "reference value must not have a column")
	_, ok = space.Index(contracts.IndicatorColumn(contracts.FieldNeighborhood, "").Key())
	assert.False(t, ok, "missing value must not have a column")
}

func TestFit_Scaling(t *testing.T) {
	_, scaling, err := Fit(trainingRecords(), contracts.DefaultCategoricalFields)
	require.NoError(t, err)

	// population std of {100,120,80,140} = sqrt(500)
	assert.InDelta(t, 110.0, scaling.Mean(0), 1e-9)
	assert.InDelta(t, 22.360679775, scaling.Std(0), 1e-9)
	assert.InDelta(t, 4.0, scaling.Mean(1), 1e-9)
	assert.InDelta(t, 0.707106781, scaling.Std(1), 1e-9)
}

func TestFit_ConstantColumnScalesToZero(t *testing.T) {
	records := []contracts.HouseRecord{
		{Area: 100, RoomCount: 4, Province: "A", District: "X", Price: 1},
		{Area: 100, RoomCount: 4, Province: "A", District: "X", Price: 2},
	}
	space, scaling, err := Fit(records, contracts.DefaultCategoricalFields)
	require.NoError(t, err)
	assert.Equal(t, 1.0, scaling.Std(0))

	vec, err := TransformSingle(records[0], space, scaling)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, vec)
}

func TestFit_Errors(t *testing.T) {
	_, _, err := Fit(nil, contracts.DefaultCategoricalFields)
	var insufficient *contracts.InsufficientDataError
	assert.True(t, errors.As(err, &insufficient))

	_, _, err = Fit(trainingRecords(), []contracts.CategoricalField{"color"})
	assert.Error(t, err)

	_, _, err = Fit(trainingRecords(), []contracts.CategoricalField{contracts.FieldProvince, contracts.FieldProvince})
	assert.Error(t, err)
}

func TestFit_FieldSubset(t *testing.T) {
	space, scaling, err := Fit(trainingRecords(), []contracts.CategoricalField{contracts.FieldProvince})
	require.NoError(t, err)
	assert.Equal(t, []string{"area", "room_count", "province_İstanbul", "province_İzmir"}, space.Names())

	vec, err := TransformSingle(trainingRecords()[2], space, scaling)
	require.NoError(t, err)
	assert.Len(t, vec, 4)
	assert.Equal(t, []float64{1, 0}, vec[2:])
}

func TestTransformSingle_KnownValues(t *testing.T) {
	space, scaling, err := Fit(trainingRecords(), contracts.DefaultCategoricalFields)
	require.NoError(t, err)

	q := contracts.HouseRecord{Area: 110, RoomCount: 4, Province: "İzmir", District: "Kadıköy", Neighborhood: "Moda", SellerType: "bank"}
	vec, err := TransformSingle(q, space, scaling)
	require.NoError(t, err)

	require.Len(t, vec, space.Len())
	assert.Equal(t, []float64{0, 0, 0, 1, 1, 0, 0, 1, 1, 0}, vec)
}

func TestTransformSingle_ReferenceValueEncodesAsZeros(t *testing.T) {
	space, scaling, err := Fit(trainingRecords(), contracts.DefaultCategoricalFields)
	require.NoError(t, err)

	q := contracts.HouseRecord{Area: 110, RoomCount: 4, Province: "Ankara", District: "Bornova", Neighborhood: "Bahçelievler", SellerType: "agency"}
	vec, err := TransformSingle(q, space, scaling)
	require.NoError(t, err)
	for i := 2; i < len(vec); i++ {
		assert.Zero(t, vec[i], space.Column(i).Name)
	}
}

func TestTransformSingle_UnseenCategoriesZeroFill(t *testing.T) {
	space, scaling, err := Fit(trainingRecords(), contracts.DefaultCategoricalFields)
	require.NoError(t, err)

	q := contracts.HouseRecord{Area: 132.36, RoomCount: 5, Province: "Z", District: "Nowhere", Neighborhood: "Unknown", SellerType: "developer"}
	vec, err := TransformSingle(q, space, scaling)
	require.NoError(t, err)

	want := make([]float64, space.Len())
	want[0] = scaling.Scale(0, q.Area)
	want[1] = scaling.Scale(1, q.RoomCount)
	assert.Equal(t, want, vec)
}

func TestTransformSingle_ColumnOrderInvariant(t *testing.T) {
	space, scaling, err := Fit(trainingRecords(), contracts.DefaultCategoricalFields)
	require.NoError(t, err)

	queries := []contracts.HouseRecord{
		{Area: 90, RoomCount: 2, Province: "İstanbul", District: "Kadıköy", Neighborhood: "Moda", SellerType: "owner"},
		{Area: 300, RoomCount: 7, Province: "Z", District: "Çankaya", Neighborhood: "", SellerType: "bank"},
		{Area: 50, RoomCount: 1},
	}

	for _, q := range queries {
		vec, err := TransformSingle(q, space, scaling)
		require.NoError(t, err)
		require.Len(t, vec, space.Len())

		// every index carries the same column meaning regardless of the query
		for i := 0; i < space.Len(); i++ {
			col := space.Column(i)
			switch col.Kind {
			case contracts.ColumnContinuous:
				continue
			case contracts.ColumnIndicator:
				want := 0.0
				if col.Field.Value(q) == col.Value {
					want = 1
				}
				assert.Equal(t, want, vec[i], col.Name)
			}
		}
	}
}

func TestTransformBatch_MatchesSingle(t *testing.T) {
	records := trainingRecords()
	space, scaling, err := Fit(records, contracts.DefaultCategoricalFields)
	require.NoError(t, err)

	matrix, err := TransformBatch(records, space, scaling)
	require.NoError(t, err)
	require.Len(t, matrix, len(records))

	for i, r := range records {
		vec, err := TransformSingle(r, space, scaling)
		require.NoError(t, err)
		assert.Equal(t, vec, matrix[i])
	}
}

func TestTransform_RejectsForeignScaling(t *testing.T) {
	space, _, err := Fit(trainingRecords(), contracts.DefaultCategoricalFields)
	require.NoError(t, err)
	foreign, err := contracts.NewScalingState([]float64{1}, []float64{1})
	require.NoError(t, err)

	_, err = TransformSingle(trainingRecords()[0], space, foreign)
	var mismatch *contracts.DimensionMismatchError
	assert.True(t, errors.As(err, &mismatch))

	_, err = TransformBatch(trainingRecords(), space, foreign)
	assert.True(t, errors.As(err, &mismatch))
}

func TestEncoder(t *testing.T) {
	enc, err := NewEncoder(trainingRecords(), contracts.DefaultCategoricalFields)
	require.NoError(t, err)

	vec := enc.Transform(trainingRecords()[2])
	desc := enc.Describe(vec)
	assert.Equal(t, 1.0, desc["province_İstanbul"])
	assert.Equal(t, 1.0, desc["district_Kadıköy"])
	assert.NotContains(t, desc, "province_İzmir")

	assert.Equal(t, map[contracts.CategoricalField]int{
		contracts.FieldProvince:     2,
		contracts.FieldDistrict:     2,
		contracts.FieldNeighborhood: 2,
		contracts.FieldSellerType:   2,
	}, enc.FieldCardinality())

	assert.Equal(t, enc.TransformAll(trainingRecords())[1], enc.Transform(trainingRecords()[1]))
}

package contracts

import "fmt"

// ColumnKind separates continuous columns from 0/1 indicator columns.
type ColumnKind string

const (
	ColumnContinuous ColumnKind = "continuous"
	ColumnIndicator  ColumnKind = "indicator"
)

// Continuous column names. They always come first, in this order.
const (
	ColumnArea      = "area"
	ColumnRoomCount = "room_count"
)

// ContinuousColumns lists the continuous columns in feature-space order.
var ContinuousColumns = []string{ColumnArea, ColumnRoomCount}

// Column describes one position of the encoded feature vector.
type Column struct {
	Name  string           `json:"name"`
	Kind  ColumnKind       `json:"kind"`
	Field CategoricalField `json:"field,omitempty"` // indicator only
	Value string           `json:"value,omitempty"` // indicator only
}

// ColumnKey identifies a column independently of its display name.
// Indicator identity is the (field, value) pair so "a_b"+"c" never collides with "a"+"b_c".
type ColumnKey struct {
	Kind  ColumnKind
	Field CategoricalField
	Value string
}

// Key returns the identity of the column.
func (c Column) Key() ColumnKey {
	if c.Kind == ColumnContinuous {
		return ColumnKey{Kind: ColumnContinuous, Value: c.Name}
	}
	return ColumnKey{Kind: ColumnIndicator, Field: c.Field, Value: c.Value}
}

// ContinuousColumn builds a continuous column descriptor.
func ContinuousColumn(name string) Column {
	return Column{Name: name, Kind: ColumnContinuous}
}

// IndicatorColumn builds an indicator column descriptor named "<field>_<value>".
func IndicatorColumn(field CategoricalField, value string) Column {
	return Column{
		Name:  fmt.Sprintf("%s_%s", field, value),
		Kind:  ColumnIndicator,
		Field: field,
		Value: value,
	}
}

// FeatureSpace is the ordered, immutable column list a model was trained on
// ⭐ SSOT: fit 시점에 한 번 생성되고 이후 모든 인코딩에 그대로 전달됨
type FeatureSpace struct {
	columns []Column
	index   map[ColumnKey]int
}

// NewFeatureSpace copies cols into a new space. Duplicate column identities are rejected.
func NewFeatureSpace(cols []Column) (FeatureSpace, error) {
	s := FeatureSpace{
		columns: make([]Column, len(cols)),
		index:   make(map[ColumnKey]int, len(cols)),
	}
	copy(s.columns, cols)
	for i, c := range s.columns {
		k := c.Key()
		if _, dup := s.index[k]; dup {
			return FeatureSpace{}, fmt.Errorf("duplicate feature column %q", c.Name)
		}
		s.index[k] = i
	}
	return s, nil
}

// Len returns the number of columns.
func (s FeatureSpace) Len() int {
	return len(s.columns)
}

// Column returns the descriptor at position i.
func (s FeatureSpace) Column(i int) Column {
	return s.columns[i]
}

// Columns returns a copy of the column list.
func (s FeatureSpace) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Names returns the display names in order.
func (s FeatureSpace) Names() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Name
	}
	return out
}

// Index returns the position of the column with the given identity.
func (s FeatureSpace) Index(k ColumnKey) (int, bool) {
	i, ok := s.index[k]
	return i, ok
}

// Equal reports whether both spaces have the same columns in the same order.
func (s FeatureSpace) Equal(o FeatureSpace) bool {
	if len(s.columns) != len(o.columns) {
		return false
	}
	for i := range s.columns {
		if s.columns[i] != o.columns[i] {
			return false
		}
	}
	return true
}

// ScalingState holds the standardization parameters of the continuous columns,
// in ContinuousColumns order.
type ScalingState struct {
	mean []float64
	std  []float64
}

// NewScalingState copies mean/std. A zero std is stored as 1 so constant columns scale to 0.
func NewScalingState(mean, std []float64) (ScalingState, error) {
	if len(mean) != len(std) {
		return ScalingState{}, fmt.Errorf("scaling: %d means for %d deviations", len(mean), len(std))
	}
	st := ScalingState{
		mean: make([]float64, len(mean)),
		std:  make([]float64, len(std)),
	}
	copy(st.mean, mean)
	for i, v := range std {
		if v == 0 {
			v = 1
		}
		st.std[i] = v
	}
	return st, nil
}

// Len returns the number of scaled columns.
func (st ScalingState) Len() int {
	return len(st.mean)
}

// Mean returns the learned mean of continuous column i.
func (st ScalingState) Mean(i int) float64 {
	return st.mean[i]
}

// Std returns the learned standard deviation of continuous column i.
func (st ScalingState) Std(i int) float64 {
	return st.std[i]
}

// Scale applies (x - mean) / std for continuous column i.
func (st ScalingState) Scale(i int, x float64) float64 {
	return (x - st.mean[i]) / st.std[i]
}

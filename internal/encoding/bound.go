package encoding

import (
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
)

// Encoder binds a feature space to the scaling state fitted with it, so the two
// cannot be paired with parts of another training run.
type Encoder struct {
	space   contracts.FeatureSpace
	scaling contracts.ScalingState
	fields  []contracts.CategoricalField
}

// NewEncoder fits an Encoder on the training records.
func NewEncoder(records []contracts.HouseRecord, fields []contracts.CategoricalField) (*Encoder, error) {
	space, scaling, err := Fit(records, fields)
	if err != nil {
		return nil, err
	}
	fs := make([]contracts.CategoricalField, len(fields))
	copy(fs, fields)
	return &Encoder{space: space, scaling: scaling, fields: fs}, nil
}

// Space returns the fixed feature space.
func (e *Encoder) Space() contracts.FeatureSpace {
	return e.space
}

// Scaling returns the fitted scaling state.
func (e *Encoder) Scaling() contracts.ScalingState {
	return e.scaling
}

// Fields returns the categorical fields the encoder was fitted with.
func (e *Encoder) Fields() []contracts.CategoricalField {
	out := make([]contracts.CategoricalField, len(e.fields))
	copy(out, e.fields)
	return out
}

// Transform encodes one record.
func (e *Encoder) Transform(r contracts.HouseRecord) []float64 {
	return encode(r, e.space, e.scaling)
}

// TransformAll encodes a batch of records.
func (e *Encoder) TransformAll(records []contracts.HouseRecord) [][]float64 {
	out := make([][]float64, len(records))
	for i, r := range records {
		out[i] = encode(r, e.space, e.scaling)
	}
	return out
}

// Describe maps the non-zero entries of an encoded vector back to column names.
func (e *Encoder) Describe(vec []float64) map[string]float64 {
	out := make(map[string]float64)
	for i := 0; i < len(vec) && i < e.space.Len(); i++ {
		if vec[i] != 0 {
			out[e.space.Column(i).Name] = vec[i]
		}
	}
	return out
}

// FieldCardinality counts indicator columns per categorical field.
func (e *Encoder) FieldCardinality() map[contracts.CategoricalField]int {
	out := make(map[contracts.CategoricalField]int, len(e.fields))
	for _, f := range e.fields {
		out[f] = 0
	}
	for i := 0; i < e.space.Len(); i++ {
		if c := e.space.Column(i); c.Kind == contracts.ColumnIndicator {
			out[c.Field]++
		}
	}
	return out
}

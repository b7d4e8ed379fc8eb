// Package estimation turns a raw dataset into a trained price model and answers queries with it.
package estimation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/encoding"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/forest"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/normalize"
)

// Options 학습 설정
type Options struct {
	Fields []contracts.CategoricalField
	Forest forest.Config
}

// DefaultOptions all four categorical fields, 100 trees, seed 42.
func DefaultOptions() Options {
	return Options{
		Fields: contracts.DefaultCategoricalFields,
		Forest: forest.DefaultConfig(),
	}
}

// TrainedModel binds the forest to the feature space and scaling it was trained with.
// ⭐ SSOT: space/scaling/forest는 항상 하나의 단위로만 사용됨
type TrainedModel struct {
	version   string
	trainedAt time.Time
	encoder   *encoding.Encoder
	forest    *forest.Forest
	records   []contracts.HouseRecord
	report    normalize.Report
}

// FeatureImportance is one column's share of the forest's impurity reduction.
type FeatureImportance struct {
	Column     string  `json:"column"`
	Importance float64 `json:"importance"`
}

// Version is the fingerprint of the raw dataset the model was trained on.
func (tm *TrainedModel) Version() string { return tm.version }

// TrainedAt 학습 완료 시각
func (tm *TrainedModel) TrainedAt() time.Time { return tm.trainedAt }

// Space returns the fixed feature space.
func (tm *TrainedModel) Space() contracts.FeatureSpace { return tm.encoder.Space() }

// Records returns the cleaned training records. Callers must not modify the slice.
func (tm *TrainedModel) Records() []contracts.HouseRecord { return tm.records }

// Report returns the cleaning statistics of the training dataset.
func (tm *TrainedModel) Report() normalize.Report { return tm.report }

// ForestConfig returns the forest settings used for training.
func (tm *TrainedModel) ForestConfig() forest.Config { return tm.forest.Config() }

// Importances returns feature importances sorted descending, limited to top when top > 0.
func (tm *TrainedModel) Importances(top int) []FeatureImportance {
	raw := tm.forest.FeatureImportances()
	out := make([]FeatureImportance, len(raw))
	for i, v := range raw {
		out[i] = FeatureImportance{Column: tm.encoder.Space().Column(i).Name, Importance: v}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Importance > out[j].Importance
	})
	if top > 0 && top < len(out) {
		out = out[:top]
	}
	return out
}

// TrainOnce cleans, encodes and fits in one pass.
func TrainOnce(raw []contracts.RawListing, opts Options) (*TrainedModel, error) {
	return TrainOnceContext(context.Background(), raw, opts)
}

// TrainOnceContext is TrainOnce with cancellation of the forest fit.
func TrainOnceContext(ctx context.Context, raw []contracts.RawListing, opts Options) (*TrainedModel, error) {
	version, err := Fingerprint(raw)
	if err != nil {
		return nil, err
	}
	return train(ctx, raw, version, opts)
}

func train(ctx context.Context, raw []contracts.RawListing, version string, opts Options) (*TrainedModel, error) {
	records, report := normalize.CleanWithReport(raw)
	if len(records) == 0 {
		return nil, &contracts.InsufficientDataError{Input: report.Input}
	}

	enc, err := encoding.NewEncoder(records, opts.Fields)
	if err != nil {
		return nil, fmt.Errorf("fit encoder: %w", err)
	}

	f, err := forest.TrainContext(ctx, enc.TransformAll(records), prices(records), opts.Forest)
	if err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}

	return &TrainedModel{
		version:   version,
		trainedAt: time.Now(),
		encoder:   enc,
		forest:    f,
		records:   records,
		report:    report,
	}, nil
}

// Estimate predicts the price for one query against a trained model.
func Estimate(tm *TrainedModel, q contracts.Query) (float64, error) {
	if tm == nil {
		return 0, contracts.ErrNoModel
	}
	record, err := QueryRecord(q)
	if err != nil {
		return 0, err
	}

	vec, err := encoding.TransformSingle(record, tm.encoder.Space(), tm.encoder.Scaling())
	if err != nil {
		return 0, fmt.Errorf("encode query: %w", err)
	}
	price, err := tm.forest.Predict(vec)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	return price, nil
}

// QueryRecord validates a query and converts it into the record shape the encoder takes.
func QueryRecord(q contracts.Query) (contracts.HouseRecord, error) {
	if err := q.Validate(); err != nil {
		return contracts.HouseRecord{}, err
	}
	rooms, ok := normalize.ParseRoomCount(q.RoomCount)
	if !ok {
		return contracts.HouseRecord{}, &contracts.QueryError{Field: "room_count", Message: fmt.Sprintf("cannot parse %q", q.RoomCount)}
	}
	return contracts.HouseRecord{
		Area:         q.Area,
		RoomCount:    rooms,
		Province:     strings.TrimSpace(q.Province),
		District:     strings.TrimSpace(q.District),
		Neighborhood: strings.TrimSpace(q.Neighborhood),
		SellerType:   strings.TrimSpace(q.SellerType),
	}, nil
}

// fingerprintRow is the canonical form of one raw row. Numbers are formatted as text
// so non-finite values still hash.
type fingerprintRow struct {
	Area         string `json:"a"`
	RoomCount    string `json:"r"`
	Province     string `json:"p"`
	District     string `json:"d"`
	Neighborhood string `json:"n"`
	SellerType   string `json:"s"`
	Price        string `json:"y"`
	Date         string `json:"t"`
}

// Fingerprint generates a SHA256 hash of the raw dataset (canonical JSON).
// Row order matters.
func Fingerprint(raw []contracts.RawListing) (string, error) {
	rows := make([]fingerprintRow, len(raw))
	for i, r := range raw {
		rows[i] = fingerprintRow{
			Area:         formatOptional(r.Area),
			RoomCount:    r.RoomCount,
			Province:     r.Province,
			District:     r.District,
			Neighborhood: r.Neighborhood,
			SellerType:   r.SellerType,
			Price:        formatOptional(r.Price),
			Date:         r.Date,
		}
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("fingerprint dataset: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

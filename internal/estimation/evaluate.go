package estimation

import (
	"fmt"
	"math/rand"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/encoding"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/forest"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/normalize"
)

// Evaluation is the result of a holdout run.
type Evaluation struct {
	Train   int              `json:"train"`
	Test    int              `json:"test"`
	Columns int              `json:"columns"`
	Metrics forest.Metrics   `json:"metrics"`
	Report  normalize.Report `json:"report"`
}

// Evaluate splits the cleaned dataset with a seeded shuffle, fits on the train part only
// and scores the holdout. Categories seen only in the holdout take the unseen-value path.
func Evaluate(raw []contracts.RawListing, opts Options, testRatio float64, seed int64) (*Evaluation, error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, fmt.Errorf("test ratio must be in (0, 1), got %v", testRatio)
	}

	records, report := normalize.CleanWithReport(raw)
	if len(records) < 2 {
		return nil, &contracts.InsufficientDataError{Input: report.Input}
	}

	trainSet, testSet := splitRecords(records, testRatio, seed)

	enc, err := encoding.NewEncoder(trainSet, opts.Fields)
	if err != nil {
		return nil, fmt.Errorf("fit encoder: %w", err)
	}

	f, err := forest.Train(enc.TransformAll(trainSet), prices(trainSet), opts.Forest)
	if err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}

	pred, err := f.PredictBatch(enc.TransformAll(testSet))
	if err != nil {
		return nil, fmt.Errorf("predict holdout: %w", err)
	}
	m, err := forest.Evaluate(prices(testSet), pred)
	if err != nil {
		return nil, err
	}

	return &Evaluation{
		Train:   len(trainSet),
		Test:    len(testSet),
		Columns: enc.Space().Len(),
		Metrics: m,
		Report:  report,
	}, nil
}

// splitRecords shuffles a copy and cuts it; both parts keep at least one record.
func splitRecords(records []contracts.HouseRecord, testRatio float64, seed int64) ([]contracts.HouseRecord, []contracts.HouseRecord) {
	rnd := rand.New(rand.NewSource(seed))
	idx := rnd.Perm(len(records))

	nTest := int(float64(len(records)) * testRatio)
	nTest = min(max(nTest, 1), len(records)-1)
	nTrain := len(records) - nTest

	trainSet := make([]contracts.HouseRecord, 0, nTrain)
	testSet := make([]contracts.HouseRecord, 0, nTest)
	for k, i := range idx {
		if k < nTrain {
			trainSet = append(trainSet, records[i])
		} else {
			testSet = append(testSet, records[i])
		}
	}
	return trainSet, testSet
}

func prices(records []contracts.HouseRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Price
	}
	return out
}

package forest

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/contracts"
)

// Metrics summarizes regression error on a labelled set.
type Metrics struct {
	N    int     `json:"n"`
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// Evaluate compares predictions against true values.
func Evaluate(yTrue, yPred []float64) (Metrics, error) {
	if len(yTrue) != len(yPred) {
		return Metrics{}, &contracts.DimensionMismatchError{Want: len(yTrue), Got: len(yPred)}
	}
	if len(yTrue) == 0 {
		return Metrics{}, &contracts.InsufficientDataError{}
	}

	n := float64(len(yTrue))
	rmse := floats.Distance(yTrue, yPred, 2) / math.Sqrt(n)
	r2 := stat.RSquaredFrom(yPred, yTrue, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		// 상수 타깃: R² 정의 불가
		r2 = 0
	}
	return Metrics{
		N:    len(yTrue),
		MSE:  rmse * rmse,
		RMSE: rmse,
		MAE:  floats.Distance(yTrue, yPred, 1) / n,
		R2:   r2,
	}, nil
}

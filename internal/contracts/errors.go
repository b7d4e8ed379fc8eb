package contracts

import (
	"errors"
	"fmt"
)

// ErrNoModel is returned when an estimate is requested before any model was trained.
var ErrNoModel = errors.New("no trained model available")

// DataLoadError means the dataset source could not be read or is malformed as a whole.
// Training halts and no partial model is produced.
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load dataset %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// InsufficientDataError means cleaning left nothing to train on.
type InsufficientDataError struct {
	Input int // records before cleaning
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: no usable records out of %d", e.Input)
}

// DimensionMismatchError means a vector does not match the trained column count.
// Unreachable through the estimation service; it signals a bypassed contract.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: want %d columns, got %d", e.Want, e.Got)
}

// QueryError rejects a single inference query. The cached model is unaffected.
type QueryError struct {
	Field   string
	Message string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid query: %s: %s", e.Field, e.Message)
}

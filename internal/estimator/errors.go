package estimator

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAlgorithm is returned when no factory is registered for an identifier
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrInvalidParam is returned when a parameter value cannot be used by an estimator
	ErrInvalidParam = errors.New("invalid parameter")

	// ErrEmptyInput is returned when the input matrix has no rows or no columns
	ErrEmptyInput = errors.New("input matrix must not be empty")

	// ErrNotFitted is returned when Predict or Transform is called before Fit
	ErrNotFitted = errors.New("estimator is not fitted")

	// ErrInvalidPipeline is returned when pipeline steps are not transformers followed by a clusterer
	ErrInvalidPipeline = errors.New("invalid pipeline")

	// ErrDecomposition is returned when an eigendecomposition does not succeed
	ErrDecomposition = errors.New("eigendecomposition failed")
)

// ParamError describes a rejected parameter value
type ParamError struct {
	Param  string // Parameter name
	Value  any    // Rejected value
	Reason string // Why the value was rejected
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%v: %s=%v: %s", ErrInvalidParam, e.Param, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParam
}

func paramError(param string, value any, format string, args ...any) error {
	return &ParamError{Param: param, Value: value, Reason: fmt.Sprintf(format, args...)}
}

// IsInvalidParam checks if an error is an "invalid parameter" error
func IsInvalidParam(err error) bool {
	return errors.Is(err, ErrInvalidParam)
}

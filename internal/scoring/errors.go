package scoring

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch is returned when paired inputs have different lengths
	ErrLengthMismatch = errors.New("inputs must have the same length")

	// ErrInvalidLabelCount is returned when a clustering metric gets fewer than
	// two labels or as many labels as samples
	ErrInvalidLabelCount = errors.New("number of labels must be in [2, n_samples-1]")

	// ErrMissingTarget is returned when a supervised scorer gets no ground truth
	ErrMissingTarget = errors.New("supervised scorer requires target labels")

	// ErrNoPredictions is returned when an estimator can neither predict nor cluster
	ErrNoPredictions = errors.New("estimator cannot produce labels")

	// ErrInvalidUnsupervisedMetric is the single failure kind reported by unsupervised scorers
	ErrInvalidUnsupervisedMetric = errors.New("not a valid unsupervised metric function")

	// ErrUnknownScorer is returned when a scorer name is not registered
	ErrUnknownScorer = errors.New("unknown scorer")
)

// InvalidUnsupervisedMetricError reports a failed unsupervised score together
// with what caused it
type InvalidUnsupervisedMetricError struct {
	Metric string // Scorer name
	Err    error  // Underlying failure from clustering or the metric
}

func (e *InvalidUnsupervisedMetricError) Error() string {
	return fmt.Sprintf("%s is %v: %v", e.Metric, ErrInvalidUnsupervisedMetric, e.Err)
}

// Is matches ErrInvalidUnsupervisedMetric
func (e *InvalidUnsupervisedMetricError) Is(target error) bool {
	return target == ErrInvalidUnsupervisedMetric
}

func (e *InvalidUnsupervisedMetricError) Unwrap() error {
	return e.Err
}

// IsInvalidUnsupervisedMetric checks if an error came from an unsupervised scorer
func IsInvalidUnsupervisedMetric(err error) bool {
	return errors.Is(err, ErrInvalidUnsupervisedMetric)
}

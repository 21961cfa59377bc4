package evaluate

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when a candidate does not finish within the configured timeout
	ErrTimeout = errors.New("evaluation timed out")

	// ErrNoCandidates is returned when a batch is empty
	ErrNoCandidates = errors.New("no candidates to evaluate")
)

// EvalError describes a failed candidate
type EvalError struct {
	Pipeline string // Pipeline key
	Err      error  // Underlying error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluate %s: %v", e.Pipeline, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

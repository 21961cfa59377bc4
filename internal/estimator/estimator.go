package estimator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Estimator is any algorithm that can be placed in a pipeline
type Estimator interface {
	// Name returns the registry identifier of the algorithm
	Name() string
}

// Clusterer fits on data and assigns every row a cluster label
type Clusterer interface {
	Estimator
	FitPredict(X mat.Matrix) ([]int, error)
}

// Transformer fits on data and returns a transformed copy
type Transformer interface {
	Estimator
	FitTransform(X mat.Matrix) (*mat.Dense, error)
	Transform(X mat.Matrix) (*mat.Dense, error)
}

// Predictor labels new rows using a previous fit
type Predictor interface {
	Estimator
	Predict(X mat.Matrix) ([]int, error)
	Fitted() bool
}

// Params holds a parameter assignment drawn from a search space
type Params map[string]any

// Int decodes an integer parameter, falling back to def when absent
func (p Params) Int(name string, def int) (int, error) {
	v, ok := p[name]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, paramError(name, v, "expected an integer")
		}
		return int(n), nil
	default:
		return 0, paramError(name, v, "expected an integer, got %T", v)
	}
}

// Float decodes a float parameter, falling back to def when absent
func (p Params) Float(name string, def float64) (float64, error) {
	v, ok := p[name]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, paramError(name, v, "expected a number, got %T", v)
	}
}

// String decodes a string parameter restricted to allowed values
func (p Params) String(name, def string, allowed ...string) (string, error) {
	v, ok := p[name]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", paramError(name, v, "expected a string, got %T", v)
	}
	if len(allowed) == 0 {
		return s, nil
	}
	for _, a := range allowed {
		if s == a {
			return s, nil
		}
	}
	return "", paramError(name, v, "must be one of %s", strings.Join(allowed, ", "))
}

// Key returns a canonical representation of the assignment
func (p Params) Key() string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%v", name, p[name])
	}
	return strings.Join(parts, ",")
}

// positive rejects values below one
func positive(name string, v int) error {
	if v < 1 {
		return paramError(name, v, "must be >= 1")
	}
	return nil
}

// rowsOf copies a matrix into row slices
func rowsOf(X mat.Matrix) ([][]float64, error) {
	if X == nil {
		return nil, ErrEmptyInput
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, ErrEmptyInput
	}
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}
	return rows, nil
}

// denseOf copies a matrix into a new Dense
func denseOf(X mat.Matrix) (*mat.Dense, error) {
	if X == nil {
		return nil, ErrEmptyInput
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, ErrEmptyInput
	}
	return mat.DenseCopyOf(X), nil
}

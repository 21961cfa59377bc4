package estimator

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/objones25/clusterfit/internal/searchspace"
)

// VarianceThreshold drops columns whose variance does not exceed Threshold
type VarianceThreshold struct {
	Threshold float64

	variances []float64
	support   []int
}

func NewVarianceThreshold(threshold float64) *VarianceThreshold {
	return &VarianceThreshold{Threshold: threshold}
}

func (v *VarianceThreshold) Name() string { return searchspace.VarianceThreshold }

// Fit computes column variances and selects the columns to keep
func (v *VarianceThreshold) Fit(X mat.Matrix) error {
	m, err := denseOf(X)
	if err != nil {
		return err
	}
	_, cols := m.Dims()
	v.variances = make([]float64, cols)
	v.support = v.support[:0]
	for j := 0; j < cols; j++ {
		_, variance := stat.PopMeanVariance(mat.Col(nil, j, m), nil)
		v.variances[j] = variance
		if variance > v.Threshold {
			v.support = append(v.support, j)
		}
	}
	if len(v.support) == 0 {
		return paramError("threshold", v.Threshold, "no feature in X meets the variance threshold")
	}
	return nil
}

// Transform keeps the selected columns
func (v *VarianceThreshold) Transform(X mat.Matrix) (*mat.Dense, error) {
	if v.variances == nil {
		return nil, ErrNotFitted
	}
	rows, cols := X.Dims()
	if cols != len(v.variances) {
		return nil, fmt.Errorf("dimension mismatch: got %d features, want %d", cols, len(v.variances))
	}
	out := mat.NewDense(rows, len(v.support), nil)
	for k, j := range v.support {
		out.SetCol(k, mat.Col(nil, j, X))
	}
	return out, nil
}

func (v *VarianceThreshold) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := v.Fit(X); err != nil {
		return nil, err
	}
	return v.Transform(X)
}

// Support returns the indices of the kept columns
func (v *VarianceThreshold) Support() []int {
	out := make([]int, len(v.support))
	copy(out, v.support)
	return out
}

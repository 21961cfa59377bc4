package estimator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/objones25/clusterfit/internal/searchspace"
)

// columnScaler maps every column through (x - offset) / scale
type columnScaler struct {
	offset []float64
	scale  []float64
}

func (c *columnScaler) transform(X mat.Matrix) (*mat.Dense, error) {
	if c.offset == nil {
		return nil, ErrNotFitted
	}
	out, err := denseOf(X)
	if err != nil {
		return nil, err
	}
	if _, cols := out.Dims(); cols != len(c.offset) {
		return nil, fmt.Errorf("dimension mismatch: got %d features, want %d", cols, len(c.offset))
	}
	out.Apply(func(_, j int, v float64) float64 {
		return (v - c.offset[j]) / c.scale[j]
	}, out)
	return out, nil
}

// MinMaxScaler rescales every column to [0, 1]
type MinMaxScaler struct {
	columnScaler
}

func NewMinMaxScaler() *MinMaxScaler { return &MinMaxScaler{} }

func (s *MinMaxScaler) Name() string { return searchspace.MinMaxScaler }

// Fit records the per-column minimum and range; constant columns keep scale 1
func (s *MinMaxScaler) Fit(X mat.Matrix) error {
	m, err := denseOf(X)
	if err != nil {
		return err
	}
	_, cols := m.Dims()
	s.offset = make([]float64, cols)
	s.scale = make([]float64, cols)
	for j := 0; j < cols; j++ {
		col := mat.Col(nil, j, m)
		lo, hi := floats.Min(col), floats.Max(col)
		s.offset[j] = lo
		s.scale[j] = hi - lo
		if s.scale[j] == 0 {
			s.scale[j] = 1
		}
	}
	return nil
}

func (s *MinMaxScaler) Transform(X mat.Matrix) (*mat.Dense, error) { return s.transform(X) }

func (s *MinMaxScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.transform(X)
}

// StandardScaler centers every column and scales it to unit variance
type StandardScaler struct {
	columnScaler
}

func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

func (s *StandardScaler) Name() string { return searchspace.StandardScaler }

// Fit records the per-column mean and population standard deviation
func (s *StandardScaler) Fit(X mat.Matrix) error {
	m, err := denseOf(X)
	if err != nil {
		return err
	}
	_, cols := m.Dims()
	s.offset = make([]float64, cols)
	s.scale = make([]float64, cols)
	for j := 0; j < cols; j++ {
		col := mat.Col(nil, j, m)
		mean, variance := stat.PopMeanVariance(col, nil)
		s.offset[j] = mean
		s.scale[j] = math.Sqrt(variance)
		if s.scale[j] == 0 {
			s.scale[j] = 1
		}
	}
	return nil
}

func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) { return s.transform(X) }

func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.transform(X)
}

// Normalizer scales every row to unit l1 or l2 norm. It is stateless.
type Normalizer struct {
	Norm string
}

func NewNormalizer(norm string) *Normalizer { return &Normalizer{Norm: norm} }

func (n *Normalizer) Name() string { return searchspace.Normalizer }

// Transform normalizes each row; all-zero rows are left unchanged
func (n *Normalizer) Transform(X mat.Matrix) (*mat.Dense, error) {
	out, err := denseOf(X)
	if err != nil {
		return nil, err
	}
	p := 2.0
	if n.Norm == "l1" {
		p = 1
	}
	rows, _ := out.Dims()
	for i := 0; i < rows; i++ {
		row := out.RawRowView(i)
		if norm := floats.Norm(row, p); norm > 0 {
			floats.Scale(1/norm, row)
		}
	}
	return out, nil
}

func (n *Normalizer) FitTransform(X mat.Matrix) (*mat.Dense, error) { return n.Transform(X) }

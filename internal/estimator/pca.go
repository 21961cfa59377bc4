package estimator

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/objones25/clusterfit/internal/searchspace"
)

// PCA projects rows onto the directions of largest variance
type PCA struct {
	NComponents int

	mean              []float64
	components        *mat.Dense // NComponents x features
	explainedVariance []float64
}

// NewPCA creates an unfitted PCA
func NewPCA(nComponents int) *PCA {
	return &PCA{NComponents: nComponents}
}

func (p *PCA) Name() string { return searchspace.PCA }

// Fit computes the principal components of X
func (p *PCA) Fit(X mat.Matrix) error {
	centered, err := denseOf(X)
	if err != nil {
		return err
	}
	rows, cols := centered.Dims()
	if p.NComponents > min(rows, cols) {
		return paramError("n_components", p.NComponents,
			"must be <= min(n_samples, n_features)=%d", min(rows, cols))
	}

	mean := centerColumns(centered)

	// Compute covariance matrix
	var covDense mat.Dense
	covDense.Mul(centered.T(), centered)
	if rows > 1 {
		covDense.Scale(1/float64(rows-1), &covDense)
	}

	// Convert to symmetric matrix
	cov := mat.NewSymDense(cols, nil)
	for i := 0; i < cols; i++ {
		for j := i; j < cols; j++ {
			cov.SetSym(i, j, covDense.At(i, j))
		}
	}

	values, vectors, err := sortedEigen(cov)
	if err != nil {
		return err
	}

	components := mat.NewDense(p.NComponents, cols, nil)
	for i := 0; i < p.NComponents; i++ {
		components.SetRow(i, mat.Col(nil, i, vectors))
	}

	p.mean = mean
	p.components = components
	p.explainedVariance = values[:p.NComponents]
	return nil
}

// Transform projects X onto the fitted components
func (p *PCA) Transform(X mat.Matrix) (*mat.Dense, error) {
	if p.components == nil {
		return nil, ErrNotFitted
	}
	centered, err := denseOf(X)
	if err != nil {
		return nil, err
	}
	if _, cols := centered.Dims(); cols != len(p.mean) {
		return nil, fmt.Errorf("dimension mismatch: got %d features, want %d", cols, len(p.mean))
	}
	subtractColumns(centered, p.mean)

	var reduced mat.Dense
	reduced.Mul(centered, p.components.T())
	return &reduced, nil
}

// FitTransform fits X and returns its projection
func (p *PCA) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// Components returns the fitted principal axes, one per row
func (p *PCA) Components() *mat.Dense { return p.components }

// ExplainedVariance returns the variance captured by each component
func (p *PCA) ExplainedVariance() []float64 {
	out := make([]float64, len(p.explainedVariance))
	copy(out, p.explainedVariance)
	return out
}

// sortedEigen factorizes a symmetric matrix and returns its eigenvalues in
// descending order with the matching eigenvectors as columns
func sortedEigen(sym mat.Symmetric) ([]float64, *mat.Dense, error) {
	var eigen mat.EigenSym
	if ok := eigen.Factorize(sym, true); !ok {
		return nil, nil, ErrDecomposition
	}
	eigenValues := eigen.Values(nil)
	var eigenVectors mat.Dense
	eigen.VectorsTo(&eigenVectors)

	indices := make([]int, len(eigenValues))
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(i, j int) bool {
		return eigenValues[indices[i]] > eigenValues[indices[j]]
	})

	n := len(eigenValues)
	values := make([]float64, n)
	vectors := mat.NewDense(n, n, nil)
	for i, idx := range indices {
		values[i] = eigenValues[idx]
		vectors.SetCol(i, mat.Col(nil, idx, &eigenVectors))
	}
	return values, vectors, nil
}

// centerColumns subtracts the column means in place and returns them
func centerColumns(m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	means := make([]float64, cols)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			means[j] += m.At(i, j)
		}
		means[j] /= float64(rows)
	}
	subtractColumns(m, means)
	return means
}

func subtractColumns(m *mat.Dense, means []float64) {
	rows, _ := m.Dims()
	for i := 0; i < rows; i++ {
		row := m.RawRowView(i)
		for j := range row {
			row[j] -= means[j]
		}
	}
}

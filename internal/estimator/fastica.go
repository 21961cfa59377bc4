package estimator

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/objones25/clusterfit/internal/searchspace"
)

// FastICA separates rows into statistically independent components using the
// logcosh contrast and symmetric decorrelation
type FastICA struct {
	NComponents int
	MaxIter     int
	Tol         float64
	Seed        int64

	mean       []float64
	unmixing   *mat.Dense // NComponents x features
	iterations int
}

// NewFastICA creates an unfitted FastICA
func NewFastICA(nComponents int, cfg Config) *FastICA {
	cfg = cfg.withDefaults()
	return &FastICA{
		NComponents: nComponents,
		MaxIter:     cfg.MaxIterations,
		Tol:         cfg.Tolerance,
		Seed:        cfg.Seed,
	}
}

func (f *FastICA) Name() string { return searchspace.FastICA }

// Fit estimates the unmixing matrix for X
func (f *FastICA) Fit(X mat.Matrix) error {
	centered, err := denseOf(X)
	if err != nil {
		return err
	}
	n, p := centered.Dims()
	k := f.NComponents
	if k > min(n, p) {
		return paramError("n_components", k, "must be <= min(n_samples, n_features)=%d", min(n, p))
	}
	mean := centerColumns(centered)

	// Whitening
	var covDense mat.Dense
	covDense.Mul(centered.T(), centered)
	covDense.Scale(1/float64(n), &covDense)
	cov := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			cov.SetSym(i, j, covDense.At(i, j))
		}
	}
	values, vectors, err := sortedEigen(cov)
	if err != nil {
		return err
	}
	whitening := mat.NewDense(k, p, nil)
	for i := 0; i < k; i++ {
		if values[i] <= 1e-12 {
			return fmt.Errorf("%w: input has rank < n_components", ErrDecomposition)
		}
		scale := 1 / math.Sqrt(values[i])
		for j := 0; j < p; j++ {
			whitening.Set(i, j, vectors.At(j, i)*scale)
		}
	}
	var white mat.Dense
	white.Mul(centered, whitening.T())

	rng := rand.New(rand.NewSource(f.Seed))
	W := mat.NewDense(k, k, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			W.Set(i, j, rng.NormFloat64())
		}
	}
	if W, err = symmetricDecorrelation(W); err != nil {
		return err
	}

	f.iterations = 0
	for f.iterations < f.MaxIter {
		f.iterations++

		var projected mat.Dense
		projected.Mul(&white, W.T())

		gDeriv := make([]float64, k)
		projected.Apply(func(_, j int, v float64) float64 {
			t := math.Tanh(v)
			gDeriv[j] += 1 - t*t
			return t
		}, &projected)

		var next mat.Dense
		next.Mul(projected.T(), &white)
		next.Scale(1/float64(n), &next)
		for i := 0; i < k; i++ {
			gMean := gDeriv[i] / float64(n)
			for j := 0; j < k; j++ {
				next.Set(i, j, next.At(i, j)-gMean*W.At(i, j))
			}
		}

		decorrelated, err := symmetricDecorrelation(&next)
		if err != nil {
			return err
		}

		var limit float64
		for i := 0; i < k; i++ {
			dot := mat.Dot(decorrelated.RowView(i), W.RowView(i))
			limit = math.Max(limit, math.Abs(math.Abs(dot)-1))
		}
		W = decorrelated
		if limit < f.Tol {
			break
		}
	}

	var unmixing mat.Dense
	unmixing.Mul(W, whitening)
	f.mean = mean
	f.unmixing = &unmixing
	return nil
}

// Transform recovers the independent sources of X
func (f *FastICA) Transform(X mat.Matrix) (*mat.Dense, error) {
	if f.unmixing == nil {
		return nil, ErrNotFitted
	}
	centered, err := denseOf(X)
	if err != nil {
		return nil, err
	}
	if _, cols := centered.Dims(); cols != len(f.mean) {
		return nil, fmt.Errorf("dimension mismatch: got %d features, want %d", cols, len(f.mean))
	}
	subtractColumns(centered, f.mean)

	var sources mat.Dense
	sources.Mul(centered, f.unmixing.T())
	return &sources, nil
}

// FitTransform fits X and returns its sources
func (f *FastICA) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := f.Fit(X); err != nil {
		return nil, err
	}
	return f.Transform(X)
}

// Iterations returns how many fixed-point steps the last fit ran
func (f *FastICA) Iterations() int { return f.iterations }

// symmetricDecorrelation returns (W Wᵀ)^-1/2 W
func symmetricDecorrelation(W *mat.Dense) (*mat.Dense, error) {
	k, _ := W.Dims()
	var gram mat.Dense
	gram.Mul(W, W.T())
	sym := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			sym.SetSym(i, j, gram.At(i, j))
		}
	}

	var eigen mat.EigenSym
	if ok := eigen.Factorize(sym, true); !ok {
		return nil, ErrDecomposition
	}
	values := eigen.Values(nil)
	var U mat.Dense
	eigen.VectorsTo(&U)

	invSqrt := mat.NewDiagDense(k, nil)
	for i, v := range values {
		if v <= 0 {
			return nil, fmt.Errorf("%w: singular unmixing matrix", ErrDecomposition)
		}
		invSqrt.SetDiag(i, 1/math.Sqrt(v))
	}

	var tmp, root, out mat.Dense
	tmp.Mul(&U, invSqrt)
	root.Mul(&tmp, U.T())
	out.Mul(&root, W)
	return &out, nil
}

package estimator

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/objones25/clusterfit/internal/searchspace"
)

// MiniBatchKMeans updates centroids from random batches of rows instead of the
// full data set on every step
type MiniBatchKMeans struct {
	NClusters        int
	BatchSize        int
	MaxIter          int
	Tol              float64
	MaxNoImprovement int
	Seed             int64
	NumWorkers       int

	centroids [][]float64
	inertia   float64
}

// NewMiniBatchKMeans creates an unfitted mini-batch k-means estimator
func NewMiniBatchKMeans(nClusters, batchSize int, cfg Config) *MiniBatchKMeans {
	cfg = cfg.withDefaults()
	return &MiniBatchKMeans{
		NClusters:        nClusters,
		BatchSize:        batchSize,
		MaxIter:          cfg.MaxIterations,
		Tol:              cfg.Tolerance,
		MaxNoImprovement: cfg.MaxNoImprovement,
		Seed:             cfg.Seed,
		NumWorkers:       cfg.NumWorkers,
	}
}

func (m *MiniBatchKMeans) Name() string { return searchspace.MiniBatchKMeans }

// Fit computes centroids for X
func (m *MiniBatchKMeans) Fit(X mat.Matrix) error {
	rows, err := rowsOf(X)
	if err != nil {
		return err
	}
	if len(rows) < m.NClusters {
		return paramError("n_clusters", m.NClusters, "n_samples=%d should be >= n_clusters", len(rows))
	}

	rng := rand.New(rand.NewSource(m.Seed))
	centroids := plusPlusInit(rows, m.NClusters, rng)
	counts := make([]int, m.NClusters)

	batchSize := min(m.BatchSize, len(rows))
	batch := make([]int, batchSize)
	stale := 0

	for step := 0; step < m.MaxIter; step++ {
		for i := range batch {
			batch[i] = rng.Intn(len(rows))
		}

		var shift float64
		for _, idx := range batch {
			c, _ := nearest(rows[idx], centroids)
			counts[c]++
			// Per-centroid learning rate decays with the number of rows seen
			eta := 1 / float64(counts[c])
			for j, v := range rows[idx] {
				delta := eta * (v - centroids[c][j])
				centroids[c][j] += delta
				shift += delta * delta
			}
		}

		if shift <= m.Tol {
			stale++
			if stale >= m.MaxNoImprovement {
				break
			}
		} else {
			stale = 0
		}
	}

	m.centroids = centroids
	m.inertia = inertiaOf(rows, centroids)
	return nil
}

// FitPredict fits X and returns the label of every row
func (m *MiniBatchKMeans) FitPredict(X mat.Matrix) ([]int, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Predict(X)
}

// Predict assigns rows to the nearest fitted centroid
func (m *MiniBatchKMeans) Predict(X mat.Matrix) ([]int, error) {
	if !m.Fitted() {
		return nil, ErrNotFitted
	}
	return predictNearest(X, m.centroids, m.NumWorkers)
}

func (m *MiniBatchKMeans) Fitted() bool { return m.centroids != nil }

// Centroids returns a copy of the fitted centroids
func (m *MiniBatchKMeans) Centroids() *mat.Dense {
	return centroidMatrix(m.centroids)
}

// Inertia returns the summed squared distance of rows to their centroid
func (m *MiniBatchKMeans) Inertia() float64 { return m.inertia }

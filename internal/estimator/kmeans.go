package estimator

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/objones25/clusterfit/internal/searchspace"
)

// KMeans clusters rows around NClusters centroids using Lloyd iterations
type KMeans struct {
	NClusters  int
	Init       string // "k-means++" or "random"
	MaxIter    int
	Tol        float64
	Seed       int64
	NumWorkers int

	centroids [][]float64
	labels    []int
	inertia   float64
}

// NewKMeans creates an unfitted k-means estimator
func NewKMeans(nClusters int, init string, cfg Config) *KMeans {
	cfg = cfg.withDefaults()
	return &KMeans{
		NClusters:  nClusters,
		Init:       init,
		MaxIter:    cfg.MaxIterations,
		Tol:        cfg.Tolerance,
		Seed:       cfg.Seed,
		NumWorkers: cfg.NumWorkers,
	}
}

func (k *KMeans) Name() string { return searchspace.KMeans }

// Fit computes centroids for X
func (k *KMeans) Fit(X mat.Matrix) error {
	rows, err := rowsOf(X)
	if err != nil {
		return err
	}
	if len(rows) < k.NClusters {
		return paramError("n_clusters", k.NClusters, "n_samples=%d should be >= n_clusters", len(rows))
	}

	rng := rand.New(rand.NewSource(k.Seed))
	var centroids [][]float64
	switch k.Init {
	case "random":
		centroids = randomInit(rows, k.NClusters, rng)
	default:
		centroids = plusPlusInit(rows, k.NClusters, rng)
	}

	labels := make([]int, len(rows))
	dimensions := len(rows[0])

	for iteration := 0; iteration < k.MaxIter; iteration++ {
		assign(rows, centroids, labels, k.NumWorkers)

		// Update centroids; empty clusters keep their previous position
		counts := make([]int, k.NClusters)
		sums := make([][]float64, k.NClusters)
		for i := range sums {
			sums[i] = make([]float64, dimensions)
		}
		for i, cluster := range labels {
			counts[cluster]++
			for j, v := range rows[i] {
				sums[cluster][j] += v
			}
		}

		var shift float64
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for j := range sums[c] {
				sums[c][j] /= float64(counts[c])
			}
			shift += squaredDistance(centroids[c], sums[c])
			centroids[c] = sums[c]
		}

		if shift <= k.Tol {
			break
		}
	}

	k.inertia = assign(rows, centroids, labels, k.NumWorkers)
	k.centroids = centroids
	k.labels = labels
	return nil
}

// FitPredict fits X and returns the label of every row
func (k *KMeans) FitPredict(X mat.Matrix) ([]int, error) {
	if err := k.Fit(X); err != nil {
		return nil, err
	}
	out := make([]int, len(k.labels))
	copy(out, k.labels)
	return out, nil
}

// Predict assigns rows to the nearest fitted centroid
func (k *KMeans) Predict(X mat.Matrix) ([]int, error) {
	if !k.Fitted() {
		return nil, ErrNotFitted
	}
	return predictNearest(X, k.centroids, k.NumWorkers)
}

func (k *KMeans) Fitted() bool { return k.centroids != nil }

// Centroids returns a copy of the fitted centroids
func (k *KMeans) Centroids() *mat.Dense {
	return centroidMatrix(k.centroids)
}

// Inertia returns the summed squared distance of rows to their centroid
func (k *KMeans) Inertia() float64 { return k.inertia }

// plusPlusInit chooses initial centroids with probability proportional to
// squared distance from the centroids already chosen
func plusPlusInit(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(rows[rng.Intn(len(rows))]))

	distances := make([]float64, len(rows))
	for i := range distances {
		distances[i] = squaredDistance(rows[i], centroids[0])
	}

	for len(centroids) < k {
		var total float64
		for _, d := range distances {
			total += d
		}

		chosen := rng.Intn(len(rows))
		if total > 0 {
			target := rng.Float64() * total
			var sum float64
			for j, d := range distances {
				sum += d
				if sum >= target {
					chosen = j
					break
				}
			}
		}

		next := clone(rows[chosen])
		centroids = append(centroids, next)
		for i := range distances {
			if d := squaredDistance(rows[i], next); d < distances[i] {
				distances[i] = d
			}
		}
	}
	return centroids
}

// randomInit picks k distinct rows as initial centroids
func randomInit(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	perm := rng.Perm(len(rows))
	centroids := make([][]float64, k)
	for i := range centroids {
		centroids[i] = clone(rows[perm[i]])
	}
	return centroids
}

func predictNearest(X mat.Matrix, centroids [][]float64, numWorkers int) ([]int, error) {
	rows, err := rowsOf(X)
	if err != nil {
		return nil, err
	}
	if len(rows[0]) != len(centroids[0]) {
		return nil, fmt.Errorf("dimension mismatch: got %d features, want %d",
			len(rows[0]), len(centroids[0]))
	}
	labels := make([]int, len(rows))
	assign(rows, centroids, labels, numWorkers)
	return labels, nil
}

func centroidMatrix(centroids [][]float64) *mat.Dense {
	if len(centroids) == 0 {
		return nil
	}
	m := mat.NewDense(len(centroids), len(centroids[0]), nil)
	for i, c := range centroids {
		m.SetRow(i, c)
	}
	return m
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

// inertiaOf is used by tests and mini-batch convergence checks
func inertiaOf(rows, centroids [][]float64) float64 {
	var sum float64
	for _, r := range rows {
		_, d := nearest(r, centroids)
		sum += d
	}
	if math.IsNaN(sum) {
		return math.Inf(1)
	}
	return sum
}

package estimator

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/objones25/clusterfit/internal/searchspace"
)

// Affinity kinds accepted by SpectralClustering
const (
	AffinityNearestNeighbors            = "nearest_neighbors"
	AffinityRBF                         = "rbf"
	AffinityPrecomputed                 = "precomputed"
	AffinityPrecomputedNearestNeighbors = "precomputed_nearest_neighbors"
)

// SpectralClustering embeds rows with the leading eigenvectors of the
// normalized affinity matrix and clusters the embedding with k-means.
// Every EigenSolver value is served by a dense symmetric eigendecomposition.
type SpectralClustering struct {
	NClusters    int
	EigenSolver  string
	Affinity     string
	NumNeighbors int
	Gamma        float64
	cfg          Config

	affinity *mat.SymDense
}

// NewSpectralClustering creates a spectral clusterer
func NewSpectralClustering(nClusters int, eigenSolver, affinity string, cfg Config) *SpectralClustering {
	cfg = cfg.withDefaults()
	return &SpectralClustering{
		NClusters:    nClusters,
		EigenSolver:  eigenSolver,
		Affinity:     affinity,
		NumNeighbors: cfg.NumNeighbors,
		Gamma:        cfg.Gamma,
		cfg:          cfg,
	}
}

func (s *SpectralClustering) Name() string { return searchspace.SpectralClustering }

// FitPredict labels every row with its cluster
func (s *SpectralClustering) FitPredict(X mat.Matrix) ([]int, error) {
	rows, err := rowsOf(X)
	if err != nil {
		return nil, err
	}
	if len(rows) < s.NClusters {
		return nil, paramError("n_clusters", s.NClusters, "n_samples=%d should be >= n_clusters", len(rows))
	}

	A, err := s.affinityMatrix(rows)
	if err != nil {
		return nil, err
	}
	s.affinity = A

	embedding, err := spectralEmbedding(A, s.NClusters)
	if err != nil {
		return nil, err
	}

	km := NewKMeans(s.NClusters, "k-means++", s.cfg)
	return km.FitPredict(embedding)
}

// AffinityMatrix returns the affinity built by the last fit
func (s *SpectralClustering) AffinityMatrix() *mat.SymDense {
	return s.affinity
}

func (s *SpectralClustering) affinityMatrix(rows [][]float64) (*mat.SymDense, error) {
	n := len(rows)
	switch s.Affinity {
	case AffinityRBF:
		A := mat.NewSymDense(n, nil)
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				A.SetSym(i, j, math.Exp(-s.Gamma*squaredDistance(rows[i], rows[j])))
			}
		}
		return A, nil

	case AffinityNearestNeighbors:
		return knnAffinity(pairwiseDistances(rows), s.NumNeighbors), nil

	case AffinityPrecomputed:
		if len(rows[0]) != n {
			return nil, paramError("affinity", s.Affinity, "X must be square, got %dx%d", n, len(rows[0]))
		}
		A := mat.NewSymDense(n, nil)
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				A.SetSym(i, j, (rows[i][j]+rows[j][i])/2)
			}
		}
		return A, nil

	case AffinityPrecomputedNearestNeighbors:
		if len(rows[0]) != n {
			return nil, paramError("affinity", s.Affinity, "X must be square, got %dx%d", n, len(rows[0]))
		}
		return knnAffinity(rows, s.NumNeighbors), nil

	default:
		return nil, paramError("affinity", s.Affinity, "unsupported affinity")
	}
}

// knnAffinity builds a symmetric connectivity graph linking every row to its
// k nearest rows, itself included
func knnAffinity(dist [][]float64, k int) *mat.SymDense {
	n := len(dist)
	k = min(k, n)
	conn := make([][]float64, n)
	order := make([]int, n)
	for i := 0; i < n; i++ {
		conn[i] = make([]float64, n)
		for j := range order {
			order[j] = j
		}
		row := dist[i]
		sort.SliceStable(order, func(a, b int) bool {
			// The row itself always ranks first
			if order[a] == i || order[b] == i {
				return order[a] == i
			}
			return row[order[a]] < row[order[b]]
		})
		for _, j := range order[:k] {
			conn[i][j] = 1
		}
	}

	A := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			A.SetSym(i, j, (conn[i][j]+conn[j][i])/2)
		}
	}
	return A
}

// spectralEmbedding returns the k leading eigenvectors of D^-1/2 A D^-1/2,
// row-normalized
func spectralEmbedding(A *mat.SymDense, k int) (*mat.Dense, error) {
	n := A.SymmetricDim()
	invSqrt := make([]float64, n)
	for i := 0; i < n; i++ {
		var degree float64
		for j := 0; j < n; j++ {
			degree += A.At(i, j)
		}
		if degree > 0 {
			invSqrt[i] = 1 / math.Sqrt(degree)
		}
	}

	M := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			M.SetSym(i, j, invSqrt[i]*A.At(i, j)*invSqrt[j])
		}
	}

	var eigen mat.EigenSym
	if ok := eigen.Factorize(M, true); !ok {
		return nil, ErrDecomposition
	}
	values := eigen.Values(nil)
	var vectors mat.Dense
	eigen.VectorsTo(&vectors)

	indices := make([]int, len(values))
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(i, j int) bool {
		return values[indices[i]] > values[indices[j]]
	})

	embedding := mat.NewDense(n, k, nil)
	for c := 0; c < k; c++ {
		for i := 0; i < n; i++ {
			embedding.Set(i, c, vectors.At(i, indices[c]))
		}
	}
	for i := 0; i < n; i++ {
		row := embedding.RawRowView(i)
		var norm float64
		for _, v := range row {
			norm += v * v
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}
	}
	return embedding, nil
}

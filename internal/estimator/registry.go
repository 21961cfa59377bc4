package estimator

import (
	"fmt"
	"sort"

	"github.com/objones25/clusterfit/internal/searchspace"
)

// Factory builds an estimator from a parameter assignment
type Factory func(p Params, cfg Config) (Estimator, error)

// factories holds one constructor per search-space identifier
var factories = map[string]Factory{
	searchspace.AgglomerativeClustering: func(p Params, _ Config) (Estimator, error) {
		n, err := p.Int("n_clusters", 2)
		if err != nil {
			return nil, err
		}
		if err := positive("n_clusters", n); err != nil {
			return nil, err
		}
		metric, err := p.String("metric", "euclidean", "euclidean")
		if err != nil {
			return nil, err
		}
		linkage, err := p.String("linkage", "ward", "ward")
		if err != nil {
			return nil, err
		}
		return NewAgglomerativeClustering(n, metric, linkage), nil
	},

	searchspace.DBSCAN: func(p Params, _ Config) (Estimator, error) {
		eps, err := p.Float("eps", 0.5)
		if err != nil {
			return nil, err
		}
		if eps <= 0 {
			return nil, paramError("eps", eps, "must be > 0")
		}
		minSamples, err := p.Int("min_samples", 5)
		if err != nil {
			return nil, err
		}
		if err := positive("min_samples", minSamples); err != nil {
			return nil, err
		}
		if _, err := p.String("metric", "euclidean", "euclidean"); err != nil {
			return nil, err
		}
		leafSize, err := p.Int("leaf_size", 30)
		if err != nil {
			return nil, err
		}
		if err := positive("leaf_size", leafSize); err != nil {
			return nil, err
		}
		return NewDBSCAN(eps, minSamples, leafSize), nil
	},

	searchspace.KMeans: func(p Params, cfg Config) (Estimator, error) {
		n, err := p.Int("n_clusters", 8)
		if err != nil {
			return nil, err
		}
		if err := positive("n_clusters", n); err != nil {
			return nil, err
		}
		init, err := p.String("init", "k-means++", "k-means++", "random")
		if err != nil {
			return nil, err
		}
		return NewKMeans(n, init, cfg), nil
	},

	searchspace.MiniBatchKMeans: func(p Params, cfg Config) (Estimator, error) {
		n, err := p.Int("n_clusters", 8)
		if err != nil {
			return nil, err
		}
		if err := positive("n_clusters", n); err != nil {
			return nil, err
		}
		batchSize, err := p.Int("batch_size", 1024)
		if err != nil {
			return nil, err
		}
		if err := positive("batch_size", batchSize); err != nil {
			return nil, err
		}
		return NewMiniBatchKMeans(n, batchSize, cfg), nil
	},

	searchspace.SpectralClustering: func(p Params, cfg Config) (Estimator, error) {
		n, err := p.Int("n_clusters", 8)
		if err != nil {
			return nil, err
		}
		if err := positive("n_clusters", n); err != nil {
			return nil, err
		}
		solver, err := p.String("eigen_solver", "arpack", "arpack", "lobpcg", "amg")
		if err != nil {
			return nil, err
		}
		affinity, err := p.String("affinity", AffinityRBF,
			AffinityNearestNeighbors, AffinityRBF, AffinityPrecomputed, AffinityPrecomputedNearestNeighbors)
		if err != nil {
			return nil, err
		}
		return NewSpectralClustering(n, solver, affinity, cfg), nil
	},

	searchspace.MinMaxScaler: func(Params, Config) (Estimator, error) {
		return NewMinMaxScaler(), nil
	},

	searchspace.Normalizer: func(p Params, _ Config) (Estimator, error) {
		norm, err := p.String("norm", "l2", "l1", "l2")
		if err != nil {
			return nil, err
		}
		return NewNormalizer(norm), nil
	},

	searchspace.StandardScaler: func(Params, Config) (Estimator, error) {
		return NewStandardScaler(), nil
	},

	searchspace.PCA: func(p Params, _ Config) (Estimator, error) {
		n, err := p.Int("n_components", 2)
		if err != nil {
			return nil, err
		}
		if err := positive("n_components", n); err != nil {
			return nil, err
		}
		return NewPCA(n), nil
	},

	searchspace.FastICA: func(p Params, cfg Config) (Estimator, error) {
		n, err := p.Int("n_components", 2)
		if err != nil {
			return nil, err
		}
		if err := positive("n_components", n); err != nil {
			return nil, err
		}
		return NewFastICA(n, cfg), nil
	},

	searchspace.VarianceThreshold: func(p Params, _ Config) (Estimator, error) {
		threshold, err := p.Float("threshold", 0)
		if err != nil {
			return nil, err
		}
		if threshold < 0 {
			return nil, paramError("threshold", threshold, "must be >= 0")
		}
		return NewVarianceThreshold(threshold), nil
	},
}

// New builds the estimator registered under id with default configuration
func New(id string, p Params) (Estimator, error) {
	return NewWithConfig(id, p, DefaultConfig())
}

// NewWithConfig builds the estimator registered under id. A random_state
// parameter overrides cfg.Seed.
func NewWithConfig(id string, p Params, cfg Config) (Estimator, error) {
	factory, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, id)
	}
	seed, err := p.Int("random_state", int(cfg.Seed))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	cfg.Seed = int64(seed)

	est, err := factory(p, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	return est, nil
}

// Registered returns the identifiers that have a factory, sorted
func Registered() []string {
	ids := make([]string, 0, len(factories))
	for id := range factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

package searchspace

import (
	"sort"
	"strings"
)

// Kind classifies a registered algorithm by the role it plays in a pipeline
type Kind int

const (
	KindUnknown Kind = iota
	KindClusterer
	KindTransformer
	KindSelector
)

// String implements fmt.Stringer
func (k Kind) String() string {
	switch k {
	case KindClusterer:
		return "clusterer"
	case KindTransformer:
		return "transformer"
	case KindSelector:
		return "selector"
	default:
		return "unknown"
	}
}

// Algorithm identifiers
const (
	AgglomerativeClustering = "cluster.AgglomerativeClustering"
	DBSCAN                  = "cluster.DBSCAN"
	KMeans                  = "cluster.KMeans"
	MiniBatchKMeans         = "cluster.MiniBatchKMeans"
	SpectralClustering      = "cluster.SpectralClustering"
	MinMaxScaler            = "preprocessing.MinMaxScaler"
	Normalizer              = "preprocessing.Normalizer"
	StandardScaler          = "preprocessing.StandardScaler"
	PCA                     = "decomposition.PCA"
	FastICA                 = "decomposition.FastICA"
	VarianceThreshold       = "feature_selection.VarianceThreshold"
)

// clustering is built once and never written afterwards.
var clustering = map[string]Domain{
	// Clusterers
	AgglomerativeClustering: NewDomain(map[string]Candidates{
		"n_clusters": Range{2, 23},
		"metric":     Strings{"euclidean"},
		"linkage":    Strings{"ward"},
	}),
	DBSCAN: NewDomain(map[string]Candidates{
		"eps":         Floats{1e-3, 1e-2, 1e-1, 1., 10., 100.},
		"min_samples": Ints{10, 25, 50},
		"metric":      Strings{"euclidean"},
		"leaf_size":   Ints{3, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50},
	}),
	KMeans: NewDomain(map[string]Candidates{
		"n_clusters": Range{2, 23},
		"init":       Strings{"k-means++", "random"},
	}),
	MiniBatchKMeans: NewDomain(map[string]Candidates{
		"n_clusters": Range{2, 23},
		"batch_size": Ints{10, 25, 50},
	}),
	SpectralClustering: NewDomain(map[string]Candidates{
		"n_clusters":   Range{2, 23},
		"eigen_solver": Strings{"arpack", "lobpcg", "amg"},
		"affinity":     Strings{"nearest_neighbors", "rbf", "precomputed", "precomputed_nearest_neighbors"},
	}),

	// Preprocessors
	MinMaxScaler: NewDomain(nil),
	Normalizer: NewDomain(map[string]Candidates{
		"norm": Strings{"l1", "l2"},
	}),
	StandardScaler: NewDomain(nil),
	PCA: NewDomain(map[string]Candidates{
		"n_components": Ints{2, 3, 5, 10},
	}),
	FastICA: NewDomain(map[string]Candidates{
		"n_components": Ints{2, 3, 5, 10},
	}),

	// Selectors
	VarianceThreshold: NewDomain(map[string]Candidates{
		"threshold": Floats{0.1, 0.25},
	}),
}

// Lookup returns the parameter domain registered for an algorithm
func Lookup(id string) (Domain, bool) {
	d, ok := clustering[id]
	return d, ok
}

// Names returns every registered algorithm identifier in sorted order
func Names() []string {
	names := make([]string, 0, len(clustering))
	for id := range clustering {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}

// NamesOf returns the sorted identifiers of one kind
func NamesOf(kind Kind) []string {
	var names []string
	for _, id := range Names() {
		if KindOf(id) == kind {
			names = append(names, id)
		}
	}
	return names
}

// All returns a copy of the whole registry
func All() map[string]Domain {
	out := make(map[string]Domain, len(clustering))
	for id, d := range clustering {
		out[id] = d
	}
	return out
}

// KindOf classifies an identifier by its package prefix
func KindOf(id string) Kind {
	prefix, _, ok := strings.Cut(id, ".")
	if !ok {
		return KindUnknown
	}
	switch prefix {
	case "cluster":
		return KindClusterer
	case "preprocessing", "decomposition":
		return KindTransformer
	case "feature_selection":
		return KindSelector
	default:
		return KindUnknown
	}
}

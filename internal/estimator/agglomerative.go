package estimator

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/objones25/clusterfit/internal/searchspace"
)

// AgglomerativeClustering merges clusters bottom-up with Ward linkage until
// NClusters remain
type AgglomerativeClustering struct {
	NClusters int
	Metric    string
	Linkage   string
}

// NewAgglomerativeClustering creates a Ward agglomerative clusterer
func NewAgglomerativeClustering(nClusters int, metric, linkage string) *AgglomerativeClustering {
	return &AgglomerativeClustering{NClusters: nClusters, Metric: metric, Linkage: linkage}
}

func (a *AgglomerativeClustering) Name() string { return searchspace.AgglomerativeClustering }

type wardCluster struct {
	centroid []float64
	size     int
	members  []int
}

// wardCost is the increase in within-cluster variance caused by merging x and y
func wardCost(x, y *wardCluster) float64 {
	n := float64(x.size * y.size)
	return n / float64(x.size+y.size) * squaredDistance(x.centroid, y.centroid)
}

// FitPredict labels every row with its cluster
func (a *AgglomerativeClustering) FitPredict(X mat.Matrix) ([]int, error) {
	rows, err := rowsOf(X)
	if err != nil {
		return nil, err
	}
	if len(rows) < a.NClusters {
		return nil, paramError("n_clusters", a.NClusters, "n_samples=%d should be >= n_clusters", len(rows))
	}

	clusters := make([]*wardCluster, len(rows))
	for i, r := range rows {
		clusters[i] = &wardCluster{centroid: clone(r), size: 1, members: []int{i}}
	}

	for len(clusters) > a.NClusters {
		bi, bj, best := 0, 1, math.MaxFloat64
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				if c := wardCost(clusters[i], clusters[j]); c < best {
					bi, bj, best = i, j, c
				}
			}
		}

		x, y := clusters[bi], clusters[bj]
		total := float64(x.size + y.size)
		for k := range x.centroid {
			x.centroid[k] = (x.centroid[k]*float64(x.size) + y.centroid[k]*float64(y.size)) / total
		}
		x.size += y.size
		x.members = append(x.members, y.members...)
		clusters = append(clusters[:bj], clusters[bj+1:]...)
	}

	labels := make([]int, len(rows))
	for label, c := range clusters {
		for _, m := range c.members {
			labels[m] = label
		}
	}
	return labels, nil
}

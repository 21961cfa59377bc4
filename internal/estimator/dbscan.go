package estimator

import (
	"gonum.org/v1/gonum/mat"

	"github.com/objones25/clusterfit/internal/searchspace"
)

// Noise is the label DBSCAN assigns to rows outside every cluster
const Noise = -1

// DBSCAN groups rows that are density-reachable from core rows
type DBSCAN struct {
	Eps        float64
	MinSamples int
	// LeafSize is accepted for compatibility; neighborhoods are computed by brute force.
	LeafSize int

	coreIndices []int
}

// NewDBSCAN creates a DBSCAN estimator
func NewDBSCAN(eps float64, minSamples, leafSize int) *DBSCAN {
	return &DBSCAN{Eps: eps, MinSamples: minSamples, LeafSize: leafSize}
}

func (d *DBSCAN) Name() string { return searchspace.DBSCAN }

// FitPredict labels every row with its cluster, or Noise
func (d *DBSCAN) FitPredict(X mat.Matrix) ([]int, error) {
	rows, err := rowsOf(X)
	if err != nil {
		return nil, err
	}

	// A row's neighborhood includes the row itself
	neighbors := make([][]int, len(rows))
	for i := range rows {
		for j := range rows {
			if euclidean(rows[i], rows[j]) <= d.Eps {
				neighbors[i] = append(neighbors[i], j)
			}
		}
	}

	core := make([]bool, len(rows))
	d.coreIndices = d.coreIndices[:0]
	for i, n := range neighbors {
		if len(n) >= d.MinSamples {
			core[i] = true
			d.coreIndices = append(d.coreIndices, i)
		}
	}

	labels := make([]int, len(rows))
	for i := range labels {
		labels[i] = Noise
	}

	cluster := 0
	for i := range rows {
		if !core[i] || labels[i] != Noise {
			continue
		}
		labels[i] = cluster
		queue := []int{i}
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			if !core[p] {
				continue
			}
			for _, q := range neighbors[p] {
				if labels[q] == Noise {
					labels[q] = cluster
					queue = append(queue, q)
				}
			}
		}
		cluster++
	}

	return labels, nil
}

// CoreSampleIndices returns the rows found to be core samples by the last fit
func (d *DBSCAN) CoreSampleIndices() []int {
	out := make([]int, len(d.coreIndices))
	copy(out, d.coreIndices)
	return out
}

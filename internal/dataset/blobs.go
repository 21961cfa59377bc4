package dataset

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// BlobsConfig describes isotropic Gaussian clusters
type BlobsConfig struct {
	Centers   [][]float64 // Cluster centers, all with the same dimension
	PerCenter int         // Rows drawn around each center
	Std       float64     // Standard deviation of every coordinate
	Seed      int64
}

// DefaultBlobsConfig returns three well-separated 2-D clusters
func DefaultBlobsConfig() BlobsConfig {
	return BlobsConfig{
		Centers:   [][]float64{{0, 0}, {10, 10}, {-10, 10}},
		PerCenter: 30,
		Std:       0.5,
		Seed:      42,
	}
}

// Blobs draws rows around each center and returns them with their center index
func Blobs(cfg BlobsConfig) (*mat.Dense, []int, error) {
	if len(cfg.Centers) == 0 || cfg.PerCenter <= 0 {
		return nil, nil, fmt.Errorf("blobs need at least one center and one row per center")
	}
	dims := len(cfg.Centers[0])
	for i, c := range cfg.Centers {
		if len(c) != dims {
			return nil, nil, fmt.Errorf("center %d has inconsistent dimensions", i)
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	n := len(cfg.Centers) * cfg.PerCenter
	X := mat.NewDense(n, dims, nil)
	labels := make([]int, n)
	for c, center := range cfg.Centers {
		for k := 0; k < cfg.PerCenter; k++ {
			i := c*cfg.PerCenter + k
			for j, v := range center {
				X.Set(i, j, v+rng.NormFloat64()*cfg.Std)
			}
			labels[i] = c
		}
	}
	return X, labels, nil
}

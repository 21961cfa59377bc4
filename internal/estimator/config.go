package estimator

import (
	"fmt"
	"runtime"
)

// Config holds estimator settings that are not part of the search space
type Config struct {
	// Iterative solvers (k-means, FastICA)
	MaxIterations int     // Maximum iterations for iterative solvers
	Tolerance     float64 // Convergence threshold

	// Mini-batch k-means
	MaxNoImprovement int // Mini-batch steps without centroid movement before stopping

	// Spectral clustering
	NumNeighbors int     // Neighbors used for nearest-neighbor affinities
	Gamma        float64 // Kernel coefficient for the rbf affinity

	Seed       int64 // Seed for stochastic estimators
	NumWorkers int   // Goroutines used for distance computations
}

// DefaultConfig returns default estimator configuration
func DefaultConfig() Config {
	return Config{
		MaxIterations:    300,
		Tolerance:        1e-4,
		MaxNoImprovement: 10,
		NumNeighbors:     10,
		Gamma:            1.0,
		Seed:             0,
		NumWorkers:       runtime.NumCPU(),
	}
}

// withDefaults fills zero fields from DefaultConfig
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Tolerance <= 0 {
		c.Tolerance = d.Tolerance
	}
	if c.MaxNoImprovement <= 0 {
		c.MaxNoImprovement = d.MaxNoImprovement
	}
	if c.NumNeighbors <= 0 {
		c.NumNeighbors = d.NumNeighbors
	}
	if c.Gamma <= 0 {
		c.Gamma = d.Gamma
	}
	if c.NumWorkers <= 0 {
		c.NumWorkers = d.NumWorkers
	}
	return c
}

// Key renders the settings that affect fitted results. NumWorkers is left out.
func (c Config) Key() string {
	c = c.withDefaults()
	return fmt.Sprintf("max_iter=%d,tol=%g,no_improvement=%d,neighbors=%d,gamma=%g,seed=%d",
		c.MaxIterations, c.Tolerance, c.MaxNoImprovement, c.NumNeighbors, c.Gamma, c.Seed)
}

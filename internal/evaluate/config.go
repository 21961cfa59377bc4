package evaluate

import (
	"runtime"
	"time"

	"github.com/objones25/clusterfit/internal/estimator"
	"github.com/objones25/clusterfit/internal/scoring"
)

// Config holds evaluator configuration
type Config struct {
	Scorer     string           // Registry name of the fitness function
	NumWorkers int              // Maximum concurrent evaluations
	Timeout    time.Duration    // Per-candidate time limit, zero disables it
	Estimator  estimator.Config // Settings passed to every estimator
}

// DefaultConfig returns default evaluator configuration
func DefaultConfig() Config {
	return Config{
		Scorer:     scoring.SilhouetteScoreName,
		NumWorkers: runtime.NumCPU(),
		Timeout:    5 * time.Minute,
		Estimator:  estimator.DefaultConfig(),
	}
}

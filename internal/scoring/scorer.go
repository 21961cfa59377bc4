package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/objones25/clusterfit/internal/estimator"
	"github.com/objones25/clusterfit/internal/monitor"
)

// Scorer turns an estimator and data into a fitness value where higher is better
type Scorer interface {
	// Name returns the registry name of the scorer
	Name() string

	// Score evaluates est on X. y holds ground-truth labels and may be nil
	// for unsupervised scorers.
	Score(est estimator.Estimator, X mat.Matrix, y []int) (float64, error)
}

// PredictScorer compares an estimator's labels against ground truth
type PredictScorer struct {
	name   string
	metric LabelMetric
	sign   float64
}

// MakeScorer wraps a label metric. When greaterIsBetter is false the metric is
// negated so every scorer can be maximized.
func MakeScorer(name string, metric LabelMetric, greaterIsBetter bool) *PredictScorer {
	sign := 1.0
	if !greaterIsBetter {
		sign = -1
	}
	return &PredictScorer{name: name, metric: metric, sign: sign}
}

func (s *PredictScorer) Name() string { return s.name }

// GreaterIsBetter reports the polarity of the wrapped metric
func (s *PredictScorer) GreaterIsBetter() bool { return s.sign > 0 }

// Score obtains labels for X and compares them with y
func (s *PredictScorer) Score(est estimator.Estimator, X mat.Matrix, y []int) (float64, error) {
	if y == nil {
		return 0, fmt.Errorf("%s: %w", s.name, ErrMissingTarget)
	}
	pred, err := predictions(est, X)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", s.name, err)
	}
	if len(pred) != len(y) {
		return 0, fmt.Errorf("%s: %w: %d labels, %d predictions", s.name, ErrLengthMismatch, len(y), len(pred))
	}
	v, err := s.metric(y, pred)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", s.name, err)
	}
	return s.sign * v, nil
}

// predictions uses a fitted predictor when available and otherwise clusters X
func predictions(est estimator.Estimator, X mat.Matrix) ([]int, error) {
	if p, ok := est.(estimator.Predictor); ok && p.Fitted() {
		return p.Predict(X)
	}
	if c, ok := est.(estimator.Clusterer); ok {
		return c.FitPredict(X)
	}
	return nil, fmt.Errorf("%w: %s", ErrNoPredictions, est.Name())
}

// ClusterMetric rates a cluster assignment of X without ground truth
type ClusterMetric func(X mat.Matrix, labels []int) (float64, error)

// UnsupervisedScorer clusters X with the estimator and rates the result with
// Metric. Metrics where lower is better are negated.
type UnsupervisedScorer struct {
	name            string
	Metric          ClusterMetric
	GreaterIsBetter bool
}

// NewUnsupervisedScorer wraps a clustering quality metric
func NewUnsupervisedScorer(name string, metric ClusterMetric, greaterIsBetter bool) *UnsupervisedScorer {
	return &UnsupervisedScorer{name: name, Metric: metric, GreaterIsBetter: greaterIsBetter}
}

func (s *UnsupervisedScorer) Name() string { return s.name }

// Score returns -Inf when the clustering has fewer than two distinct labels.
// Every other failure, panics included, is an *InvalidUnsupervisedMetricError.
func (s *UnsupervisedScorer) Score(est estimator.Estimator, X mat.Matrix, _ []int) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			score, err = 0, s.invalid(fmt.Errorf("panic: %v", r))
		}
	}()

	c, ok := est.(estimator.Clusterer)
	if !ok {
		return 0, s.invalid(fmt.Errorf("%w: %s", ErrNoPredictions, est.Name()))
	}
	labels, err := c.FitPredict(X)
	if err != nil {
		return 0, s.invalid(err)
	}

	if distinct(labels) < 2 {
		log.Debug().
			Str("scorer", s.name).
			Str("estimator", est.Name()).
			Msg("Clustering collapsed to a single cluster")
		monitor.DegenerateClusterings.WithLabelValues(s.name).Inc()
		return math.Inf(-1), nil
	}

	v, err := s.Metric(X, labels)
	if err != nil {
		return 0, s.invalid(err)
	}
	if !s.GreaterIsBetter {
		v = -v
	}
	return v, nil
}

func (s *UnsupervisedScorer) invalid(cause error) error {
	monitor.InvalidMetricErrors.WithLabelValues(s.name).Inc()
	var already *InvalidUnsupervisedMetricError
	if errors.As(cause, &already) {
		return cause
	}
	return &InvalidUnsupervisedMetricError{Metric: s.name, Err: cause}
}

func distinct(labels []int) int {
	seen := make(map[int]struct{}, 2)
	for _, l := range labels {
		seen[l] = struct{}{}
		if len(seen) > 1 {
			break
		}
	}
	return len(seen)
}

package evaluate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/objones25/clusterfit/internal/estimator"
	"github.com/objones25/clusterfit/internal/fitcache"
	"github.com/objones25/clusterfit/internal/monitor"
	"github.com/objones25/clusterfit/internal/scoring"
)

// Result is the outcome of evaluating one candidate pipeline
type Result struct {
	Steps    []estimator.Step
	Pipeline string        // Canonical pipeline key, empty if the pipeline could not be built
	Score    float64       // Fitness, valid when Err is nil
	Err      error         // Why the candidate could not be scored
	Cached   bool          // Whether Score came from the cache
	Duration time.Duration // Wall time spent fitting and scoring
}

// Evaluator fits candidate pipelines and scores them with one registered scorer
type Evaluator struct {
	config Config
	scorer scoring.Scorer
	cache  fitcache.Cache

	mu   sync.Mutex
	best float64
}

// New creates an evaluator. cache may be nil to disable memoization.
func New(cfg Config, cache fitcache.Cache) (*Evaluator, error) {
	if cfg.Scorer == "" {
		cfg.Scorer = DefaultConfig().Scorer
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = DefaultConfig().NumWorkers
	}
	scorer, err := scoring.Lookup(cfg.Scorer)
	if err != nil {
		return nil, err
	}
	return &Evaluator{
		config: cfg,
		scorer: scorer,
		cache:  cache,
		best:   math.Inf(-1),
	}, nil
}

// Scorer returns the fitness function in use
func (e *Evaluator) Scorer() scoring.Scorer { return e.scorer }

// Evaluate scores a single candidate
func (e *Evaluator) Evaluate(ctx context.Context, steps []estimator.Step, X mat.Matrix, y []int) Result {
	return e.evaluate(ctx, steps, X, y, fitcache.Fingerprint(X, y))
}

// EvaluateAll scores candidates with at most NumWorkers running at once.
// Individual failures are reported in the results; only cancellation of ctx
// returns an error.
func (e *Evaluator) EvaluateAll(ctx context.Context, candidates [][]estimator.Step, X mat.Matrix, y []int) ([]Result, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	fingerprint := fitcache.Fingerprint(X, y)
	results := make([]Result, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.NumWorkers)
	for i, steps := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Steps: steps, Err: err}
				return err
			}
			results[i] = e.evaluate(gctx, steps, X, y, fingerprint)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (e *Evaluator) evaluate(ctx context.Context, steps []estimator.Step, X mat.Matrix, y []int, fingerprint string) Result {
	result := Result{Steps: steps}
	scorerName := e.scorer.Name()

	pipeline, err := estimator.NewPipelineWithConfig(steps, e.config.Estimator)
	if err != nil {
		result.Err = &EvalError{Pipeline: fmt.Sprint(steps), Err: err}
		monitor.EvaluationsTotal.WithLabelValues(scorerName, "invalid").Inc()
		return result
	}
	result.Pipeline = pipeline.Key()
	key := fitcache.Key(scorerName, result.Pipeline+"|"+e.config.Estimator.Key(), fingerprint)

	if e.cache != nil {
		score, ok, err := e.cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Fitness cache lookup failed")
		} else if ok {
			result.Score, result.Cached = score, true
			monitor.EvaluationsTotal.WithLabelValues(scorerName, "cached").Inc()
			return result
		}
	}

	start := time.Now()
	score, err := e.score(ctx, pipeline, X, y)
	result.Duration = time.Since(start)
	monitor.EvaluationLatency.WithLabelValues(pipeline.Name()).Observe(result.Duration.Seconds())

	if err != nil {
		result.Err = &EvalError{Pipeline: result.Pipeline, Err: err}
		monitor.EvaluationsTotal.WithLabelValues(scorerName, "error").Inc()
		log.Warn().
			Err(err).
			Str("pipeline", result.Pipeline).
			Str("scorer", scorerName).
			Msg("Candidate evaluation failed")
		return result
	}

	result.Score = score
	monitor.EvaluationsTotal.WithLabelValues(scorerName, "success").Inc()
	e.recordBest(scorerName, score)
	log.Debug().
		Str("pipeline", result.Pipeline).
		Float64("score", score).
		Dur("duration", result.Duration).
		Msg("Candidate evaluated")

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, score); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to cache score")
		}
	}
	return result
}

type outcome struct {
	score float64
	err   error
}

// score runs the scorer in its own goroutine so a timeout can abandon it
func (e *Evaluator) score(ctx context.Context, pipeline *estimator.Pipeline, X mat.Matrix, y []int) (float64, error) {
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("scorer panicked: %v", r)}
			}
		}()
		score, err := e.scorer.Score(pipeline, X, y)
		done <- outcome{score: score, err: err}
	}()

	select {
	case out := <-done:
		return out.score, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, fmt.Errorf("%w after %s", ErrTimeout, e.config.Timeout)
		}
		return 0, ctx.Err()
	}
}

func (e *Evaluator) recordBest(scorer string, score float64) {
	if math.IsInf(score, 0) || math.IsNaN(score) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if score > e.best {
		e.best = score
		monitor.BestScore.WithLabelValues(scorer).Set(score)
	}
}

// Best returns the highest-scoring successful result
func Best(results []Result) (Result, bool) {
	var best Result
	found := false
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if !found || r.Score > best.Score {
			best, found = r, true
		}
	}
	return best, found
}

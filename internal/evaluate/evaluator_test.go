package evaluate

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/objones25/clusterfit/internal/dataset"
	"github.com/objones25/clusterfit/internal/estimator"
	"github.com/objones25/clusterfit/internal/fitcache"
	"github.com/objones25/clusterfit/internal/scoring"
	"github.com/objones25/clusterfit/internal/searchspace"
	"github.com/objones25/clusterfit/internal/testutil"
)

func TestMain(m *testing.M) {
	testutil.InitTestLogger(zerolog.WarnLevel)
	os.Exit(m.Run())
}

func blobs(t *testing.T) (*mat.Dense, []int) {
	t.Helper()
	X, y, err := dataset.Blobs(dataset.DefaultBlobsConfig())
	require.NoError(t, err)
	return X, y
}

func newEvaluator(t *testing.T, scorer string, cache fitcache.Cache) *Evaluator {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Scorer = scorer
	cfg.NumWorkers = 4
	e, err := New(cfg, cache)
	require.NoError(t, err)
	return e
}

func kmeans(n int) []estimator.Step {
	return []estimator.Step{{Algorithm: searchspace.KMeans, Params: estimator.Params{"n_clusters": n}}}
}

func TestNew(t *testing.T) {
	e, err := New(Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, scoring.SilhouetteScoreName, e.Scorer().Name())

	_, err = New(Config{Scorer: "explained_variance"}, nil)
	assert.ErrorIs(t, err, scoring.ErrUnknownScorer)
}

func TestEvaluateFirstCandidates(t *testing.T) {
	X, _ := blobs(t)
	e := newEvaluator(t, scoring.SilhouetteScoreName, nil)

	candidates := FirstCandidates()
	require.Len(t, candidates, 5)

	results, err := e.EvaluateAll(context.Background(), candidates, X, nil)
	require.NoError(t, err)
	require.Len(t, results, 5)

	for _, r := range results {
		require.NoError(t, r.Err, r.Pipeline)
		assert.NotEmpty(t, r.Pipeline)
		assert.False(t, r.Cached)
		if r.Steps[0].Algorithm == searchspace.DBSCAN {
			// eps=0.001 leaves every row as noise
			assert.True(t, math.IsInf(r.Score, -1))
		} else {
			assert.False(t, math.IsInf(r.Score, 0), r.Pipeline)
		}
	}

	best, ok := Best(results)
	require.True(t, ok)
	assert.NotEqual(t, searchspace.DBSCAN, best.Steps[0].Algorithm)
}

func TestEvaluateUsesCache(t *testing.T) {
	X, _ := blobs(t)
	cache, err := fitcache.NewMemory(16)
	require.NoError(t, err)
	e := newEvaluator(t, scoring.SilhouetteScoreName, cache)
	ctx := context.Background()

	first := e.Evaluate(ctx, kmeans(3), X, nil)
	require.NoError(t, first.Err)
	assert.False(t, first.Cached)
	assert.Greater(t, first.Score, 0.8)
	assert.Equal(t, 1, cache.Len())

	second := e.Evaluate(ctx, kmeans(3), X, nil)
	require.NoError(t, second.Err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Score, second.Score)

	// Different data misses
	other := mat.DenseCopyOf(X)
	other.Set(0, 0, 100)
	third := e.Evaluate(ctx, kmeans(3), other, nil)
	require.NoError(t, third.Err)
	assert.False(t, third.Cached)
}

func TestEvaluateCacheSeparatesEstimatorConfigs(t *testing.T) {
	X, _ := blobs(t)
	cache, err := fitcache.NewMemory(16)
	require.NoError(t, err)
	ctx := context.Background()

	cfgA := DefaultConfig()
	cfgA.NumWorkers = 4
	cfgA.Estimator.Seed = 1
	cfgA.Estimator.MaxIterations = 1
	a, err := New(cfgA, cache)
	require.NoError(t, err)

	cfgB := cfgA
	cfgB.Estimator.Seed = 99
	cfgB.Estimator.MaxIterations = 300
	b, err := New(cfgB, cache)
	require.NoError(t, err)

	first := a.Evaluate(ctx, kmeans(3), X, nil)
	require.NoError(t, first.Err)
	assert.False(t, first.Cached)

	second := b.Evaluate(ctx, kmeans(3), X, nil)
	require.NoError(t, second.Err)
	assert.False(t, second.Cached)
	assert.Equal(t, 2, cache.Len())

	// Same settings share entries
	again, err := New(cfgB, cache)
	require.NoError(t, err)
	third := again.Evaluate(ctx, kmeans(3), X, nil)
	require.NoError(t, third.Err)
	assert.True(t, third.Cached)
	assert.Equal(t, second.Score, third.Score)
}

func TestEvaluateCachesDegenerateScores(t *testing.T) {
	X, _ := blobs(t)
	cache, err := fitcache.NewMemory(16)
	require.NoError(t, err)
	e := newEvaluator(t, scoring.DaviesBouldinScoreName, cache)

	steps := []estimator.Step{{Algorithm: searchspace.DBSCAN, Params: estimator.Params{"eps": 1e-3, "min_samples": 10}}}
	first := e.Evaluate(context.Background(), steps, X, nil)
	require.NoError(t, first.Err)
	assert.True(t, math.IsInf(first.Score, -1))

	second := e.Evaluate(context.Background(), steps, X, nil)
	assert.True(t, second.Cached)
	assert.True(t, math.IsInf(second.Score, -1))
}

func TestEvaluateSharesRedisCache(t *testing.T) {
	X, _ := blobs(t)
	mr := miniredis.RunT(t)
	newCache := func() *fitcache.RedisCache {
		rc, err := fitcache.NewRedis(fitcache.Config{Host: mr.Host(), Port: mr.Port()})
		require.NoError(t, err)
		t.Cleanup(func() { rc.Close() })
		return rc
	}

	ctx := context.Background()
	a := newEvaluator(t, scoring.CalinskiHarabaszScoreName, newCache())
	b := newEvaluator(t, scoring.CalinskiHarabaszScoreName, newCache())

	first := a.Evaluate(ctx, kmeans(3), X, nil)
	require.NoError(t, first.Err)
	second := b.Evaluate(ctx, kmeans(3), X, nil)
	require.NoError(t, second.Err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Score, second.Score)
}

func TestEvaluateSupervised(t *testing.T) {
	X, y := blobs(t)
	e := newEvaluator(t, "adjusted_rand_score", nil)

	r := e.Evaluate(context.Background(), kmeans(3), X, y)
	require.NoError(t, r.Err)
	assert.InDelta(t, 1.0, r.Score, 1e-12)

	r = e.Evaluate(context.Background(), kmeans(3), X, nil)
	assert.ErrorIs(t, r.Err, scoring.ErrMissingTarget)
}

func TestEvaluateInvalidPipeline(t *testing.T) {
	X, _ := blobs(t)
	cache, err := fitcache.NewMemory(16)
	require.NoError(t, err)
	e := newEvaluator(t, scoring.SilhouetteScoreName, cache)

	r := e.Evaluate(context.Background(), []estimator.Step{
		{Algorithm: searchspace.KMeans},
		{Algorithm: searchspace.StandardScaler},
	}, X, nil)
	assert.ErrorIs(t, r.Err, estimator.ErrInvalidPipeline)
	assert.Empty(t, r.Pipeline)

	var evalErr *EvalError
	require.ErrorAs(t, r.Err, &evalErr)
	assert.Equal(t, 0, cache.Len())
}

func TestEvaluateFitFailure(t *testing.T) {
	X, _ := blobs(t)
	cache, err := fitcache.NewMemory(16)
	require.NoError(t, err)
	e := newEvaluator(t, scoring.SilhouetteScoreName, cache)
	logs := testutil.CaptureLogs(t, zerolog.WarnLevel)

	// A precomputed affinity needs a square matrix
	r := e.Evaluate(context.Background(), []estimator.Step{{
		Algorithm: searchspace.SpectralClustering,
		Params:    estimator.Params{"n_clusters": 2, "affinity": "precomputed"},
	}}, X, nil)
	require.Error(t, r.Err)
	assert.True(t, scoring.IsInvalidUnsupervisedMetric(r.Err))
	assert.True(t, estimator.IsInvalidParam(r.Err))
	assert.NotEmpty(t, r.Pipeline)
	assert.Equal(t, 0, cache.Len(), "failures are not cached")
	assert.Contains(t, logs.String(), "Candidate evaluation failed")
	assert.Contains(t, logs.String(), `"scorer":"silhouette_score"`)
}

func TestEvaluateTimeout(t *testing.T) {
	cfg := dataset.DefaultBlobsConfig()
	cfg.PerCenter = 400
	X, _, err := dataset.Blobs(cfg)
	require.NoError(t, err)

	evalCfg := DefaultConfig()
	evalCfg.Timeout = 10 * time.Millisecond
	e, err := New(evalCfg, nil)
	require.NoError(t, err)

	r := e.Evaluate(context.Background(), []estimator.Step{{
		Algorithm: searchspace.SpectralClustering,
		Params:    estimator.Params{"n_clusters": 3, "affinity": "rbf"},
	}}, X, nil)
	require.Error(t, r.Err)
	assert.True(t, IsTimeout(r.Err))
}

func TestEvaluateAll(t *testing.T) {
	X, _ := blobs(t)
	e := newEvaluator(t, scoring.SilhouetteScoreName, nil)

	t.Run("empty", func(t *testing.T) {
		_, err := e.EvaluateAll(context.Background(), nil, X, nil)
		assert.ErrorIs(t, err, ErrNoCandidates)
	})

	t.Run("keeps candidate order", func(t *testing.T) {
		candidates := [][]estimator.Step{kmeans(2), kmeans(3), kmeans(4)}
		results, err := e.EvaluateAll(context.Background(), candidates, X, nil)
		require.NoError(t, err)
		for i, r := range results {
			assert.Equal(t, candidates[i], r.Steps)
		}

		best, ok := Best(results)
		require.True(t, ok)
		assert.Equal(t, 3, best.Steps[0].Params["n_clusters"])
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		results, err := e.EvaluateAll(ctx, [][]estimator.Step{kmeans(2), kmeans(3)}, X, nil)
		assert.ErrorIs(t, err, context.Canceled)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.Error(t, r.Err)
		}
	})
}

func TestBest(t *testing.T) {
	_, ok := Best(nil)
	assert.False(t, ok)

	results := []Result{
		{Pipeline: "failed", Score: 10, Err: errors.New("boom")},
		{Pipeline: "degenerate", Score: math.Inf(-1)},
		{Pipeline: "good", Score: 0.7},
		{Pipeline: "better", Score: 0.9},
	}
	best, ok := Best(results)
	require.True(t, ok)
	assert.Equal(t, "better", best.Pipeline)

	best, ok = Best(results[:2])
	require.True(t, ok)
	assert.Equal(t, "degenerate", best.Pipeline)
}

func TestRandomCandidates(t *testing.T) {
	a := RandomCandidates(rand.New(rand.NewSource(5)), 50)
	b := RandomCandidates(rand.New(rand.NewSource(5)), 50)
	assert.Equal(t, a, b)
	require.Len(t, a, 50)

	var withPreprocessing int
	for _, steps := range a {
		require.NotEmpty(t, steps)
		require.LessOrEqual(t, len(steps), 2)
		assert.Equal(t, searchspace.KindClusterer, searchspace.KindOf(steps[len(steps)-1].Algorithm))
		if len(steps) == 2 {
			withPreprocessing++
			assert.NotEqual(t, searchspace.KindClusterer, searchspace.KindOf(steps[0].Algorithm))
		}

		_, err := estimator.NewPipeline(steps)
		assert.NoError(t, err)
	}
	assert.Greater(t, withPreprocessing, 0)
	assert.Less(t, withPreprocessing, 50)
}

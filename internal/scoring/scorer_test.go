package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/objones25/clusterfit/internal/dataset"
	"github.com/objones25/clusterfit/internal/estimator"
	"github.com/objones25/clusterfit/internal/monitor"
	"github.com/objones25/clusterfit/internal/testutil"
)

var unsupervisedNames = []string{
	SilhouetteScoreName,
	DaviesBouldinScoreName,
	CalinskiHarabaszScoreName,
	SilhouetteSamplesName,
}

func TestUnsupervisedSingleClusterIsNegativeInfinity(t *testing.T) {
	for _, name := range unsupervisedNames {
		t.Run(name, func(t *testing.T) {
			logs := testutil.CaptureLogs(t, zerolog.DebugLevel)
			before := counterValue(t, monitor.DegenerateClusterings.WithLabelValues(name))

			score, err := MustGet(name).Score(&fixedClusterer{labels: []int{4, 4, 4, 4}}, line(), nil)
			require.NoError(t, err)
			assert.True(t, math.IsInf(score, -1), "got %v", score)

			after := counterValue(t, monitor.DegenerateClusterings.WithLabelValues(name))
			assert.Equal(t, before+1, after)
			assert.Contains(t, logs.String(), "Clustering collapsed to a single cluster")
			assert.Contains(t, logs.String(), `"scorer":"`+name+`"`)
		})
	}
}

func TestUnsupervisedScores(t *testing.T) {
	est := &fixedClusterer{labels: []int{0, 0, 1, 1}}
	silhouette := (2*9.5/10.5 + 2*8.5/9.5) / 4

	tests := map[string]float64{
		SilhouetteScoreName:       silhouette,
		SilhouetteSamplesName:     silhouette,
		DaviesBouldinScoreName:    -0.1,
		CalinskiHarabaszScoreName: 200,
	}
	for name, want := range tests {
		got, err := MustGet(name).Score(est, line(), nil)
		require.NoError(t, err, name)
		assert.InDelta(t, want, got, 1e-9, name)
	}
}

func TestUnsupervisedFailuresAreWrapped(t *testing.T) {
	tests := []struct {
		name  string
		est   estimator.Estimator
		cause error
	}{
		{"clusterer error", &fixedClusterer{err: errBoom}, errBoom},
		{"metric error", &fixedClusterer{labels: []int{0, 1, 2, 3}}, ErrInvalidLabelCount},
		{"length mismatch", &fixedClusterer{labels: []int{0, 1}}, ErrLengthMismatch},
		{"not a clusterer", opaque{}, ErrNoPredictions},
		{"predictor only", &fixedPredictor{labels: []int{0, 0, 1, 1}}, ErrNoPredictions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := counterValue(t, monitor.InvalidMetricErrors.WithLabelValues(SilhouetteScoreName))

			_, err := MustGet(SilhouetteScoreName).Score(tt.est, line(), nil)
			require.Error(t, err)
			assert.True(t, IsInvalidUnsupervisedMetric(err))
			assert.ErrorIs(t, err, tt.cause)

			var invalid *InvalidUnsupervisedMetricError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, SilhouetteScoreName, invalid.Metric)

			after := counterValue(t, monitor.InvalidMetricErrors.WithLabelValues(SilhouetteScoreName))
			assert.Equal(t, before+1, after)
		})
	}
}

func TestUnsupervisedRecoversPanics(t *testing.T) {
	_, err := MustGet(DaviesBouldinScoreName).Score(&fixedClusterer{panicMsg: "index out of range"}, line(), nil)
	require.Error(t, err)
	assert.True(t, IsInvalidUnsupervisedMetric(err))
	assert.Contains(t, err.Error(), "index out of range")

	panicky := NewUnsupervisedScorer("panicky", func(_ mat.Matrix, _ []int) (float64, error) {
		panic("metric exploded")
	}, true)
	_, err = panicky.Score(&fixedClusterer{labels: []int{0, 0, 1, 1}}, line(), nil)
	assert.True(t, IsInvalidUnsupervisedMetric(err))
}

func TestUnsupervisedNotWrappedTwice(t *testing.T) {
	inner := &InvalidUnsupervisedMetricError{Metric: "inner", Err: errBoom}
	_, err := MustGet(SilhouetteScoreName).Score(&fixedClusterer{err: inner}, line(), nil)

	var invalid *InvalidUnsupervisedMetricError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "inner", invalid.Metric)
	assert.Same(t, inner, invalid)
}

func TestUnsupervisedWithRealEstimators(t *testing.T) {
	X, _, err := dataset.Blobs(dataset.DefaultBlobsConfig())
	require.NoError(t, err)

	km, err := estimator.New("cluster.KMeans", estimator.Params{"n_clusters": 3})
	require.NoError(t, err)
	score, err := MustGet(SilhouetteScoreName).Score(km, X, nil)
	require.NoError(t, err)
	assert.Greater(t, score, 0.8)

	db, err := estimator.New("cluster.DBSCAN", estimator.Params{"eps": 1e-3, "min_samples": 10})
	require.NoError(t, err)
	score, err = MustGet(SilhouetteScoreName).Score(db, X, nil)
	require.NoError(t, err)
	assert.True(t, math.IsInf(score, -1))
}

func TestPredictScorer(t *testing.T) {
	s := MakeScorer("error_rate", func(yTrue, yPred []int) (float64, error) {
		acc, err := Accuracy(yTrue, yPred)
		return 1 - acc, err
	}, false)
	assert.False(t, s.GreaterIsBetter())
	assert.Equal(t, "error_rate", s.Name())

	got, err := s.Score(&fixedPredictor{labels: []int{0, 0, 1, 0}}, line(), []int{0, 0, 1, 1})
	require.NoError(t, err)
	assert.InDelta(t, -0.25, got, 1e-12)

	// Clusterers are refit when they cannot predict
	got, err = MustGet("accuracy").Score(&fixedClusterer{labels: []int{0, 0, 1, 1}}, line(), []int{0, 0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestPredictScorerErrors(t *testing.T) {
	s := MustGet("accuracy")

	_, err := s.Score(&fixedPredictor{labels: []int{0}}, line(), nil)
	assert.ErrorIs(t, err, ErrMissingTarget)

	_, err = s.Score(opaque{}, line(), []int{0, 0, 1, 1})
	assert.ErrorIs(t, err, ErrNoPredictions)

	_, err = s.Score(&fixedPredictor{labels: []int{0}}, line(), []int{0, 0, 1, 1})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = s.Score(&fixedClusterer{err: errBoom}, line(), []int{0, 0, 1, 1})
	assert.True(t, errors.Is(err, errBoom))
	assert.False(t, IsInvalidUnsupervisedMetric(err))
}

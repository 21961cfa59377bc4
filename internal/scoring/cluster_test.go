package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSilhouette(t *testing.T) {
	labels := []int{0, 0, 1, 1}

	samples, err := SilhouetteSamples(line(), labels)
	require.NoError(t, err)
	want := []float64{9.5 / 10.5, 8.5 / 9.5, 8.5 / 9.5, 9.5 / 10.5}
	assert.InDeltaSlice(t, want, samples, 1e-12)

	score, err := SilhouetteScore(line(), labels)
	require.NoError(t, err)
	assert.InDelta(t, (2*9.5/10.5+2*8.5/9.5)/4, score, 1e-12)
}

func TestSilhouetteSingletonClusterScoresZero(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{0, 1, 5})
	samples, err := SilhouetteSamples(X, []int{0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, samples[2])
	assert.Greater(t, samples[0], 0.0)
}

func TestSilhouetteArbitraryLabels(t *testing.T) {
	a, err := SilhouetteScore(line(), []int{0, 0, 1, 1})
	require.NoError(t, err)
	b, err := SilhouetteScore(line(), []int{-1, -1, 7, 7})
	require.NoError(t, err)
	assert.InDelta(t, a, b, 1e-12)
}

func TestDaviesBouldin(t *testing.T) {
	// Scatter 0.5 in each cluster, centroids 10 apart
	score, err := DaviesBouldinScore(line(), []int{0, 0, 1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.1, score, 1e-12)

	X := mat.NewDense(4, 1, []float64{0, 0, 1, 1})
	score, err = DaviesBouldinScore(X, []int{0, 0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestCalinskiHarabasz(t *testing.T) {
	score, err := CalinskiHarabaszScore(line(), []int{0, 0, 1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 200.0, score, 1e-9)

	X := mat.NewDense(4, 1, []float64{0, 0, 1, 1})
	score, err = CalinskiHarabaszScore(X, []int{0, 0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestClusterMetricInputErrors(t *testing.T) {
	metrics := map[string]ClusterMetric{
		"silhouette":        SilhouetteScore,
		"davies_bouldin":    DaviesBouldinScore,
		"calinski_harabasz": CalinskiHarabaszScore,
	}

	for name, metric := range metrics {
		t.Run(name, func(t *testing.T) {
			_, err := metric(line(), []int{0, 0, 0, 0})
			assert.ErrorIs(t, err, ErrInvalidLabelCount)

			_, err = metric(line(), []int{0, 1, 2, 3})
			assert.ErrorIs(t, err, ErrInvalidLabelCount)

			_, err = metric(line(), []int{0, 1})
			assert.ErrorIs(t, err, ErrLengthMismatch)
		})
	}
}

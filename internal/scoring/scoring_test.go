package scoring

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// fixedClusterer returns canned labels, an error, or panics
type fixedClusterer struct {
	labels   []int
	err      error
	panicMsg string
}

func (f *fixedClusterer) Name() string { return "test.FixedClusterer" }

func (f *fixedClusterer) FitPredict(mat.Matrix) ([]int, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.labels, nil
}

// fixedPredictor labels rows without refitting
type fixedPredictor struct {
	labels []int
}

func (f *fixedPredictor) Name() string { return "test.FixedPredictor" }

func (f *fixedPredictor) Predict(mat.Matrix) ([]int, error) { return f.labels, nil }

func (f *fixedPredictor) Fitted() bool { return true }

// opaque can neither cluster nor predict
type opaque struct{}

func (opaque) Name() string { return "test.Opaque" }

var errBoom = errors.New("boom")

// line holds two tight groups on a line: {0, 1} and {10, 11}
func line() *mat.Dense {
	return mat.NewDense(4, 1, []float64{0, 1, 10, 11})
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

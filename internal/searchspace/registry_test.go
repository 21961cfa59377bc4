package searchspace

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryContents(t *testing.T) {
	names := Names()
	require.Len(t, names, 11)
	assert.True(t, sort.StringsAreSorted(names))

	tests := []struct {
		id     string
		kind   Kind
		params []string
		size   int
	}{
		{AgglomerativeClustering, KindClusterer, []string{"linkage", "metric", "n_clusters"}, 21},
		{DBSCAN, KindClusterer, []string{"eps", "leaf_size", "metric", "min_samples"}, 6 * 3 * 11},
		{KMeans, KindClusterer, []string{"init", "n_clusters"}, 21 * 2},
		{MiniBatchKMeans, KindClusterer, []string{"batch_size", "n_clusters"}, 21 * 3},
		{SpectralClustering, KindClusterer, []string{"affinity", "eigen_solver", "n_clusters"}, 21 * 3 * 4},
		{MinMaxScaler, KindTransformer, []string{}, 1},
		{Normalizer, KindTransformer, []string{"norm"}, 2},
		{StandardScaler, KindTransformer, []string{}, 1},
		{PCA, KindTransformer, []string{"n_components"}, 4},
		{FastICA, KindTransformer, []string{"n_components"}, 4},
		{VarianceThreshold, KindSelector, []string{"threshold"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			d, ok := Lookup(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.kind, KindOf(tt.id))
			assert.Equal(t, tt.params, d.Params())
			assert.Equal(t, len(tt.params), d.Len())
			assert.Equal(t, tt.size, d.Size())
		})
	}
}

func TestExactCandidates(t *testing.T) {
	d, _ := Lookup(DBSCAN)
	assert.Equal(t, []any{1e-3, 1e-2, 1e-1, 1., 10., 100.}, d.Values("eps"))
	assert.Equal(t, []any{10, 25, 50}, d.Values("min_samples"))
	assert.Equal(t, []any{"euclidean"}, d.Values("metric"))
	assert.Len(t, d.Values("leaf_size"), 11)

	d, _ = Lookup(SpectralClustering)
	assert.Equal(t, []any{"arpack", "lobpcg", "amg"}, d.Values("eigen_solver"))
	assert.Equal(t,
		[]any{"nearest_neighbors", "rbf", "precomputed", "precomputed_nearest_neighbors"},
		d.Values("affinity"))

	d, _ = Lookup(VarianceThreshold)
	assert.Equal(t, []any{0.1, 0.25}, d.Values("threshold"))

	d, _ = Lookup(PCA)
	assert.Equal(t, []any{2, 3, 5, 10}, d.Values("n_components"))
	assert.Nil(t, d.Values("missing"))
}

func TestRange(t *testing.T) {
	r := Range{2, 23}
	assert.Equal(t, 21, r.Len())
	assert.Equal(t, 2, r.At(0))
	assert.Equal(t, 22, r.At(20))

	assert.Equal(t, 0, Range{5, 5}.Len())
	assert.Equal(t, 0, Range{5, 1}.Len())
}

func TestKMeansClusterCountsHalfOpen(t *testing.T) {
	for _, id := range []string{KMeans, MiniBatchKMeans, SpectralClustering, AgglomerativeClustering} {
		d, _ := Lookup(id)
		values := d.Values("n_clusters")
		require.Len(t, values, 21, id)
		assert.Equal(t, 2, values[0], id)
		assert.Equal(t, 22, values[len(values)-1], id)
	}
}

func TestEmptyDomain(t *testing.T) {
	d, ok := Lookup(MinMaxScaler)
	require.True(t, ok)
	assert.Empty(t, d.Params())
	assert.Empty(t, d.First())
	assert.Empty(t, d.Sample(rand.New(rand.NewSource(1))))

	var zero Domain
	assert.Equal(t, 0, zero.Len())
	assert.Equal(t, 1, zero.Size())
}

func TestFirst(t *testing.T) {
	d, _ := Lookup(SpectralClustering)
	assert.Equal(t, map[string]any{
		"n_clusters":   2,
		"eigen_solver": "arpack",
		"affinity":     "nearest_neighbors",
	}, d.First())
}

func TestSample(t *testing.T) {
	d, _ := Lookup(DBSCAN)

	a := d.Sample(rand.New(rand.NewSource(7)))
	b := d.Sample(rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b, "same seed should give the same assignment")

	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 100; i++ {
		s := d.Sample(rng)
		require.Len(t, s, d.Len())
		for name, v := range s {
			assert.Contains(t, d.Values(name), v)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("cluster.OPTICS")
	assert.False(t, ok)
	assert.Equal(t, KindUnknown, KindOf("cluster"))
	assert.Equal(t, KindUnknown, KindOf("ensemble.RandomForest"))
}

func TestNamesOf(t *testing.T) {
	assert.Equal(t, []string{
		AgglomerativeClustering, DBSCAN, KMeans, MiniBatchKMeans, SpectralClustering,
	}, NamesOf(KindClusterer))
	assert.Equal(t, []string{VarianceThreshold}, NamesOf(KindSelector))
	assert.Len(t, NamesOf(KindTransformer), 5)
	assert.Empty(t, NamesOf(KindUnknown))
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	require.Len(t, all, 11)
	delete(all, KMeans)
	all["cluster.Fake"] = Domain{}

	_, ok := Lookup(KMeans)
	assert.True(t, ok)
	_, ok = Lookup("cluster.Fake")
	assert.False(t, ok)
}

func TestNewDomainCopiesTable(t *testing.T) {
	table := map[string]Candidates{"k": Ints{1, 2}}
	d := NewDomain(table)
	table["extra"] = Strings{"x"}
	assert.Equal(t, []string{"k"}, d.Params())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "clusterer", KindClusterer.String())
	assert.Equal(t, "transformer", KindTransformer.String())
	assert.Equal(t, "selector", KindSelector.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

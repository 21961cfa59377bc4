package scoring

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// encodeLabels maps arbitrary labels to 0..k-1 in order of first appearance
func encodeLabels(labels []int) ([]int, int) {
	index := make(map[int]int)
	encoded := make([]int, len(labels))
	for i, l := range labels {
		id, ok := index[l]
		if !ok {
			id = len(index)
			index[l] = id
		}
		encoded[i] = id
	}
	return encoded, len(index)
}

// checkClustering validates X against labels and returns the rows, the
// encoded labels and the number of clusters
func checkClustering(X mat.Matrix, labels []int) ([][]float64, []int, int, error) {
	n, _ := X.Dims()
	if n != len(labels) {
		return nil, nil, 0, ErrLengthMismatch
	}
	encoded, k := encodeLabels(labels)
	if k < 2 || k > n-1 {
		return nil, nil, 0, ErrInvalidLabelCount
	}
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}
	return rows, encoded, k, nil
}

// SilhouetteSamples computes the silhouette coefficient of every sample:
// (b - a) / max(a, b) where a is the mean distance to the sample's own cluster
// and b the mean distance to the nearest other cluster. Samples alone in their
// cluster score 0.
func SilhouetteSamples(X mat.Matrix, labels []int) ([]float64, error) {
	rows, encoded, k, err := checkClustering(X, labels)
	if err != nil {
		return nil, err
	}
	n := len(rows)

	sizes := make([]float64, k)
	for _, l := range encoded {
		sizes[l]++
	}

	scores := make([]float64, n)
	numWorkers := runtime.NumCPU()
	chunkSize := (n + numWorkers - 1) / numWorkers

	var g errgroup.Group
	for start := 0; start < n; start += chunkSize {
		start, end := start, min(start+chunkSize, n)
		g.Go(func() error {
			sums := make([]float64, k)
			for i := start; i < end; i++ {
				for c := range sums {
					sums[c] = 0
				}
				for j := 0; j < n; j++ {
					if i != j {
						sums[encoded[j]] += floats.Distance(rows[i], rows[j], 2)
					}
				}

				own := encoded[i]
				if sizes[own] <= 1 {
					scores[i] = 0
					continue
				}
				a := sums[own] / (sizes[own] - 1)
				b := math.Inf(1)
				for c := 0; c < k; c++ {
					if c != own {
						b = math.Min(b, sums[c]/sizes[c])
					}
				}
				if m := math.Max(a, b); m > 0 {
					scores[i] = (b - a) / m
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// SilhouetteScore is the mean silhouette coefficient over all samples
func SilhouetteScore(X mat.Matrix, labels []int) (float64, error) {
	samples, err := SilhouetteSamples(X, labels)
	if err != nil {
		return 0, err
	}
	return floats.Sum(samples) / float64(len(samples)), nil
}

// centroidsOf returns per-cluster means and sizes
func centroidsOf(rows [][]float64, encoded []int, k int) ([][]float64, []float64) {
	dims := len(rows[0])
	centroids := make([][]float64, k)
	for c := range centroids {
		centroids[c] = make([]float64, dims)
	}
	sizes := make([]float64, k)
	for i, r := range rows {
		floats.Add(centroids[encoded[i]], r)
		sizes[encoded[i]]++
	}
	for c := range centroids {
		floats.Scale(1/sizes[c], centroids[c])
	}
	return centroids, sizes
}

// DaviesBouldinScore averages, over clusters, the worst ratio of summed
// within-cluster scatter to centroid separation. Lower is better; 0 is the minimum.
func DaviesBouldinScore(X mat.Matrix, labels []int) (float64, error) {
	rows, encoded, k, err := checkClustering(X, labels)
	if err != nil {
		return 0, err
	}
	centroids, sizes := centroidsOf(rows, encoded, k)

	intra := make([]float64, k)
	for i, r := range rows {
		intra[encoded[i]] += floats.Distance(r, centroids[encoded[i]], 2)
	}
	for c := range intra {
		intra[c] /= sizes[c]
	}

	centroidDist := make([][]float64, k)
	allIntraZero, allCentroidZero := true, true
	for c := range centroidDist {
		centroidDist[c] = make([]float64, k)
		if math.Abs(intra[c]) > 1e-8 {
			allIntraZero = false
		}
		for d := range centroidDist[c] {
			centroidDist[c][d] = floats.Distance(centroids[c], centroids[d], 2)
			if math.Abs(centroidDist[c][d]) > 1e-8 {
				allCentroidZero = false
			}
		}
	}
	if allIntraZero || allCentroidZero {
		return 0, nil
	}

	var total float64
	for c := 0; c < k; c++ {
		var worst float64
		for d := 0; d < k; d++ {
			if c == d || centroidDist[c][d] == 0 {
				continue
			}
			worst = math.Max(worst, (intra[c]+intra[d])/centroidDist[c][d])
		}
		total += worst
	}
	return total / float64(k), nil
}

// CalinskiHarabaszScore is the ratio of between-cluster to within-cluster
// dispersion, scaled by degrees of freedom. Higher is better.
func CalinskiHarabaszScore(X mat.Matrix, labels []int) (float64, error) {
	rows, encoded, k, err := checkClustering(X, labels)
	if err != nil {
		return 0, err
	}
	n := len(rows)
	centroids, sizes := centroidsOf(rows, encoded, k)

	mean := make([]float64, len(rows[0]))
	for _, r := range rows {
		floats.Add(mean, r)
	}
	floats.Scale(1/float64(n), mean)

	var extra, intra float64
	for c := range centroids {
		d := floats.Distance(centroids[c], mean, 2)
		extra += sizes[c] * d * d
	}
	for i, r := range rows {
		d := floats.Distance(r, centroids[encoded[i]], 2)
		intra += d * d
	}

	if intra == 0 {
		return 1, nil
	}
	return extra * float64(n-k) / (intra * float64(k-1)), nil
}

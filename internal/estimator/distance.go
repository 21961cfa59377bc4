package estimator

import (
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// squaredDistance computes the squared Euclidean distance between two vectors
func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

// euclidean computes the Euclidean distance between two vectors
func euclidean(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// nearest returns the index of the closest centroid and its squared distance
func nearest(x []float64, centroids [][]float64) (int, float64) {
	best, bestDist := 0, math.MaxFloat64
	for j, c := range centroids {
		if d := squaredDistance(x, c); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best, bestDist
}

// assign labels every row with its nearest centroid using a fixed worker pool
// and returns the summed squared distances
func assign(rows, centroids [][]float64, labels []int, numWorkers int) float64 {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	chunkSize := (len(rows) + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	var mu sync.Mutex
	var inertia float64
	for w := 0; w < numWorkers; w++ {
		start, end := w*chunkSize, min((w+1)*chunkSize, len(rows))
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			var local float64
			for i := start; i < end; i++ {
				j, d := nearest(rows[i], centroids)
				labels[i] = j
				local += d
			}
			mu.Lock()
			inertia += local
			mu.Unlock()
		}(start, end)
	}
	wg.Wait()
	return inertia
}

// pairwiseDistances computes the full Euclidean distance matrix
func pairwiseDistances(rows [][]float64) [][]float64 {
	n := len(rows)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := euclidean(rows[i], rows[j])
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}

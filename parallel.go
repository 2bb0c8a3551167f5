package sharedclustering

import "sync"

// ComputePairwiseDistancesParallel computes the full n×n distance matrix
// between the coordinate vectors of matches using multiple goroutines.
// numWorkers controls the degree of parallelism; if <= 1, it falls back to
// single-threaded ComputePairwiseDistances.
//
// The result matches ComputePairwiseDistances up to the summation order of
// the metric.
func ComputePairwiseDistancesParallel(matches []*ClusterableMatch, metric DistanceMetric, numWorkers int) []float64 {
	n := len(matches)
	if numWorkers <= 1 || n <= 1 {
		return ComputePairwiseDistances(matches, metric)
	}

	result := make([]float64, n*n)

	// Each worker handles a contiguous range of "source" rows and computes
	// dist(i,j) for all j > i in that range. Cells written by different
	// workers never overlap.
	var wg sync.WaitGroup

	rowsPerWorker := (n + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		startRow := w * rowsPerWorker
		endRow := min(startRow+rowsPerWorker, n)
		if startRow >= n {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				for j := i + 1; j < n; j++ {
					d := metric.Calculate(matches[i].Coords, matches[j].Coords)
					result[i*n+j] = d
					result[j*n+i] = d
				}
			}
		}(startRow, endRow)
	}

	wg.Wait()
	return result
}

package sharedclustering

// DenseMatrixLimit is the largest match count for which BuildMergeTree
// materializes the full n×n distance matrix. Larger inputs use
// PrimMSTMatches.
const DenseMatrixLimit = 4096

// PrimMSTMatches is PrimMST without a precomputed distance matrix.
// Distances from each joining match are computed on the fly with metric,
// so memory is O(n) instead of O(n²). Edges use positions in matches and
// equal PrimMST's for the same distances.
func PrimMSTMatches(matches []*ClusterableMatch, metric DistanceMetric) [][3]float64 {
	return primMST(len(matches), func(i, j int) float64 {
		return metric.Calculate(matches[i].Coords, matches[j].Coords)
	})
}

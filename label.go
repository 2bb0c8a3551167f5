package sharedclustering

import (
	"log/slog"
	"math"
	"sort"
)

// Label converts MST edges into a merge-tree forest by single linkage.
// mstEdges is [][3]float64 where each edge is [from, to, weight] and
// from/to are positions in leaves. Edges are merged in ascending weight
// order; +Inf edges are never merged. Returns one root per connected
// component, ordered by the smallest match index it contains.
func Label(mstEdges [][3]float64, leaves []*LeafNode) []Node {
	if len(leaves) == 0 {
		return nil
	}

	sorted := make([][3]float64, len(mstEdges))
	copy(sorted, mstEdges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i][2] < sorted[j][2]
	})

	uf := NewUnionFind(leaves)
	for _, edge := range sorted {
		if math.IsInf(edge[2], 1) {
			continue
		}
		uf.Merge(int(edge[0]), int(edge[1]), edge[2])
	}

	return uf.Roots()
}

// BuildMergeTree is a reference merge-tree builder: single-linkage
// clustering of matches under metric. Pairs at +Inf distance are never
// merged, so the result is a forest with one root per connected component.
// numWorkers controls the parallelism of the pairwise distance stage, which
// is skipped for more than DenseMatrixLimit matches.
func BuildMergeTree(matches []*ClusterableMatch, metric DistanceMetric, numWorkers int, logger *slog.Logger) []Node {
	if logger == nil {
		logger = slog.Default()
	}
	if len(matches) == 0 {
		return nil
	}

	leaves := make([]*LeafNode, len(matches))
	for i, m := range matches {
		leaves[i] = NewLeafNode(m.Index, m.Coords)
	}

	var mstEdges [][3]float64
	if len(matches) > DenseMatrixLimit {
		logger.Debug("computing merge distances on the fly", "matches", len(matches))
		mstEdges = PrimMSTMatches(matches, metric)
	} else {
		distMatrix := ComputePairwiseDistancesParallel(matches, metric, numWorkers)
		mstEdges = PrimMST(distMatrix, len(matches))
	}
	roots := Label(mstEdges, leaves)

	if len(roots) > 1 {
		logger.Warn("merge tree has disconnected components", "components", len(roots), "matches", len(matches))
	}
	return roots
}

package sharedclustering

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// CorrelatedClusterFinder reports which other clusters a leaf correlates
// with. Immediate family is ignored because it correlates with almost
// everything. A cluster is reported only when at least MinClusterSize
// correlated leaves belong to it.
type CorrelatedClusterFinder struct {
	Leaves          []*LeafNode
	ImmediateFamily map[int]bool
	MinClusterSize  int
}

// NewCorrelatedClusterFinder returns a finder over leaves.
func NewCorrelatedClusterFinder(leaves []*LeafNode, immediateFamily []int, minClusterSize int) *CorrelatedClusterFinder {
	family := make(map[int]bool, len(immediateFamily))
	for _, idx := range immediateFamily {
		family[idx] = true
	}
	return &CorrelatedClusterFinder{
		Leaves:          leaves,
		ImmediateFamily: family,
		MinClusterSize:  minClusterSize,
	}
}

// correlatedLeaves returns the other non-family leaves that leaf has a
// significant correlation with, in leaf order.
func (f *CorrelatedClusterFinder) correlatedLeaves(leaf *LeafNode) []*LeafNode {
	var result []*LeafNode
	for _, other := range f.Leaves {
		if other.Index == leaf.Index || f.ImmediateFamily[other.Index] {
			continue
		}
		if leaf.Coords[other.Index] >= 1 {
			result = append(result, other)
		}
	}
	return result
}

// significantGroups keeps the cluster numbers counted at least
// MinClusterSize times, sorted ascending.
func (f *CorrelatedClusterFinder) significantGroups(counts map[int]int) []int {
	var result []int
	for number, count := range counts {
		if count >= f.MinClusterSize {
			result = append(result, number)
		}
	}
	sort.Ints(result)
	return result
}

// CorrelatedClusters returns the clusters, other than leaf's own, that
// leaf correlates with. Unassigned leaves (cluster 0) never count.
func (f *CorrelatedClusterFinder) CorrelatedClusters(leaf *LeafNode, clusterNumbers map[int]int) []int {
	own := clusterNumbers[leaf.Index]

	counts := make(map[int]int)
	for _, other := range f.correlatedLeaves(leaf) {
		number := clusterNumbers[other.Index]
		if number == 0 || number == own {
			continue
		}
		counts[number]++
	}
	return f.significantGroups(counts)
}

// CorrelatedClustersMulti is CorrelatedClusters for overlapping membership.
// Clusters leaf already belongs to are excluded, and every membership of a
// correlated leaf is counted.
func (f *CorrelatedClusterFinder) CorrelatedClustersMulti(leaf *LeafNode, clusterNumbers map[int][]int) []int {
	own := make(map[int]bool)
	for _, n := range clusterNumbers[leaf.Index] {
		own[n] = true
	}

	counts := make(map[int]int)
	for _, other := range f.correlatedLeaves(leaf) {
		for _, number := range clusterNumbers[other.Index] {
			if number == 0 || own[number] {
				continue
			}
			counts[number]++
		}
	}
	return f.significantGroups(counts)
}

// AllCorrelatedClusters computes CorrelatedClusters for every leaf using
// up to numWorkers goroutines. Each worker handles a contiguous range of
// leaves, so the result matches the sequential loop exactly.
func (f *CorrelatedClusterFinder) AllCorrelatedClusters(ctx context.Context, clusterNumbers map[int]int, numWorkers int) ([][]int, error) {
	return f.fanOut(ctx, numWorkers, func(leaf *LeafNode) []int {
		return f.CorrelatedClusters(leaf, clusterNumbers)
	})
}

// AllCorrelatedClustersMulti is AllCorrelatedClusters for overlapping
// membership.
func (f *CorrelatedClusterFinder) AllCorrelatedClustersMulti(ctx context.Context, clusterNumbers map[int][]int, numWorkers int) ([][]int, error) {
	return f.fanOut(ctx, numWorkers, func(leaf *LeafNode) []int {
		return f.CorrelatedClustersMulti(leaf, clusterNumbers)
	})
}

func (f *CorrelatedClusterFinder) fanOut(ctx context.Context, numWorkers int, report func(*LeafNode) []int) ([][]int, error) {
	n := len(f.Leaves)
	result := make([][]int, n)
	if numWorkers < 1 {
		numWorkers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	rowsPerWorker := (n + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, n)
		if start >= n {
			break
		}

		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				result[i] = report(f.Leaves[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

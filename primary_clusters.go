package sharedclustering

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// PrimaryClusterFinder partitions a merge tree into disjoint primary
// clusters, returned in left-to-right leaf order.
type PrimaryClusterFinder interface {
	PrimaryClusters(root Node) []*ClusterNode
}

// HalfMatchPrimaryClusterFinder accepts a subtree as one cluster when both
// of its boundary leaves are significantly correlated with at least half
// of the subtree's leaves. Otherwise both children are examined on their
// own. A bare leaf is never a cluster.
type HalfMatchPrimaryClusterFinder struct{}

func (f HalfMatchPrimaryClusterFinder) PrimaryClusters(root Node) []*ClusterNode {
	switch n := root.(type) {
	case *ClusterNode:
		if isHalfMatched(n) {
			return []*ClusterNode{n}
		}
		return append(f.PrimaryClusters(n.First), f.PrimaryClusters(n.Second)...)
	case *LeafNode:
		return nil
	default:
		return nil
	}
}

// isHalfMatched reports whether both boundary leaves of n correlate with
// at least ceil(leafCount/2) of its leaves.
func isHalfMatched(n *ClusterNode) bool {
	indexes := n.LeafIndexes()
	minCount := (n.LeafCount() + 1) / 2
	return n.FirstLeaf.SignificantCount(indexes) >= minCount &&
		n.SecondLeaf.SignificantCount(indexes) >= minCount
}

// GrowthPrimaryClusterFinder grows clusters from the leaves upward for as
// long as the grown subtree stays within MaxClusterSize leaves. The
// largest grown subtrees with at least MinClusterSize leaves are the
// primary clusters.
//
// When a subtree is too large, a child smaller than MinClusterSize is
// dropped as fragments and the other child continues on its own; two
// large children are examined separately.
type GrowthPrimaryClusterFinder struct {
	MinClusterSize int
	MaxClusterSize int
}

func (f GrowthPrimaryClusterFinder) PrimaryClusters(root Node) []*ClusterNode {
	n, ok := root.(*ClusterNode)
	if !ok {
		return nil
	}

	size := n.LeafCount()
	if size <= f.MaxClusterSize {
		if size >= f.MinClusterSize {
			return []*ClusterNode{n}
		}
		return nil
	}

	firstBig := len(Leaves(n.First)) >= f.MinClusterSize
	secondBig := len(Leaves(n.Second)) >= f.MinClusterSize

	switch {
	case firstBig && secondBig:
		return append(f.PrimaryClusters(n.First), f.PrimaryClusters(n.Second)...)
	case !firstBig && !secondBig:
		return nil
	case !firstBig:
		return f.PrimaryClusters(n.Second)
	default:
		return f.PrimaryClusters(n.First)
	}
}

// AssignClusterNumbers numbers clusters 1, 2, ... in order and maps every
// leaf index to its cluster number. Leaves outside every cluster are
// absent, which reads as cluster 0.
func AssignClusterNumbers(clusters []*ClusterNode) map[int]int {
	numbers := make(map[int]int)
	for i, c := range clusters {
		for _, leaf := range c.OrderedLeafNodes() {
			numbers[leaf.Index] = i + 1
		}
	}
	return numbers
}

// ExtendClusterNumbers computes overlapping cluster membership. Every leaf
// keeps its own primary cluster and also joins each other cluster in which
// it is significantly correlated with at least half of the leaves. Each
// list is sorted ascending; leaves belonging nowhere are absent.
func ExtendClusterNumbers(clusters []*ClusterNode, leaves []*LeafNode) map[int][]int {
	own := AssignClusterNumbers(clusters)

	result := make(map[int][]int)
	for _, leaf := range leaves {
		var numbers []int
		if n, ok := own[leaf.Index]; ok {
			numbers = append(numbers, n)
		}
		for i, c := range clusters {
			number := i + 1
			if number == own[leaf.Index] {
				continue
			}
			if leaf.SignificantCount(c.LeafIndexes()) >= (c.LeafCount()+1)/2 {
				numbers = append(numbers, number)
			}
		}
		if len(numbers) > 0 {
			sort.Ints(numbers)
			result[leaf.Index] = numbers
		}
	}
	return result
}

// UnassignedLeaves returns, in tree order, the leaves under root that
// belong to none of clusters.
func UnassignedLeaves(root Node, clusters []*ClusterNode) []*LeafNode {
	covered := roaring.New()
	for _, c := range clusters {
		covered.Or(c.LeafIndexes())
	}

	var result []*LeafNode
	for _, leaf := range Leaves(root) {
		if !covered.Contains(uint32(leaf.Index)) {
			result = append(result, leaf)
		}
	}
	return result
}

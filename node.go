package sharedclustering

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// Node is a merge-tree node: either a *LeafNode or a *ClusterNode.
// Nodes are immutable once built.
type Node interface {
	isNode()
}

// LeafNode is one match positioned in the merge tree. Coords holds
// quantized correlation strength: 0 none, ~1 normal, ~2 strong.
// A value >= 1 marks a significant shared-match relationship.
type LeafNode struct {
	Index  int
	Coords map[int]float64
}

func (*LeafNode) isNode() {}

// NewLeafNode creates a leaf for the given match index.
func NewLeafNode(index int, coords map[int]float64) *LeafNode {
	if coords == nil {
		coords = map[int]float64{}
	}
	return &LeafNode{Index: index, Coords: coords}
}

// SignificantCount returns how many of the leaf's significant coordinates
// are members of set.
func (l *LeafNode) SignificantCount(set *roaring.Bitmap) int {
	count := 0
	for k, v := range l.Coords {
		if v >= 1 && k >= 0 && set.Contains(uint32(k)) {
			count++
		}
	}
	return count
}

// ClusterNode joins two subtrees. Its leaf ordering is First's ordering
// followed by Second's. FirstLeaf and SecondLeaf are the two ends of that
// ordering.
type ClusterNode struct {
	First      Node
	Second     Node
	FirstLeaf  *LeafNode
	SecondLeaf *LeafNode
	Distance   float64

	once    sync.Once
	leaves  []*LeafNode
	indexes *roaring.Bitmap
}

func (*ClusterNode) isNode() {}

// NewClusterNode merges first and second at the given distance.
func NewClusterNode(first, second Node, distance float64) *ClusterNode {
	firstLeaves := Leaves(first)
	secondLeaves := Leaves(second)
	return &ClusterNode{
		First:      first,
		Second:     second,
		FirstLeaf:  firstLeaves[0],
		SecondLeaf: secondLeaves[len(secondLeaves)-1],
		Distance:   distance,
	}
}

// OrderedLeafNodes returns the in-order leaves of the subtree.
// The slice is computed once and must not be modified.
func (c *ClusterNode) OrderedLeafNodes() []*LeafNode {
	c.build()
	return c.leaves
}

// LeafCount returns the number of leaves in the subtree.
func (c *ClusterNode) LeafCount() int {
	return len(c.OrderedLeafNodes())
}

// LeafIndexes returns the set of leaf indexes in the subtree.
// The bitmap is shared and must not be modified.
func (c *ClusterNode) LeafIndexes() *roaring.Bitmap {
	c.build()
	return c.indexes
}

func (c *ClusterNode) build() {
	c.once.Do(func() {
		first := Leaves(c.First)
		second := Leaves(c.Second)
		leaves := make([]*LeafNode, 0, len(first)+len(second))
		leaves = append(leaves, first...)
		leaves = append(leaves, second...)

		indexes := roaring.New()
		for _, l := range leaves {
			indexes.Add(uint32(l.Index))
		}
		c.leaves = leaves
		c.indexes = indexes
	})
}

// Leaves returns the in-order leaves under node.
func Leaves(node Node) []*LeafNode {
	switch n := node.(type) {
	case *LeafNode:
		return []*LeafNode{n}
	case *ClusterNode:
		return n.OrderedLeafNodes()
	default:
		return nil
	}
}

// LeafIndexSet returns the leaf indexes under node as a bitmap.
func LeafIndexSet(node Node) *roaring.Bitmap {
	switch n := node.(type) {
	case *LeafNode:
		return roaring.BitmapOf(uint32(n.Index))
	case *ClusterNode:
		return n.LeafIndexes()
	default:
		return roaring.New()
	}
}

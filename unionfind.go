package sharedclustering

import "sort"

// UnionFind is a disjoint-set forest with path compression and union by
// size. Each root also records the merge-tree node built for its set.
type UnionFind struct {
	parent []int
	size   []int
	nodes  []Node
	// minIndex is the smallest match index in each root's set.
	minIndex []int
}

// NewUnionFind creates a UnionFind with one singleton set per leaf.
func NewUnionFind(leaves []*LeafNode) *UnionFind {
	n := len(leaves)
	uf := &UnionFind{
		parent:   make([]int, n),
		size:     make([]int, n),
		nodes:    make([]Node, n),
		minIndex: make([]int, n),
	}
	for i, leaf := range leaves {
		uf.parent[i] = -1 // -1 means "is a root"
		uf.size[i] = 1
		uf.nodes[i] = leaf
		uf.minIndex[i] = leaf.Index
	}
	return uf
}

// Find returns the root of the set containing x, with path compression.
func (uf *UnionFind) Find(x int) int {
	root := x
	for uf.parent[root] != -1 {
		root = uf.parent[root]
	}
	for uf.parent[x] != -1 {
		x, uf.parent[x] = uf.parent[x], root
	}
	return root
}

// Merge joins the sets containing x and y under a new ClusterNode at the
// given distance and returns it. The set holding the smaller match index
// becomes the node's First child. Merging a set with itself returns nil.
func (uf *UnionFind) Merge(x, y int, distance float64) *ClusterNode {
	rootX := uf.Find(x)
	rootY := uf.Find(y)
	if rootX == rootY {
		return nil
	}

	first, second := rootX, rootY
	if uf.minIndex[second] < uf.minIndex[first] {
		first, second = second, first
	}
	node := NewClusterNode(uf.nodes[first], uf.nodes[second], distance)

	// Attach smaller to larger.
	if uf.size[rootX] < uf.size[rootY] {
		rootX, rootY = rootY, rootX
	}
	uf.parent[rootY] = rootX
	uf.size[rootX] += uf.size[rootY]
	uf.nodes[rootX] = node
	uf.nodes[rootY] = nil
	uf.minIndex[rootX] = min(uf.minIndex[rootX], uf.minIndex[rootY])
	return node
}

// Size returns the number of leaves in the set containing x.
func (uf *UnionFind) Size(x int) int {
	return uf.size[uf.Find(x)]
}

// Roots returns the merge-tree node of every set, ordered by the smallest
// match index in the set.
func (uf *UnionFind) Roots() []Node {
	type root struct {
		node     Node
		minIndex int
	}
	var roots []root
	for i := range uf.parent {
		if uf.parent[i] == -1 {
			roots = append(roots, root{node: uf.nodes[i], minIndex: uf.minIndex[i]})
		}
	}
	sort.Slice(roots, func(a, b int) bool { return roots[a].minIndex < roots[b].minIndex })

	result := make([]Node, len(roots))
	for i, r := range roots {
		result[i] = r.node
	}
	return result
}

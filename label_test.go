package sharedclustering

import (
	"io"
	"log/slog"
	"math"
	"testing"
)

func indexedLeaves(indexes ...int) []*LeafNode {
	leaves := make([]*LeafNode, len(indexes))
	for i, idx := range indexes {
		leaves[i] = NewLeafNode(idx, nil)
	}
	return leaves
}

func TestLabel_FourMatchMST(t *testing.T) {
	// MST edges sorted by weight: [0,2,1], [2,3,1], [0,1,2]
	//
	// Step 0: (0,2) at 1
	// Step 1: ((0,2),3) at 1
	// Step 2: (((0,2),3),1) at 2
	edges := [][3]float64{
		{0, 2, 1.0},
		{2, 3, 1.0},
		{0, 1, 2.0},
	}

	roots := Label(edges, indexedLeaves(0, 1, 2, 3))

	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	root, ok := roots[0].(*ClusterNode)
	if !ok {
		t.Fatalf("expected *ClusterNode root, got %T", roots[0])
	}
	if got := leafIndexes(root.OrderedLeafNodes()); !equalInts(got, []int{0, 2, 3, 1}) {
		t.Errorf("leaf order = %v, want [0 2 3 1]", got)
	}
	if root.Distance != 2.0 {
		t.Errorf("root distance = %f, want 2.0", root.Distance)
	}
	if root.FirstLeaf.Index != 0 || root.SecondLeaf.Index != 1 {
		t.Errorf("boundary leaves = (%d, %d), want (0, 1)", root.FirstLeaf.Index, root.SecondLeaf.Index)
	}
	first := root.First.(*ClusterNode)
	if first.Distance != 1.0 || first.LeafCount() != 3 {
		t.Errorf("first child: distance %f size %d, want 1.0 size 3", first.Distance, first.LeafCount())
	}
}

func TestLabel_SingleMatch(t *testing.T) {
	leaves := indexedLeaves(7)
	roots := Label(nil, leaves)

	if len(roots) != 1 {
		t.Fatalf("expected 1 root for n=1, got %d", len(roots))
	}
	if roots[0] != Node(leaves[0]) {
		t.Errorf("expected the leaf itself as root, got %v", roots[0])
	}
}

func TestLabel_Empty(t *testing.T) {
	if roots := Label(nil, nil); roots != nil {
		t.Errorf("expected nil roots, got %v", roots)
	}
}

func TestLabel_SortsEdgesByWeight(t *testing.T) {
	// Provide edges in descending order: Label should sort them ascending.
	edges := [][3]float64{
		{0, 1, 5.0},
		{1, 2, 1.0},
	}

	roots := Label(edges, indexedLeaves(0, 1, 2))

	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	root := roots[0].(*ClusterNode)
	if math.Abs(root.Distance-5.0) > 1e-10 {
		t.Errorf("final merge should be at distance 5.0, got %f", root.Distance)
	}
	second, ok := root.Second.(*ClusterNode)
	if !ok {
		t.Fatalf("expected (1,2) to merge first, got %T", root.Second)
	}
	if math.Abs(second.Distance-1.0) > 1e-10 {
		t.Errorf("first merge should be at distance 1.0, got %f", second.Distance)
	}
	if got := leafIndexes(root.OrderedLeafNodes()); !equalInts(got, []int{0, 1, 2}) {
		t.Errorf("leaf order = %v, want [0 1 2]", got)
	}
}

func TestLabel_SkipsInfEdges(t *testing.T) {
	inf := math.Inf(1)
	edges := [][3]float64{
		{0, 1, 2},
		{2, 2, inf},
	}

	roots := Label(edges, indexedLeaves(0, 1, 2))

	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if _, ok := roots[0].(*ClusterNode); !ok {
		t.Errorf("expected cluster root first, got %T", roots[0])
	}
	if leaf, ok := roots[1].(*LeafNode); !ok || leaf.Index != 2 {
		t.Errorf("expected leaf 2 as second root, got %v", roots[1])
	}
}

func TestLabel_ForestOrderedByMinIndex(t *testing.T) {
	// Positions 0..3 hold match indexes 5, 3, 9, 1.
	edges := [][3]float64{
		{0, 2, 1},
		{1, 3, 1},
	}

	roots := Label(edges, indexedLeaves(5, 3, 9, 1))

	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if got := leafIndexes(Leaves(roots[0])); !equalInts(got, []int{1, 3}) {
		t.Errorf("first root leaves = %v, want [1 3]", got)
	}
	if got := leafIndexes(Leaves(roots[1])); !equalInts(got, []int{5, 9}) {
		t.Errorf("second root leaves = %v, want [5 9]", got)
	}
}

func TestBuildMergeTree_Components(t *testing.T) {
	matches := matchesFromSets(
		[]int{0, 1, 2},
		[]int{0, 1, 2},
		[]int{0, 1, 2},
		[]int{3, 4},
		[]int{3, 4},
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, workers := range []int{1, 2} {
		roots := BuildMergeTree(matches, OverlapWeightedEuclideanMetric{}, workers, logger)

		if len(roots) != 2 {
			t.Fatalf("workers=%d: expected 2 roots, got %d", workers, len(roots))
		}
		if got := leafIndexes(Leaves(roots[0])); !equalInts(got, []int{0, 1, 2}) {
			t.Errorf("workers=%d: first root leaves = %v, want [0 1 2]", workers, got)
		}
		if got := leafIndexes(Leaves(roots[1])); !equalInts(got, []int{3, 4}) {
			t.Errorf("workers=%d: second root leaves = %v, want [3 4]", workers, got)
		}
	}
}

func TestBuildMergeTree_Empty(t *testing.T) {
	if roots := BuildMergeTree(nil, OverlapWeightedEuclideanMetric{}, 4, nil); roots != nil {
		t.Errorf("expected nil roots, got %v", roots)
	}
}

func TestBuildMergeTree_CloserPairsMergeFirst(t *testing.T) {
	// 0 and 1 are identical; 2 diverges from both on coordinate 3.
	matches := []*ClusterableMatch{
		NewClusterableMatch(0, Match{}, map[int]float64{0: 2, 1: 2, 2: 1}),
		NewClusterableMatch(1, Match{}, map[int]float64{0: 2, 1: 2, 2: 1}),
		NewClusterableMatch(2, Match{}, map[int]float64{0: 1, 2: 1, 3: 2}),
	}

	roots := BuildMergeTree(matches, OverlapWeightedEuclideanMetric{}, 1, nil)

	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	root := roots[0].(*ClusterNode)
	first, ok := root.First.(*ClusterNode)
	if !ok || first.Distance != 0 {
		t.Fatalf("expected (0,1) to merge at distance 0, got %v", root.First)
	}
	if root.SecondLeaf.Index != 2 {
		t.Errorf("expected leaf 2 last, got %d", root.SecondLeaf.Index)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package sharedclustering

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchesFromSets(sets ...[]int) []*ClusterableMatch {
	matches := make([]*ClusterableMatch, len(sets))
	for i, set := range sets {
		coords := make(map[int]float64, len(set))
		for _, c := range set {
			coords[c] = 1
		}
		matches[i] = NewClusterableMatch(i, Match{}, coords)
	}
	return matches
}

func neighborIndexes(neighbors []Neighbor) []int {
	out := make([]int, len(neighbors))
	for i, n := range neighbors {
		out[i] = n.Match.Index
	}
	return out
}

func TestBucketIndex_Buckets(t *testing.T) {
	matches := matchesFromSets([]int{1, 2}, []int{0, 2}, []int{2})
	idx := NewBucketIndex(matches, nil)

	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, []*ClusterableMatch{matches[1]}, idx.Bucket(0))
	assert.Equal(t, []*ClusterableMatch{matches[0]}, idx.Bucket(1))
	assert.Equal(t, []*ClusterableMatch{matches[0], matches[1], matches[2]}, idx.Bucket(2))
	assert.Empty(t, idx.Bucket(9))
}

func TestBucketIndex_RestrictTo(t *testing.T) {
	matches := matchesFromSets([]int{1, 2}, []int{0, 2}, []int{2})
	idx := NewBucketIndex(matches, []int{2})

	assert.Equal(t, 1, idx.Len())
	assert.Len(t, idx.Bucket(2), 3)
	assert.Empty(t, idx.Bucket(1))
}

func TestBucketIndex_CandidatesMultiplicity(t *testing.T) {
	matches := matchesFromSets([]int{1, 2, 3}, []int{2, 3}, []int{3})
	idx := NewBucketIndex(matches, nil)

	got := idx.Candidates([]int{2, 3})
	require.Len(t, got, 3)
	assert.Equal(t, Candidate{Match: matches[0], Multiplicity: 2}, got[0])
	assert.Equal(t, Candidate{Match: matches[1], Multiplicity: 2}, got[1])
	assert.Equal(t, Candidate{Match: matches[2], Multiplicity: 1}, got[2])
}

func TestScore_Monotonic(t *testing.T) {
	for q := 1; q <= 20; q++ {
		for c := 1; c <= 20; c++ {
			prev := Score(0, q, c)
			for overlap := 1; overlap <= 20; overlap++ {
				s := Score(overlap, q, c)
				assert.Greater(t, s, prev, "q=%d c=%d overlap=%d", q, c, overlap)
				prev = s
			}
		}
	}
	assert.Equal(t, 0.0, Score(3, 0, 5))
	assert.InDelta(t, 4.0/6.0, Score(2, 3, 2), floatTol)
}

func TestInclusion(t *testing.T) {
	big := &ClusterableMatch{Index: 1, Count: 12}
	small := &ClusterableMatch{Index: 2, Count: 5}

	perMatch := PerMatchInclusion(3)
	assert.False(t, perMatch(3, big), "3 < 12/3")
	assert.True(t, perMatch(4, big))
	assert.True(t, perMatch(3, small))
	assert.False(t, perMatch(2, small))

	basis := BasisInclusion(3)
	assert.True(t, basis(3, big))
	assert.False(t, basis(2, small))
}

// A match's own index is part of its coordinates here:
// A={0,1,2}, B={0,1,3}, C={0,2}, D={1,3}.
func TestNearestNeighbors_SelfInclusiveExample(t *testing.T) {
	matches := matchesFromSets(
		[]int{0, 1, 2},
		[]int{0, 1, 3},
		[]int{0, 2},
		[]int{1, 3},
	)
	idx := NewBucketIndex(matches, nil)
	a := matches[0]

	got := idx.NearestNeighbors(NeighborQuery{
		Coords:         sortedKeys(a.Coords),
		Exclude:        a.Index,
		MinClusterSize: 2,
		Include:        PerMatchInclusion(2),
	})
	require.Len(t, got, 2)
	assert.Equal(t, []int{2, 1}, neighborIndexes(got), "C (4/6) ranks above B (4/9)")
	assert.Equal(t, 2, got[0].Overlap)
	assert.Equal(t, 2, got[1].Overlap)
	assert.InDelta(t, 4.0/6.0, got[0].Score, floatTol)
	assert.InDelta(t, 4.0/9.0, got[1].Score, floatTol)

	// With the threshold lowered D shares one coordinate and ranks last.
	got = idx.NearestNeighbors(NeighborQuery{
		Coords:         sortedKeys(a.Coords),
		Exclude:        a.Index,
		MinClusterSize: 1,
		Include:        PerMatchInclusion(1),
	})
	assert.Equal(t, []int{2, 1, 3}, neighborIndexes(got))
	assert.InDelta(t, 1.0/6.0, got[2].Score, floatTol)
}

// Without self coordinates A={1,2}, B={0,3}, C={0}, D={1}: only D shares
// a coordinate with A.
func TestNearestNeighbors_SharedCoordinatesOnly(t *testing.T) {
	matches := matchesFromSets(
		[]int{1, 2},
		[]int{0, 3},
		[]int{0},
		[]int{1},
	)
	idx := NewBucketIndex(matches, nil)

	got := idx.NearestNeighbors(NeighborQuery{
		Coords:         []int{1, 2},
		Exclude:        0,
		MinClusterSize: 1,
		Include:        PerMatchInclusion(1),
	})
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Match.Index)
	assert.Equal(t, 1, got[0].Overlap)
	assert.InDelta(t, 0.5, got[0].Score, floatTol)
}

func TestNearestNeighbors_PreFilter(t *testing.T) {
	// Match 1 shares three coordinates with the query, match 2 only one.
	matches := matchesFromSets(
		[]int{10, 11, 12},
		[]int{10, 11, 12, 13},
		[]int{12, 14},
	)
	idx := NewBucketIndex(matches, nil)

	got := idx.NearestNeighbors(NeighborQuery{
		Coords:         []int{10, 11, 12},
		Exclude:        0,
		MinClusterSize: 2,
	})
	assert.Equal(t, []int{1}, neighborIndexes(got))
}

func TestNearestNeighbors_TieBreakByIndex(t *testing.T) {
	matches := matchesFromSets(
		[]int{1, 2},
		[]int{1, 2},
		[]int{1, 2},
		[]int{1, 2},
	)
	idx := NewBucketIndex(matches, nil)

	got := idx.NearestNeighbors(NeighborQuery{Coords: []int{1, 2}, Exclude: 2, MinClusterSize: 1})
	assert.Equal(t, []int{0, 1, 3}, neighborIndexes(got))
}

func TestNearestNeighbors_MaxResults(t *testing.T) {
	matches := matchesFromSets(
		[]int{1, 2, 3},
		[]int{1, 2, 3},
		[]int{1, 2},
		[]int{1},
	)
	idx := NewBucketIndex(matches, nil)

	got := idx.NearestNeighbors(NeighborQuery{Coords: []int{1, 2, 3}, Exclude: -1, MinClusterSize: 1, MaxResults: 2})
	assert.Equal(t, []int{0, 1}, neighborIndexes(got))

	all := idx.NearestNeighbors(NeighborQuery{Coords: []int{1, 2, 3}, Exclude: -1, MinClusterSize: 1})
	assert.Equal(t, []int{0, 1, 2, 3}, neighborIndexes(all))
}

func TestNearestNeighbors_DuplicateQueryCoords(t *testing.T) {
	matches := matchesFromSets([]int{1, 2}, []int{1, 2})
	idx := NewBucketIndex(matches, nil)

	got := idx.NearestNeighbors(NeighborQuery{Coords: []int{1, 1, 2, 2}, Exclude: 0, MinClusterSize: 2})
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Overlap)
	assert.InDelta(t, 1.0, got[0].Score, floatTol)
}

func TestNearestNeighbors_NoCandidates(t *testing.T) {
	matches := matchesFromSets([]int{1}, []int{2})
	idx := NewBucketIndex(matches, nil)

	assert.Empty(t, idx.NearestNeighbors(NeighborQuery{Coords: []int{7}, Exclude: -1, MinClusterSize: 1}))
	assert.Empty(t, idx.NearestNeighbors(NeighborQuery{Exclude: -1, MinClusterSize: 1}))
}

func TestNearestNeighbors_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	const n = 60
	sets := make([][]int, n)
	for i := range sets {
		for c := 0; c < n; c++ {
			if rng.Intn(8) == 0 {
				sets[i] = append(sets[i], c)
			}
		}
	}
	matches := matchesFromSets(sets...)
	idx := NewBucketIndex(matches, nil)

	for _, q := range matches {
		got := idx.NearestNeighbors(NeighborQuery{
			Coords:         sortedKeys(q.Coords),
			Exclude:        q.Index,
			MinClusterSize: 1,
		})
		gotOverlap := make(map[int]int, len(got))
		for _, nb := range got {
			gotOverlap[nb.Match.Index] = nb.Overlap
		}

		want := make(map[int]int)
		for _, c := range matches {
			if c.Index == q.Index {
				continue
			}
			overlap := 0
			for k := range q.Coords {
				if _, ok := c.Coords[k]; ok {
					overlap++
				}
			}
			if overlap > 0 {
				want[c.Index] = overlap
			}
		}
		assert.Equal(t, want, gotOverlap, "query %d", q.Index)

		assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool {
			if got[i].Score != got[j].Score {
				return got[i].Score > got[j].Score
			}
			return got[i].Match.Index < got[j].Match.Index
		}), "query %d", q.Index)
	}
}

package sharedclustering

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// BucketIndex is an inverted index from coordinate to the matches whose
// coordinates contain it. It is built once per query batch and is
// read-only afterwards, so any number of goroutines may query it.
type BucketIndex struct {
	buckets map[int][]*ClusterableMatch
	sets    map[int]*roaring.Bitmap
}

// NewBucketIndex indexes matches by their coordinates. When restrictTo is
// non-nil only the coordinates it contains get buckets. Matches appear in
// each bucket in population order.
func NewBucketIndex(matches []*ClusterableMatch, restrictTo []int) *BucketIndex {
	var allowed *roaring.Bitmap
	if restrictTo != nil {
		allowed = indexSet(restrictTo)
	}

	idx := &BucketIndex{
		buckets: make(map[int][]*ClusterableMatch),
		sets:    make(map[int]*roaring.Bitmap, len(matches)),
	}
	for _, m := range matches {
		for _, coord := range sortedKeys(m.Coords) {
			if allowed != nil && (coord < 0 || !allowed.Contains(uint32(coord))) {
				continue
			}
			idx.buckets[coord] = append(idx.buckets[coord], m)
		}
		idx.sets[m.Index] = CoordinateSet(m.Coords)
	}
	return idx
}

// Bucket returns the matches containing coord.
func (b *BucketIndex) Bucket(coord int) []*ClusterableMatch {
	return b.buckets[coord]
}

// Len returns the number of non-empty buckets.
func (b *BucketIndex) Len() int {
	return len(b.buckets)
}

// coordinateSet returns the cached coordinate set of an indexed match.
func (b *BucketIndex) coordinateSet(m *ClusterableMatch) *roaring.Bitmap {
	if set, ok := b.sets[m.Index]; ok {
		return set
	}
	return CoordinateSet(m.Coords)
}

// Candidate is a match gathered from the buckets of a query, with the
// number of query buckets it appeared in.
type Candidate struct {
	Match        *ClusterableMatch
	Multiplicity int
}

// Candidates gathers every match that appears in a bucket of one of the
// query coordinates, in first-seen order.
func (b *BucketIndex) Candidates(query []int) []Candidate {
	seen := make(map[*ClusterableMatch]int)
	var result []Candidate
	for _, coord := range query {
		for _, m := range b.buckets[coord] {
			if i, ok := seen[m]; ok {
				result[i].Multiplicity++
				continue
			}
			seen[m] = len(result)
			result = append(result, Candidate{Match: m, Multiplicity: 1})
		}
	}
	return result
}

// Neighbor is one ranked nearest-neighbor result.
type Neighbor struct {
	Match   *ClusterableMatch
	Overlap int
	Score   float64
}

// InclusionFunc decides whether a candidate with the given exact overlap
// is reported.
type InclusionFunc func(overlap int, candidate *ClusterableMatch) bool

// PerMatchInclusion requires at least minClusterSize shared coordinates and
// at least a third (integer division) of the candidate's coordinate count.
func PerMatchInclusion(minClusterSize int) InclusionFunc {
	return func(overlap int, c *ClusterableMatch) bool {
		return overlap >= minClusterSize && overlap >= c.Count/3
	}
}

// BasisInclusion requires at least minClusterSize shared coordinates.
func BasisInclusion(minClusterSize int) InclusionFunc {
	return func(overlap int, _ *ClusterableMatch) bool {
		return overlap >= minClusterSize
	}
}

// Score is the ranking score of a candidate: overlap² / (|query|·|candidate|).
// It is a cosine similarity over 0/1 indicator vectors.
func Score(overlap, querySize, candidateSize int) float64 {
	if querySize == 0 || candidateSize == 0 {
		return 0
	}
	o := float64(overlap)
	return o * o / (float64(querySize) * float64(candidateSize))
}

// NeighborQuery describes one nearest-neighbor lookup.
type NeighborQuery struct {
	// Coords are the query coordinates; duplicates are ignored.
	Coords []int
	// Exclude is a match index never reported, or -1.
	Exclude        int
	MinClusterSize int
	// MaxResults caps the result count; <= 0 means no cap.
	MaxResults int
	Include    InclusionFunc
}

// NearestNeighbors ranks the indexed matches closest to a query.
//
// Candidates seen in fewer than MinClusterSize buckets are dropped before
// the exact overlap is computed. Results are sorted by score descending,
// then by match index ascending, and truncated to MaxResults.
func (b *BucketIndex) NearestNeighbors(q NeighborQuery) []Neighbor {
	querySet := indexSet(q.Coords)
	query := make([]int, 0, querySet.GetCardinality())
	it := querySet.Iterator()
	for it.HasNext() {
		query = append(query, int(it.Next()))
	}
	querySize := len(query)

	var result []Neighbor
	for _, c := range b.Candidates(query) {
		if c.Match.Index == q.Exclude || c.Multiplicity < q.MinClusterSize {
			continue
		}
		overlap := int(querySet.AndCardinality(b.coordinateSet(c.Match)))
		if q.Include != nil && !q.Include(overlap, c.Match) {
			continue
		}
		result = append(result, Neighbor{
			Match:   c.Match,
			Overlap: overlap,
			Score:   Score(overlap, querySize, c.Match.Count),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].Match.Index < result[j].Match.Index
	})

	if q.MaxResults > 0 && len(result) > q.MaxResults {
		result = result[:q.MaxResults]
	}
	return result
}

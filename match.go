package sharedclustering

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// Match is the immutable DNA-match record behind a ClusterableMatch.
// The engine only carries it through to sinks.
type Match struct {
	Name               string
	SharedCentimorgans float64
	SharedSegments     int
	TreeSize           int
	Tags               []string
}

// ClusterableMatch is one match positioned in the sparse coordinate space.
//
// Index is dense, zero-based and unique. Coords maps other matches' indexes
// to a correlation strength; the match's own index may or may not appear.
// Count is the cardinality used to normalize overlap scores.
type ClusterableMatch struct {
	Index  int
	Coords map[int]float64
	Count  int
	Match  Match
}

// NewClusterableMatch wraps a match with its coordinates. Count is set to
// the number of coordinates.
func NewClusterableMatch(index int, match Match, coords map[int]float64) *ClusterableMatch {
	if coords == nil {
		coords = map[int]float64{}
	}
	return &ClusterableMatch{
		Index:  index,
		Coords: coords,
		Count:  len(coords),
		Match:  match,
	}
}

// CoordinateSet returns the keys of coords as a bitmap.
// Negative keys are not valid match indexes and are skipped.
func CoordinateSet(coords map[int]float64) *roaring.Bitmap {
	set := roaring.New()
	for k := range coords {
		if k >= 0 {
			set.Add(uint32(k))
		}
	}
	return set
}

// indexSet builds a bitmap from a list of match indexes.
func indexSet(indexes []int) *roaring.Bitmap {
	set := roaring.New()
	for _, i := range indexes {
		if i >= 0 {
			set.Add(uint32(i))
		}
	}
	return set
}

// sortedKeys returns the keys of coords in ascending order.
func sortedKeys(coords map[int]float64) []int {
	keys := make([]int, 0, len(coords))
	for k := range coords {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

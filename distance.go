package sharedclustering

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// DistanceMetric measures how far apart two sparse coordinate vectors are.
// Calculate must not assume equal key sets and must not panic on disjoint
// vectors. A result of +Inf means the pair has no informative overlap and
// must never be merged.
type DistanceMetric interface {
	Calculate(coords1, coords2 map[int]float64) float64
	SignificantCoordinates(coords map[int]float64) []int
}

// DistanceFunc adapts a plain function into a DistanceMetric.
// Every coordinate is significant.
type DistanceFunc func(coords1, coords2 map[int]float64) float64

func (f DistanceFunc) Calculate(coords1, coords2 map[int]float64) float64 { return f(coords1, coords2) }

func (DistanceFunc) SignificantCoordinates(coords map[int]float64) []int { return sortedKeys(coords) }

// significantValue treats strengths below 1 as no relationship.
func significantValue(v float64) float64 {
	if v < 1 {
		return 0
	}
	return v
}

// significantKeys returns the keys with value >= 1 in ascending order.
func significantKeys(coords map[int]float64) []int {
	keys := make([]int, 0, len(coords))
	for k, v := range coords {
		if v >= 1 {
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)
	return keys
}

// overlapWeightedSums returns the clamped squared distance and the clamped
// overlap of two vectors, iterating the smaller one.
func overlapWeightedSums(coords1, coords2 map[int]float64) (distSquared, overlap float64) {
	if len(coords1) > len(coords2) {
		coords1, coords2 = coords2, coords1
	}

	for k, raw1 := range coords1 {
		v1 := significantValue(raw1)
		if raw2, ok := coords2[k]; ok {
			v2 := significantValue(raw2)
			overlap += math.Min(v1, v2)
			d := v1 - v2
			distSquared += d * d
		} else if v1 > 0 {
			distSquared += v1 * v1
		}
	}

	for k, raw2 := range coords2 {
		if _, ok := coords1[k]; ok {
			continue
		}
		if v2 := significantValue(raw2); v2 > 0 {
			distSquared += v2 * v2
		}
	}

	return distSquared, overlap
}

// OverlapWeightedEuclideanMetric is the squared Euclidean distance between
// the significant (>= 1) parts of two vectors, divided by their shared
// strength. Vectors with more in common are closer for the same divergence.
type OverlapWeightedEuclideanMetric struct{}

func (OverlapWeightedEuclideanMetric) Calculate(coords1, coords2 map[int]float64) float64 {
	distSquared, overlap := overlapWeightedSums(coords1, coords2)
	if overlap == 0 {
		return math.Inf(1)
	}
	return distSquared / overlap
}

func (OverlapWeightedEuclideanMetric) SignificantCoordinates(coords map[int]float64) []int {
	return significantKeys(coords)
}

// OverlapCloseWeightedEuclideanMetric biases OverlapWeightedEuclideanMetric
// toward keeping known close relatives together: every immediate-family
// index that is significant in both vectors adds ten times the smaller
// value to the overlap.
type OverlapCloseWeightedEuclideanMetric struct {
	ImmediateFamily []int
}

// closeRelativeWeight scales the overlap bonus of immediate family.
const closeRelativeWeight = 10.0

func (m OverlapCloseWeightedEuclideanMetric) Calculate(coords1, coords2 map[int]float64) float64 {
	distSquared, overlap := overlapWeightedSums(coords1, coords2)

	for _, idx := range m.ImmediateFamily {
		v1, ok1 := coords1[idx]
		v2, ok2 := coords2[idx]
		if ok1 && ok2 && v1 >= 1 && v2 >= 1 {
			overlap += closeRelativeWeight * math.Min(v1, v2)
		}
	}

	if overlap <= 0 {
		return math.Inf(1)
	}
	return distSquared / overlap
}

func (OverlapCloseWeightedEuclideanMetric) SignificantCoordinates(coords map[int]float64) []int {
	return significantKeys(coords)
}

// EuclideanSquaredMetric is the plain squared Euclidean distance over the
// union of keys. Vectors without a single shared key are +Inf apart.
type EuclideanSquaredMetric struct{}

func (EuclideanSquaredMetric) Calculate(coords1, coords2 map[int]float64) float64 {
	if len(coords1) > len(coords2) {
		coords1, coords2 = coords2, coords1
	}

	var distSquared float64
	shared := false
	for k, v1 := range coords1 {
		if v2, ok := coords2[k]; ok {
			shared = true
			d := v1 - v2
			distSquared += d * d
		} else {
			distSquared += v1 * v1
		}
	}
	if !shared {
		return math.Inf(1)
	}

	for k, v2 := range coords2 {
		if _, ok := coords1[k]; !ok {
			distSquared += v2 * v2
		}
	}
	return distSquared
}

func (EuclideanSquaredMetric) SignificantCoordinates(coords map[int]float64) []int {
	return sortedKeys(coords)
}

// AntiproximityMetric is the strength carried by keys present in exactly
// one of the vectors, averaged over the union of keys.
type AntiproximityMetric struct{}

func (AntiproximityMetric) Calculate(coords1, coords2 map[int]float64) float64 {
	var divergent float64
	union := len(coords1)
	for k, v1 := range coords1 {
		if _, ok := coords2[k]; !ok {
			divergent += v1
		}
	}
	for k, v2 := range coords2 {
		if _, ok := coords1[k]; !ok {
			divergent += v2
			union++
		}
	}
	if union == 0 {
		return math.Inf(1)
	}
	return divergent / float64(union)
}

func (AntiproximityMetric) SignificantCoordinates(coords map[int]float64) []int {
	return sortedKeys(coords)
}

// ProximityMetric is the reciprocal of the shared strength of two vectors.
type ProximityMetric struct{}

func (ProximityMetric) Calculate(coords1, coords2 map[int]float64) float64 {
	if len(coords1) > len(coords2) {
		coords1, coords2 = coords2, coords1
	}
	var overlap float64
	for k, v1 := range coords1 {
		if v2, ok := coords2[k]; ok {
			overlap += math.Min(v1, v2)
		}
	}
	if overlap <= 0 {
		return math.Inf(1)
	}
	return 1 / overlap
}

func (ProximityMetric) SignificantCoordinates(coords map[int]float64) []int {
	return sortedKeys(coords)
}

// DefaultCorrelationPopulation is the population size assumed by
// CorrelationMetric when PopulationSize is zero.
const DefaultCorrelationPopulation = 1000

// CorrelationMetric is one minus the Pearson correlation of two vectors,
// treating every absent key of a fixed-size population as zero.
type CorrelationMetric struct {
	PopulationSize int
}

func (m CorrelationMetric) Calculate(coords1, coords2 map[int]float64) float64 {
	n := float64(m.PopulationSize)
	if n <= 0 {
		n = DefaultCorrelationPopulation
	}

	keys := unionKeys(coords1, coords2)
	x := make([]float64, len(keys))
	y := make([]float64, len(keys))
	for i, k := range keys {
		x[i] = coords1[k]
		y[i] = coords2[k]
	}

	meanX := floats.Sum(x) / n
	meanY := floats.Sum(y) / n
	cov := floats.Dot(x, y)/n - meanX*meanY
	varX := floats.Dot(x, x)/n - meanX*meanX
	varY := floats.Dot(y, y)/n - meanY*meanY
	if varX <= 0 || varY <= 0 {
		return math.Inf(1)
	}
	return 1 - cov/math.Sqrt(varX*varY)
}

func (CorrelationMetric) SignificantCoordinates(coords map[int]float64) []int {
	return sortedKeys(coords)
}

// Strength tier cutoffs used by StrengthWeightedMetric.
const (
	StrongCutoff = 0.1
	MediumCutoff = 0.01
)

// StrengthWeightedMetric is a squared difference weighted by the strength
// tier of the larger value of each key: strong (>= 0.1), medium (>= 0.01)
// or weak. Zero weights fall back to 1, 0.5 and 0.25.
type StrengthWeightedMetric struct {
	Strong float64
	Medium float64
	Weak   float64
}

func (m StrengthWeightedMetric) weight(v float64) float64 {
	switch {
	case v >= StrongCutoff:
		return orDefault(m.Strong, 1)
	case v >= MediumCutoff:
		return orDefault(m.Medium, 0.5)
	default:
		return orDefault(m.Weak, 0.25)
	}
}

func (m StrengthWeightedMetric) Calculate(coords1, coords2 map[int]float64) float64 {
	var dist float64
	for _, k := range unionKeys(coords1, coords2) {
		v1, v2 := coords1[k], coords2[k]
		d := v1 - v2
		dist += m.weight(math.Max(v1, v2)) * d * d
	}
	return dist
}

func (StrengthWeightedMetric) SignificantCoordinates(coords map[int]float64) []int {
	keys := make([]int, 0, len(coords))
	for k, v := range coords {
		if v >= MediumCutoff {
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)
	return keys
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// unionKeys returns the keys of both vectors in ascending order.
func unionKeys(coords1, coords2 map[int]float64) []int {
	keys := make([]int, 0, len(coords1)+len(coords2))
	for k := range coords1 {
		keys = append(keys, k)
	}
	for k := range coords2 {
		if _, ok := coords1[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)
	return keys
}

// Metric names accepted by MetricByName and Config.Metric.
const (
	MetricOverlapWeightedEuclidean      = "overlap_weighted_euclidean"
	MetricOverlapCloseWeightedEuclidean = "overlap_close_weighted_euclidean"
	MetricEuclideanSquared              = "euclidean_squared"
	MetricAntiproximity                 = "antiproximity"
	MetricProximity                     = "proximity"
	MetricCorrelation                   = "correlation"
	MetricStrengthWeighted              = "strength_weighted"
)

// MetricByName returns the metric registered under name. immediateFamily
// is only used by the close-weighted metric.
func MetricByName(name string, immediateFamily []int) (DistanceMetric, error) {
	switch name {
	case "", MetricOverlapWeightedEuclidean:
		return OverlapWeightedEuclideanMetric{}, nil
	case MetricOverlapCloseWeightedEuclidean:
		family := make([]int, len(immediateFamily))
		copy(family, immediateFamily)
		return OverlapCloseWeightedEuclideanMetric{ImmediateFamily: family}, nil
	case MetricEuclideanSquared:
		return EuclideanSquaredMetric{}, nil
	case MetricAntiproximity:
		return AntiproximityMetric{}, nil
	case MetricProximity:
		return ProximityMetric{}, nil
	case MetricCorrelation:
		return CorrelationMetric{}, nil
	case MetricStrengthWeighted:
		return StrengthWeightedMetric{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
}

// ComputePairwiseDistances computes the full n×n distance matrix between
// the coordinate vectors of matches. Returns flat []float64 of length n*n.
func ComputePairwiseDistances(matches []*ClusterableMatch, metric DistanceMetric) []float64 {
	n := len(matches)
	result := make([]float64, n*n)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := metric.Calculate(matches[i].Coords, matches[j].Coords)
			result[i*n+j] = d
			result[j*n+i] = d
		}
	}

	return result
}

package sharedclustering

import "math"

// PrimMST computes a minimum spanning tree over a dense distance matrix
// (flat, n×n row-major) with Prim's algorithm.
//
// The result holds n-1 edges [from, to, weight] in the order nodes join
// the tree; from is the tree node nearest to the joining node. When no
// remaining node is at finite distance, the next component starts at the
// lowest-numbered remaining node j with the edge [j, j, +Inf], which must
// never be merged.
func PrimMST(distMatrix []float64, n int) [][3]float64 {
	return primMST(n, func(i, j int) float64 {
		return distMatrix[i*n+j]
	})
}

// primMST is Prim's algorithm over an arbitrary symmetric distance
// function. Each distance is requested at most once per joining node.
func primMST(n int, distance func(i, j int) float64) [][3]float64 {
	if n <= 1 {
		return nil
	}

	joined := make([]bool, n)
	best := make([]float64, n)
	nearest := make([]int, n)

	joined[0] = true
	best[0] = math.Inf(1)
	for j := 1; j < n; j++ {
		best[j] = distance(0, j)
	}

	edges := make([][3]float64, 0, n-1)
	for len(edges) < n-1 {
		next, weight := -1, math.Inf(1)
		for j, d := range best {
			if !joined[j] && d < weight {
				next, weight = j, d
			}
		}

		if next == -1 {
			for j := range joined {
				if !joined[j] {
					next = j
					nearest[j] = j
					break
				}
			}
		}

		edges = append(edges, [3]float64{float64(nearest[next]), float64(next), weight})
		joined[next] = true

		for j := range best {
			if joined[j] {
				continue
			}
			if d := distance(next, j); d < best[j] {
				best[j] = d
				nearest[j] = next
			}
		}
	}
	return edges
}

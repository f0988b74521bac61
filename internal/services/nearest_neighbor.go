package services

import "math"

// Build an initial tour using a greedy nearest-neighbor heuristic.
//
// Starting at start, the tour repeatedly moves to the closest unvisited
// index. Ties go to the lowest index, so the result is deterministic for a
// given matrix. The tour visits every index of the matrix exactly once.
func NearestNeighborTour(m DistanceMatrix, start int) []int {
	n := len(m)
	if n == 0 {
		return []int{}
	}
	if n == 1 {
		return []int{0}
	}

	visited := make([]bool, n)
	tour := make([]int, 0, n)

	current := start
	visited[current] = true
	tour = append(tour, current)

	for len(tour) < n {
		best := -1
		minDistance := math.Inf(1)

		// Strict comparison over ascending indices keeps the lowest index on ties.
		for candidate := 0; candidate < n; candidate++ {
			if visited[candidate] {
				continue
			}
			if d := m[current][candidate]; d < minDistance {
				minDistance = d
				best = candidate
			}
		}

		// Only reachable with NaN distances; take the first unvisited index.
		if best == -1 {
			for candidate := 0; candidate < n; candidate++ {
				if !visited[candidate] {
					best = candidate
					break
				}
			}
		}

		visited[best] = true
		tour = append(tour, best)
		current = best
	}

	return tour
}

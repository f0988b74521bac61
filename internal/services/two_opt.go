package services

// Acceptance is "strictly shorter". The epsilon only absorbs floating
// point noise in the O(1) delta, which could otherwise accept a reversal
// that leaves the length unchanged and swap forever.
const twoOptEpsilon = 1e-9

// Improve a tour with 2-opt local search.
//
// A move at positions (i, j) reverses tour[i:j], replacing edges
// (i-1, i) and (j-1, j) with (i-1, j-1) and (i, j). Position 0 (the start)
// never moves, and neither does the final position. The first improving
// move found is applied and the scan restarts; the search ends when a full
// scan finds nothing. A move must shorten the tour by more than
// twoOptEpsilon, which only absorbs floating point noise in the O(1)
// delta. The input slice is not modified.
func TwoOpt(tour []int, m DistanceMatrix) []int {
	best := make([]int, len(tour))
	copy(best, tour)

	n := len(best)
	if n <= 3 {
		return best
	}

	for {
		improved := false

	scan:
		for i := 1; i < n-2; i++ {
			for j := i + 2; j < n; j++ {
				a, b := best[i-1], best[i]
				c, d := best[j-1], best[j]

				delta := m[a][c] + m[b][d] - m[a][b] - m[c][d]
				if delta < -twoOptEpsilon {
					reverse(best, i, j-1)
					improved = true
					break scan
				}
			}
		}

		if !improved {
			return best
		}
	}
}

func reverse(tour []int, i, j int) {
	for i < j {
		tour[i], tour[j] = tour[j], tour[i]
		i++
		j--
	}
}

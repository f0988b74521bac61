package services

import (
	"testing"
)

func assertPermutation(t *testing.T, tour []int, n int) {
	t.Helper()

	if len(tour) != n {
		t.Fatalf("expected tour of length %d, got %d: %v", n, len(tour), tour)
	}
	seen := make([]bool, n)
	for _, idx := range tour {
		if idx < 0 || idx >= n {
			t.Fatalf("index %d out of range in %v", idx, tour)
		}
		if seen[idx] {
			t.Fatalf("index %d visited twice in %v", idx, tour)
		}
		seen[idx] = true
	}
}

func TestNearestNeighborTour_GreedyOrder(t *testing.T) {
	// Points on a line at 0, 10, 3, 7.
	pos := []float64{0, 10, 3, 7}
	m := make(DistanceMatrix, len(pos))
	for i := range pos {
		m[i] = make([]float64, len(pos))
		for j := range pos {
			d := pos[i] - pos[j]
			if d < 0 {
				d = -d
			}
			m[i][j] = d
		}
	}

	tour := NearestNeighborTour(m, 0)
	assertPermutation(t, tour, len(pos))

	want := []int{0, 2, 3, 1}
	for i := range want {
		if tour[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, tour)
		}
	}
}

func TestNearestNeighborTour_TiesGoToLowestIndex(t *testing.T) {
	m := DistanceMatrix{
		{0, 4, 4, 4},
		{4, 0, 1, 1},
		{4, 1, 0, 1},
		{4, 1, 1, 0},
	}

	tour := NearestNeighborTour(m, 0)
	want := []int{0, 1, 2, 3}
	for i := range want {
		if tour[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, tour)
		}
	}
}

func TestNearestNeighborTour_StartsAtStart(t *testing.T) {
	m := DistanceMatrix{
		{0, 1, 2},
		{1, 0, 1},
		{2, 1, 0},
	}

	tour := NearestNeighborTour(m, 2)
	assertPermutation(t, tour, 3)
	if tour[0] != 2 {
		t.Fatalf("expected tour to start at 2, got %v", tour)
	}
}

func TestNearestNeighborTour_SmallInputs(t *testing.T) {
	if tour := NearestNeighborTour(DistanceMatrix{}, 0); len(tour) != 0 {
		t.Fatalf("expected empty tour, got %v", tour)
	}
	if tour := NearestNeighborTour(DistanceMatrix{{0}}, 0); len(tour) != 1 || tour[0] != 0 {
		t.Fatalf("expected [0], got %v", tour)
	}
}

package services

import (
	"meal-route-service/internal/domain"
	"meal-route-service/internal/platform/geo"
)

// Square matrix of geodesic distances in kilometers, indexed by stop index.
type DistanceMatrix [][]float64

// BuildDistanceMatrix computes pairwise geodesic distances for coords.
// Only the upper triangle is computed; the lower triangle is mirrored so
// the matrix is exactly symmetric with a zero diagonal.
func BuildDistanceMatrix(coords []domain.Coordinates) DistanceMatrix {
	n := len(coords)
	m := make(DistanceMatrix, n)
	for i := range m {
		m[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := geo.DistanceKm(coords[i].Lat, coords[i].Lon, coords[j].Lat, coords[j].Lon)
			m[i][j] = d
			m[j][i] = d
		}
	}

	return m
}

// TourDistance sums the edges tour[k] -> tour[k+1]. The tour is an open
// path; there is no return leg to tour[0].
func (m DistanceMatrix) TourDistance(tour []int) float64 {
	total := 0.0
	for k := 0; k+1 < len(tour); k++ {
		total += m[tour[k]][tour[k+1]]
	}
	return total
}

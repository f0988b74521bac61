package domain

import (
	"fmt"
	"time"
)

const AlgorithmLabel = "Nearest Neighbor + 2-opt"

// Represents a single visited stop in an optimized route.
// Sequence is 1-based and excludes the start location.
type RouteItem struct {
	Sequence               int
	DeliveryID             int
	EstimatedTime          time.Time
	CustomerName           string
	CustomerPhone          string
	Address                string
	Instructions           string
	Coords                 Coordinates
	DistanceFromPreviousKm float64
}

// Output of a single route optimization.
// TotalDistanceKm is the open-path length from the start through every stop
// (no return leg). EstimatedDurationMinutes is a closed-form estimate and is
// intentionally not reconciled with the per-item ETAs.
type OptimizationResult struct {
	Zone                     string
	Route                    []RouteItem
	TotalDistanceKm          float64
	EstimatedDurationMinutes int
	StartLocation            StartLocation
	Algorithm                string
	TotalDeliveries          int
	GeocodeFallbacks         int
}

// EstimatedDuration renders the duration estimate as "Xh Ym".
func (r *OptimizationResult) EstimatedDuration() string {
	return fmt.Sprintf("%dh %dm", r.EstimatedDurationMinutes/60, r.EstimatedDurationMinutes%60)
}

// DeliveryIDs returns the delivery ids in visiting order.
func (r *OptimizationResult) DeliveryIDs() []int {
	ids := make([]int, 0, len(r.Route))
	for _, item := range r.Route {
		ids = append(ids, item.DeliveryID)
	}
	return ids
}

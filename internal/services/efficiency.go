package services

import "meal-route-service/internal/domain"

// Efficiency metrics for one route. Lower scores are better.
type RouteEfficiency struct {
	EfficiencyScore        float64
	AvgDistancePerDelivery float64
	TotalStops             int
	TotalDistance          float64
}

// Efficiency summarizes a route from its per-leg distances.
func Efficiency(r *domain.OptimizationResult) RouteEfficiency {
	if r == nil || len(r.Route) == 0 {
		return RouteEfficiency{}
	}

	total := 0.0
	for _, item := range r.Route {
		total += item.DistanceFromPreviousKm
	}
	avg := total / float64(len(r.Route))

	return RouteEfficiency{
		EfficiencyScore:        round2(avg * float64(len(r.Route))),
		AvgDistancePerDelivery: round2(avg),
		TotalStops:             len(r.Route),
		TotalDistance:          round2(total),
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"meal-route-service/internal/domain"
	"meal-route-service/internal/platform/obs"
	"meal-route-service/internal/ports"
	"time"
)

type PlanDeliveriesRequest struct {
	Day         time.Time
	Start       domain.StartLocation
	MaxPerRoute int
}

// PlanDeliveries optimizes every pending delivery of a day and writes the
// resulting sequence, ETA and zone back through the repository.
func PlanDeliveries(
	ctx context.Context,
	req PlanDeliveriesRequest,
	repo ports.DeliveryRepository,
	optimizer *RouteOptimizer,
) (_ []*domain.OptimizationResult, err error) {
	defer obs.Time(ctx, "services.PlanDeliveries")(&err)

	if repo == nil || optimizer == nil {
		return nil, errors.New("plan deliveries: repository and optimizer are required")
	}

	stops, err := repo.ListPendingDeliveries(ctx, req.Day)
	if err != nil {
		return nil, fmt.Errorf("plan deliveries: list pending deliveries: %w", err)
	}

	if len(stops) == 0 {
		return []*domain.OptimizationResult{}, nil
	}

	byID := make(map[int]domain.DeliveryStop, len(stops))
	for _, s := range stops {
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("plan deliveries: duplicate delivery_id=%d", s.ID)
		}
		byID[s.ID] = s
	}

	results := optimizer.OptimizeMultiple(ctx, stops, req.Start, req.MaxPerRoute)

	assignments := make([]ports.DeliveryAssignment, 0, len(stops))
	for _, r := range results {
		for _, item := range r.Route {
			s := byID[item.DeliveryID]
			assignments = append(assignments, ports.DeliveryAssignment{
				DeliveryID:    item.DeliveryID,
				Sequence:      item.Sequence,
				EstimatedTime: onDay(req.Day, item.EstimatedTime),
				Zone:          domain.ClassifyZone(s.Address, s.City),
			})
		}
	}

	if err := repo.ApplyAssignments(ctx, req.Day, assignments); err != nil {
		return nil, fmt.Errorf("plan deliveries: apply assignments: %w", err)
	}

	return results, nil
}

// ZoneCount is the number of pending deliveries classified into a zone.
type ZoneCount struct {
	Zone          string
	DeliveryCount int
}

// ZoneSummary counts a day's pending deliveries per zone, in classification
// order. Zones without deliveries are omitted.
func ZoneSummary(ctx context.Context, day time.Time, repo ports.DeliveryRepository) ([]ZoneCount, error) {
	stops, err := repo.ListPendingDeliveries(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("zone summary: list pending deliveries: %w", err)
	}

	counts := make(map[string]int)
	for _, s := range stops {
		counts[domain.ClassifyZone(s.Address, s.City)]++
	}

	out := make([]ZoneCount, 0, len(counts))
	for _, zone := range domain.KnownZones() {
		if n := counts[zone]; n > 0 {
			out = append(out, ZoneCount{Zone: zone, DeliveryCount: n})
		}
	}

	return out, nil
}

// onDay places a time of day on the given calendar day.
func onDay(day, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location())
}

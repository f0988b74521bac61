package services

import (
	"context"
	"fmt"
	"meal-route-service/internal/domain"
	"meal-route-service/internal/platform/obs"
	"time"

	"golang.org/x/sync/errgroup"
)

// Zone/chunk tours built at once. Geocoding is already done by then, so
// this only bounds CPU work.
const maxConcurrentRoutes = 4

// ZoneGroup holds the stops classified into one zone, in input order.
type ZoneGroup struct {
	Zone  string
	Stops []domain.DeliveryStop
}

type zoneIndices struct {
	zone    string
	indices []int
}

// groupIndicesByZone partitions stop positions by zone, zones in the order
// they first appear.
func groupIndicesByZone(stops []domain.DeliveryStop) []zoneIndices {
	index := make(map[string]int)
	groups := make([]zoneIndices, 0)

	for i, s := range stops {
		zone := domain.ClassifyZone(s.Address, s.City)
		g, ok := index[zone]
		if !ok {
			g = len(groups)
			index[zone] = g
			groups = append(groups, zoneIndices{zone: zone})
		}
		groups[g].indices = append(groups[g].indices, i)
	}

	return groups
}

// GroupByZone partitions stops by zone. Groups are returned in the order
// their zone first appears in stops.
func GroupByZone(stops []domain.DeliveryStop) []ZoneGroup {
	groups := groupIndicesByZone(stops)

	out := make([]ZoneGroup, 0, len(groups))
	for _, g := range groups {
		zg := ZoneGroup{Zone: g.zone, Stops: make([]domain.DeliveryStop, 0, len(g.indices))}
		for _, i := range g.indices {
			zg.Stops = append(zg.Stops, stops[i])
		}
		out = append(out, zg)
	}

	return out
}

type routeJob struct {
	label   string
	indices []int
}

// OptimizeMultiple splits a large batch into several routes of at most
// maxPerRoute stops.
//
// Batches within the limit produce a single unlabelled route. Larger
// batches are grouped by zone; zones over the limit are cut into
// consecutive chunks labelled "<Zone> (Part k)". The whole batch is
// geocoded once under a single concurrency limit and budget, then every
// route is optimized independently from the same start location.
// maxPerRoute <= 0 uses the configured default.
func (o *RouteOptimizer) OptimizeMultiple(
	ctx context.Context,
	stops []domain.DeliveryStop,
	start domain.StartLocation,
	maxPerRoute int,
) []*domain.OptimizationResult {
	defer obs.Time(ctx, "optimizer.OptimizeMultiple")(nil)

	if maxPerRoute <= 0 {
		maxPerRoute = o.cfg.MaxPerRoute
	}

	if len(stops) <= maxPerRoute {
		return []*domain.OptimizationResult{o.OptimizeRoute(ctx, stops, start)}
	}

	began := time.Now()
	defer func() { obs.OptimizationDuration.Observe(time.Since(began).Seconds()) }()

	coords, fellBack := o.resolveCoordinates(ctx, stops)

	jobs := make([]routeJob, 0)
	for _, group := range groupIndicesByZone(stops) {
		if len(group.indices) <= maxPerRoute {
			jobs = append(jobs, routeJob{label: group.zone, indices: group.indices})
			continue
		}

		part := 1
		for lo := 0; lo < len(group.indices); lo += maxPerRoute {
			hi := min(lo+maxPerRoute, len(group.indices))
			jobs = append(jobs, routeJob{
				label:   fmt.Sprintf("%s (Part %d)", group.zone, part),
				indices: group.indices[lo:hi],
			})
			part++
		}
	}

	results := make([]*domain.OptimizationResult, len(jobs))

	var g errgroup.Group
	g.SetLimit(maxConcurrentRoutes)
	for i, job := range jobs {
		g.Go(func() error {
			jobStops := make([]domain.DeliveryStop, 0, len(job.indices))
			jobCoords := make([]domain.Coordinates, 0, len(job.indices))
			jobFellBack := make([]bool, 0, len(job.indices))
			for _, k := range job.indices {
				jobStops = append(jobStops, stops[k])
				jobCoords = append(jobCoords, coords[k])
				jobFellBack = append(jobFellBack, fellBack[k])
			}

			r := buildRoute(jobStops, jobCoords, jobFellBack, start)
			r.Zone = job.label
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()

	return results
}

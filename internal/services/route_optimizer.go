package services

import (
	"context"
	"log/slog"
	"meal-route-service/internal/domain"
	"meal-route-service/internal/platform/obs"
	"meal-route-service/internal/ports"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

type OptimizerConfig struct {
	// Upper bound for a single address lookup.
	GeocodeTimeout time.Duration
	// Upper bound for all lookups of one call; stops still unresolved when
	// it expires use their zone centroid. Zero means no bound beyond the
	// caller's context.
	GeocodeBudget time.Duration
	// Number of lookups allowed in flight for one call, shared by every
	// route of an OptimizeMultiple call.
	GeocodeConcurrency int
	// Fraction of fallback stops in a batch that triggers a warning.
	FallbackWarnRatio float64
	// Default route size limit for OptimizeMultiple.
	MaxPerRoute int
}

func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		GeocodeTimeout:     10 * time.Second,
		GeocodeConcurrency: 4,
		FallbackWarnRatio:  0.5,
		MaxPerRoute:        15,
	}
}

// RouteOptimizer orders delivery stops into short routes.
//
// It is stateless between calls: every optimization geocodes, builds its
// own distance matrix and tour, and shares nothing with concurrent calls.
// A nil geocoder places every stop on its zone centroid.
type RouteOptimizer struct {
	geocoder ports.Geocoder
	cfg      OptimizerConfig
	logger   *slog.Logger
}

func NewRouteOptimizer(geocoder ports.Geocoder, cfg OptimizerConfig, logger *slog.Logger) *RouteOptimizer {
	def := DefaultOptimizerConfig()
	if cfg.GeocodeTimeout <= 0 {
		cfg.GeocodeTimeout = def.GeocodeTimeout
	}
	if cfg.GeocodeConcurrency < 1 {
		cfg.GeocodeConcurrency = def.GeocodeConcurrency
	}
	if cfg.FallbackWarnRatio <= 0 {
		cfg.FallbackWarnRatio = def.FallbackWarnRatio
	}
	if cfg.MaxPerRoute < 1 {
		cfg.MaxPerRoute = def.MaxPerRoute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RouteOptimizer{geocoder: geocoder, cfg: cfg, logger: logger}
}

// OptimizeRoute computes a visiting order for stops starting from start.
//
// Stops are geocoded (falling back to zone centroids), a nearest-neighbor
// tour is built from the start and refined with 2-opt when it has more
// than two stops. Every stop appears exactly once in the result. An empty
// stop list returns an empty result without geocoding.
func (o *RouteOptimizer) OptimizeRoute(
	ctx context.Context,
	stops []domain.DeliveryStop,
	start domain.StartLocation,
) *domain.OptimizationResult {
	defer obs.Time(ctx, "optimizer.OptimizeRoute")(nil)

	if len(stops) == 0 {
		return emptyResult(start)
	}

	began := time.Now()
	defer func() { obs.OptimizationDuration.Observe(time.Since(began).Seconds()) }()

	coords, fellBack := o.resolveCoordinates(ctx, stops)

	return buildRoute(stops, coords, fellBack, start)
}

func emptyResult(start domain.StartLocation) *domain.OptimizationResult {
	return &domain.OptimizationResult{
		Route:         []domain.RouteItem{},
		StartLocation: start,
		Algorithm:     domain.AlgorithmLabel,
	}
}

// buildRoute orders already-resolved stops. coords[k] and fellBack[k]
// belong to stops[k].
func buildRoute(
	stops []domain.DeliveryStop,
	coords []domain.Coordinates,
	fellBack []bool,
	start domain.StartLocation,
) *domain.OptimizationResult {
	if len(stops) == 0 {
		return emptyResult(start)
	}

	// Index 0 is the start; stop k lives at index k+1.
	points := make([]domain.Coordinates, 0, len(stops)+1)
	points = append(points, start.Coords)
	points = append(points, coords...)

	matrix := BuildDistanceMatrix(points)

	tour := NearestNeighborTour(matrix, 0)
	if len(tour) > 3 {
		tour = TwoOpt(tour, matrix)
	}

	totalKm := matrix.TourDistance(tour)

	route := make([]domain.RouteItem, 0, len(stops))
	eta := dayStart()
	for seq := 1; seq < len(tour); seq++ {
		idx := tour[seq]
		stop := stops[idx-1]
		legKm := matrix[tour[seq-1]][idx]

		eta = nextArrival(eta, seq, legKm)

		route = append(route, domain.RouteItem{
			Sequence:               seq,
			DeliveryID:             stop.ID,
			EstimatedTime:          eta,
			CustomerName:           stop.CustomerName,
			CustomerPhone:          stop.CustomerPhone,
			Address:                stop.Address,
			Instructions:           stop.Instructions,
			Coords:                 points[idx],
			DistanceFromPreviousKm: round2(legKm),
		})
	}

	fallbacks := 0
	for _, fb := range fellBack {
		if fb {
			fallbacks++
		}
	}

	obs.RouteStops.Observe(float64(len(route)))

	return &domain.OptimizationResult{
		Route:                    route,
		TotalDistanceKm:          round2(totalKm),
		EstimatedDurationMinutes: estimateDurationMinutes(len(stops), totalKm),
		StartLocation:            start,
		Algorithm:                domain.AlgorithmLabel,
		TotalDeliveries:          len(stops),
		GeocodeFallbacks:         fallbacks,
	}
}

// resolveCoordinates returns one coordinate per stop, in input order, and
// marks the stops that had to use a zone centroid. Lookups run
// concurrently, each under its own timeout and all under the call's
// geocoding budget; a failed lookup never affects the others.
func (o *RouteOptimizer) resolveCoordinates(ctx context.Context, stops []domain.DeliveryStop) ([]domain.Coordinates, []bool) {
	coords := make([]domain.Coordinates, len(stops))
	resolved := make([]bool, len(stops))

	if o.geocoder != nil {
		batchCtx := ctx
		if o.cfg.GeocodeBudget > 0 {
			var cancel context.CancelFunc
			batchCtx, cancel = context.WithTimeout(ctx, o.cfg.GeocodeBudget)
			defer cancel()
		}

		var g errgroup.Group
		g.SetLimit(o.cfg.GeocodeConcurrency)

		for i, stop := range stops {
			address := strings.TrimSpace(stop.Address)
			if address == "" {
				continue
			}

			g.Go(func() error {
				if batchCtx.Err() != nil {
					obs.GeocodeLookups.WithLabelValues("skipped").Inc()
					return nil
				}

				lookupCtx, cancel := context.WithTimeout(batchCtx, o.cfg.GeocodeTimeout)
				defer cancel()

				c, err := o.geocoder.Geocode(lookupCtx, address)
				if err != nil {
					obs.GeocodeLookups.WithLabelValues("error").Inc()
					o.logger.Debug("geocode lookup failed", "req_id", obs.RequestID(ctx), "delivery_id", stop.ID, "err", err)
					return nil
				}
				if !c.Valid() {
					obs.GeocodeLookups.WithLabelValues("error").Inc()
					o.logger.Debug("geocode returned out-of-range coordinates", "req_id", obs.RequestID(ctx), "delivery_id", stop.ID, "lat", c.Lat, "lon", c.Lon)
					return nil
				}

				obs.GeocodeLookups.WithLabelValues("ok").Inc()
				coords[i] = c
				resolved[i] = true
				return nil
			})
		}

		// Lookups never return errors; failures are handled below.
		_ = g.Wait()
	} else {
		obs.GeocodeLookups.WithLabelValues("disabled").Add(float64(len(stops)))
	}

	fellBack := make([]bool, len(stops))
	fallbacks := 0
	for i, stop := range stops {
		if resolved[i] {
			continue
		}

		zone := domain.ClassifyZone(stop.Address, stop.City)
		coords[i] = domain.ZoneCentroid(zone)
		fellBack[i] = true
		fallbacks++
		obs.GeocodeFallbacks.WithLabelValues(zone).Inc()
	}

	if fallbacks > 0 && o.geocoder != nil {
		ratio := float64(fallbacks) / float64(len(stops))
		if ratio >= o.cfg.FallbackWarnRatio {
			obs.GeocodeFallbackBatches.Inc()
			o.logger.Warn("geocode fallback rate above threshold",
				"req_id", obs.RequestID(ctx),
				"stops", len(stops),
				"fallbacks", fallbacks,
				"ratio", ratio,
				"threshold", o.cfg.FallbackWarnRatio,
			)
		}
	}

	return coords, fellBack
}

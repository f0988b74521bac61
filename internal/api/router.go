package api

import (
	"meal-route-service/internal/api/handlers"
	"meal-route-service/internal/domain"
	"meal-route-service/internal/platform/obs"
	"meal-route-service/internal/ports"
	"meal-route-service/internal/services"
	"net/http"
)

// Deps carries what the handlers need. Store and Deliveries are optional;
// their endpoints are only registered when set.
type Deps struct {
	Optimizer    *services.RouteOptimizer
	Store        ports.RouteStore
	Deliveries   ports.DeliveryRepository
	DefaultStart domain.StartLocation
	Checks       map[string]handlers.CheckFunc
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Checks: deps.Checks}
	routeHandler := &handlers.RouteHandler{
		Optimizer:    deps.Optimizer,
		Store:        deps.Store,
		DefaultStart: deps.DefaultStart,
	}

	mux.HandleFunc("/health", healthHandler.Live)
	mux.HandleFunc("/ready", healthHandler.Ready)
	mux.Handle("/metrics", obs.MetricsHandler())

	mux.HandleFunc("/routes/optimize", routeHandler.Optimize)
	mux.HandleFunc("/routes/optimize-multiple", routeHandler.OptimizeMultiple)
	if deps.Store != nil {
		mux.HandleFunc("/routes/{id}", routeHandler.Get)
	}

	mux.HandleFunc("/zones/classify", handlers.ClassifyZone)

	if deps.Deliveries != nil {
		deliveryHandler := &handlers.DeliveryHandler{
			Repo:         deps.Deliveries,
			Optimizer:    deps.Optimizer,
			DefaultStart: deps.DefaultStart,
		}
		mux.HandleFunc("/deliveries/optimize", deliveryHandler.Optimize)
		mux.HandleFunc("/deliveries/zones", deliveryHandler.Zones)
	}

	return requestIDMiddleware(loggingMiddleware(mux))
}

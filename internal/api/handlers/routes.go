package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"meal-route-service/internal/api/dto"
	"meal-route-service/internal/domain"
	"meal-route-service/internal/platform/obs"
	"meal-route-service/internal/ports"
	"meal-route-service/internal/services"
	"net/http"
	"strings"
)

// Bounds a single request's geocoding work.
const maxDeliveriesPerRequest = 500

type RouteHandler struct {
	Optimizer *services.RouteOptimizer
	// Optional; when nil results are not stored and carry no route_id.
	Store        ports.RouteStore
	DefaultStart domain.StartLocation
}

// Optimize orders the posted deliveries into a single route.
func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.OptimizeRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if len(req.Deliveries) > maxDeliveriesPerRequest {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("at most %d deliveries per request", maxDeliveriesPerRequest))
		return
	}

	start, err := parseStartLocation(req.StartLocation, h.DefaultStart)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result := h.Optimizer.OptimizeRoute(r.Context(), toDeliveryStops(req.Deliveries), start)

	res := toRouteResponse(result)
	res.RouteID = h.save(r, result)

	writeJSON(w, r, http.StatusOK, res)
}

// OptimizeMultiple splits the posted deliveries into zone routes of bounded size.
func (h *RouteHandler) OptimizeMultiple(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.OptimizeMultipleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if len(req.Deliveries) > maxDeliveriesPerRequest {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("at most %d deliveries per request", maxDeliveriesPerRequest))
		return
	}

	start, err := parseStartLocation(req.StartLocation, h.DefaultStart)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	maxPerRoute, err := parseMaxPerRoute(req.MaxDeliveriesPerRoute)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	results := h.Optimizer.OptimizeMultiple(r.Context(), toDeliveryStops(req.Deliveries), start, maxPerRoute)

	res := dto.MultiRouteResponse{
		Routes:      make([]dto.RouteResponse, 0, len(results)),
		TotalRoutes: len(results),
	}
	for _, result := range results {
		route := toRouteResponse(result)
		route.RouteID = h.save(r, result)
		res.Routes = append(res.Routes, route)
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Get returns a previously stored route by id. Only registered when Store is set.
func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "route id is required")
		return
	}

	result, err := h.Store.Get(r.Context(), id)
	if errors.Is(err, ports.ErrRouteNotFound) {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}
	if err != nil {
		slog.Error("get route failed", "req_id", obs.RequestID(r.Context()), "route_id", id, "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := toRouteResponse(result)
	res.RouteID = id

	writeJSON(w, r, http.StatusOK, res)
}

// save stores result when a store is configured. A failed save is logged
// and the route is still returned, just without an id.
func (h *RouteHandler) save(r *http.Request, result *domain.OptimizationResult) string {
	if h.Store == nil {
		return ""
	}

	id, err := h.Store.Save(r.Context(), result)
	if err != nil {
		slog.Warn("store route failed", "req_id", obs.RequestID(r.Context()), "err", err)
		return ""
	}
	return id
}

package handlers

import (
	"log/slog"
	"meal-route-service/internal/api/dto"
	"meal-route-service/internal/domain"
	"meal-route-service/internal/platform/obs"
	"meal-route-service/internal/ports"
	"meal-route-service/internal/services"
	"net/http"
)

type DeliveryHandler struct {
	Repo         ports.DeliveryRepository
	Optimizer    *services.RouteOptimizer
	DefaultStart domain.StartLocation
}

// Optimize plans a day's pending deliveries and writes sequence and ETA back
// to the order system.
func (h *DeliveryHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.OptimizeDeliveriesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	day, err := parseDeliveryDate(req.DeliveryDate)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
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

	svcReq := services.PlanDeliveriesRequest{
		Day:         day,
		Start:       start,
		MaxPerRoute: maxPerRoute,
	}

	results, err := services.PlanDeliveries(r.Context(), svcReq, h.Repo, h.Optimizer)
	if err != nil {
		slog.Error("plan deliveries failed", "req_id", obs.RequestID(r.Context()), "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	total := 0
	for _, res := range results {
		total += res.TotalDeliveries
	}

	writeJSON(w, r, http.StatusOK, dto.OptimizeDeliveriesResponse{
		DeliveryDate:    day.Format(dateLayout),
		Routes:          toRouteResponses(results),
		TotalRoutes:     len(results),
		TotalDeliveries: total,
	})
}

// Zones counts a day's pending deliveries per zone.
func (h *DeliveryHandler) Zones(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	day, err := parseDeliveryDate(r.URL.Query().Get("delivery_date"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	counts, err := services.ZoneSummary(r.Context(), day, h.Repo)
	if err != nil {
		slog.Error("zone summary failed", "req_id", obs.RequestID(r.Context()), "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ZoneSummaryResponse{
		DeliveryDate: day.Format(dateLayout),
		Zones:        make([]dto.ZoneCountResponse, 0, len(counts)),
	}
	for _, c := range counts {
		res.Zones = append(res.Zones, dto.ZoneCountResponse{Zone: c.Zone, DeliveryCount: c.DeliveryCount})
	}

	writeJSON(w, r, http.StatusOK, res)
}

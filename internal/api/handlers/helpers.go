package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"meal-route-service/internal/api/dto"
	"meal-route-service/internal/domain"
	"meal-route-service/internal/platform/obs"
	"meal-route-service/internal/services"
	"net/http"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Upper bound on the request body size accepted by JSON endpoints.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode failed", "req_id", obs.RequestID(r.Context()), "method", r.Method, "path", r.URL.Path, "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// decodeJSON reads exactly one JSON object into v, rejecting unknown fields.
// It writes the 400 response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

func parseStartLocation(req *dto.StartLocationRequest, fallback domain.StartLocation) (domain.StartLocation, error) {
	if req == nil {
		return fallback, nil
	}
	if req.Latitude == nil || req.Longitude == nil {
		return domain.StartLocation{}, errors.New("start_location requires latitude and longitude")
	}

	c := domain.Coordinates{Lat: *req.Latitude, Lon: *req.Longitude}
	if !c.Valid() {
		return domain.StartLocation{}, errors.New("start_location latitude must be within [-90, 90] and longitude within [-180, 180]")
	}

	return domain.StartLocation{Coords: c, Address: strings.TrimSpace(req.Address)}, nil
}

func parseMaxPerRoute(v int) (int, error) {
	if v < 0 || v > 100 {
		return 0, errors.New("max_deliveries_per_route must be 0 (default) or between 1 and 100")
	}
	return v, nil
}

// parseDeliveryDate parses YYYY-MM-DD; an empty value means today.
func parseDeliveryDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}

	day, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, errors.New("delivery_date must be formatted as YYYY-MM-DD")
	}
	return day, nil
}

func toDeliveryStops(in []dto.DeliveryRequest) []domain.DeliveryStop {
	stops := make([]domain.DeliveryStop, 0, len(in))
	for _, d := range in {
		stops = append(stops, domain.DeliveryStop{
			ID:            d.ID,
			Address:       d.DeliveryAddress,
			City:          d.City,
			Instructions:  d.DeliveryInstructions,
			CustomerName:  d.CustomerName,
			CustomerPhone: d.CustomerPhone,
		})
	}
	return stops
}

func toRouteResponse(r *domain.OptimizationResult) dto.RouteResponse {
	items := make([]dto.RouteItemResponse, 0, len(r.Route))
	for _, item := range r.Route {
		items = append(items, dto.RouteItemResponse{
			DeliveryID:             item.DeliveryID,
			Sequence:               item.Sequence,
			CustomerName:           item.CustomerName,
			CustomerPhone:          item.CustomerPhone,
			Address:                item.Address,
			EstimatedTime:          item.EstimatedTime.Format("15:04"),
			DeliveryInstructions:   item.Instructions,
			Coordinates:            item.Coords.CoordsToList(),
			DistanceFromPreviousKm: item.DistanceFromPreviousKm,
		})
	}

	eff := services.Efficiency(r)

	return dto.RouteResponse{
		Zone:                     r.Zone,
		OptimizedRoute:           items,
		TotalDistanceKm:          r.TotalDistanceKm,
		EstimatedDurationMinutes: r.EstimatedDurationMinutes,
		EstimatedDuration:        r.EstimatedDuration(),
		StartLocation: dto.StartLocationResponse{
			Latitude:  r.StartLocation.Coords.Lat,
			Longitude: r.StartLocation.Coords.Lon,
			Address:   r.StartLocation.Address,
		},
		AlgorithmUsed:    r.Algorithm,
		TotalDeliveries:  r.TotalDeliveries,
		GeocodeFallbacks: r.GeocodeFallbacks,
		Efficiency: dto.EfficiencyResponse{
			EfficiencyScore:        eff.EfficiencyScore,
			AvgDistancePerDelivery: eff.AvgDistancePerDelivery,
			TotalStops:             eff.TotalStops,
			TotalDistance:          eff.TotalDistance,
		},
	}
}

func toRouteResponses(results []*domain.OptimizationResult) []dto.RouteResponse {
	out := make([]dto.RouteResponse, 0, len(results))
	for _, r := range results {
		out = append(out, toRouteResponse(r))
	}
	return out
}

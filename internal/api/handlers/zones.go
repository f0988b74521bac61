package handlers

import (
	"meal-route-service/internal/api/dto"
	"meal-route-service/internal/domain"
	"net/http"
	"strings"
)

// ClassifyZone reports the zone for an address and optional city.
func ClassifyZone(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	address := strings.TrimSpace(q.Get("address"))
	city := strings.TrimSpace(q.Get("city"))
	if address == "" && city == "" {
		writeError(w, r, http.StatusBadRequest, "address or city is required")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ZoneResponse{Zone: domain.ClassifyZone(address, city)})
}

package handlers

import (
	"context"
	"log/slog"
	"meal-route-service/internal/platform/obs"
	"net/http"
	"sort"
	"time"
)

// Pings a backing dependency; nil means reachable.
type CheckFunc func(ctx context.Context) error

type HealthHandler struct {
	// Keyed by dependency name, e.g. "postgres" or "redis".
	Checks map[string]CheckFunc
}

// Live provides a minimal liveness check endpoint.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports 503 when any configured dependency cannot be reached.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	deps := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.Checks[name](ctx); err != nil {
			slog.Warn("readiness check failed", "req_id", obs.RequestID(ctx), "dependency", name, "err", err)
			deps[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	writeJSON(w, r, status, map[string]any{"status": overall, "dependencies": deps})
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"meal-route-service/internal/adapters/geocode"
	"meal-route-service/internal/api/dto"
	"meal-route-service/internal/api/handlers"
	"meal-route-service/internal/domain"
	"meal-route-service/internal/ports"
	"meal-route-service/internal/services"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRouteStore struct {
	mu     sync.Mutex
	routes map[string]*domain.OptimizationResult
	next   int
}

func newMemoryRouteStore() *memoryRouteStore {
	return &memoryRouteStore{routes: map[string]*domain.OptimizationResult{}}
}

func (s *memoryRouteStore) Save(ctx context.Context, r *domain.OptimizationResult) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := fmt.Sprintf("route-%d", s.next)
	s.routes[id] = r
	return id, nil
}

func (s *memoryRouteStore) Get(ctx context.Context, id string) (*domain.OptimizationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.routes[id]
	if !ok {
		return nil, ports.ErrRouteNotFound
	}
	return r, nil
}

type memoryDeliveryRepo struct {
	stops       []domain.DeliveryStop
	assignments []ports.DeliveryAssignment
	day         time.Time
}

func (m *memoryDeliveryRepo) ListPendingDeliveries(ctx context.Context, day time.Time) ([]domain.DeliveryStop, error) {
	m.day = day
	return m.stops, nil
}

func (m *memoryDeliveryRepo) ApplyAssignments(ctx context.Context, day time.Time, a []ports.DeliveryAssignment) error {
	m.assignments = a
	return nil
}

func newTestRouter(store ports.RouteStore, repo ports.DeliveryRepository) http.Handler {
	return NewRouter(Deps{
		Optimizer:    services.NewRouteOptimizer(nil, services.DefaultOptimizerConfig(), nil),
		Store:        store,
		Deliveries:   repo,
		DefaultStart: domain.DefaultStartLocation,
	})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestRouter(nil, nil)

	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, h, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestReady_ReportsFailingDependency(t *testing.T) {
	h := NewRouter(Deps{
		Optimizer: services.NewRouteOptimizer(nil, services.DefaultOptimizerConfig(), nil),
		Checks: map[string]handlers.CheckFunc{
			"redis":    func(ctx context.Context) error { return nil },
			"postgres": func(ctx context.Context) error { return errors.New("connection refused") },
		},
	})

	rec := do(t, h, http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","dependencies":{"postgres":"unavailable","redis":"ok"}}`, rec.Body.String())
}

func TestRequestIDPropagated(t *testing.T) {
	h := newTestRouter(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestOptimizeRoute(t *testing.T) {
	store := newMemoryRouteStore()
	h := newTestRouter(store, nil)

	body := `{
		"deliveries": [
			{"id": 1, "delivery_address": "1 Main St", "city": "Vancouver", "customer_name": "A"},
			{"id": 2, "delivery_address": "2 Main St", "city": "Surrey", "customer_name": "B", "delivery_instructions": "ring twice"}
		]
	}`

	rec := do(t, h, http.MethodPost, "/routes/optimize", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	assert.NotEmpty(t, res.RouteID)
	assert.Empty(t, res.Zone)
	assert.Equal(t, domain.AlgorithmLabel, res.AlgorithmUsed)
	assert.Equal(t, 2, res.TotalDeliveries)
	assert.Equal(t, 2, res.GeocodeFallbacks)
	require.Len(t, res.OptimizedRoute, 2)

	// Surrey is closer to the Langley start.
	assert.Equal(t, 2, res.OptimizedRoute[0].DeliveryID)
	assert.Equal(t, "09:15", res.OptimizedRoute[0].EstimatedTime)
	assert.Equal(t, "ring twice", res.OptimizedRoute[0].DeliveryInstructions)
	assert.Equal(t, []float64{domain.SurreyCentroid.Lat, domain.SurreyCentroid.Lon}, res.OptimizedRoute[0].Coordinates)
	assert.Equal(t, domain.DefaultStartLocation.Address, res.StartLocation.Address)
	assert.Equal(t, 2, res.Efficiency.TotalStops)
	assert.Regexp(t, `^\d+h \d+m$`, res.EstimatedDuration)

	rec = do(t, h, http.MethodGet, "/routes/"+res.RouteID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stored dto.RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, res, stored)
}

func TestOptimizeRoute_UsesGeocoder(t *testing.T) {
	g := geocode.NewMockGeocoder(map[string]domain.Coordinates{
		"8888 University Dr, Burnaby": {Lat: 49.2781, Lon: -122.9199},
	})
	h := NewRouter(Deps{
		Optimizer:    services.NewRouteOptimizer(g, services.DefaultOptimizerConfig(), nil),
		DefaultStart: domain.DefaultStartLocation,
	})

	body := `{"deliveries": [
		{"id": 1, "delivery_address": "8888 University Dr, Burnaby"},
		{"id": 2, "delivery_address": "Unknown Lane", "city": "Vancouver"}
	]}`

	rec := do(t, h, http.MethodPost, "/routes/optimize", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.GeocodeFallbacks)
	assert.ElementsMatch(t, []string{"8888 University Dr, Burnaby", "Unknown Lane"}, g.Calls())

	coords := map[int][]float64{}
	for _, item := range res.OptimizedRoute {
		coords[item.DeliveryID] = item.Coordinates
	}
	assert.Equal(t, []float64{49.2781, -122.9199}, coords[1])
	assert.Equal(t, []float64{domain.VancouverCentroid.Lat, domain.VancouverCentroid.Lon}, coords[2])
}

func TestOptimizeRoute_EmptyDeliveries(t *testing.T) {
	h := newTestRouter(nil, nil)

	rec := do(t, h, http.MethodPost, "/routes/optimize", `{"deliveries": []}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Empty(t, res.RouteID)
	assert.NotNil(t, res.OptimizedRoute)
	assert.Len(t, res.OptimizedRoute, 0)
	assert.Equal(t, "0h 0m", res.EstimatedDuration)
}

func TestOptimizeRoute_CustomStartLocation(t *testing.T) {
	h := newTestRouter(nil, nil)

	body := `{"deliveries": [{"id": 5, "delivery_address": "x", "city": "Burnaby"}],
		"start_location": {"latitude": 49.25, "longitude": -123.0, "address": "Depot"}}`

	rec := do(t, h, http.MethodPost, "/routes/optimize", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.RouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, dto.StartLocationResponse{Latitude: 49.25, Longitude: -123.0, Address: "Depot"}, res.StartLocation)
}

func TestOptimizeRoute_BadRequests(t *testing.T) {
	h := newTestRouter(nil, nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{`, "invalid json body"},
		{"unknown field", `{"deliveries": [], "hub": "x"}`, "invalid json body"},
		{"two objects", `{"deliveries": []}{}`, "body must contain only one JSON object"},
		{"latitude out of range", `{"deliveries": [], "start_location": {"latitude": 91, "longitude": 0}}`, "start_location latitude"},
		{"missing longitude", `{"deliveries": [], "start_location": {"latitude": 49}}`, "requires latitude and longitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/routes/optimize", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}

	rec := do(t, h, http.MethodGet, "/routes/optimize", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestOptimizeMultiple(t *testing.T) {
	h := newTestRouter(nil, nil)

	var sb strings.Builder
	sb.WriteString(`{"max_deliveries_per_route": 15, "deliveries": [`)
	for i := 1; i <= 20; i++ {
		if i > 1 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"id": ` + strconv.Itoa(i) + `, "delivery_address": "unit", "city": "Surrey"}`)
	}
	sb.WriteString(`]}`)

	rec := do(t, h, http.MethodPost, "/routes/optimize-multiple", sb.String())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.MultiRouteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, 2, res.TotalRoutes)
	require.Len(t, res.Routes, 2)
	assert.Equal(t, "Surrey (Part 1)", res.Routes[0].Zone)
	assert.Equal(t, "Surrey (Part 2)", res.Routes[1].Zone)
	assert.Equal(t, 20, res.Routes[0].TotalDeliveries+res.Routes[1].TotalDeliveries)

	rec = do(t, h, http.MethodPost, "/routes/optimize-multiple", `{"deliveries": [], "max_deliveries_per_route": -1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "0 (default) or between 1 and 100")

	rec = do(t, h, http.MethodPost, "/routes/optimize-multiple", `{"deliveries": [], "max_deliveries_per_route": 101}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/routes/optimize-multiple", `{"deliveries": [], "max_deliveries_per_route": 0}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetRoute_NotFound(t *testing.T) {
	h := newTestRouter(newMemoryRouteStore(), nil)

	rec := do(t, h, http.MethodGet, "/routes/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRoute_NotRegisteredWithoutStore(t *testing.T) {
	h := newTestRouter(nil, nil)

	rec := do(t, h, http.MethodGet, "/routes/anything", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClassifyZone(t *testing.T) {
	h := newTestRouter(nil, nil)

	rec := do(t, h, http.MethodGet, "/zones/classify?address=123+Surrey+Rd&city=Vancouver", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"zone":"Surrey"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/zones/classify?city=Mission", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"zone":"Other"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/zones/classify", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeliveries_OptimizeWritesBack(t *testing.T) {
	repo := &memoryDeliveryRepo{stops: []domain.DeliveryStop{
		{ID: 11, Address: "1 Oak", City: "Burnaby", CustomerName: "C"},
		{ID: 12, Address: "2 Oak", City: "Langley", CustomerName: "D"},
	}}
	h := newTestRouter(nil, repo)

	rec := do(t, h, http.MethodPost, "/deliveries/optimize", `{"delivery_date": "2024-03-04"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.OptimizeDeliveriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "2024-03-04", res.DeliveryDate)
	assert.Equal(t, 1, res.TotalRoutes)
	assert.Equal(t, 2, res.TotalDeliveries)

	require.Len(t, repo.assignments, 2)
	assert.Equal(t, "2024-03-04", repo.day.Format("2006-01-02"))
	for _, a := range repo.assignments {
		assert.Equal(t, "2024-03-04", a.EstimatedTime.Format("2006-01-02"))
	}

	rec = do(t, h, http.MethodPost, "/deliveries/optimize", `{"delivery_date": "04/03/2024"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeliveries_Zones(t *testing.T) {
	repo := &memoryDeliveryRepo{stops: []domain.DeliveryStop{
		{ID: 1, City: "Coquitlam"},
		{ID: 2, City: "Vancouver"},
		{ID: 3, City: "Coquitlam"},
	}}
	h := newTestRouter(nil, repo)

	rec := do(t, h, http.MethodGet, "/deliveries/zones?delivery_date=2024-03-04", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"delivery_date": "2024-03-04",
		"zones": [
			{"zone": "Vancouver", "delivery_count": 1},
			{"zone": "Coquitlam", "delivery_count": 2}
		]
	}`, rec.Body.String())
}

func TestDeliveries_NotRegisteredWithoutRepository(t *testing.T) {
	h := newTestRouter(nil, nil)

	rec := do(t, h, http.MethodGet, "/deliveries/zones", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

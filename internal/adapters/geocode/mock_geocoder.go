package geocode

import (
	"context"
	"meal-route-service/internal/domain"
	"sync"
)

// MockGeocoder resolves addresses from a fixed table and records every
// lookup. Addresses missing from the table fail like an unknown address.
type MockGeocoder struct {
	mu     sync.Mutex
	coords map[string]domain.Coordinates
	calls  []string
}

func NewMockGeocoder(entries map[string]domain.Coordinates) *MockGeocoder {
	m := make(map[string]domain.Coordinates, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return &MockGeocoder{coords: m}
}

func (g *MockGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, address)

	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, err
	}

	c, ok := g.coords[address]
	if !ok {
		return domain.Coordinates{}, &ErrGeocodingFailed{Address: address, Reason: "no results found"}
	}
	return c, nil
}

// Calls returns the addresses looked up so far.
func (g *MockGeocoder) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]string, len(g.calls))
	copy(out, g.calls)
	return out
}

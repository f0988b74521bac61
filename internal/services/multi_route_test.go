package services

import (
	"context"
	"meal-route-service/internal/domain"
	"testing"
)

func makeStops(firstID, count int, city string) []domain.DeliveryStop {
	stops := make([]domain.DeliveryStop, count)
	for i := range stops {
		stops[i] = domain.DeliveryStop{ID: firstID + i, Address: "unit " + city, City: city}
	}
	return stops
}

func assertEachIDOnce(t *testing.T, stops []domain.DeliveryStop, results []*domain.OptimizationResult) {
	t.Helper()

	counts := map[int]int{}
	for _, r := range results {
		for _, item := range r.Route {
			counts[item.DeliveryID]++
		}
	}
	if len(counts) != len(stops) {
		t.Fatalf("expected %d distinct ids, got %d", len(stops), len(counts))
	}
	for _, s := range stops {
		if counts[s.ID] != 1 {
			t.Fatalf("delivery %d appears %d times", s.ID, counts[s.ID])
		}
	}
}

func TestOptimizeMultiple_WithinLimitSingleUnlabelledRoute(t *testing.T) {
	o := newTestOptimizer(nil)
	stops := makeStops(1, 10, "Surrey")

	results := o.OptimizeMultiple(context.Background(), stops, domain.DefaultStartLocation, 15)
	if len(results) != 1 {
		t.Fatalf("expected 1 route, got %d", len(results))
	}
	if results[0].Zone != "" {
		t.Fatalf("expected no zone label, got %q", results[0].Zone)
	}
	assertEachIDOnce(t, stops, results)
}

func TestOptimizeMultiple_SplitsLargeZone(t *testing.T) {
	o := newTestOptimizer(nil)
	stops := makeStops(1, 20, "Surrey")

	results := o.OptimizeMultiple(context.Background(), stops, domain.DefaultStartLocation, 15)
	if len(results) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(results))
	}
	if results[0].Zone != "Surrey (Part 1)" || results[1].Zone != "Surrey (Part 2)" {
		t.Fatalf("unexpected labels %q, %q", results[0].Zone, results[1].Zone)
	}
	if len(results[0].Route) != 15 || len(results[1].Route) != 5 {
		t.Fatalf("expected 15+5 stops, got %d+%d", len(results[0].Route), len(results[1].Route))
	}
	if results[0].TotalDeliveries+results[1].TotalDeliveries != 20 {
		t.Fatalf("expected 20 deliveries total")
	}
	assertEachIDOnce(t, stops, results)
}

func TestOptimizeMultiple_ZonesInFirstAppearanceOrder(t *testing.T) {
	o := newTestOptimizer(nil)

	stops := append(makeStops(1, 6, "Vancouver"), makeStops(100, 7, "Surrey")...)
	stops = append(stops, makeStops(200, 5, "Vancouver")...)

	results := o.OptimizeMultiple(context.Background(), stops, domain.DefaultStartLocation, 15)
	if len(results) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(results))
	}
	if results[0].Zone != "Vancouver" || results[1].Zone != "Surrey" {
		t.Fatalf("unexpected zone order %q, %q", results[0].Zone, results[1].Zone)
	}
	if len(results[0].Route) != 11 || len(results[1].Route) != 7 {
		t.Fatalf("expected 11+7 stops, got %d+%d", len(results[0].Route), len(results[1].Route))
	}
	for _, r := range results {
		if r.StartLocation != domain.DefaultStartLocation {
			t.Fatalf("every route must start from the shared start location")
		}
	}
	assertEachIDOnce(t, stops, results)
}

func TestOptimizeMultiple_DefaultLimit(t *testing.T) {
	o := newTestOptimizer(nil)
	stops := makeStops(1, 16, "Burnaby")

	results := o.OptimizeMultiple(context.Background(), stops, domain.DefaultStartLocation, 0)
	if len(results) != 2 {
		t.Fatalf("expected default limit of 15 to split into 2 routes, got %d", len(results))
	}
	assertEachIDOnce(t, stops, results)
}

func TestGroupByZone(t *testing.T) {
	stops := []domain.DeliveryStop{
		{ID: 1, City: "Richmond"},
		{ID: 2, Address: "5 Surrey Way"},
		{ID: 3, City: "Nowhere"},
		{ID: 4, City: "richmond"},
	}

	groups := GroupByZone(stops)
	want := []struct {
		zone string
		ids  []int
	}{
		{"Richmond", []int{1, 4}},
		{"Surrey", []int{2}},
		{domain.ZoneOther, []int{3}},
	}

	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(groups))
	}
	for i, w := range want {
		if groups[i].Zone != w.zone {
			t.Fatalf("group %d: expected %q, got %q", i, w.zone, groups[i].Zone)
		}
		if len(groups[i].Stops) != len(w.ids) {
			t.Fatalf("group %d: expected %d stops, got %d", i, len(w.ids), len(groups[i].Stops))
		}
		for k, id := range w.ids {
			if groups[i].Stops[k].ID != id {
				t.Fatalf("group %d: expected id %d at %d, got %d", i, id, k, groups[i].Stops[k].ID)
			}
		}
	}
}

package ports

import (
	"context"
	"errors"
	"meal-route-service/internal/domain"
)

var ErrRouteNotFound = errors.New("route not found")

// Port: short-lived storage for optimization results so clients can fetch
// a computed route again without re-running the optimizer.
// Implementations must expire entries; nothing here is durable.
type RouteStore interface {
	Save(ctx context.Context, result *domain.OptimizationResult) (string, error)
	Get(ctx context.Context, id string) (*domain.OptimizationResult, error)
}

package ports

import (
	"context"
	"meal-route-service/internal/domain"
)

// Contract for resolving a free-text address to coordinates.
// Any failure (no match, timeout, upstream error) is returned as an error;
// callers decide on a fallback.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

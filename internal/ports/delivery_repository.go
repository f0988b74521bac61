package ports

import (
	"context"
	"meal-route-service/internal/domain"
	"time"
)

// Sequence and ETA assigned to one delivery by the optimizer.
type DeliveryAssignment struct {
	DeliveryID    int
	Sequence      int
	EstimatedTime time.Time
	Zone          string
}

// Port: a boundary for the delivery records owned by the order system.
type DeliveryRepository interface {
	// Retrieve the deliveries still to be made on the given day.
	ListPendingDeliveries(ctx context.Context, day time.Time) ([]domain.DeliveryStop, error)
	// Persist the optimized sequence and ETA back onto delivery records.
	ApplyAssignments(ctx context.Context, day time.Time, assignments []DeliveryAssignment) error
}

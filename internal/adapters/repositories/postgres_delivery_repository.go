package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"meal-route-service/internal/domain"
	"meal-route-service/internal/platform/obs"
	"meal-route-service/internal/ports"
	"time"
)

const dateLayout = "2006-01-02"

// Statuses of deliveries that still need a route.
var pendingStatuses = []string{"scheduled", "in_transit"}

// Postgres-backed implementation of the DeliveryRepository port, reading
// the order system's deliveries, orders and customers tables.
type PostgresDeliveryRepository struct{ DB *sql.DB }

func NewPostgresDeliveryRepository(db *sql.DB) *PostgresDeliveryRepository {
	return &PostgresDeliveryRepository{DB: db}
}

// Return the day's deliveries that are scheduled or in transit, ordered by id.
func (p *PostgresDeliveryRepository) ListPendingDeliveries(
	ctx context.Context,
	day time.Time,
) (_ []domain.DeliveryStop, err error) {
	defer obs.Time(ctx, "deliveries.repo.ListPending")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres delivery repository: DB is nil")
	}

	query := `
	SELECT
		d.id,
		d.delivery_address,
		COALESCE(d.delivery_instructions, ''),
		COALESCE(c.city, ''),
		TRIM(COALESCE(c.first_name, '') || ' ' || COALESCE(c.last_name, '')),
		COALESCE(c.phone_number, '')
	FROM deliveries d
	JOIN orders o ON d.order_id = o.id
	JOIN customers c ON o.customer_id = c.id
	WHERE d.delivery_date = $1::date
	  AND d.delivery_status = ANY($2::text[])
	ORDER BY d.id;
	`

	rows, err := p.DB.QueryContext(ctx, query, day.Format(dateLayout), pendingStatuses)
	if err != nil {
		return nil, fmt.Errorf("list pending deliveries: query deliveries table: %w", err)
	}
	defer rows.Close()

	stops := make([]domain.DeliveryStop, 0, 64)
	for rows.Next() {
		var s domain.DeliveryStop
		if err := rows.Scan(&s.ID, &s.Address, &s.Instructions, &s.City, &s.CustomerName, &s.CustomerPhone); err != nil {
			return nil, fmt.Errorf("list pending deliveries: scan row: %w", err)
		}
		stops = append(stops, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending deliveries: row iteration: %w", err)
	}

	return stops, nil
}

// Write route sequence, ETA and zone back onto the day's delivery rows in a
// single transaction. Any unknown delivery aborts the whole write.
func (p *PostgresDeliveryRepository) ApplyAssignments(
	ctx context.Context,
	day time.Time,
	assignments []ports.DeliveryAssignment,
) (err error) {
	defer obs.Time(ctx, "deliveries.repo.ApplyAssignments")(&err)

	if p.DB == nil {
		return errors.New("postgres delivery repository: DB is nil")
	}

	if len(assignments) == 0 {
		return nil
	}

	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply assignments: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	UPDATE deliveries
	SET route_sequence = $1,
		estimated_delivery_time = $2,
		delivery_zone = $3
	WHERE id = $4
	  AND delivery_date = $5::date;
	`)
	if err != nil {
		return fmt.Errorf("apply assignments: db prepare: %w", err)
	}
	defer stmt.Close()

	date := day.Format(dateLayout)
	for _, a := range assignments {
		res, err := stmt.ExecContext(ctx, a.Sequence, a.EstimatedTime, a.Zone, a.DeliveryID, date)
		if err != nil {
			return fmt.Errorf("apply assignments: update delivery_id=%d: %w", a.DeliveryID, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("apply assignments: rows affected delivery_id=%d: %w", a.DeliveryID, err)
		}
		if n == 0 {
			return fmt.Errorf("apply assignments: delivery_id=%d not found on %s", a.DeliveryID, date)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply assignments: commit: %w", err)
	}

	return nil
}

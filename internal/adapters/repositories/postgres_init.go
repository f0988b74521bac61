package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Create the subset of the order system's schema the route service reads
// and writes. Existing tables are left untouched.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCustomersQuery := `
	CREATE TABLE IF NOT EXISTS customers (
		id SERIAL PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		phone_number TEXT,
		city TEXT,
		province TEXT
	);
	`

	createOrdersQuery := `
	CREATE TABLE IF NOT EXISTS orders (
		id SERIAL PRIMARY KEY,
		customer_id INTEGER NOT NULL REFERENCES customers(id)
	);
	`

	createDeliveriesQuery := `
	CREATE TABLE IF NOT EXISTS deliveries (
		id SERIAL PRIMARY KEY,
		order_id INTEGER NOT NULL REFERENCES orders(id),
		delivery_date DATE NOT NULL,
		delivery_address TEXT NOT NULL,
		delivery_instructions TEXT,
		delivery_status TEXT NOT NULL DEFAULT 'scheduled',
		route_sequence INTEGER,
		estimated_delivery_time TIMESTAMPTZ,
		delivery_zone TEXT
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_deliveries_date_status
	ON deliveries(delivery_date, delivery_status);
	`

	statements := []string{
		createCustomersQuery,
		createOrdersQuery,
		createDeliveriesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// One demo delivery together with the customer it belongs to.
type DeliverySeed struct {
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	PhoneNumber          string `json:"phone_number"`
	City                 string `json:"city"`
	Province             string `json:"province"`
	DeliveryAddress      string `json:"delivery_address"`
	DeliveryInstructions string `json:"delivery_instructions"`
	// YYYY-MM-DD; empty means today.
	DeliveryDate   string `json:"delivery_date"`
	DeliveryStatus string `json:"delivery_status"`
}

// Read and validate seed rows from a JSON file. Defaults are applied for
// missing dates ("today") and statuses ("scheduled").
func LoadDeliverySeeds(jsonPath string, today time.Time) ([]DeliverySeed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed deliveries: read %q: %w", jsonPath, err)
	}

	var data []DeliverySeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed deliveries: parse json: %w", err)
	}

	rows := make([]DeliverySeed, 0, len(data))
	for i, item := range data {
		item.DeliveryAddress = strings.TrimSpace(item.DeliveryAddress)
		if item.DeliveryAddress == "" {
			return nil, fmt.Errorf("seed deliveries: item at index %d: delivery_address cannot be empty", i+1)
		}

		if strings.TrimSpace(item.FirstName) == "" && strings.TrimSpace(item.LastName) == "" {
			return nil, fmt.Errorf("seed deliveries: item at index %d: customer name cannot be empty", i+1)
		}

		item.DeliveryDate = strings.TrimSpace(item.DeliveryDate)
		if item.DeliveryDate == "" {
			item.DeliveryDate = today.Format(dateLayout)
		}
		if _, err := time.Parse(dateLayout, item.DeliveryDate); err != nil {
			return nil, fmt.Errorf("seed deliveries: item at index %d: invalid delivery_date %q", i+1, item.DeliveryDate)
		}

		if item.DeliveryStatus == "" {
			item.DeliveryStatus = "scheduled"
		}

		rows = append(rows, item)
	}

	return rows, nil
}

// Populate the database with demo customers, orders and deliveries.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	if db == nil {
		return errors.New("seed deliveries: DB is nil")
	}

	rows, err := LoadDeliverySeeds(jsonPath, time.Now())
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed deliveries: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, r := range rows {
		var customerID int
		err := tx.QueryRowContext(ctx, `
		INSERT INTO customers (first_name, last_name, phone_number, city, province)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
		`, r.FirstName, r.LastName, r.PhoneNumber, r.City, r.Province).Scan(&customerID)
		if err != nil {
			return fmt.Errorf("seed deliveries: insert customer #%d: %w", i+1, err)
		}

		var orderID int
		err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_id)
		VALUES ($1)
		RETURNING id;
		`, customerID).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("seed deliveries: insert order #%d: %w", i+1, err)
		}

		_, err = tx.ExecContext(ctx, `
		INSERT INTO deliveries (order_id, delivery_date, delivery_address, delivery_instructions, delivery_status)
		VALUES ($1, $2::date, $3, $4, $5);
		`, orderID, r.DeliveryDate, r.DeliveryAddress, r.DeliveryInstructions, r.DeliveryStatus)
		if err != nil {
			return fmt.Errorf("seed deliveries: insert delivery #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed deliveries: commit tx: %w", err)
	}

	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

// InventoryLines returns the farm's unsold stock lines.
func (s *Store) InventoryLines(ctx context.Context, farmID string) ([]distress.InventoryLine, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, quantity, oldest_stock_date, average_weight_kg
		 FROM inventory_lines
		 WHERE farm_id = $1 AND quantity > 0`,
		farmID,
	)
	if err != nil {
		return nil, fmt.Errorf("inventory lines for farm %s: %w", farmID, err)
	}
	defer rows.Close()

	var lines []distress.InventoryLine
	for rows.Next() {
		var line distress.InventoryLine
		var weight sql.NullFloat64
		if err := rows.Scan(&line.Category, &line.Quantity, &line.OldestStockDate, &weight); err != nil {
			return nil, fmt.Errorf("scan inventory line: %w", err)
		}
		if weight.Valid {
			w := weight.Float64
			line.AverageWeightKg = &w
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// SalesSince returns sales across all three sources on or after since.
func (s *Store) SalesSince(ctx context.Context, farmID string, since time.Time) ([]distress.SaleRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, sale_date, amount
		 FROM sales
		 WHERE farm_id = $1 AND sale_date >= $2
		 ORDER BY sale_date DESC`,
		farmID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("sales for farm %s: %w", farmID, err)
	}
	defer rows.Close()

	var sales []distress.SaleRecord
	for rows.Next() {
		var rec distress.SaleRecord
		if err := rows.Scan(&rec.Source, &rec.Date, &rec.Amount); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, rec)
	}
	return sales, rows.Err()
}

// LastSaleAt returns the most recent sale date, or nil if the farm has
// never sold. max() over zero rows yields NULL, not ErrNoRows.
func (s *Store) LastSaleAt(ctx context.Context, farmID string) (*time.Time, error) {
	var last sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT max(sale_date) FROM sales WHERE farm_id = $1`, farmID,
	).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("last sale for farm %s: %w", farmID, err)
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

// ProductionSince returns daily production records on or after since.
func (s *Store) ProductionSince(ctx context.Context, farmID string, since time.Time) ([]distress.ProductionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record_date, eggs_collected, deaths
		 FROM production_records
		 WHERE farm_id = $1 AND record_date >= $2
		 ORDER BY record_date`,
		farmID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("production records for farm %s: %w", farmID, err)
	}
	defer rows.Close()

	var records []distress.ProductionRecord
	for rows.Next() {
		var rec distress.ProductionRecord
		if err := rows.Scan(&rec.Date, &rec.EggsCollected, &rec.Deaths); err != nil {
			return nil, fmt.Errorf("scan production record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Subscription returns the farm's marketplace subscription, or nil when
// none exists.
func (s *Store) Subscription(ctx context.Context, farmID string) (*distress.Subscription, error) {
	var sub distress.Subscription
	err := s.db.QueryRowContext(ctx,
		`SELECT tier, active FROM subscriptions WHERE farm_id = $1`, farmID,
	).Scan(&sub.Tier, &sub.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("subscription for farm %s: %w", farmID, err)
	}
	return &sub, nil
}

// ActiveListingCount returns the number of active product listings.
func (s *Store) ActiveListingCount(ctx context.Context, farmID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM product_listings WHERE farm_id = $1 AND active`, farmID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("listing count for farm %s: %w", farmID, err)
	}
	return count, nil
}

// ActiveCustomerCount returns the number of active customers.
func (s *Store) ActiveCustomerCount(ctx context.Context, farmID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM customers WHERE farm_id = $1 AND active`, farmID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("customer count for farm %s: %w", farmID, err)
	}
	return count, nil
}

// OutstandingInvoices returns the farm's pending and approved procurement
// invoices.
func (s *Store) OutstandingInvoices(ctx context.Context, farmID string) ([]distress.Invoice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT amount, status, created_at
		 FROM procurement_invoices
		 WHERE farm_id = $1 AND status IN ('pending', 'approved')
		 ORDER BY created_at`,
		farmID,
	)
	if err != nil {
		return nil, fmt.Errorf("outstanding invoices for farm %s: %w", farmID, err)
	}
	defer rows.Close()

	var invoices []distress.Invoice
	for rows.Next() {
		var inv distress.Invoice
		if err := rows.Scan(&inv.Amount, &inv.Status, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// FarmAssignments returns all order assignments for the farm.
func (s *Store) FarmAssignments(ctx context.Context, farmID string) ([]distress.OrderAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT order_id, farm_id, status, assigned_at, value
		 FROM order_assignments
		 WHERE farm_id = $1
		 ORDER BY assigned_at DESC`,
		farmID,
	)
	if err != nil {
		return nil, fmt.Errorf("assignments for farm %s: %w", farmID, err)
	}
	defer rows.Close()

	var assignments []distress.OrderAssignment
	for rows.Next() {
		var a distress.OrderAssignment
		if err := rows.Scan(&a.OrderID, &a.FarmID, &a.Status, &a.AssignedAt, &a.Value); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// Coordinates returns the farm's primary location, or nil when none is
// recorded.
func (s *Store) Coordinates(ctx context.Context, farmID string) (*distress.Coordinates, error) {
	var c distress.Coordinates
	err := s.db.QueryRowContext(ctx,
		`SELECT latitude, longitude
		 FROM farm_locations
		 WHERE farm_id = $1 AND is_primary
		 LIMIT 1`,
		farmID,
	).Scan(&c.Latitude, &c.Longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("coordinates for farm %s: %w", farmID, err)
	}
	return &c, nil
}

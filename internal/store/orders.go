package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

// OrderByID retrieves a procurement order. Returns distress.ErrOrderNotFound
// when the id does not resolve.
func (s *Store) OrderByID(ctx context.Context, id string) (*distress.ProcurementOrder, error) {
	var o distress.ProcurementOrder
	var preferredRegion sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, production_type, quantity_needed, quantity_assigned, preferred_region
		 FROM procurement_orders WHERE id = $1`,
		id,
	).Scan(&o.ID, &o.ProductionType, &o.QuantityNeeded, &o.QuantityAssigned, &preferredRegion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, distress.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	o.PreferredRegion = preferredRegion.String
	return &o, nil
}

// AssignedFarmIDs returns the set of farms holding any assignment against
// the order, regardless of status.
func (s *Store) AssignedFarmIDs(ctx context.Context, orderID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT farm_id FROM order_assignments WHERE order_id = $1`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("assigned farms for order %s: %w", orderID, err)
	}
	defer rows.Close()

	assigned := make(map[string]bool)
	for rows.Next() {
		var farmID string
		if err := rows.Scan(&farmID); err != nil {
			return nil, fmt.Errorf("scan assigned farm: %w", err)
		}
		assigned[farmID] = true
	}
	return assigned, rows.Err()
}

// AssignmentsSince returns assignments created on or after since, across
// all farms.
func (s *Store) AssignmentsSince(ctx context.Context, since time.Time) ([]distress.OrderAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT order_id, farm_id, status, assigned_at, value
		 FROM order_assignments
		 WHERE assigned_at >= $1
		 ORDER BY assigned_at`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("assignments since %s: %w", since.Format("2006-01-02"), err)
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

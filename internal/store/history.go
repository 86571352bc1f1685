package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

// Append inserts one record into the append-only distress history log.
// A missing entry ID is assigned here.
func (s *Store) Append(ctx context.Context, entry distress.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	var interventionType, interventionRef sql.NullString
	var interventionValue sql.NullFloat64
	if entry.InterventionType != "" {
		interventionType = sql.NullString{String: entry.InterventionType, Valid: true}
		interventionValue = sql.NullFloat64{Float64: entry.InterventionValue, Valid: true}
	}
	if entry.InterventionRef != "" {
		interventionRef = sql.NullString{String: entry.InterventionRef, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO distress_history
			(id, farm_id, calculated_at, score, level, calculated_by, snapshot,
			 intervention_type, intervention_value, intervention_ref)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID, entry.FarmID, entry.CalculatedAt, entry.Score, string(entry.Level),
		entry.CalculatedBy, entry.Snapshot,
		interventionType, interventionValue, interventionRef,
	)
	if err != nil {
		return fmt.Errorf("append history for farm %s: %w", entry.FarmID, err)
	}
	return nil
}

// Recent returns history entries for a farm from the trailing number of
// days, newest first.
func (s *Store) Recent(ctx context.Context, farmID string, days int) ([]distress.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, farm_id, calculated_at, score, level, calculated_by, snapshot,
		        intervention_type, intervention_value, intervention_ref
		 FROM distress_history
		 WHERE farm_id = $1 AND calculated_at >= now() - make_interval(days => $2)
		 ORDER BY calculated_at DESC`,
		farmID, days,
	)
	if err != nil {
		return nil, fmt.Errorf("history for farm %s: %w", farmID, err)
	}
	defer rows.Close()

	var entries []distress.HistoryEntry
	for rows.Next() {
		var e distress.HistoryEntry
		var interventionType, interventionRef sql.NullString
		var interventionValue sql.NullFloat64
		err := rows.Scan(&e.ID, &e.FarmID, &e.CalculatedAt, &e.Score, &e.Level, &e.CalculatedBy,
			&e.Snapshot, &interventionType, &interventionValue, &interventionRef)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.InterventionType = interventionType.String
		e.InterventionValue = interventionValue.Float64
		e.InterventionRef = interventionRef.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

const farmColumns = `id, name, region, district, constituency, production_type,
	current_bird_count, total_capacity, phone, owner_name, active, approved,
	distress_score, distress_level, distress_calculated_at,
	days_since_last_sale, unsold_inventory_count, inventory_stagnation_days`

func scanFarm(row interface{ Scan(...any) error }) (*distress.Farm, error) {
	var f distress.Farm
	var level sql.NullString
	var calculatedAt sql.NullTime
	var daysSince sql.NullInt64
	err := row.Scan(
		&f.ID, &f.Name, &f.Region, &f.District, &f.Constituency, &f.ProductionType,
		&f.CurrentBirdCount, &f.TotalCapacity, &f.Phone, &f.OwnerName, &f.Active, &f.Approved,
		&f.DistressScore, &level, &calculatedAt,
		&daysSince, &f.UnsoldInventoryCount, &f.InventoryStagnationDays,
	)
	if err != nil {
		return nil, err
	}
	if level.Valid {
		f.DistressLevel = distress.Level(level.String)
	}
	if calculatedAt.Valid {
		t := calculatedAt.Time
		f.DistressCalculatedAt = &t
	}
	if daysSince.Valid {
		d := int(daysSince.Int64)
		f.DaysSinceLastSale = &d
	}
	return &f, nil
}

// FarmByID retrieves a single farm. Returns distress.ErrFarmNotFound when
// the id does not resolve.
func (s *Store) FarmByID(ctx context.Context, id string) (*distress.Farm, error) {
	farm, err := scanFarm(s.db.QueryRowContext(ctx,
		`SELECT `+farmColumns+` FROM farms WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, distress.ErrFarmNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get farm %s: %w", id, err)
	}
	return farm, nil
}

// ListFarms returns active+approved farms matching the filter. Region is
// not a filter column here: callers filter region in process against the
// derived value.
func (s *Store) ListFarms(ctx context.Context, filter distress.FarmFilter) ([]distress.Farm, error) {
	query := `SELECT ` + farmColumns + ` FROM farms WHERE active AND approved`
	var args []any

	if len(filter.ProductionTypes) > 0 {
		placeholders := make([]string, len(filter.ProductionTypes))
		for i, pt := range filter.ProductionTypes {
			args = append(args, string(pt))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		query += ` AND production_type IN (` + strings.Join(placeholders, ", ") + `)`
	}
	if filter.District != "" {
		args = append(args, filter.District)
		query += fmt.Sprintf(` AND lower(district) = lower($%d)`, len(args))
	}
	if filter.MinCapacity > 0 {
		args = append(args, filter.MinCapacity)
		query += fmt.Sprintf(` AND total_capacity >= $%d`, len(args))
	}
	if filter.RequireStock {
		query += ` AND current_bird_count > 0`
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list farms: %w", err)
	}
	defer rows.Close()

	var farms []distress.Farm
	for rows.Next() {
		farm, err := scanFarm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan farm: %w", err)
		}
		farms = append(farms, *farm)
	}
	return farms, rows.Err()
}

// ListFarmsBatch pages through all active+approved farms in a stable order
// for the daily recalculation.
func (s *Store) ListFarmsBatch(ctx context.Context, offset, limit int) ([]distress.Farm, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+farmColumns+` FROM farms
		 WHERE active AND approved
		 ORDER BY id
		 OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list farms batch: %w", err)
	}
	defer rows.Close()

	var farms []distress.Farm
	for rows.Next() {
		farm, err := scanFarm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan farm: %w", err)
		}
		farms = append(farms, *farm)
	}
	return farms, rows.Err()
}

// UpdateDistressCache writes the cached score fields and quick metrics
// back onto the farm record.
func (s *Store) UpdateDistressCache(ctx context.Context, farmID string, cache distress.DistressCache) error {
	var daysSince sql.NullInt64
	if cache.DaysSinceLastSale != nil {
		daysSince = sql.NullInt64{Int64: int64(*cache.DaysSinceLastSale), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE farms SET
			distress_score = $1,
			distress_level = $2,
			distress_calculated_at = $3,
			days_since_last_sale = $4,
			unsold_inventory_count = $5,
			inventory_stagnation_days = $6
		 WHERE id = $7`,
		cache.Score, string(cache.Level), cache.CalculatedAt,
		daysSince, cache.UnsoldInventoryCount, cache.InventoryStagnationDays,
		farmID,
	)
	if err != nil {
		return fmt.Errorf("update distress cache for farm %s: %w", farmID, err)
	}
	return nil
}

package distress

import (
	"context"
	"time"
)

// Assessment is the complete distress picture for one farm, constructed
// fresh on every call.
type Assessment struct {
	FarmID         string         `json:"farm_id"`
	FarmName       string         `json:"farm_name"`
	Region         string         `json:"region"`
	District       string         `json:"district"`
	ProductionType ProductionType `json:"production_type"`

	Score     float64                    `json:"distress_score"`
	Level     Level                      `json:"distress_level"`
	Factors   []FactorResult             `json:"distress_factors"`
	Breakdown map[Factor]FactorBreakdown `json:"score_breakdown"`

	Capacity    CapacitySnapshot    `json:"capacity"`
	Sales       SalesSnapshot       `json:"sales_history"`
	Procurement ProcurementSnapshot `json:"procurement_history"`
	Contact     ContactSnapshot     `json:"contact"`

	CalculatedAt time.Time `json:"calculated_at"`
}

// CapacitySnapshot reports what a farm can supply right now.
type CapacitySnapshot struct {
	AvailableBirds  int      `json:"available_birds"`
	AverageWeightKg *float64 `json:"average_weight_kg,omitempty"`
	// FromInventory is false when no live inventory rows existed and the
	// count fell back to the farm's raw bird count field.
	FromInventory bool `json:"from_inventory"`
}

// SalesSnapshot summarizes recent sales across all three sale sources.
type SalesSnapshot struct {
	LastSaleDate      *time.Time `json:"last_sale_date,omitempty"`
	DaysSinceLastSale *int       `json:"days_since_last_sale,omitempty"`
	Total30d          float64    `json:"total_value_30d"`
	Total90d          float64    `json:"total_value_90d"`
}

// ProcurementSnapshot summarizes prior fulfilled government assignments.
type ProcurementSnapshot struct {
	CompletedCount int        `json:"completed_count"`
	TotalValue     float64    `json:"total_value"`
	LastAssignedAt *time.Time `json:"last_assigned_at,omitempty"`
}

// ContactSnapshot carries what an officer needs to reach the farm.
type ContactSnapshot struct {
	Phone        string       `json:"phone"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	Constituency string       `json:"constituency"`
}

// buildCapacitySnapshot derives available-for-sale quantity from live
// inventory lines, falling back to the farm's raw bird count when no rows
// exist or the fetch fails.
func buildCapacitySnapshot(ctx context.Context, farm *Farm, src DataSource) CapacitySnapshot {
	fallback := CapacitySnapshot{AvailableBirds: farm.CurrentBirdCount}

	lines, err := src.InventoryLines(ctx, farm.ID)
	if err != nil {
		return fallback
	}

	var birds int
	var weightSum float64
	var weighted int
	var sawBirds bool
	for _, line := range lines {
		if !line.Category.IsBirds() {
			continue
		}
		sawBirds = true
		birds += line.Quantity
		if line.AverageWeightKg != nil {
			weightSum += *line.AverageWeightKg * float64(line.Quantity)
			weighted += line.Quantity
		}
	}
	if !sawBirds {
		return fallback
	}

	snap := CapacitySnapshot{AvailableBirds: birds, FromInventory: true}
	if weighted > 0 {
		avg := weightSum / float64(weighted)
		snap.AverageWeightKg = &avg
	}
	return snap
}

// buildSalesSnapshot summarizes recent sale value; any fetch failure
// yields zero totals and a nil last-sale date.
func buildSalesSnapshot(ctx context.Context, farm *Farm, src DataSource, now time.Time) SalesSnapshot {
	var snap SalesSnapshot

	lastSale, err := src.LastSaleAt(ctx, farm.ID)
	if err == nil && lastSale != nil {
		d := *lastSale
		snap.LastSaleDate = &d
		days := ageInDays(now, d)
		snap.DaysSinceLastSale = &days
	}

	sales, err := src.SalesSince(ctx, farm.ID, now.AddDate(0, 0, -90))
	if err != nil {
		return snap
	}
	for _, sale := range sales {
		days := ageInDays(now, sale.Date)
		if days <= 90 {
			snap.Total90d += sale.Amount
		}
		if days <= 30 {
			snap.Total30d += sale.Amount
		}
	}
	return snap
}

// buildProcurementSnapshot counts prior fulfilled assignments; failures
// yield zero counts.
func buildProcurementSnapshot(ctx context.Context, farm *Farm, src DataSource) ProcurementSnapshot {
	var snap ProcurementSnapshot

	assignments, err := src.FarmAssignments(ctx, farm.ID)
	if err != nil {
		return snap
	}
	for _, a := range assignments {
		if !a.Status.Fulfilled() {
			continue
		}
		snap.CompletedCount++
		snap.TotalValue += a.Value
		if snap.LastAssignedAt == nil || a.AssignedAt.After(*snap.LastAssignedAt) {
			t := a.AssignedAt
			snap.LastAssignedAt = &t
		}
	}
	return snap
}

// buildContactSnapshot looks up the farm's primary coordinates; a failed
// lookup leaves coordinates nil.
func buildContactSnapshot(ctx context.Context, farm *Farm, src DataSource) ContactSnapshot {
	snap := ContactSnapshot{Phone: farm.Phone, Constituency: farm.Constituency}
	if coords, err := src.Coordinates(ctx, farm.ID); err == nil {
		snap.Coordinates = coords
	}
	return snap
}

package distress

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// DefaultRecommendLimit caps allocation recommendations per order.
const DefaultRecommendLimit = 10

// Recommendation proposes one farm for part of a procurement order.
type Recommendation struct {
	FarmID            string  `json:"farm_id"`
	FarmName          string  `json:"farm_name"`
	Region            string  `json:"region"`
	DistressScore     float64 `json:"distress_score"`
	DistressLevel     Level   `json:"distress_level"`
	AvailableQuantity int     `json:"available_quantity"`
	// RecommendedQuantity is min(available, remaining need). The remaining
	// need is fixed before iterating farms: this is a preview, not a
	// reservation.
	RecommendedQuantity int `json:"recommended_quantity"`
	// RegionMatch flags whether the farm sits in the order's preferred
	// region. A soft signal only; mismatches are never excluded.
	RegionMatch bool `json:"region_match"`
}

// AllocationSummary aggregates over the shown recommendations.
type AllocationSummary struct {
	TotalFarms     int  `json:"total_farms"`
	CanFulfill     bool `json:"can_fulfill"`
	CriticalFarms  int  `json:"critical_farms"`
	HighFarms      int  `json:"high_farms"`
	TotalAvailable int  `json:"total_available"`
}

// AllocationResult is the recommendation preview for one order.
type AllocationResult struct {
	OrderID         string            `json:"order_id"`
	RemainingNeed   int               `json:"remaining_need"`
	Recommendations []Recommendation  `json:"recommendations"`
	Summary         AllocationSummary `json:"summary"`
}

// RecommendAllocations ranks eligible unassigned farms by distress and
// proposes a proportional quantity split for the order's remaining need.
// Returns ErrOrderNotFound when the order id does not resolve.
func (s *Service) RecommendAllocations(ctx context.Context, orderID string, limit int) (*AllocationResult, error) {
	if limit <= 0 {
		limit = DefaultRecommendLimit
	}

	order, err := s.orders.OrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("recommend allocations for order %s: %w", orderID, err)
	}

	assigned, err := s.orders.AssignedFarmIDs(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("recommend allocations for order %s: %w", orderID, err)
	}

	remaining := order.QuantityNeeded - order.QuantityAssigned
	if remaining < 0 {
		remaining = 0
	}

	farms, err := s.farms.ListFarms(ctx, FarmFilter{
		ProductionTypes: matchProductionTypes(string(order.ProductionType)),
		RequireStock:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("recommend allocations for order %s: %w", orderID, err)
	}

	var recs []Recommendation
	for i := range farms {
		farm := &farms[i]
		if assigned[farm.ID] {
			continue
		}
		a := s.Assess(ctx, farm)
		available := a.Capacity.AvailableBirds
		recs = append(recs, Recommendation{
			FarmID:            farm.ID,
			FarmName:          farm.Name,
			Region:            farm.Region,
			DistressScore:     a.Score,
			DistressLevel:     a.Level,
			AvailableQuantity: available,
			RegionMatch:       order.PreferredRegion != "" && strings.EqualFold(farm.Region, order.PreferredRegion),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].DistressScore > recs[j].DistressScore
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}

	summary := AllocationSummary{TotalFarms: len(recs)}
	for i := range recs {
		recs[i].RecommendedQuantity = min(recs[i].AvailableQuantity, remaining)
		summary.TotalAvailable += recs[i].AvailableQuantity
		switch recs[i].DistressLevel {
		case LevelCritical:
			summary.CriticalFarms++
		case LevelHigh:
			summary.HighFarms++
		}
	}
	summary.CanFulfill = summary.TotalAvailable >= remaining

	return &AllocationResult{
		OrderID:         order.ID,
		RemainingNeed:   remaining,
		Recommendations: recs,
		Summary:         summary,
	}, nil
}

package distress

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// SummaryOverview is the overall level distribution.
type SummaryOverview struct {
	TotalFarms int     `json:"total_farms"`
	Critical   int     `json:"critical"`
	High       int     `json:"high"`
	Moderate   int     `json:"moderate"`
	Low        int     `json:"low"`
	Stable     int     `json:"stable"`
	AvgScore   float64 `json:"avg_score"`
}

// RegionBreakdown summarizes one region.
type RegionBreakdown struct {
	Region     string  `json:"region"`
	TotalFarms int     `json:"total_farms"`
	Distressed int     `json:"distressed"`
	Critical   int     `json:"critical"`
	AvgScore   float64 `json:"avg_score"`
}

// TypeBreakdown summarizes one production type.
type TypeBreakdown struct {
	ProductionType ProductionType `json:"production_type"`
	TotalFarms     int            `json:"total_farms"`
	Distressed     int            `json:"distressed"`
	AvgScore       float64        `json:"avg_score"`
}

// SummaryTrends reports recent procurement support activity. The 30-day
// distress trend has no historical baseline to compare against yet and is
// reported as "N/A".
type SummaryTrends struct {
	FarmersSupported30d int     `json:"farmers_supported_30d"`
	SupportValue30d     float64 `json:"support_value_30d"`
	DistressTrend30d    string  `json:"distress_trend_30d"`
}

// Summary is the full distress rollup for reporting dashboards.
type Summary struct {
	Overview SummaryOverview   `json:"overview"`
	Regions  []RegionBreakdown `json:"by_region"`
	Types    []TypeBreakdown   `json:"by_production_type"`
	Trends   SummaryTrends     `json:"trends"`
}

// DistressSummary assesses every active+approved farm (optionally filtered
// to one region) and rolls the results up by level, region, and production
// type. Zero farms yields all-zero counts, not an error.
func (s *Service) DistressSummary(ctx context.Context, region string) (*Summary, error) {
	farms, err := s.farms.ListFarms(ctx, FarmFilter{})
	if err != nil {
		return nil, fmt.Errorf("distress summary: %w", err)
	}

	type agg struct {
		total      int
		distressed int
		critical   int
		scoreSum   float64
	}
	regions := make(map[string]*agg)
	var regionOrder []string
	types := make(map[ProductionType]*agg)
	var typeOrder []ProductionType

	summary := &Summary{
		Regions: []RegionBreakdown{},
		Types:   []TypeBreakdown{},
		Trends:  SummaryTrends{DistressTrend30d: "N/A"},
	}

	var scoreSum float64
	for i := range farms {
		farm := &farms[i]
		if region != "" && !strings.EqualFold(farm.Region, region) {
			continue
		}
		a := s.Assess(ctx, farm)

		summary.Overview.TotalFarms++
		scoreSum += a.Score
		switch a.Level {
		case LevelCritical:
			summary.Overview.Critical++
		case LevelHigh:
			summary.Overview.High++
		case LevelModerate:
			summary.Overview.Moderate++
		case LevelLow:
			summary.Overview.Low++
		default:
			summary.Overview.Stable++
		}

		ra, ok := regions[farm.Region]
		if !ok {
			ra = &agg{}
			regions[farm.Region] = ra
			regionOrder = append(regionOrder, farm.Region)
		}
		ra.total++
		ra.scoreSum += a.Score
		if a.Score >= materialThreshold {
			ra.distressed++
		}
		if a.Level == LevelCritical {
			ra.critical++
		}

		ta, ok := types[farm.ProductionType]
		if !ok {
			ta = &agg{}
			types[farm.ProductionType] = ta
			typeOrder = append(typeOrder, farm.ProductionType)
		}
		ta.total++
		ta.scoreSum += a.Score
		if a.Score >= materialThreshold {
			ta.distressed++
		}
	}

	if summary.Overview.TotalFarms > 0 {
		summary.Overview.AvgScore = round1(scoreSum / float64(summary.Overview.TotalFarms))
	}
	for _, name := range regionOrder {
		ra := regions[name]
		summary.Regions = append(summary.Regions, RegionBreakdown{
			Region:     name,
			TotalFarms: ra.total,
			Distressed: ra.distressed,
			Critical:   ra.critical,
			AvgScore:   round1(ra.scoreSum / float64(ra.total)),
		})
	}
	for _, pt := range typeOrder {
		ta := types[pt]
		summary.Types = append(summary.Types, TypeBreakdown{
			ProductionType: pt,
			TotalFarms:     ta.total,
			Distressed:     ta.distressed,
			AvgScore:       round1(ta.scoreSum / float64(ta.total)),
		})
	}

	// Trailing-30-day procurement support, across all regions.
	assignments, err := s.orders.AssignmentsSince(ctx, s.now().AddDate(0, 0, -30))
	if err == nil {
		supported := make(map[string]bool)
		for _, a := range assignments {
			supported[a.FarmID] = true
			summary.Trends.SupportValue30d += a.Value
		}
		summary.Trends.FarmersSupported30d = len(supported)
	}

	return summary, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

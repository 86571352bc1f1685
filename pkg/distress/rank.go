package distress

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// DefaultRankLimit caps the result page when no limit is requested.
const DefaultRankLimit = 50

// RankRequest filters and orders the distressed-farmer listing.
type RankRequest struct {
	ProductionType    string  `json:"production_type,omitempty"`
	Region            string  `json:"region,omitempty"`
	District          string  `json:"district,omitempty"`
	MinDistressScore  float64 `json:"min_distress_score,omitempty"`
	MinCapacity       int     `json:"min_capacity,omitempty"`
	HasAvailableStock bool    `json:"has_available_stock,omitempty"`
	Limit             int     `json:"limit,omitempty"`
	// Ordering is "-distress_score" (default), "distress_score",
	// "farm_name", or "-farm_name".
	Ordering string `json:"ordering,omitempty"`
}

// RankSummary counts the full filtered population, independent of the
// requested page size.
type RankSummary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Moderate int `json:"moderate"`
}

// RankResult is one page of ranked assessments plus population counts.
type RankResult struct {
	Count   int           `json:"count"`
	Summary RankSummary   `json:"summary"`
	Results []*Assessment `json:"results"`
}

// RankFarmers assesses every farm surviving the filters and returns them
// ranked. The summary reflects the whole filtered population; Results is
// truncated to the requested limit.
func (s *Service) RankFarmers(ctx context.Context, req RankRequest) (*RankResult, error) {
	if req.Limit <= 0 {
		req.Limit = DefaultRankLimit
	}
	if req.Ordering == "" {
		req.Ordering = "-distress_score"
	}

	farms, err := s.farms.ListFarms(ctx, FarmFilter{
		ProductionTypes: matchProductionTypes(req.ProductionType),
		District:        req.District,
		MinCapacity:     req.MinCapacity,
		RequireStock:    req.HasAvailableStock,
	})
	if err != nil {
		return nil, fmt.Errorf("rank farmers: %w", err)
	}

	// Region is a derived value, so it is filtered in process rather than
	// at the fetch.
	var assessments []*Assessment
	for i := range farms {
		farm := &farms[i]
		if req.Region != "" && !strings.EqualFold(farm.Region, req.Region) {
			continue
		}
		a := s.Assess(ctx, farm)
		if a.Score < req.MinDistressScore {
			continue
		}
		assessments = append(assessments, a)
	}

	sortAssessments(assessments, req.Ordering)

	summary := RankSummary{Total: len(assessments)}
	for _, a := range assessments {
		switch a.Level {
		case LevelCritical:
			summary.Critical++
		case LevelHigh:
			summary.High++
		case LevelModerate:
			summary.Moderate++
		}
	}

	if len(assessments) > req.Limit {
		assessments = assessments[:req.Limit]
	}
	if assessments == nil {
		assessments = []*Assessment{}
	}

	return &RankResult{
		Count:   len(assessments),
		Summary: summary,
		Results: assessments,
	}, nil
}

// sortAssessments orders by the requested field; a leading '-' reverses.
// Ties keep input order. Unrecognized orderings fall back to the default.
func sortAssessments(assessments []*Assessment, ordering string) {
	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")

	switch field {
	case "farm_name":
		sort.SliceStable(assessments, func(i, j int) bool {
			if desc {
				return assessments[i].FarmName > assessments[j].FarmName
			}
			return assessments[i].FarmName < assessments[j].FarmName
		})
	case "distress_score":
		sort.SliceStable(assessments, func(i, j int) bool {
			if desc {
				return assessments[i].Score > assessments[j].Score
			}
			return assessments[i].Score < assessments[j].Score
		})
	default:
		sort.SliceStable(assessments, func(i, j int) bool {
			return assessments[i].Score > assessments[j].Score
		})
	}
}

package distress

import (
	"context"
	"fmt"
	"strings"
)

// ProductionIssuesScorer computes the mortality rate over the lookback
// window and flags capacity under- and over-utilization. Defaults to 20
// when production data cannot be assessed.
type ProductionIssuesScorer struct{}

func (s *ProductionIssuesScorer) Factor() Factor { return FactorProductionIssues }

func (s *ProductionIssuesScorer) Score(ctx context.Context, farm *Farm, src DataSource, window Window) FactorResult {
	fail := FactorResult{Factor: s.Factor(), Score: 20, Detail: "error calculating production metrics"}

	records, err := src.ProductionSince(ctx, farm.ID, window.Since())
	if err != nil {
		return fail
	}

	var deaths int
	for _, rec := range records {
		deaths += rec.Deaths
	}

	// The rate and utilization divisors must be positive; a farm with no
	// birds and no recorded deaths cannot be assessed.
	if farm.CurrentBirdCount+deaths == 0 || farm.TotalCapacity == 0 {
		return fail
	}

	var score int
	var notes []string

	rate := float64(deaths) / float64(farm.CurrentBirdCount+deaths) * 100
	if rate > 10 {
		score += 100
		notes = append(notes, fmt.Sprintf("mortality rate %.1f%% over %d days", rate, window.LookbackDays))
	} else if rate > 5 {
		score += 60
		notes = append(notes, fmt.Sprintf("mortality rate %.1f%% over %d days", rate, window.LookbackDays))
	} else if rate > 2 {
		score += 30
		notes = append(notes, fmt.Sprintf("mortality rate %.1f%% over %d days", rate, window.LookbackDays))
	}

	utilization := float64(farm.CurrentBirdCount) / float64(farm.TotalCapacity) * 100
	if utilization < 20 {
		score += 40
		notes = append(notes, fmt.Sprintf("capacity utilization %.0f%%", utilization))
	} else if utilization > 100 {
		score += 30
		notes = append(notes, fmt.Sprintf("overstocked at %.0f%% of capacity", utilization))
	}

	if len(notes) == 0 {
		return FactorResult{Factor: s.Factor(), Score: 0, Detail: "production within normal range"}
	}
	return FactorResult{Factor: s.Factor(), Score: clampScore(score), Detail: strings.Join(notes, "; ")}
}

package distress

import (
	"context"
	"fmt"
	"strings"
)

// SalesPerformanceScorer measures sales activity over three trailing 30-day
// buckets across all sale sources, plus days elapsed since the most recent
// sale. On data failure it defaults to a neutral 50.
type SalesPerformanceScorer struct{}

func (s *SalesPerformanceScorer) Factor() Factor { return FactorSalesPerformance }

func (s *SalesPerformanceScorer) Score(ctx context.Context, farm *Farm, src DataSource, window Window) FactorResult {
	fail := FactorResult{Factor: s.Factor(), Score: 50, Detail: "error calculating sales metrics"}

	lastSale, err := src.LastSaleAt(ctx, farm.ID)
	if err != nil {
		return fail
	}
	sales, err := src.SalesSince(ctx, farm.ID, window.Now.AddDate(0, 0, -90))
	if err != nil {
		return fail
	}

	// Bucket counts: 0-30, 30-60, 60-90 days back.
	var cur, prev, old int
	for _, sale := range sales {
		switch days := ageInDays(window.Now, sale.Date); {
		case days <= 30:
			cur++
		case days <= 60:
			prev++
		case days <= 90:
			old++
		}
	}

	var score int
	var notes []string

	if lastSale == nil {
		score = 100
		notes = append(notes, "no sales recorded")
	} else {
		days := ageInDays(window.Now, *lastSale)
		if days > 60 {
			score = 90
			notes = append(notes, fmt.Sprintf("no sales in %d days", days))
		} else if days > 30 {
			score = 60
			notes = append(notes, fmt.Sprintf("no sales in %d days", days))
		} else if days > 14 {
			score = 30
			notes = append(notes, fmt.Sprintf("last sale %d days ago", days))
		}
	}

	if cur == 0 && prev > 0 {
		score += 30
		notes = append(notes, "sales dropped to zero this month")
	} else if cur == 0 && prev == 0 && old == 0 && lastSale != nil {
		score += 20
		notes = append(notes, "no sales in the last 90 days")
	}

	if len(notes) == 0 {
		return FactorResult{Factor: s.Factor(), Score: 0, Detail: "recent sales activity healthy"}
	}
	return FactorResult{Factor: s.Factor(), Score: clampScore(score), Detail: strings.Join(notes, "; ")}
}

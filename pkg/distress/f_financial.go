package distress

import (
	"context"
	"fmt"
	"strings"
)

// FinancialStressScorer sums outstanding procurement invoice amounts and
// flags long-pending invoices and lapsed paid subscriptions. Unlike the
// other scorers it defaults to 0 on data failure: unknown finances are
// treated as no evidence of stress.
type FinancialStressScorer struct{}

func (s *FinancialStressScorer) Factor() Factor { return FactorFinancialStress }

func (s *FinancialStressScorer) Score(ctx context.Context, farm *Farm, src DataSource, window Window) FactorResult {
	fail := FactorResult{Factor: s.Factor(), Score: 0, Detail: "unable to assess financial data"}

	invoices, err := src.OutstandingInvoices(ctx, farm.ID)
	if err != nil {
		return fail
	}

	var score int
	var notes []string

	var total float64
	for _, inv := range invoices {
		total += inv.Amount
	}
	if total > 50000 {
		score += 80
		notes = append(notes, fmt.Sprintf("GHS %.2f in unpaid procurement invoices", total))
	} else if total > 20000 {
		score += 50
		notes = append(notes, fmt.Sprintf("GHS %.2f in unpaid procurement invoices", total))
	} else if total > 5000 {
		score += 25
		notes = append(notes, fmt.Sprintf("GHS %.2f in unpaid procurement invoices", total))
	}

	// Age of the oldest invoice still in pending status.
	oldest := -1
	for _, inv := range invoices {
		if inv.Status != InvoicePending {
			continue
		}
		if age := ageInDays(window.Now, inv.CreatedAt); age > oldest {
			oldest = age
		}
	}
	if oldest > 90 {
		score += 40
		notes = append(notes, fmt.Sprintf("invoice pending for %d days", oldest))
	} else if oldest > 60 {
		score += 25
		notes = append(notes, fmt.Sprintf("invoice pending for %d days", oldest))
	} else if oldest > 30 {
		score += 10
		notes = append(notes, fmt.Sprintf("invoice pending for %d days", oldest))
	}

	sub, err := src.Subscription(ctx, farm.ID)
	if err != nil {
		return fail
	}
	if sub != nil && sub.Tier != TierFree && !sub.Active {
		score += 30
		notes = append(notes, "paid marketplace subscription lapsed")
	}

	if len(notes) == 0 {
		return FactorResult{Factor: s.Factor(), Score: 0, Detail: "no financial stress indicators"}
	}
	return FactorResult{Factor: s.Factor(), Score: clampScore(score), Detail: strings.Join(notes, "; ")}
}

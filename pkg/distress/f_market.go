package distress

import (
	"context"
	"fmt"
	"strings"
)

// MarketAccessScorer measures how connected a farm is to buyers: its
// marketplace subscription, active listings, active customers, and prior
// completed government procurement. Defaults to 40 on data failure.
type MarketAccessScorer struct{}

func (s *MarketAccessScorer) Factor() Factor { return FactorMarketAccess }

func (s *MarketAccessScorer) Score(ctx context.Context, farm *Farm, src DataSource, window Window) FactorResult {
	fail := FactorResult{Factor: s.Factor(), Score: 40, Detail: "unable to assess market access"}

	var score int
	var notes []string

	sub, err := src.Subscription(ctx, farm.ID)
	if err != nil {
		return fail
	}
	if sub == nil || !sub.Active {
		score += 50
		notes = append(notes, "no active marketplace subscription")
	} else if sub.Tier == TierFree {
		score += 20
		notes = append(notes, "free-tier marketplace subscription")
	}

	listings, err := src.ActiveListingCount(ctx, farm.ID)
	if err != nil {
		return fail
	}
	if listings == 0 {
		score += 30
		notes = append(notes, "no active product listings")
	} else if listings <= 2 {
		score += 15
		notes = append(notes, fmt.Sprintf("only %d active product listings", listings))
	}

	customers, err := src.ActiveCustomerCount(ctx, farm.ID)
	if err != nil {
		return fail
	}
	if customers == 0 {
		score += 25
		notes = append(notes, "no active customers")
	} else if customers <= 4 {
		score += 10
		notes = append(notes, fmt.Sprintf("only %d active customers", customers))
	}

	assignments, err := src.FarmAssignments(ctx, farm.ID)
	if err != nil {
		return fail
	}
	var fulfilled int
	for _, a := range assignments {
		if a.Status.Fulfilled() {
			fulfilled++
		}
	}
	if fulfilled == 0 {
		score += 15
		notes = append(notes, "no completed government procurement")
	}

	if len(notes) == 0 {
		return FactorResult{Factor: s.Factor(), Score: 0, Detail: "market access healthy"}
	}
	return FactorResult{Factor: s.Factor(), Score: clampScore(score), Detail: strings.Join(notes, "; ")}
}

package distress

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// InventoryStagnationScorer flags aged unsold stock and capacity overstock.
// When inventory data is missing or unreadable it returns a neutral 50:
// absence of data is not evidence of health.
type InventoryStagnationScorer struct{}

func (s *InventoryStagnationScorer) Factor() Factor { return FactorInventoryStagnation }

func (s *InventoryStagnationScorer) Score(ctx context.Context, farm *Farm, src DataSource, window Window) FactorResult {
	lines, err := src.InventoryLines(ctx, farm.ID)
	if err != nil {
		return FactorResult{Factor: s.Factor(), Score: 50, Detail: "error calculating inventory metrics"}
	}
	if len(lines) == 0 {
		return FactorResult{Factor: s.Factor(), Score: 50, Detail: "no inventory data available"}
	}

	var score int
	var notes []string

	for _, line := range lines {
		age := ageInDays(window.Now, line.OldestStockDate)
		switch {
		case line.Category == CategoryEggs:
			if age > 21 {
				score += 50
				notes = append(notes, fmt.Sprintf("egg stock unsold for %d days", age))
			} else if age > 14 {
				score += 30
				notes = append(notes, fmt.Sprintf("egg stock unsold for %d days", age))
			} else if age > 7 {
				score += 15
				notes = append(notes, fmt.Sprintf("egg stock unsold for %d days", age))
			}
		case line.Category.IsBirds():
			if age > 60 {
				score += 40
				notes = append(notes, fmt.Sprintf("live birds unsold for %d days", age))
			} else if age > 30 {
				score += 20
				notes = append(notes, fmt.Sprintf("live birds unsold for %d days", age))
			}
		}
	}

	if farm.CurrentBirdCount > farm.TotalCapacity {
		score += 20
		notes = append(notes, fmt.Sprintf("bird count %d exceeds rated capacity %d",
			farm.CurrentBirdCount, farm.TotalCapacity))
	}

	if len(notes) == 0 {
		return FactorResult{Factor: s.Factor(), Score: 0, Detail: "no inventory stagnation detected"}
	}
	return FactorResult{Factor: s.Factor(), Score: clampScore(score), Detail: strings.Join(notes, "; ")}
}

// ageInDays returns whole days elapsed from t to now, never negative.
func ageInDays(now, t time.Time) int {
	d := int(now.Sub(t).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

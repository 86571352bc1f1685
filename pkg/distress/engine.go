package distress

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

// FactorResult is the output of a single factor scorer: a clamped 0-100
// raw score plus a human-readable explanation.
type FactorResult struct {
	Factor Factor `json:"factor"`
	Score  int    `json:"score"`
	Detail string `json:"detail"`
}

// FactorBreakdown records how a factor contributed to the composite score.
type FactorBreakdown struct {
	Score        int     `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"weighted_contribution"`
	Detail       string  `json:"detail"`
}

// Window is the rolling lookback period signals are measured over.
type Window struct {
	Now          time.Time
	LookbackDays int
}

// Since returns the start of the window.
func (w Window) Since() time.Time {
	return w.Now.AddDate(0, 0, -w.LookbackDays)
}

// FactorScorer computes one distress dimension for a farm. Implementations
// must absorb data-access failures into their documented default score
// rather than returning an error: a farm must never appear artificially
// safe or artificially critical because one subsystem's fetch failed.
type FactorScorer interface {
	Factor() Factor
	Score(ctx context.Context, farm *Farm, src DataSource, window Window) FactorResult
}

// Weights maps each factor to its share of the composite score.
// The five weights must sum to exactly 100.
type Weights map[Factor]float64

// DefaultWeights returns the standard factor weights.
func DefaultWeights() Weights {
	return Weights{
		FactorInventoryStagnation: 25,
		FactorSalesPerformance:    25,
		FactorFinancialStress:     20,
		FactorProductionIssues:    15,
		FactorMarketAccess:        15,
	}
}

// Validate checks that every factor carries a weight and the total is 100.
func (w Weights) Validate() error {
	var total float64
	for _, f := range allFactors {
		weight, ok := w[f]
		if !ok {
			return fmt.Errorf("missing weight for factor %s", f)
		}
		if weight < 0 {
			return fmt.Errorf("negative weight for factor %s", f)
		}
		total += weight
	}
	if total != 100 {
		return fmt.Errorf("factor weights sum to %g, want 100", total)
	}
	return nil
}

var allFactors = []Factor{
	FactorInventoryStagnation,
	FactorSalesPerformance,
	FactorFinancialStress,
	FactorProductionIssues,
	FactorMarketAccess,
}

// materialThreshold is the minimum raw score for a factor to appear in the
// ranked factor list. Sub-threshold factors still contribute their weighted
// share to the composite.
const materialThreshold = 40

// DefaultScorers returns the standard five factor scorers.
func DefaultScorers() []FactorScorer {
	return []FactorScorer{
		&InventoryStagnationScorer{},
		&SalesPerformanceScorer{},
		&FinancialStressScorer{},
		&ProductionIssuesScorer{},
		&MarketAccessScorer{},
	}
}

// Engine combines factor scorers into composite assessments.
type Engine struct {
	scorers []FactorScorer
	weights Weights
}

// NewEngine creates an engine from the given scorers and weights.
// Weights must validate; use DefaultWeights for the standard split.
func NewEngine(weights Weights, scorers ...FactorScorer) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if len(scorers) == 0 {
		scorers = DefaultScorers()
	}
	return &Engine{scorers: scorers, weights: weights}, nil
}

// Evaluation is the aggregated output of running all factor scorers
// against one farm.
type Evaluation struct {
	Score     float64                    `json:"score"`
	Level     Level                      `json:"level"`
	Factors   []FactorResult             `json:"factors"`
	Breakdown map[Factor]FactorBreakdown `json:"breakdown"`
}

// Evaluate runs every scorer, applies the fixed weights, and maps the
// composite to a level. The material factor list keeps only raw scores of
// 40 or more, sorted descending with ties in scorer order.
func (e *Engine) Evaluate(ctx context.Context, farm *Farm, src DataSource, window Window) Evaluation {
	eval := Evaluation{
		Breakdown: make(map[Factor]FactorBreakdown, len(e.scorers)),
	}

	var composite float64
	for _, scorer := range e.scorers {
		res := scorer.Score(ctx, farm, src, window)
		res.Score = clampScore(res.Score)
		weight := e.weights[res.Factor]
		contribution := float64(res.Score) * weight / 100

		composite += contribution
		eval.Breakdown[res.Factor] = FactorBreakdown{
			Score:        res.Score,
			Weight:       weight,
			Contribution: contribution,
			Detail:       res.Detail,
		}
		if res.Score >= materialThreshold {
			eval.Factors = append(eval.Factors, res)
		}
	}

	if composite < 0 {
		composite = 0
	}
	if composite > 100 {
		composite = 100
	}
	eval.Score = math.Round(composite*10) / 10
	eval.Level = LevelFromScore(eval.Score)

	sort.SliceStable(eval.Factors, func(i, j int) bool {
		return eval.Factors[i].Score > eval.Factors[j].Score
	})

	return eval
}

// clampScore bounds a raw factor score to [0, 100].
func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

package distress_test

import (
	"context"
	"math"
	"testing"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

func TestLevelFromScore(t *testing.T) {
	tests := []struct {
		score float64
		want  distress.Level
	}{
		{100, distress.LevelCritical},
		{80, distress.LevelCritical},
		{79.9, distress.LevelHigh},
		{60, distress.LevelHigh},
		{59.9, distress.LevelModerate},
		{40, distress.LevelModerate},
		{39.9, distress.LevelLow},
		{20, distress.LevelLow},
		{19.9, distress.LevelStable},
		{0, distress.LevelStable},
	}
	for _, tt := range tests {
		if got := distress.LevelFromScore(tt.score); got != tt.want {
			t.Errorf("LevelFromScore(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestWeightsValidate(t *testing.T) {
	if err := distress.DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights should validate: %v", err)
	}

	w := distress.DefaultWeights()
	w[distress.FactorMarketAccess] = 20
	if err := w.Validate(); err == nil {
		t.Error("expected error for weights summing to 105")
	}

	delete(w, distress.FactorMarketAccess)
	if err := w.Validate(); err == nil {
		t.Error("expected error for missing factor weight")
	}
}

func TestNewEngineRejectsBadWeights(t *testing.T) {
	if _, err := distress.NewEngine(distress.Weights{}); err == nil {
		t.Error("expected error for empty weights")
	}
}

func TestEngineEvaluate_NewFarmWithNoData(t *testing.T) {
	// A brand-new farm with no sales, inventory, production, or market
	// presence: inventory defaults neutral 50, sales hits 100, production
	// cannot be assessed (20), market access clamps at 100.
	// Composite: 50*0.25 + 100*0.25 + 0*0.20 + 20*0.15 + 100*0.15 = 55.5.
	engine, err := distress.NewEngine(distress.DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}

	farm := testFarm()
	farm.CurrentBirdCount = 0

	eval := engine.Evaluate(context.Background(), farm, &fakeSource{}, testWindow())

	if eval.Score != 55.5 {
		t.Errorf("composite = %v, want 55.5", eval.Score)
	}
	if eval.Level != distress.LevelModerate {
		t.Errorf("level = %s, want MODERATE", eval.Level)
	}

	// Material factors: sales 100, market 100, inventory 50. The two 100s
	// tie; input (scorer) order breaks the tie.
	wantFactors := []distress.Factor{
		distress.FactorSalesPerformance,
		distress.FactorMarketAccess,
		distress.FactorInventoryStagnation,
	}
	if len(eval.Factors) != len(wantFactors) {
		t.Fatalf("got %d material factors, want %d", len(eval.Factors), len(wantFactors))
	}
	for i, want := range wantFactors {
		if eval.Factors[i].Factor != want {
			t.Errorf("factor[%d] = %s, want %s", i, eval.Factors[i].Factor, want)
		}
	}
}

func TestEngineEvaluate_HealthyFarmScoresStable(t *testing.T) {
	engine, err := distress.NewEngine(distress.DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}

	eval := engine.Evaluate(context.Background(), testFarm(), healthySource(), testWindow())

	if eval.Score >= 20 {
		t.Errorf("healthy farm composite = %v, want < 20", eval.Score)
	}
	if eval.Level != distress.LevelStable {
		t.Errorf("level = %s, want STABLE", eval.Level)
	}
	if len(eval.Factors) != 0 {
		t.Errorf("expected no material factors, got %v", eval.Factors)
	}
}

func TestEngineEvaluate_BreakdownSumsToComposite(t *testing.T) {
	engine, err := distress.NewEngine(distress.DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}

	eval := engine.Evaluate(context.Background(), testFarm(), &fakeSource{}, testWindow())

	if len(eval.Breakdown) != 5 {
		t.Fatalf("expected 5 breakdown entries, got %d", len(eval.Breakdown))
	}

	var sum, weightSum float64
	for factor, b := range eval.Breakdown {
		if b.Score < 0 || b.Score > 100 {
			t.Errorf("%s raw score %d outside [0,100]", factor, b.Score)
		}
		if got := float64(b.Score) * b.Weight / 100; math.Abs(got-b.Contribution) > 1e-9 {
			t.Errorf("%s contribution %v, want %v", factor, b.Contribution, got)
		}
		sum += b.Contribution
		weightSum += b.Weight
	}
	if weightSum != 100 {
		t.Errorf("weights sum to %v, want 100", weightSum)
	}
	if rounded := math.Round(sum*10) / 10; rounded != eval.Score {
		t.Errorf("breakdown sums to %v, composite is %v", rounded, eval.Score)
	}
}

func TestEngineEvaluate_Idempotent(t *testing.T) {
	engine, err := distress.NewEngine(distress.DefaultWeights())
	if err != nil {
		t.Fatal(err)
	}
	src := healthySource()
	farm := testFarm()

	first := engine.Evaluate(context.Background(), farm, src, testWindow())
	second := engine.Evaluate(context.Background(), farm, src, testWindow())

	if first.Score != second.Score || first.Level != second.Level {
		t.Errorf("repeated evaluation differs: %v/%s vs %v/%s",
			first.Score, first.Level, second.Score, second.Level)
	}
}

func TestEngineEvaluate_CustomWeights(t *testing.T) {
	// Shift all weight onto sales performance.
	w := distress.Weights{
		distress.FactorInventoryStagnation: 0,
		distress.FactorSalesPerformance:    100,
		distress.FactorFinancialStress:     0,
		distress.FactorProductionIssues:    0,
		distress.FactorMarketAccess:        0,
	}
	engine, err := distress.NewEngine(w)
	if err != nil {
		t.Fatal(err)
	}

	eval := engine.Evaluate(context.Background(), testFarm(), &fakeSource{}, testWindow())

	if eval.Score != 100 {
		t.Errorf("composite = %v, want 100", eval.Score)
	}
	if eval.Level != distress.LevelCritical {
		t.Errorf("level = %s, want CRITICAL", eval.Level)
	}
}

package distress_test

import (
	"context"
	"testing"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

func TestFinancialStress_InvoiceTotalBrackets(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		want  int
	}{
		{"over 50k", 60000, 80},
		{"over 20k", 30000, 50},
		{"over 5k", 8000, 25},
		{"small", 2000, 0},
	}

	m := &distress.FinancialStressScorer{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{invoices: []distress.Invoice{
				{Amount: tt.total, Status: distress.InvoiceApproved, CreatedAt: daysAgo(5)},
			}}
			res := m.Score(context.Background(), testFarm(), src, testWindow())
			if res.Score != tt.want {
				t.Errorf("GHS %.0f outstanding: score = %d, want %d", tt.total, res.Score, tt.want)
			}
		})
	}
}

func TestFinancialStress_OldestPendingInvoiceAge(t *testing.T) {
	tests := []struct {
		name string
		age  int
		want int
	}{
		{"over 90 days", 100, 40},
		{"over 60 days", 70, 25},
		{"over 30 days", 40, 10},
		{"recent", 10, 0},
	}

	m := &distress.FinancialStressScorer{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{invoices: []distress.Invoice{
				{Amount: 1000, Status: distress.InvoicePending, CreatedAt: daysAgo(tt.age)},
			}}
			res := m.Score(context.Background(), testFarm(), src, testWindow())
			if res.Score != tt.want {
				t.Errorf("pending %d days: score = %d, want %d", tt.age, res.Score, tt.want)
			}
		})
	}
}

func TestFinancialStress_ApprovedInvoiceAgeIgnored(t *testing.T) {
	// Only pending invoices count toward the age flag.
	src := &fakeSource{invoices: []distress.Invoice{
		{Amount: 1000, Status: distress.InvoiceApproved, CreatedAt: daysAgo(120)},
	}}

	m := &distress.FinancialStressScorer{}
	res := m.Score(context.Background(), testFarm(), src, testWindow())

	if res.Score != 0 {
		t.Errorf("expected 0 for aged approved invoice, got %d", res.Score)
	}
}

func TestFinancialStress_LapsedPaidSubscription(t *testing.T) {
	src := &fakeSource{sub: &distress.Subscription{Tier: distress.TierPremium, Active: false}}

	m := &distress.FinancialStressScorer{}
	res := m.Score(context.Background(), testFarm(), src, testWindow())

	if res.Score != 30 {
		t.Errorf("expected 30 for lapsed paid subscription, got %d", res.Score)
	}
}

func TestFinancialStress_InactiveFreeTierNotFlagged(t *testing.T) {
	src := &fakeSource{sub: &distress.Subscription{Tier: distress.TierFree, Active: false}}

	m := &distress.FinancialStressScorer{}
	res := m.Score(context.Background(), testFarm(), src, testWindow())

	if res.Score != 0 {
		t.Errorf("expected 0 for inactive free tier, got %d", res.Score)
	}
}

func TestFinancialStress_AccumulatesAndClamps(t *testing.T) {
	// 60k outstanding (+80) pending 100 days (+40) clamps to 100.
	src := &fakeSource{invoices: []distress.Invoice{
		{Amount: 60000, Status: distress.InvoicePending, CreatedAt: daysAgo(100)},
	}}

	m := &distress.FinancialStressScorer{}
	res := m.Score(context.Background(), testFarm(), src, testWindow())

	if res.Score != 100 {
		t.Errorf("expected clamp to 100, got %d", res.Score)
	}
}

func TestFinancialStress_FetchErrorDefaultsZero(t *testing.T) {
	// Unknown finances are no evidence of stress, unlike the neutral-50
	// defaults elsewhere.
	m := &distress.FinancialStressScorer{}

	for _, src := range []*fakeSource{
		{invoicesErr: errFetch},
		{subErr: errFetch},
	} {
		res := m.Score(context.Background(), testFarm(), src, testWindow())
		if res.Score != 0 {
			t.Errorf("expected 0 on fetch error, got %d", res.Score)
		}
		if res.Detail != "unable to assess financial data" {
			t.Errorf("unexpected detail: %q", res.Detail)
		}
	}
}

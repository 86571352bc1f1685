package distress_test

import (
	"context"
	"testing"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

func TestMarketAccess_FullyDisconnectedClamps(t *testing.T) {
	// No subscription (+50), no listings (+30), no customers (+25),
	// no completed procurement (+15): 120 clamps to 100.
	m := &distress.MarketAccessScorer{}

	res := m.Score(context.Background(), testFarm(), &fakeSource{}, testWindow())

	if res.Score != 100 {
		t.Errorf("expected clamp to 100, got %d", res.Score)
	}
}

func TestMarketAccess_PartialEngagement(t *testing.T) {
	// Free tier (+20), 2 listings (+15), 3 customers (+10), one paid
	// assignment (0): total 45.
	src := &fakeSource{
		sub:       &distress.Subscription{Tier: distress.TierFree, Active: true},
		listings:  2,
		customers: 3,
		assignments: []distress.OrderAssignment{
			{OrderID: "ord-1", FarmID: "farm-1", Status: distress.AssignmentVerified, AssignedAt: daysAgo(60), Value: 2000},
		},
	}

	m := &distress.MarketAccessScorer{}
	res := m.Score(context.Background(), testFarm(), src, testWindow())

	if res.Score != 45 {
		t.Errorf("expected 45, got %d (%s)", res.Score, res.Detail)
	}
}

func TestMarketAccess_PendingAssignmentsDoNotCount(t *testing.T) {
	src := healthySource()
	src.assignments = []distress.OrderAssignment{
		{OrderID: "ord-2", FarmID: "farm-1", Status: distress.AssignmentPending, AssignedAt: daysAgo(5), Value: 1000},
	}

	m := &distress.MarketAccessScorer{}
	res := m.Score(context.Background(), testFarm(), src, testWindow())

	if res.Score != 15 {
		t.Errorf("expected 15 with only a pending assignment, got %d", res.Score)
	}
}

func TestMarketAccess_HealthyFarm(t *testing.T) {
	m := &distress.MarketAccessScorer{}
	res := m.Score(context.Background(), testFarm(), healthySource(), testWindow())

	if res.Score != 0 {
		t.Errorf("expected 0 for well-connected farm, got %d (%s)", res.Score, res.Detail)
	}
	if res.Detail != "market access healthy" {
		t.Errorf("unexpected detail: %q", res.Detail)
	}
}

func TestMarketAccess_FetchErrorDefaults(t *testing.T) {
	m := &distress.MarketAccessScorer{}

	for _, src := range []*fakeSource{
		{subErr: errFetch},
		{listingsErr: errFetch},
		{customersErr: errFetch},
		{assignmentsErr: errFetch},
	} {
		res := m.Score(context.Background(), testFarm(), src, testWindow())
		if res.Score != 40 {
			t.Errorf("expected default 40 on fetch error, got %d", res.Score)
		}
		if res.Detail != "unable to assess market access" {
			t.Errorf("unexpected detail: %q", res.Detail)
		}
	}
}

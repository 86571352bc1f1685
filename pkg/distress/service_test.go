package distress_test

import (
	"context"
	"errors"
	"testing"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

func TestAssessFarm_NotFound(t *testing.T) {
	svc := newTestService(&fakeSource{}, &fakeFarms{}, nil, nil)

	_, err := svc.AssessFarm(context.Background(), "missing")
	if !errors.Is(err, distress.ErrFarmNotFound) {
		t.Errorf("expected ErrFarmNotFound, got %v", err)
	}
}

func TestAssessFarm_BuildsFullAssessment(t *testing.T) {
	farm := testFarm()
	svc := newTestService(healthySource(), &fakeFarms{farms: []distress.Farm{*farm}}, nil, nil)

	a, err := svc.AssessFarm(context.Background(), farm.ID)
	if err != nil {
		t.Fatalf("AssessFarm: %v", err)
	}

	if a.FarmID != farm.ID || a.FarmName != farm.Name {
		t.Errorf("identity mismatch: %s/%s", a.FarmID, a.FarmName)
	}
	if a.Score < 0 || a.Score > 100 {
		t.Errorf("score %v outside [0,100]", a.Score)
	}

	// Capacity comes from the live-bird inventory lines.
	if !a.Capacity.FromInventory || a.Capacity.AvailableBirds != 400 {
		t.Errorf("capacity = %+v, want 400 birds from inventory", a.Capacity)
	}
	if a.Capacity.AverageWeightKg == nil || *a.Capacity.AverageWeightKg != 2.1 {
		t.Errorf("average weight = %v, want 2.1", a.Capacity.AverageWeightKg)
	}

	// Sales snapshot: sale 3 days ago, 1500+900 in 30d, +2400 in 90d.
	if a.Sales.DaysSinceLastSale == nil || *a.Sales.DaysSinceLastSale != 3 {
		t.Errorf("days since last sale = %v, want 3", a.Sales.DaysSinceLastSale)
	}
	if a.Sales.Total30d != 2400 {
		t.Errorf("30d sales = %v, want 2400", a.Sales.Total30d)
	}
	if a.Sales.Total90d != 4800 {
		t.Errorf("90d sales = %v, want 4800", a.Sales.Total90d)
	}

	if a.Procurement.CompletedCount != 1 || a.Procurement.TotalValue != 5000 {
		t.Errorf("procurement = %+v, want 1 completed worth 5000", a.Procurement)
	}

	if a.Contact.Phone != farm.Phone {
		t.Errorf("contact phone = %q", a.Contact.Phone)
	}
	if a.Contact.Coordinates == nil || a.Contact.Coordinates.Latitude != 5.6037 {
		t.Errorf("coordinates = %+v", a.Contact.Coordinates)
	}
}

func TestAssess_SnapshotFailuresDefaultEmpty(t *testing.T) {
	// Every auxiliary lookup failing must still yield a well-formed
	// assessment with documented fallbacks.
	src := &fakeSource{
		inventoryErr:   errFetch,
		salesErr:       errFetch,
		lastSaleErr:    errFetch,
		productionErr:  errFetch,
		subErr:         errFetch,
		listingsErr:    errFetch,
		customersErr:   errFetch,
		invoicesErr:    errFetch,
		assignmentsErr: errFetch,
		coordsErr:      errFetch,
	}
	farm := testFarm()
	svc := newTestService(src, &fakeFarms{farms: []distress.Farm{*farm}}, nil, nil)

	a := svc.Assess(context.Background(), farm)

	// Capacity falls back to the farm's raw bird count.
	if a.Capacity.FromInventory || a.Capacity.AvailableBirds != farm.CurrentBirdCount {
		t.Errorf("capacity = %+v, want fallback to %d", a.Capacity, farm.CurrentBirdCount)
	}
	if a.Sales.LastSaleDate != nil || a.Sales.Total30d != 0 || a.Sales.Total90d != 0 {
		t.Errorf("sales snapshot not zeroed: %+v", a.Sales)
	}
	if a.Procurement.CompletedCount != 0 {
		t.Errorf("procurement snapshot not zeroed: %+v", a.Procurement)
	}
	if a.Contact.Coordinates != nil {
		t.Errorf("coordinates should be nil on lookup failure")
	}

	// Factor defaults: 50 + 50 + 0 + 20 + 40 weighted =
	// 12.5 + 12.5 + 0 + 3 + 6 = 34.0.
	if a.Score != 34.0 {
		t.Errorf("all-defaults composite = %v, want 34.0", a.Score)
	}
	if a.Level != distress.LevelLow {
		t.Errorf("level = %s, want LOW", a.Level)
	}
}

func TestAssess_CapacityFallsBackWhenOnlyEggLines(t *testing.T) {
	src := &fakeSource{inventory: []distress.InventoryLine{
		{Category: distress.CategoryEggs, Quantity: 900, OldestStockDate: daysAgo(2)},
	}}
	farm := testFarm()
	svc := newTestService(src, &fakeFarms{farms: []distress.Farm{*farm}}, nil, nil)

	a := svc.Assess(context.Background(), farm)

	if a.Capacity.FromInventory {
		t.Error("egg-only inventory should not count as live-bird capacity")
	}
	if a.Capacity.AvailableBirds != farm.CurrentBirdCount {
		t.Errorf("available birds = %d, want fallback %d", a.Capacity.AvailableBirds, farm.CurrentBirdCount)
	}
}

func TestCacheFields(t *testing.T) {
	farm := testFarm()
	svc := newTestService(healthySource(), &fakeFarms{farms: []distress.Farm{*farm}}, nil, nil)

	a := svc.Assess(context.Background(), farm)
	cache := svc.CacheFields(context.Background(), farm.ID, a)

	if cache.Score != a.Score || cache.Level != a.Level || !cache.CalculatedAt.Equal(a.CalculatedAt) {
		t.Errorf("assessment fields not carried: %+v", cache)
	}
	if cache.DaysSinceLastSale == nil || *cache.DaysSinceLastSale != 3 {
		t.Errorf("days since last sale = %v, want 3", cache.DaysSinceLastSale)
	}
	if cache.UnsoldInventoryCount != 400 {
		t.Errorf("unsold inventory = %d, want 400", cache.UnsoldInventoryCount)
	}
	if cache.InventoryStagnationDays != 5 {
		t.Errorf("stagnation days = %d, want 5", cache.InventoryStagnationDays)
	}
}

func TestCacheFields_InventoryFetchFailure(t *testing.T) {
	farm := testFarm()
	svc := newTestService(&fakeSource{inventoryErr: errFetch}, &fakeFarms{farms: []distress.Farm{*farm}}, nil, nil)

	a := svc.Assess(context.Background(), farm)
	cache := svc.CacheFields(context.Background(), farm.ID, a)

	// Quick metrics stay zero but the score writeback still happens.
	if cache.UnsoldInventoryCount != 0 || cache.InventoryStagnationDays != 0 {
		t.Errorf("quick metrics not zeroed: %+v", cache)
	}
	if cache.Score != a.Score || cache.Level != a.Level {
		t.Errorf("assessment fields not carried: %+v", cache)
	}
}

func TestTrendHistory(t *testing.T) {
	farm := testFarm()
	history := &fakeHistory{entries: []distress.HistoryEntry{
		{ID: "h1", FarmID: farm.ID, CalculatedAt: daysAgo(120), Score: 70, Level: distress.LevelHigh},
		{ID: "h2", FarmID: farm.ID, CalculatedAt: daysAgo(10), Score: 55, Level: distress.LevelModerate},
		{ID: "h3", FarmID: "other", CalculatedAt: daysAgo(5), Score: 90, Level: distress.LevelCritical},
	}}
	svc := newTestService(&fakeSource{}, &fakeFarms{farms: []distress.Farm{*farm}}, nil, history)

	entries, err := svc.TrendHistory(context.Background(), farm.ID, 90)
	if err != nil {
		t.Fatalf("TrendHistory: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "h2" {
		t.Errorf("expected only h2 within 90 days, got %+v", entries)
	}

	if _, err := svc.TrendHistory(context.Background(), "missing", 90); !errors.Is(err, distress.ErrFarmNotFound) {
		t.Errorf("expected ErrFarmNotFound, got %v", err)
	}
}

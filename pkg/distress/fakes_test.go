package distress_test

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/farmwatch/farmwatch/pkg/distress"
)

// base reference time for all tests.
var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time { return now.AddDate(0, 0, -n) }

func testWindow() distress.Window {
	return distress.Window{Now: now, LookbackDays: 30}
}

var errFetch = errors.New("repository unavailable")

// fakeSource is an in-memory DataSource. Zero value reports an empty but
// healthy farm; error fields force individual fetches to fail.
type fakeSource struct {
	inventory    []distress.InventoryLine
	inventoryErr error

	sales    []distress.SaleRecord
	salesErr error

	lastSale    *time.Time
	lastSaleErr error

	production    []distress.ProductionRecord
	productionErr error

	sub    *distress.Subscription
	subErr error

	listings    int
	listingsErr error

	customers    int
	customersErr error

	invoices    []distress.Invoice
	invoicesErr error

	assignments    []distress.OrderAssignment
	assignmentsErr error

	coords    *distress.Coordinates
	coordsErr error
}

func (f *fakeSource) InventoryLines(ctx context.Context, farmID string) ([]distress.InventoryLine, error) {
	return f.inventory, f.inventoryErr
}

func (f *fakeSource) SalesSince(ctx context.Context, farmID string, since time.Time) ([]distress.SaleRecord, error) {
	if f.salesErr != nil {
		return nil, f.salesErr
	}
	var out []distress.SaleRecord
	for _, s := range f.sales {
		if !s.Date.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSource) LastSaleAt(ctx context.Context, farmID string) (*time.Time, error) {
	return f.lastSale, f.lastSaleErr
}

func (f *fakeSource) ProductionSince(ctx context.Context, farmID string, since time.Time) ([]distress.ProductionRecord, error) {
	if f.productionErr != nil {
		return nil, f.productionErr
	}
	var out []distress.ProductionRecord
	for _, r := range f.production {
		if !r.Date.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) Subscription(ctx context.Context, farmID string) (*distress.Subscription, error) {
	return f.sub, f.subErr
}

func (f *fakeSource) ActiveListingCount(ctx context.Context, farmID string) (int, error) {
	return f.listings, f.listingsErr
}

func (f *fakeSource) ActiveCustomerCount(ctx context.Context, farmID string) (int, error) {
	return f.customers, f.customersErr
}

func (f *fakeSource) OutstandingInvoices(ctx context.Context, farmID string) ([]distress.Invoice, error) {
	return f.invoices, f.invoicesErr
}

func (f *fakeSource) FarmAssignments(ctx context.Context, farmID string) ([]distress.OrderAssignment, error) {
	return f.assignments, f.assignmentsErr
}

func (f *fakeSource) Coordinates(ctx context.Context, farmID string) (*distress.Coordinates, error) {
	return f.coords, f.coordsErr
}

// healthySource returns signals for a farm that should score STABLE:
// fresh inventory, a sale this week, paid active subscription, listings,
// customers, and completed procurement history.
func healthySource() *fakeSource {
	lastSale := daysAgo(3)
	weight := 2.1
	return &fakeSource{
		inventory: []distress.InventoryLine{
			{Category: distress.CategoryBroilers, Quantity: 400, OldestStockDate: daysAgo(5), AverageWeightKg: &weight},
		},
		sales: []distress.SaleRecord{
			{Source: distress.SourceFarmGate, Date: daysAgo(3), Amount: 1500},
			{Source: distress.SourceMarketplace, Date: daysAgo(20), Amount: 900},
			{Source: distress.SourceWholesale, Date: daysAgo(45), Amount: 2400},
		},
		lastSale: &lastSale,
		production: []distress.ProductionRecord{
			{Date: daysAgo(1), EggsCollected: 300, Deaths: 2},
			{Date: daysAgo(2), EggsCollected: 310, Deaths: 1},
		},
		sub:       &distress.Subscription{Tier: distress.TierStandard, Active: true},
		listings:  5,
		customers: 8,
		assignments: []distress.OrderAssignment{
			{OrderID: "ord-1", FarmID: "farm-1", Status: distress.AssignmentPaid, AssignedAt: daysAgo(120), Value: 5000},
		},
		coords: &distress.Coordinates{Latitude: 5.6037, Longitude: -0.1870},
	}
}

func testFarm() *distress.Farm {
	return &distress.Farm{
		ID:               "farm-1",
		Name:             "Adjei Poultry",
		Region:           "Greater Accra",
		District:         "Ga West",
		Constituency:     "Amasaman",
		ProductionType:   distress.Broilers,
		CurrentBirdCount: 400,
		TotalCapacity:    1000,
		Phone:            "+233201234567",
		Active:           true,
		Approved:         true,
	}
}

// fakeFarms is an in-memory FarmRepository over a fixed active+approved set.
type fakeFarms struct {
	farms   []distress.Farm
	listErr error
	updated map[string]distress.DistressCache
}

func (f *fakeFarms) FarmByID(ctx context.Context, id string) (*distress.Farm, error) {
	for i := range f.farms {
		if f.farms[i].ID == id {
			farm := f.farms[i]
			return &farm, nil
		}
	}
	return nil, distress.ErrFarmNotFound
}

func (f *fakeFarms) ListFarms(ctx context.Context, filter distress.FarmFilter) ([]distress.Farm, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []distress.Farm
	for _, farm := range f.farms {
		if !farm.Active || !farm.Approved {
			continue
		}
		if len(filter.ProductionTypes) > 0 && !containsType(filter.ProductionTypes, farm.ProductionType) {
			continue
		}
		if filter.District != "" && !strings.EqualFold(farm.District, filter.District) {
			continue
		}
		if filter.MinCapacity > 0 && farm.TotalCapacity < filter.MinCapacity {
			continue
		}
		if filter.RequireStock && farm.CurrentBirdCount <= 0 {
			continue
		}
		out = append(out, farm)
	}
	return out, nil
}

func (f *fakeFarms) ListFarmsBatch(ctx context.Context, offset, limit int) ([]distress.Farm, error) {
	var active []distress.Farm
	for _, farm := range f.farms {
		if farm.Active && farm.Approved {
			active = append(active, farm)
		}
	}
	if offset >= len(active) {
		return nil, nil
	}
	end := offset + limit
	if end > len(active) {
		end = len(active)
	}
	return active[offset:end], nil
}

func (f *fakeFarms) UpdateDistressCache(ctx context.Context, farmID string, cache distress.DistressCache) error {
	if f.updated == nil {
		f.updated = make(map[string]distress.DistressCache)
	}
	f.updated[farmID] = cache
	return nil
}

func containsType(set []distress.ProductionType, pt distress.ProductionType) bool {
	for _, t := range set {
		if t == pt {
			return true
		}
	}
	return false
}

// fakeOrders is an in-memory OrderRepository.
type fakeOrders struct {
	orders      map[string]distress.ProcurementOrder
	assignments []distress.OrderAssignment
}

func (f *fakeOrders) OrderByID(ctx context.Context, id string) (*distress.ProcurementOrder, error) {
	if o, ok := f.orders[id]; ok {
		return &o, nil
	}
	return nil, distress.ErrOrderNotFound
}

func (f *fakeOrders) AssignedFarmIDs(ctx context.Context, orderID string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, a := range f.assignments {
		if a.OrderID == orderID {
			out[a.FarmID] = true
		}
	}
	return out, nil
}

func (f *fakeOrders) AssignmentsSince(ctx context.Context, since time.Time) ([]distress.OrderAssignment, error) {
	var out []distress.OrderAssignment
	for _, a := range f.assignments {
		if !a.AssignedAt.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

// fakeHistory records appended entries in memory.
type fakeHistory struct {
	entries []distress.HistoryEntry
}

func (f *fakeHistory) Append(ctx context.Context, entry distress.HistoryEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeHistory) Recent(ctx context.Context, farmID string, days int) ([]distress.HistoryEntry, error) {
	cutoff := now.AddDate(0, 0, -days)
	var out []distress.HistoryEntry
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if e.FarmID == farmID && !e.CalculatedAt.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out, nil
}

// multiSource routes DataSource calls to a per-farm fakeSource, so farms
// in the same test can score differently. Unknown farms get the zero
// fakeSource (empty data).
type multiSource struct {
	byFarm map[string]*fakeSource
}

func (m *multiSource) src(farmID string) *fakeSource {
	if s, ok := m.byFarm[farmID]; ok {
		return s
	}
	return &fakeSource{}
}

func (m *multiSource) InventoryLines(ctx context.Context, farmID string) ([]distress.InventoryLine, error) {
	return m.src(farmID).InventoryLines(ctx, farmID)
}

func (m *multiSource) SalesSince(ctx context.Context, farmID string, since time.Time) ([]distress.SaleRecord, error) {
	return m.src(farmID).SalesSince(ctx, farmID, since)
}

func (m *multiSource) LastSaleAt(ctx context.Context, farmID string) (*time.Time, error) {
	return m.src(farmID).LastSaleAt(ctx, farmID)
}

func (m *multiSource) ProductionSince(ctx context.Context, farmID string, since time.Time) ([]distress.ProductionRecord, error) {
	return m.src(farmID).ProductionSince(ctx, farmID, since)
}

func (m *multiSource) Subscription(ctx context.Context, farmID string) (*distress.Subscription, error) {
	return m.src(farmID).Subscription(ctx, farmID)
}

func (m *multiSource) ActiveListingCount(ctx context.Context, farmID string) (int, error) {
	return m.src(farmID).ActiveListingCount(ctx, farmID)
}

func (m *multiSource) ActiveCustomerCount(ctx context.Context, farmID string) (int, error) {
	return m.src(farmID).ActiveCustomerCount(ctx, farmID)
}

func (m *multiSource) OutstandingInvoices(ctx context.Context, farmID string) ([]distress.Invoice, error) {
	return m.src(farmID).OutstandingInvoices(ctx, farmID)
}

func (m *multiSource) FarmAssignments(ctx context.Context, farmID string) ([]distress.OrderAssignment, error) {
	return m.src(farmID).FarmAssignments(ctx, farmID)
}

func (m *multiSource) Coordinates(ctx context.Context, farmID string) (*distress.Coordinates, error) {
	return m.src(farmID).Coordinates(ctx, farmID)
}

func newTestService(src distress.DataSource, farms *fakeFarms, orders *fakeOrders, history *fakeHistory) *distress.Service {
	if orders == nil {
		orders = &fakeOrders{}
	}
	if history == nil {
		history = &fakeHistory{}
	}
	return distress.NewService(nil, src, farms, orders, history,
		distress.WithClock(func() time.Time { return now }))
}

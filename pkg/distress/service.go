package distress

import (
	"context"
	"fmt"
	"time"
)

// DefaultLookbackDays is the standard rolling window for activity signals.
const DefaultLookbackDays = 30

// Service is the stateless entry point for distress assessment, farmer
// ranking, order allocation recommendations, and summary rollups. Safe for
// concurrent use; all entry points are pure reads.
type Service struct {
	engine   *Engine
	src      DataSource
	farms    FarmRepository
	orders   OrderRepository
	history  HistoryStore
	lookback int
	now      func() time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithLookbackDays overrides the default 30-day signal window.
func WithLookbackDays(days int) ServiceOption {
	return func(s *Service) {
		if days > 0 {
			s.lookback = days
		}
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService wires a Service from its collaborators. A nil engine gets the
// default scorers and weights.
func NewService(engine *Engine, src DataSource, farms FarmRepository, orders OrderRepository, history HistoryStore, opts ...ServiceOption) *Service {
	if engine == nil {
		engine, _ = NewEngine(DefaultWeights())
	}
	s := &Service{
		engine:   engine,
		src:      src,
		farms:    farms,
		orders:   orders,
		history:  history,
		lookback: DefaultLookbackDays,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) window() Window {
	return Window{Now: s.now(), LookbackDays: s.lookback}
}

// Assess computes a full assessment for one farm. It always returns a
// well-formed assessment: data failures inside any sub-score or snapshot
// are absorbed into that component's documented default.
func (s *Service) Assess(ctx context.Context, farm *Farm) *Assessment {
	window := s.window()
	eval := s.engine.Evaluate(ctx, farm, s.src, window)

	return &Assessment{
		FarmID:         farm.ID,
		FarmName:       farm.Name,
		Region:         farm.Region,
		District:       farm.District,
		ProductionType: farm.ProductionType,
		Score:          eval.Score,
		Level:          eval.Level,
		Factors:        eval.Factors,
		Breakdown:      eval.Breakdown,
		Capacity:       buildCapacitySnapshot(ctx, farm, s.src),
		Sales:          buildSalesSnapshot(ctx, farm, s.src, window.Now),
		Procurement:    buildProcurementSnapshot(ctx, farm, s.src),
		Contact:        buildContactSnapshot(ctx, farm, s.src),
		CalculatedAt:   window.Now,
	}
}

// AssessFarm fetches the farm and assesses it. Returns ErrFarmNotFound
// when the id does not resolve.
func (s *Service) AssessFarm(ctx context.Context, farmID string) (*Assessment, error) {
	farm, err := s.farms.FarmByID(ctx, farmID)
	if err != nil {
		return nil, fmt.Errorf("assess farm %s: %w", farmID, err)
	}
	return s.Assess(ctx, farm), nil
}

// CacheFields derives the writeback fields for the farm record from a
// fresh assessment. Inventory quick metrics come straight from the stock
// lines; a failed fetch leaves them at zero.
func (s *Service) CacheFields(ctx context.Context, farmID string, a *Assessment) DistressCache {
	cache := DistressCache{
		Score:             a.Score,
		Level:             a.Level,
		CalculatedAt:      a.CalculatedAt,
		DaysSinceLastSale: a.Sales.DaysSinceLastSale,
	}
	lines, err := s.src.InventoryLines(ctx, farmID)
	if err != nil {
		return cache
	}
	for _, line := range lines {
		cache.UnsoldInventoryCount += line.Quantity
		if age := ageInDays(a.CalculatedAt, line.OldestStockDate); age > cache.InventoryStagnationDays {
			cache.InventoryStagnationDays = age
		}
	}
	return cache
}

// TrendHistory returns the farm's calculation history from the trailing
// number of days (default 90), newest first, for trend charts.
func (s *Service) TrendHistory(ctx context.Context, farmID string, days int) ([]HistoryEntry, error) {
	if days <= 0 {
		days = 90
	}
	if _, err := s.farms.FarmByID(ctx, farmID); err != nil {
		return nil, fmt.Errorf("trend history for farm %s: %w", farmID, err)
	}
	entries, err := s.history.Recent(ctx, farmID, days)
	if err != nil {
		return nil, fmt.Errorf("trend history for farm %s: %w", farmID, err)
	}
	return entries, nil
}

// matchProductionTypes resolves a requested production-type filter to the
// set of farm types it matches. Only the literal spellings Broilers,
// BROILERS, Layers, and LAYERS are recognized; anything else leaves the
// filter unapplied.
func matchProductionTypes(requested string) []ProductionType {
	switch requested {
	case "Broilers", "BROILERS":
		return []ProductionType{Broilers, Both}
	case "Layers", "LAYERS":
		return []ProductionType{Layers, Both}
	default:
		return nil
	}
}

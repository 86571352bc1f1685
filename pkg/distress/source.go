package distress

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors surfaced to callers. Everything else encountered while
// assembling a derived sub-score is absorbed into per-factor defaults.
var (
	ErrFarmNotFound  = errors.New("farm not found")
	ErrOrderNotFound = errors.New("order not found")
)

// DataSource supplies per-farm signal data for scoring. Implementations are
// expected to be safe for concurrent use; all methods are pure reads.
type DataSource interface {
	// InventoryLines returns the farm's current unsold stock lines.
	InventoryLines(ctx context.Context, farmID string) ([]InventoryLine, error)

	// SalesSince returns sale records across all three sources with
	// dates on or after since.
	SalesSince(ctx context.Context, farmID string, since time.Time) ([]SaleRecord, error)

	// LastSaleAt returns the most recent sale date across all sources,
	// or nil if the farm has never recorded a sale.
	LastSaleAt(ctx context.Context, farmID string) (*time.Time, error)

	// ProductionSince returns daily production records since the given date.
	ProductionSince(ctx context.Context, farmID string, since time.Time) ([]ProductionRecord, error)

	// Subscription returns the farm's marketplace subscription, or nil
	// if the farm has none.
	Subscription(ctx context.Context, farmID string) (*Subscription, error)

	// ActiveListingCount returns the number of active product listings.
	ActiveListingCount(ctx context.Context, farmID string) (int, error)

	// ActiveCustomerCount returns the number of active customers.
	ActiveCustomerCount(ctx context.Context, farmID string) (int, error)

	// OutstandingInvoices returns procurement invoices in pending or
	// approved status.
	OutstandingInvoices(ctx context.Context, farmID string) ([]Invoice, error)

	// FarmAssignments returns all order assignments for the farm.
	FarmAssignments(ctx context.Context, farmID string) ([]OrderAssignment, error)

	// Coordinates returns the farm's primary location, or nil if none
	// is recorded.
	Coordinates(ctx context.Context, farmID string) (*Coordinates, error)
}

// FarmFilter narrows a farm listing at the data-fetch level. Region is
// deliberately absent: region filtering happens in-process against the
// farm's derived region value (see Service.RankFarmers).
type FarmFilter struct {
	// ProductionTypes restricts to farms whose type is in the set.
	// Empty means no production-type restriction.
	ProductionTypes []ProductionType
	// District is a case-insensitive exact match when non-empty.
	District string
	// MinCapacity restricts to farms with at least this total capacity.
	MinCapacity int
	// RequireStock restricts to farms with current bird count > 0.
	RequireStock bool
}

// DistressCache is the set of fields written back onto a farm record by
// the daily recalculation.
type DistressCache struct {
	Score        float64
	Level        Level
	CalculatedAt time.Time

	DaysSinceLastSale       *int
	UnsoldInventoryCount    int
	InventoryStagnationDays int
}

// FarmRepository fetches farm records. Listings always cover only
// active+approved farms.
type FarmRepository interface {
	FarmByID(ctx context.Context, id string) (*Farm, error)
	ListFarms(ctx context.Context, filter FarmFilter) ([]Farm, error)
	// ListFarmsBatch pages through all active+approved farms for the
	// daily recalculation.
	ListFarmsBatch(ctx context.Context, offset, limit int) ([]Farm, error)
	UpdateDistressCache(ctx context.Context, farmID string, cache DistressCache) error
}

// OrderRepository fetches procurement orders and assignments.
type OrderRepository interface {
	OrderByID(ctx context.Context, id string) (*ProcurementOrder, error)
	// AssignedFarmIDs returns the set of farms that already hold an
	// assignment against the order, regardless of status.
	AssignedFarmIDs(ctx context.Context, orderID string) (map[string]bool, error)
	// AssignmentsSince returns assignments created on or after since,
	// across all farms.
	AssignmentsSince(ctx context.Context, since time.Time) ([]OrderAssignment, error)
}

// HistoryStore persists the append-only distress calculation log.
type HistoryStore interface {
	Append(ctx context.Context, entry HistoryEntry) error
	// Recent returns entries for a farm from the trailing number of days,
	// newest first.
	Recent(ctx context.Context, farmID string, days int) ([]HistoryEntry, error)
}

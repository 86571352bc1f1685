// Package distress implements the Farmwatch farmer distress scoring engine.
// It aggregates inventory, sales, financial, production, and market-access
// signals into an explainable 0-100 priority score used to allocate
// government procurement support among poultry farms.
package distress

import "time"

// Level is the discrete distress bucket derived from the composite score.
type Level string

const (
	LevelCritical Level = "CRITICAL"
	LevelHigh     Level = "HIGH"
	LevelModerate Level = "MODERATE"
	LevelLow      Level = "LOW"
	LevelStable   Level = "STABLE"
)

// LevelFromScore maps a composite score to a distress level.
// Each band is inclusive at its lower bound.
func LevelFromScore(score float64) Level {
	switch {
	case score >= 80:
		return LevelCritical
	case score >= 60:
		return LevelHigh
	case score >= 40:
		return LevelModerate
	case score >= 20:
		return LevelLow
	default:
		return LevelStable
	}
}

// Factor identifies one of the five weighted distress dimensions.
type Factor string

const (
	FactorInventoryStagnation Factor = "INVENTORY_STAGNATION"
	FactorSalesPerformance    Factor = "SALES_PERFORMANCE"
	FactorFinancialStress     Factor = "FINANCIAL_STRESS"
	FactorProductionIssues    Factor = "PRODUCTION_ISSUES"
	FactorMarketAccess        Factor = "MARKET_ACCESS"
)

// ProductionType is what a farm raises.
type ProductionType string

const (
	Broilers ProductionType = "Broilers"
	Layers   ProductionType = "Layers"
	Both     ProductionType = "Both"
)

// Farm is a snapshot of a registered farm. The scoring core reads these
// fields and writes back only the cached distress fields and quick metrics
// during the daily recalculation.
type Farm struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Region           string         `json:"region"`
	District         string         `json:"district"`
	Constituency     string         `json:"constituency"`
	ProductionType   ProductionType `json:"production_type"`
	CurrentBirdCount int            `json:"current_bird_count"`
	TotalCapacity    int            `json:"total_capacity"`
	Phone            string         `json:"phone"`
	OwnerName        string         `json:"owner_name"`
	Active           bool           `json:"active"`
	Approved         bool           `json:"approved"`

	// Cached from the most recent recalculation.
	DistressScore        float64    `json:"distress_score"`
	DistressLevel        Level      `json:"distress_level"`
	DistressCalculatedAt *time.Time `json:"distress_last_calculated,omitempty"`

	// Quick-access metrics, also refreshed by the daily run.
	DaysSinceLastSale       *int `json:"days_since_last_sale,omitempty"`
	UnsoldInventoryCount    int  `json:"unsold_inventory_count"`
	InventoryStagnationDays int  `json:"inventory_stagnation_days"`
}

// InventoryCategory classifies an inventory line.
type InventoryCategory string

const (
	CategoryEggs      InventoryCategory = "eggs"
	CategoryLiveBirds InventoryCategory = "live_birds"
	CategoryBroilers  InventoryCategory = "broilers"
	CategoryLayers    InventoryCategory = "layers"
)

// IsBirds reports whether the category counts toward live-bird stock.
func (c InventoryCategory) IsBirds() bool {
	return c == CategoryLiveBirds || c == CategoryBroilers || c == CategoryLayers
}

// InventoryLine is one unsold stock line on a farm.
type InventoryLine struct {
	Category        InventoryCategory `json:"category"`
	Quantity        int               `json:"quantity"`
	OldestStockDate time.Time         `json:"oldest_stock_date"`
	AverageWeightKg *float64          `json:"average_weight_kg,omitempty"`
}

// SaleSource distinguishes the three kinds of sale records.
type SaleSource string

const (
	SourceFarmGate    SaleSource = "farm_gate"
	SourceWholesale   SaleSource = "wholesale"
	SourceMarketplace SaleSource = "marketplace"
)

// SaleRecord is a single completed sale, in GHS.
type SaleRecord struct {
	Source SaleSource `json:"source"`
	Date   time.Time  `json:"date"`
	Amount float64    `json:"amount"`
}

// ProductionRecord is one day of production reporting.
type ProductionRecord struct {
	Date          time.Time `json:"date"`
	EggsCollected int       `json:"eggs_collected"`
	Deaths        int       `json:"deaths"`
}

// SubscriptionTier is a marketplace subscription tier.
type SubscriptionTier string

const (
	TierFree     SubscriptionTier = "free"
	TierStandard SubscriptionTier = "standard"
	TierPremium  SubscriptionTier = "premium"
)

// Subscription is a farm's marketplace subscription, if any.
type Subscription struct {
	Tier   SubscriptionTier `json:"tier"`
	Active bool             `json:"active"`
}

// InvoiceStatus is the lifecycle state of a procurement invoice.
type InvoiceStatus string

const (
	InvoicePending  InvoiceStatus = "pending"
	InvoiceApproved InvoiceStatus = "approved"
	InvoicePaid     InvoiceStatus = "paid"
	InvoiceRejected InvoiceStatus = "rejected"
)

// Invoice is a procurement invoice owed to a farm.
type Invoice struct {
	Amount    float64       `json:"amount"`
	Status    InvoiceStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// ProcurementOrder is a government purchase order to be filled by farms.
type ProcurementOrder struct {
	ID               string         `json:"id"`
	ProductionType   ProductionType `json:"production_type"`
	QuantityNeeded   int            `json:"quantity_needed"`
	QuantityAssigned int            `json:"quantity_assigned"`
	PreferredRegion  string         `json:"preferred_region"`
}

// AssignmentStatus is the lifecycle state of an order assignment.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentConfirmed AssignmentStatus = "confirmed"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentVerified  AssignmentStatus = "verified"
	AssignmentPaid      AssignmentStatus = "paid"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// Fulfilled reports whether the assignment counts as completed procurement
// history (delivered and at least verified for payment).
func (s AssignmentStatus) Fulfilled() bool {
	return s == AssignmentCompleted || s == AssignmentVerified || s == AssignmentPaid
}

// OrderAssignment links a farm to a procurement order.
type OrderAssignment struct {
	OrderID    string           `json:"order_id"`
	FarmID     string           `json:"farm_id"`
	Status     AssignmentStatus `json:"status"`
	AssignedAt time.Time        `json:"assigned_at"`
	Value      float64          `json:"value"`
}

// Coordinates is a farm's primary location as [lat, lon].
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HistoryEntry is one append-only record of a distress calculation.
type HistoryEntry struct {
	ID           string    `json:"id"`
	FarmID       string    `json:"farm_id"`
	CalculatedAt time.Time `json:"calculated_at"`
	Score        float64   `json:"score"`
	Level        Level     `json:"level"`
	CalculatedBy string    `json:"calculated_by"`
	Snapshot     []byte    `json:"snapshot,omitempty"`

	// Optional intervention metadata recorded by the intervention tracker.
	InterventionType  string  `json:"intervention_type,omitempty"`
	InterventionValue float64 `json:"intervention_value,omitempty"`
	InterventionRef   string  `json:"intervention_ref,omitempty"`
}

// Calculation origin tags for history entries.
const (
	CalculatedBySystemDaily  = "system_daily"
	CalculatedByAPI          = "api"
	CalculatedByOfficer      = "officer"
	CalculatedByIntervention = "intervention_tracker"
)

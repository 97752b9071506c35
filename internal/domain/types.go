package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SalePaid     SaleStatus = "paid"
	SaleRefunded SaleStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentPix           PaymentMethod = "pix"
	PaymentCard          PaymentMethod = "card"
	PaymentCash          PaymentMethod = "cash"
	PaymentVIP           PaymentMethod = "vip"
	PaymentComplimentary PaymentMethod = "complimentary"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentPix, PaymentCard, PaymentCash, PaymentVIP, PaymentComplimentary:
		return true
	}
	return false
}

type Flavor struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// CartLine is a price snapshot taken when the flavor was added to the cart.
type CartLine struct {
	FlavorName string          `json:"flavor_name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

type Sale struct {
	ID            int64           `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	LineItems     []CartLine      `json:"line_items"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	ChangeGiven   decimal.Decimal `json:"change_given"`
	VipName       string          `json:"vip_name,omitempty"`
	Status        SaleStatus      `json:"status"`
}

type VipAccount struct {
	Name             string          `json:"name"`
	AccumulatedTotal decimal.Decimal `json:"accumulated_total"`
}

type VipSettlement struct {
	ID        int64           `json:"id"`
	VipName   string          `json:"vip_name"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"payment_method"`
	SettledAt time.Time       `json:"settled_at"`
}

// EventConfig holds the catalog and the cash drawer float for the running event.
type EventConfig struct {
	StartingCashFloat decimal.Decimal `json:"starting_cash_float"`
	FixedFlavors      []Flavor        `json:"fixed_flavors"`
	SeasonalFlavors   []Flavor        `json:"seasonal_flavors"`
}

// Flavors returns fixed flavors followed by seasonal ones.
func (c EventConfig) Flavors() []Flavor {
	out := make([]Flavor, 0, len(c.FixedFlavors)+len(c.SeasonalFlavors))
	out = append(out, c.FixedFlavors...)
	return append(out, c.SeasonalFlavors...)
}

// DefaultEventConfig is the configuration restored on reset.
func DefaultEventConfig() EventConfig {
	ten := decimal.NewFromInt(10)
	return EventConfig{
		StartingCashFloat: decimal.Zero,
		FixedFlavors: []Flavor{
			{Name: "Pilsen", Price: ten},
			{Name: "IPA", Price: ten},
			{Name: "Black Jack", Price: ten},
			{Name: "Vinho", Price: ten},
			{Name: "Manga", Price: ten},
			{Name: "Morango", Price: ten},
		},
		SeasonalFlavors: []Flavor{},
	}
}

type SaleEventKind string

const (
	EventSaleCreated SaleEventKind = "sale_created"
	EventLineRemoved SaleEventKind = "line_removed"
	EventSaleVoided  SaleEventKind = "sale_voided"
)

// SaleEvent is an append-only audit record of a change to a sale.
type SaleEvent struct {
	ID         int64           `json:"id"`
	SaleID     int64           `json:"sale_id"`
	Kind       SaleEventKind   `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type HourRevenue struct {
	Hour    int             `json:"hour"`
	Label   string          `json:"label"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Report is the end-of-event reconciliation snapshot.
type Report struct {
	TotalRevenue    decimal.Decimal                   `json:"total_revenue"`
	CashDrawerTotal decimal.Decimal                   `json:"cash_drawer_total"`
	StartingFloat   decimal.Decimal                   `json:"starting_cash_float"`
	UnitsByFlavor   map[string]int                    `json:"units_by_flavor"`
	RevenueByHour   []HourRevenue                     `json:"revenue_by_hour"`
	RevenueByMethod map[PaymentMethod]decimal.Decimal `json:"revenue_by_method"`
	SalesCount      int                               `json:"sales_count"`
	RefundedCount   int                               `json:"refunded_count"`
	OutstandingVip  decimal.Decimal                   `json:"outstanding_vip"`
}

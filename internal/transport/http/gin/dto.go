package httpgin

import (
	"github.com/kirinyoku/standpos/internal/domain"
	"github.com/kirinyoku/standpos/internal/service/catalog"
	"github.com/kirinyoku/standpos/internal/service/sales"
	"github.com/shopspring/decimal"
)

type FlavorDTO struct {
	Name  string          `json:"name" binding:"required"`
	Price decimal.Decimal `json:"price"`
}

type ConfigRequest struct {
	StartingCashFloat decimal.Decimal `json:"starting_cash_float"`
	FixedFlavors      []FlavorDTO     `json:"fixed_flavors" binding:"dive"`
	SeasonalFlavors   []FlavorDTO     `json:"seasonal_flavors" binding:"dive"`
}

type LineItemRequest struct {
	FlavorName string          `json:"flavor_name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

// FinalizeSaleRequest carries the cart as priced when items were added.
// cash_received is read for cash payments, vip_name for vip payments.
type FinalizeSaleRequest struct {
	LineItems     []LineItemRequest `json:"line_items"`
	PaymentMethod string            `json:"payment_method" binding:"required"`
	CashReceived  *decimal.Decimal  `json:"cash_received,omitempty"`
	VipName       string            `json:"vip_name,omitempty"`
}

type QuoteItemDTO struct {
	Flavor   string `json:"flavor" binding:"required"`
	Quantity int    `json:"quantity"`
}

// QuoteCartRequest lists till edits applied in order.
type QuoteCartRequest struct {
	Items []QuoteItemDTO `json:"items" binding:"dive"`
}

type QuoteCartResponse struct {
	LineItems []domain.CartLine `json:"line_items"`
	Total     decimal.Decimal   `json:"total"`
}

// RefundRequest refunds one line when line_index is set, the whole sale otherwise.
type RefundRequest struct {
	LineIndex *int `json:"line_index,omitempty"`
}

type SettleVipRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type FinalizeSaleResponse struct {
	SaleID      int64           `json:"sale_id"`
	Total       decimal.Decimal `json:"total"`
	ChangeGiven decimal.Decimal `json:"change_given"`
}

func (r ConfigRequest) toDomain() domain.EventConfig {
	flavors := func(in []FlavorDTO) []domain.Flavor {
		out := make([]domain.Flavor, 0, len(in))
		for _, f := range in {
			out = append(out, domain.Flavor{Name: f.Name, Price: f.Price})
		}
		return out
	}

	return domain.EventConfig{
		StartingCashFloat: r.StartingCashFloat,
		FixedFlavors:      flavors(r.FixedFlavors),
		SeasonalFlavors:   flavors(r.SeasonalFlavors),
	}
}

func (r FinalizeSaleRequest) toInput() sales.FinalizeInput {
	lines := make([]domain.CartLine, 0, len(r.LineItems))
	for _, l := range r.LineItems {
		lines = append(lines, domain.CartLine{
			FlavorName: l.FlavorName,
			UnitPrice:  l.UnitPrice,
			Quantity:   l.Quantity,
		})
	}

	return sales.FinalizeInput{
		Lines:        lines,
		Method:       domain.PaymentMethod(r.PaymentMethod),
		CashReceived: r.CashReceived,
		VipName:      r.VipName,
	}
}

func finalizeResponse(r sales.Receipt) FinalizeSaleResponse {
	return FinalizeSaleResponse{
		SaleID:      r.SaleID,
		Total:       r.Total,
		ChangeGiven: r.ChangeGiven,
	}
}

func (r QuoteCartRequest) toItems() []catalog.QuoteItem {
	out := make([]catalog.QuoteItem, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, catalog.QuoteItem{Flavor: it.Flavor, Quantity: it.Quantity})
	}
	return out
}

func quoteResponse(cart domain.Cart) QuoteCartResponse {
	return QuoteCartResponse{LineItems: cart.Lines, Total: cart.Total()}
}

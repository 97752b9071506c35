package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ValidateLines checks the cart lines of a sale about to be finalized.
func ValidateLines(lines []CartLine) error {
	if len(lines) == 0 {
		return Invalid("line_items", "cart is empty")
	}

	for i, l := range lines {
		field := fmt.Sprintf("line_items[%d]", i)
		if strings.TrimSpace(l.FlavorName) == "" {
			return Invalid(field+".flavor_name", "must not be blank")
		}
		if l.Quantity < 1 {
			return Invalid(field+".quantity", "must be at least 1")
		}
		if l.UnitPrice.IsNegative() {
			return Invalid(field+".unit_price", "must not be negative")
		}
	}

	return nil
}

// NewSale builds a paid sale from a validated cart. The caller sets ID.
func NewSale(
	lines []CartLine,
	method PaymentMethod,
	changeGiven decimal.Decimal,
	vipName string,
	now time.Time,
) Sale {
	items := make([]CartLine, len(lines))
	for i, l := range lines {
		l.UnitPrice = Money(l.UnitPrice)
		items[i] = l
	}

	return Sale{
		CreatedAt:     now,
		LineItems:     items,
		Total:         SumLines(items),
		PaymentMethod: method,
		ChangeGiven:   Money(changeGiven),
		VipName:       vipName,
		Status:        SalePaid,
	}
}

// RemoveLine drops the line at index i and recomputes Total. Status is left as is.
func (s *Sale) RemoveLine(i int) (CartLine, error) {
	if i < 0 || i >= len(s.LineItems) {
		return CartLine{}, Invalid(
			"line_index",
			fmt.Sprintf("%d out of range [0,%d)", i, len(s.LineItems)),
		)
	}

	removed := s.LineItems[i]

	items := make([]CartLine, 0, len(s.LineItems)-1)
	items = append(items, s.LineItems[:i]...)
	items = append(items, s.LineItems[i+1:]...)

	s.LineItems = items
	s.Total = SumLines(items)

	return removed, nil
}

// Verify checks that Total matches the current line items.
func (s Sale) Verify() error {
	if want := SumLines(s.LineItems); !want.Equal(s.Total) {
		return fmt.Errorf("sale %d: total %s does not match line items %s", s.ID, s.Total, want)
	}
	return nil
}

func (s Sale) IsPaid() bool {
	return s.Status == SalePaid
}

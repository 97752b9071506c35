package domain

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places every amount is kept at.
const MoneyPlaces = 2

// Money rounds d to two decimal places.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// LineTotal is UnitPrice·Quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return Money(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
}

// SumLines totals a set of cart lines.
func SumLines(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return Money(total)
}

// ChangeFor returns max(0, received - total).
func ChangeFor(received, total decimal.Decimal) decimal.Decimal {
	change := received.Sub(total)
	if change.IsNegative() {
		return decimal.Zero
	}
	return Money(change)
}

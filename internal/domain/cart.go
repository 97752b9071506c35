package domain

import "github.com/shopspring/decimal"

// Cart is the working set of lines before a sale is finalized.
// Prices are copied from the catalog when a flavor is first added, so
// later catalog edits do not change lines already in the cart.
type Cart struct {
	Lines []CartLine
}

// Add puts one unit of f into the cart.
func (c *Cart) Add(f Flavor) {
	for i := range c.Lines {
		if c.Lines[i].FlavorName == f.Name {
			c.Lines[i].Quantity++
			return
		}
	}

	c.Lines = append(c.Lines, CartLine{
		FlavorName: f.Name,
		UnitPrice:  Money(f.Price),
		Quantity:   1,
	})
}

// Adjust changes the quantity of a flavor by delta. Lines that drop to zero are removed.
func (c *Cart) Adjust(name string, delta int) {
	out := c.Lines[:0]
	for _, l := range c.Lines {
		if l.FlavorName == name {
			l.Quantity += delta
		}
		if l.Quantity > 0 {
			out = append(out, l)
		}
	}
	c.Lines = out
}

// SetQuantity sets the quantity of a flavor already in the cart.
// A quantity of zero or less removes the line.
func (c *Cart) SetQuantity(name string, qty int) {
	for _, l := range c.Lines {
		if l.FlavorName == name {
			c.Adjust(name, qty-l.Quantity)
			return
		}
	}
}

// Remove drops a flavor from the cart.
func (c *Cart) Remove(name string) {
	for _, l := range c.Lines {
		if l.FlavorName == name {
			c.Adjust(name, -l.Quantity)
			return
		}
	}
}

// Quantity returns how many units of name are in the cart.
func (c *Cart) Quantity(name string) int {
	for _, l := range c.Lines {
		if l.FlavorName == name {
			return l.Quantity
		}
	}
	return 0
}

func (c *Cart) Total() decimal.Decimal {
	return SumLines(c.Lines)
}

func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

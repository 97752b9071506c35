package domain

import (
	"fmt"
	"strings"
)

// Validate checks an event configuration before it replaces the current one.
// Flavor names are compared case-insensitively across both lists.
func (c EventConfig) Validate() error {
	if c.StartingCashFloat.IsNegative() {
		return Invalid("starting_cash_float", "must not be negative")
	}

	seen := make(map[string]struct{}, len(c.FixedFlavors)+len(c.SeasonalFlavors))

	check := func(list string, flavors []Flavor) error {
		for i, f := range flavors {
			field := fmt.Sprintf("%s[%d]", list, i)

			name := strings.TrimSpace(f.Name)
			if name == "" {
				return Invalid(field+".name", "must not be blank")
			}

			if f.Price.IsNegative() {
				return Invalid(field+".price", "must not be negative")
			}

			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				return Invalid(field+".name", fmt.Sprintf("duplicate flavor %q", name))
			}
			seen[key] = struct{}{}
		}
		return nil
	}

	if err := check("fixed_flavors", c.FixedFlavors); err != nil {
		return err
	}

	return check("seasonal_flavors", c.SeasonalFlavors)
}

// Normalized trims flavor names and rounds every amount to two places.
// Nil flavor lists become empty ones.
func (c EventConfig) Normalized() EventConfig {
	norm := func(in []Flavor) []Flavor {
		out := make([]Flavor, 0, len(in))
		for _, f := range in {
			out = append(out, Flavor{Name: strings.TrimSpace(f.Name), Price: Money(f.Price)})
		}
		return out
	}

	return EventConfig{
		StartingCashFloat: Money(c.StartingCashFloat),
		FixedFlavors:      norm(c.FixedFlavors),
		SeasonalFlavors:   norm(c.SeasonalFlavors),
	}
}

// Flavor looks a flavor up by exact name in both lists.
func (c EventConfig) Flavor(name string) (Flavor, bool) {
	for _, f := range c.Flavors() {
		if f.Name == name {
			return f, true
		}
	}
	return Flavor{}, false
}

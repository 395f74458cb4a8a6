package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Config is the validated pricing configuration: one global margin and
// per-product overrides.
type Config struct {
	GlobalMargin decimal.Decimal
	Overrides    map[string]decimal.Decimal
}

// ParseMargin reads a stored margin percentage. Empty, non-numeric and
// negative values fail closed to 0%.
func ParseMargin(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// NewConfig builds a Config from stored values. Negative override amounts
// are dropped so the product falls back to the margin.
func NewConfig(rawMargin string, overrides map[string]decimal.Decimal) Config {
	c := Config{
		GlobalMargin: ParseMargin(rawMargin),
		Overrides:    make(map[string]decimal.Decimal, len(overrides)),
	}
	for id, amount := range overrides {
		if amount.IsNegative() {
			continue
		}
		c.Overrides[id] = amount
	}
	return c
}

func (c Config) Override(productID string) (decimal.Decimal, bool) {
	amount, ok := c.Overrides[productID]
	return amount, ok
}

// Rule is the public rule for a product: its override when present,
// otherwise the global margin.
func (c Config) Rule(productID string) Rule {
	if amount, ok := c.Override(productID); ok {
		return ManualOverride(amount)
	}
	return GlobalMargin(c.GlobalMargin)
}

// SaleRule is the rule for a product sold at markup percent. An override
// still wins.
func (c Config) SaleRule(productID string, markup decimal.Decimal) Rule {
	if amount, ok := c.Override(productID); ok {
		return ManualOverride(amount)
	}
	return WholesaleMarkup(markup)
}

// DisplayPrice resolves and rounds the public price of a product.
func (c Config) DisplayPrice(productID string, cost decimal.Decimal) (price decimal.Decimal, overridden bool) {
	r := c.Rule(productID)
	return Quote(Resolve(cost, r)), r.Kind == KindManualOverride
}

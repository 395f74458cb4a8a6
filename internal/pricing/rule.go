// Package pricing turns cost prices into display and sale prices.
//
// Everything here is pure: configuration is loaded and validated by the
// caller and handed in as a Config value.
package pricing

import (
	"github.com/shopspring/decimal"
)

type Kind int

const (
	KindGlobalMargin Kind = iota
	KindManualOverride
	KindWholesaleMarkup
)

func (k Kind) String() string {
	switch k {
	case KindGlobalMargin:
		return "global_margin"
	case KindManualOverride:
		return "manual_override"
	case KindWholesaleMarkup:
		return "wholesale_markup"
	}
	return "unknown"
}

// Rule is the pricing context for one product. Value is a percentage for
// margin and markup rules and a final amount for overrides.
type Rule struct {
	Kind  Kind
	Value decimal.Decimal
}

func GlobalMargin(percent decimal.Decimal) Rule {
	return Rule{Kind: KindGlobalMargin, Value: percent}
}

func ManualOverride(amount decimal.Decimal) Rule {
	return Rule{Kind: KindManualOverride, Value: amount}
}

func WholesaleMarkup(percent decimal.Decimal) Rule {
	return Rule{Kind: KindWholesaleMarkup, Value: percent}
}

var hundred = decimal.NewFromInt(100)

// Resolve returns cost*(1+percent/100) for margin and markup rules and the
// override amount verbatim. The result is not rounded.
func Resolve(cost decimal.Decimal, r Rule) decimal.Decimal {
	if r.Kind == KindManualOverride {
		return r.Value
	}
	return cost.Add(cost.Mul(r.Value).Div(hundred))
}

// Quote rounds a resolved price half-up to cents, the unit prices are
// charged and shown in.
func Quote(price decimal.Decimal) decimal.Decimal {
	return price.Round(2)
}

package form

import (
	"github.com/h0rv/posdash/internal/config"
	"github.com/shopspring/decimal"
)

// DiscountMode says how Pricing.Discount is read.
type DiscountMode int

const (
	// DiscountPercent takes Discount percent of the subtotal.
	DiscountPercent DiscountMode = iota
	// DiscountFixed subtracts Discount as an amount.
	DiscountFixed
)

// TaxBase is the amount tax is levied on.
type TaxBase int

const (
	// TaxOnSubtotal levies tax on the subtotal before discount.
	TaxOnSubtotal TaxBase = iota
	// TaxOnNet levies tax on subtotal minus discount.
	TaxOnNet
)

// Pricing is a discount and tax rule set.
type Pricing struct {
	DiscountMode DiscountMode
	Discount     decimal.Decimal
	TaxRate      decimal.Decimal // percent
	TaxBase      TaxBase
	// RoundWhole rounds payload amounts to whole units.
	RoundWhole bool
}

var hundred = decimal.NewFromInt(100)

// SalePricing is the new-sale form rule: 10% discount, 7% tax on the subtotal.
func SalePricing() Pricing {
	return Pricing{
		DiscountMode: DiscountPercent,
		Discount:     decimal.NewFromInt(10),
		TaxRate:      decimal.NewFromInt(7),
		TaxBase:      TaxOnSubtotal,
	}
}

// POSPricing is the point-of-sale rule: 5 off, 10% tax on the discounted amount.
func POSPricing() Pricing {
	return Pricing{
		DiscountMode: DiscountFixed,
		Discount:     decimal.NewFromInt(5),
		TaxRate:      decimal.NewFromInt(10),
		TaxBase:      TaxOnNet,
		RoundWhole:   true,
	}
}

// PricingFromConfig converts a validated config policy.
func PricingFromConfig(p config.PolicyConfig) Pricing {
	out := Pricing{
		Discount:   decimal.NewFromFloat(p.Discount),
		TaxRate:    decimal.NewFromFloat(p.TaxRate),
		RoundWhole: p.RoundWhole,
	}
	if p.DiscountMode == "fixed" {
		out.DiscountMode = DiscountFixed
	}
	if p.TaxBase == "net" {
		out.TaxBase = TaxOnNet
	}
	return out
}

// Totals are derived from line items and never stored.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Compute derives totals for lines. A fixed discount never exceeds the subtotal.
func (p Pricing) Compute(lines []LineItem) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Amount())
	}

	var discount decimal.Decimal
	switch p.DiscountMode {
	case DiscountFixed:
		discount = decimal.Min(p.Discount, subtotal)
	default:
		discount = subtotal.Mul(p.Discount).Div(hundred)
	}
	if len(lines) == 0 {
		discount = decimal.Zero
	}

	base := subtotal
	if p.TaxBase == TaxOnNet {
		base = subtotal.Sub(discount)
	}
	tax := base.Mul(p.TaxRate).Div(hundred)

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal.Sub(discount).Add(tax),
	}
}

// Rounded returns t with every amount rounded to whole units when the policy asks.
func (p Pricing) Rounded(t Totals) Totals {
	if !p.RoundWhole {
		return t
	}
	return Totals{
		Subtotal: t.Subtotal.Round(0),
		Discount: t.Discount.Round(0),
		Tax:      t.Tax.Round(0),
		Total:    t.Total.Round(0),
	}
}

// Money formats d as currency with two decimals, e.g. "$97.00".
func Money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// Deduction formats a discount as a negative amount, e.g. "-$10.00".
func Deduction(d decimal.Decimal) string {
	return "-$" + d.Abs().StringFixed(2)
}

// Surcharge formats tax as a positive addition, e.g. "+$7.00".
func Surcharge(d decimal.Decimal) string {
	return "+$" + d.Abs().StringFixed(2)
}

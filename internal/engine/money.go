// Package engine holds the pure order pricing and fulfillment rules: price
// resolution, stock validation, totals, the status lifecycle and checkout.
// Nothing in this package performs I/O.
package engine

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds a currency amount to cents. Amounts are non-negative, so
// rounding half away from zero is round-half-up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ClampPct limits a percentage to [0,100].
func ClampPct(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// Convert expresses a base-currency amount in another currency for display.
func Convert(amount, rate decimal.Decimal) decimal.Decimal {
	return Round2(amount.Mul(rate))
}

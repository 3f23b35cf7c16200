package model

import "github.com/shopspring/decimal"

// Totals summarises a list of line items.
type Totals struct {
	SubtotalBeforeDiscount decimal.Decimal
	TotalDiscount          decimal.Decimal
	GrandTotal             decimal.Decimal
}

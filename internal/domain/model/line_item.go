package model

import "github.com/shopspring/decimal"

// DiscountSource tells which tier produced the applied discount.
type DiscountSource string

const (
	DiscountSourceNone     DiscountSource = "NONE"
	DiscountSourceProduct  DiscountSource = "PRODUCT"
	DiscountSourceCategory DiscountSource = "CATEGORY"
)

// LineItem is a priced request for a product. Prices are captured when the
// item is priced and frozen once the owning order is persisted.
type LineItem struct {
	ProductID      int64
	ProductName    string
	Quantity       int
	UnitPrice      decimal.Decimal
	FinalUnitPrice decimal.Decimal
	DiscountPct    decimal.Decimal
	DiscountSource DiscountSource
}

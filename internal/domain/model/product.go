package model

import "github.com/shopspring/decimal"

// Product is a catalog entry as seen by the pricing engine.
type Product struct {
	ID                    int64
	SKU                   string
	Name                  string
	Price                 decimal.Decimal
	Stock                 int
	DiscountPct           decimal.Decimal
	CategoryID            *int64
	ApplyCategoryDiscount bool
}

// Category groups products and may carry a shared discount.
type Category struct {
	ID          int64
	Name        string
	DiscountPct decimal.Decimal
}

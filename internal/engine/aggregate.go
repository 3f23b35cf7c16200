package engine

import (
	"github.com/shopspring/decimal"

	"github.com/polkiloo/autoparts/internal/domain/model"
)

// Aggregate totals line items. Every caller (cart, checkout, order view and
// invoice) goes through here so the figures always agree, and
// SubtotalBeforeDiscount - TotalDiscount == GrandTotal holds exactly.
func Aggregate(items []model.LineItem) model.Totals {
	subtotal := decimal.Zero
	grand := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(item.UnitPrice.Mul(qty))
		grand = grand.Add(item.FinalUnitPrice.Mul(qty))
	}
	subtotal = Round2(subtotal)
	grand = Round2(grand)
	return model.Totals{
		SubtotalBeforeDiscount: subtotal,
		TotalDiscount:          subtotal.Sub(grand),
		GrandTotal:             grand,
	}
}

// LineTotal is the discounted amount for one line.
func LineTotal(item model.LineItem) decimal.Decimal {
	return Round2(item.FinalUnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
}

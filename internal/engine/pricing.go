package engine

import (
	"github.com/shopspring/decimal"

	"github.com/polkiloo/autoparts/internal/domain/model"
)

// PriceQuote is the outcome of resolving one product's price.
type PriceQuote struct {
	UnitPrice      decimal.Decimal
	DiscountPct    decimal.Decimal
	FinalUnitPrice decimal.Decimal
	Source         model.DiscountSource
}

// ResolvePrice applies at most one discount tier. A product discount always
// wins; the category discount applies only when the product has none, opted in
// and the category exists with a positive discount.
func ResolvePrice(product model.Product, category *model.Category) PriceQuote {
	unit := Round2(product.Price)
	if unit.IsNegative() {
		unit = decimal.Zero
	}

	pct := decimal.Zero
	source := model.DiscountSourceNone

	if own := ClampPct(product.DiscountPct); own.IsPositive() {
		pct, source = own, model.DiscountSourceProduct
	} else if product.ApplyCategoryDiscount && category != nil {
		if shared := ClampPct(category.DiscountPct); shared.IsPositive() {
			pct, source = shared, model.DiscountSourceCategory
		}
	}

	return PriceQuote{
		UnitPrice:      unit,
		DiscountPct:    pct,
		FinalUnitPrice: applyDiscount(unit, pct),
		Source:         source,
	}
}

func applyDiscount(unit, pct decimal.Decimal) decimal.Decimal {
	if pct.IsZero() {
		return unit
	}
	return Round2(unit.Mul(hundred.Sub(pct)).Shift(-2))
}

// LineItem captures the quote for the given quantity.
func (q PriceQuote) LineItem(product model.Product, quantity int) model.LineItem {
	return model.LineItem{
		ProductID:      product.ID,
		ProductName:    product.Name,
		Quantity:       quantity,
		UnitPrice:      q.UnitPrice,
		FinalUnitPrice: q.FinalUnitPrice,
		DiscountPct:    q.DiscountPct,
		DiscountSource: q.Source,
	}
}

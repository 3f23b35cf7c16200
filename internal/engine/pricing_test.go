package engine

import (
	"errors"
	"testing"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
)

func TestResolvePriceProductDiscountWins(t *testing.T) {
	product := model.Product{ID: 1, Price: dec(t, "100"), DiscountPct: dec(t, "15"), CategoryID: catID(1), ApplyCategoryDiscount: true}
	category := &model.Category{ID: 1, DiscountPct: dec(t, "30")}

	q := ResolvePrice(product, category)
	if q.Source != model.DiscountSourceProduct {
		t.Fatalf("expected product source, got %s", q.Source)
	}
	assertMoney(t, "final", q.FinalUnitPrice, "85.00")
	assertMoney(t, "unit", q.UnitPrice, "100.00")
}

func TestResolvePriceCategoryDiscount(t *testing.T) {
	product := model.Product{ID: 1, Price: dec(t, "20.00"), CategoryID: catID(1), ApplyCategoryDiscount: true}
	category := &model.Category{ID: 1, DiscountPct: dec(t, "10")}

	q := ResolvePrice(product, category)
	if q.Source != model.DiscountSourceCategory {
		t.Fatalf("expected category source, got %s", q.Source)
	}
	assertMoney(t, "final", q.FinalUnitPrice, "18.00")
	if !q.DiscountPct.Equal(dec(t, "10")) {
		t.Fatalf("unexpected pct %s", q.DiscountPct)
	}
}

func TestResolvePriceCategoryIgnoredWithoutOptIn(t *testing.T) {
	product := model.Product{ID: 1, Price: dec(t, "20.00"), CategoryID: catID(1)}
	category := &model.Category{ID: 1, DiscountPct: dec(t, "10")}

	q := ResolvePrice(product, category)
	if q.Source != model.DiscountSourceNone {
		t.Fatalf("expected no discount, got %s", q.Source)
	}
	assertMoney(t, "final", q.FinalUnitPrice, "20.00")
}

func TestResolvePriceMissingCategory(t *testing.T) {
	product := model.Product{ID: 1, Price: dec(t, "20.00"), CategoryID: catID(99), ApplyCategoryDiscount: true}

	q := ResolvePrice(product, nil)
	if q.Source != model.DiscountSourceNone || !q.DiscountPct.IsZero() {
		t.Fatalf("expected no discount, got %s %s", q.Source, q.DiscountPct)
	}
	assertMoney(t, "final", q.FinalUnitPrice, "20.00")
}

func TestResolvePriceRoundsHalfUp(t *testing.T) {
	// 9.99 * 0.85 = 8.4915
	q := ResolvePrice(model.Product{Price: dec(t, "9.99"), DiscountPct: dec(t, "15")}, nil)
	assertMoney(t, "final", q.FinalUnitPrice, "8.49")

	// 0.05 * 0.5 = 0.025
	q = ResolvePrice(model.Product{Price: dec(t, "0.05"), DiscountPct: dec(t, "50")}, nil)
	assertMoney(t, "final", q.FinalUnitPrice, "0.03")
}

func TestResolvePriceClampsPercent(t *testing.T) {
	q := ResolvePrice(model.Product{Price: dec(t, "10"), DiscountPct: dec(t, "150")}, nil)
	assertMoney(t, "final", q.FinalUnitPrice, "0.00")

	q = ResolvePrice(model.Product{Price: dec(t, "10"), DiscountPct: dec(t, "-5")}, nil)
	if q.Source != model.DiscountSourceNone {
		t.Fatalf("negative discount must be ignored, got %s", q.Source)
	}
}

func TestResolvePriceFinalNeverAboveUnit(t *testing.T) {
	for _, pct := range []string{"0", "0.5", "33.333", "99.99", "100"} {
		q := ResolvePrice(model.Product{Price: dec(t, "17.49"), DiscountPct: dec(t, pct)}, nil)
		if q.FinalUnitPrice.GreaterThan(q.UnitPrice) || q.FinalUnitPrice.IsNegative() {
			t.Fatalf("pct %s: final %s outside [0, %s]", pct, q.FinalUnitPrice, q.UnitPrice)
		}
	}
}

func TestResolvePriceIsIdempotent(t *testing.T) {
	tests := []struct {
		name     string
		product  model.Product
		category *model.Category
		source   model.DiscountSource
	}{
		{
			name:    "no discount",
			product: model.Product{ID: 1, Price: dec(t, "12.34")},
			source:  model.DiscountSourceNone,
		},
		{
			name:    "product discount",
			product: model.Product{ID: 1, Price: dec(t, "9.99"), DiscountPct: dec(t, "15")},
			source:  model.DiscountSourceProduct,
		},
		{
			name:     "category discount",
			product:  model.Product{ID: 1, Price: dec(t, "22.50"), CategoryID: catID(3), ApplyCategoryDiscount: true},
			category: &model.Category{ID: 3, DiscountPct: dec(t, "12.5")},
			source:   model.DiscountSourceCategory,
		},
		{
			name:    "clamped discount",
			product: model.Product{ID: 1, Price: dec(t, "10"), DiscountPct: dec(t, "150")},
			source:  model.DiscountSourceProduct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := ResolvePrice(tt.product, tt.category)
			second := ResolvePrice(tt.product, tt.category)
			if first.Source != tt.source || second.Source != tt.source {
				t.Fatalf("expected source %s, got %s and %s", tt.source, first.Source, second.Source)
			}
			if !first.UnitPrice.Equal(second.UnitPrice) ||
				!first.DiscountPct.Equal(second.DiscountPct) ||
				!first.FinalUnitPrice.Equal(second.FinalUnitPrice) {
				t.Fatalf("repeated resolution differs: %+v vs %+v", first, second)
			}
		})
	}
}

func TestCatalogPrice(t *testing.T) {
	c := sampleCatalog(t)

	item, err := c.Price(2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Quantity != 3 || item.ProductName != "Oil filter" {
		t.Fatalf("unexpected item: %+v", item)
	}
	assertMoney(t, "final", item.FinalUnitPrice, "7.65")

	if _, err := c.Price(42, 1); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogCategoryOfDangling(t *testing.T) {
	c := NewCatalog([]model.Product{{ID: 1, CategoryID: catID(7)}}, nil)
	p, _ := c.Product(1)
	if c.CategoryOf(p) != nil {
		t.Fatalf("expected nil category for dangling reference")
	}
}

func TestConvert(t *testing.T) {
	assertMoney(t, "converted", Convert(dec(t, "19.99"), dec(t, "36.5")), "729.64")
}

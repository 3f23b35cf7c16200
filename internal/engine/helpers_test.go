package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/autoparts/internal/domain/model"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func catID(id int64) *int64 { return &id }

func assertMoney(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if got.StringFixed(2) != want {
		t.Fatalf("%s: expected %s, got %s", name, want, got.StringFixed(2))
	}
}

func sampleCatalog(t *testing.T) *Catalog {
	t.Helper()
	return NewCatalog(
		[]model.Product{
			{ID: 1, Name: "Brake pad", Price: dec(t, "25.00"), Stock: 5, DiscountPct: dec(t, "20"), CategoryID: catID(10), ApplyCategoryDiscount: true},
			{ID: 2, Name: "Oil filter", Price: dec(t, "8.50"), Stock: 3, CategoryID: catID(10), ApplyCategoryDiscount: true},
			{ID: 3, Name: "Spark plug", Price: dec(t, "4.99"), Stock: 40, CategoryID: catID(10)},
			{ID: 4, Name: "Wiper", Price: dec(t, "12.00"), Stock: 0},
		},
		[]model.Category{{ID: 10, Name: "Maintenance", DiscountPct: dec(t, "10")}},
	)
}

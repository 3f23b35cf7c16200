package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/autoparts/internal/domain/model"
	"github.com/polkiloo/autoparts/internal/engine"
	testhelpers "github.com/polkiloo/autoparts/internal/test"
)

const (
	brakePadID  int64 = 1
	oilFilterID int64 = 2
	sparkPlugID int64 = 3
	brakesID    int64 = 10
	customerID  int64 = 7
	otherUserID int64 = 8

	testCurrency = "VES"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newCatalogFixture seeds three products:
//   - brake pad 25.00, category discount 10% -> 22.50
//   - oil filter 8.00, own discount 25% -> 6.00
//   - spark plug 4.50, no discount
func newCatalogFixture() *testhelpers.CatalogRepositoryStub {
	brakes := brakesID
	return testhelpers.NewCatalogRepositoryStub(
		[]model.Product{
			{ID: brakePadID, SKU: "BP-1", Name: "Brake pad", Price: dec("25.00"), Stock: 5, CategoryID: &brakes, ApplyCategoryDiscount: true},
			{ID: oilFilterID, SKU: "OF-1", Name: "Oil filter", Price: dec("8.00"), Stock: 3, DiscountPct: dec("25")},
			{ID: sparkPlugID, SKU: "SP-1", Name: "Spark plug", Price: dec("4.50"), Stock: 10},
		},
		[]model.Category{{ID: brakesID, Name: "Brakes", DiscountPct: dec("10")}},
	)
}

func newExchange(store RateStore) *ExchangeUseCase {
	return NewExchangeUseCase(testhelpers.RateClientStub{}, store, testCurrency)
}

// pricedLine prices a line the way the storefront shows it before checkout.
func pricedLine(t *testing.T, catalog *testhelpers.CatalogRepositoryStub, productID int64, qty int) model.LineItem {
	t.Helper()
	products, _ := catalog.ListProducts(context.Background())
	categories, _ := catalog.ListCategories(context.Background())
	line, err := engine.NewCatalog(products, categories).Price(productID, qty)
	if err != nil {
		t.Fatalf("price product %d: %v", productID, err)
	}
	return line
}

func pickupCash() (model.DeliveryDetails, model.PaymentDetails) {
	return model.DeliveryDetails{Method: model.DeliveryMethodPickup}, model.PaymentDetails{Method: model.PaymentMethodCash}
}

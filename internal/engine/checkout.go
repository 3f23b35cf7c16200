package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
)

// CheckoutRequest carries the cart and everything needed to price it.
// MaxQuantity bounds per-line quantities; zero means unbounded.
type CheckoutRequest struct {
	Key         uuid.UUID
	UserID      int64
	Lines       []model.LineItem
	Delivery    model.DeliveryDetails
	Payment     model.PaymentDetails
	Profile     *model.CustomerProfile
	Catalog     *Catalog
	MaxQuantity int
	Now         time.Time
}

// Checkout validates a cart against the catalog snapshot and returns the
// records to persist. It never mutates its inputs.
func Checkout(req CheckoutRequest) (*model.OrderCreationIntent, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domainErrors.ErrInvalidInput)
	}
	if req.Catalog == nil {
		return nil, fmt.Errorf("%w: catalog snapshot is required", domainErrors.ErrInvalidInput)
	}
	seen := make(map[int64]bool, len(req.Lines))
	for _, line := range req.Lines {
		if seen[line.ProductID] {
			return nil, fmt.Errorf("%w: product %d appears more than once", domainErrors.ErrInvalidInput, line.ProductID)
		}
		seen[line.ProductID] = true
		if line.Quantity < 1 || (req.MaxQuantity > 0 && line.Quantity > req.MaxQuantity) {
			return nil, fmt.Errorf("%w: quantity %d for product %d out of range", domainErrors.ErrInvalidInput, line.Quantity, line.ProductID)
		}
	}

	if err := ValidateStock(StockLines(req.Lines, req.Catalog)).Err(); err != nil {
		return nil, err
	}

	items, err := confirmPrices(req.Lines, req.Catalog)
	if err != nil {
		return nil, err
	}

	totals := Aggregate(items)

	delivery := req.Delivery
	delivery.Recipient = Prefill(delivery.Recipient, req.Profile)
	if err := RequireFields(delivery, req.Payment); err != nil {
		return nil, err
	}

	key := req.Key
	if key == uuid.Nil {
		key = uuid.New()
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &model.OrderCreationIntent{
		CheckoutKey: key,
		UserID:      req.UserID,
		Items:       items,
		Totals:      totals,
		Status:      model.OrderStatusPendingPaymentVerification,
		Payment: model.Payment{
			Method:    req.Payment.Method,
			Reference: req.Payment.Reference,
			ProofURL:  req.Payment.ProofURL,
			Amount:    totals.GrandTotal,
			CreatedAt: now,
		},
		Shipment: model.Shipment{
			Method:    delivery.Method,
			Recipient: delivery.Recipient,
			CreatedAt: now,
		},
		Decrements: decrementsFor(items),
		CreatedAt:  now,
	}, nil
}

// Revalidate re-checks already priced items against a fresher snapshot, such
// as product rows locked by the persisting transaction.
func Revalidate(items []model.LineItem, catalog *Catalog) error {
	if err := ValidateStock(StockLines(items, catalog)).Err(); err != nil {
		return err
	}
	_, err := confirmPrices(items, catalog)
	return err
}

// confirmPrices re-resolves every line and fails when any captured final
// price differs from the live one.
func confirmPrices(lines []model.LineItem, catalog *Catalog) ([]model.LineItem, error) {
	items := make([]model.LineItem, 0, len(lines))
	var stale []domainErrors.StaleLine
	for _, line := range lines {
		fresh, err := catalog.Price(line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if !fresh.FinalUnitPrice.Equal(line.FinalUnitPrice) {
			stale = append(stale, domainErrors.StaleLine{
				ProductID: line.ProductID,
				Captured:  line.FinalUnitPrice,
				Current:   fresh.FinalUnitPrice,
			})
			continue
		}
		items = append(items, fresh)
	}
	if len(stale) > 0 {
		return nil, &domainErrors.StalePricingError{Lines: stale}
	}
	return items, nil
}

func decrementsFor(items []model.LineItem) []model.StockDecrement {
	out := make([]model.StockDecrement, 0, len(items))
	for _, item := range items {
		out = append(out, model.StockDecrement{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return out
}

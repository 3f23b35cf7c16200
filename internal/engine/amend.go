package engine

import (
	"fmt"
	"time"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
)

// Amend changes item quantities of an order awaiting payment verification.
// Prices stay frozen; only quantities move. quantities maps product IDs to new
// quantities (zero removes the line) and stock holds the current stock of
// every affected product. The order's own reservation counts as available.
func Amend(order model.Order, quantities map[int64]int, stock map[int64]int, at time.Time) (model.OrderAmendment, error) {
	if order.Status != model.OrderStatusPendingPaymentVerification {
		return model.OrderAmendment{}, fmt.Errorf("%w: order %d is %s", domainErrors.ErrOrderLocked, order.ID, order.Status)
	}

	present := make(map[int64]bool, len(order.Items))
	for _, item := range order.Items {
		present[item.ProductID] = true
	}
	for productID, qty := range quantities {
		if !present[productID] {
			return model.OrderAmendment{}, fmt.Errorf("%w: product %d is not part of order %d", domainErrors.ErrInvalidInput, productID, order.ID)
		}
		if qty < 0 {
			return model.OrderAmendment{}, fmt.Errorf("%w: negative quantity for product %d", domainErrors.ErrInvalidInput, productID)
		}
	}

	items := make([]model.LineItem, 0, len(order.Items))
	lines := make([]StockLine, 0, len(order.Items))
	adjustments := make([]model.StockAdjustment, 0, len(order.Items))
	for _, item := range order.Items {
		qty, changed := quantities[item.ProductID]
		if !changed {
			qty = item.Quantity
		}
		if delta := qty - item.Quantity; delta != 0 {
			adjustments = append(adjustments, model.StockAdjustment{ProductID: item.ProductID, Delta: delta})
		}
		lines = append(lines, StockLine{
			ProductID: item.ProductID,
			Requested: qty,
			Available: stock[item.ProductID],
			Reserved:  item.Quantity,
		})
		if qty == 0 {
			continue
		}
		amended := item
		amended.Quantity = qty
		items = append(items, amended)
	}

	if len(items) == 0 {
		return model.OrderAmendment{}, fmt.Errorf("%w: order %d would have no items", domainErrors.ErrInvalidInput, order.ID)
	}
	if err := ValidateStock(lines).Err(); err != nil {
		return model.OrderAmendment{}, err
	}

	return model.OrderAmendment{
		OrderID:     order.ID,
		Items:       items,
		Adjustments: adjustments,
		Totals:      Aggregate(items),
		At:          at,
	}, nil
}

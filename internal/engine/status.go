package engine

import (
	"time"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
)

// successor is the only forward move allowed from each non-terminal status.
var successor = map[model.OrderStatus]model.OrderStatus{
	model.OrderStatusPendingPaymentVerification: model.OrderStatusProcessing,
	model.OrderStatusProcessing:                 model.OrderStatusShipped,
	model.OrderStatusShipped:                    model.OrderStatusDelivered,
}

var cancellable = map[model.OrderStatus]bool{
	model.OrderStatusPendingPaymentVerification: true,
	model.OrderStatusProcessing:                 true,
	model.OrderStatusShipped:                    true,
}

// Lifecycle lists the forward statuses in canonical order.
func Lifecycle() []model.OrderStatus {
	return []model.OrderStatus{
		model.OrderStatusPendingPaymentVerification,
		model.OrderStatusProcessing,
		model.OrderStatusShipped,
		model.OrderStatusDelivered,
	}
}

// KnownStatus reports whether s belongs to the lifecycle.
func KnownStatus(s model.OrderStatus) bool {
	_, forward := successor[s]
	return forward || IsTerminal(s)
}

// IsTerminal reports whether no transition may leave s.
func IsTerminal(s model.OrderStatus) bool {
	return s == model.OrderStatusDelivered || s == model.OrderStatusCancelled
}

// NextStatus returns the single status selectable as a manual advance target.
func NextStatus(s model.OrderStatus) (model.OrderStatus, bool) {
	next, ok := successor[s]
	return next, ok
}

// Advance validates a forward transition to target.
func Advance(order model.Order, target model.OrderStatus, at time.Time) (model.StatusChange, error) {
	next, ok := successor[order.Status]
	if !ok || target != next {
		return model.StatusChange{}, &domainErrors.InvalidTransitionError{From: string(order.Status), To: string(target)}
	}
	return model.StatusChange{OrderID: order.ID, From: order.Status, To: target, At: at}, nil
}

// Cancel validates cancellation. It returns noop=true for an order that is
// already cancelled.
func Cancel(order model.Order, restoreStock bool, at time.Time) (change model.StatusChange, noop bool, err error) {
	if order.Status == model.OrderStatusCancelled {
		return model.StatusChange{}, true, nil
	}
	if !cancellable[order.Status] {
		return model.StatusChange{}, false, &domainErrors.InvalidTransitionError{From: string(order.Status), To: string(model.OrderStatusCancelled)}
	}
	return model.StatusChange{
		OrderID:      order.ID,
		From:         order.Status,
		To:           model.OrderStatusCancelled,
		RestoreStock: restoreStock,
		At:           at,
	}, false, nil
}

// RestockFor lists the quantities a cancellation returns to stock.
func RestockFor(order model.Order) []model.StockAdjustment {
	adjustments := make([]model.StockAdjustment, 0, len(order.Items))
	for _, item := range order.Items {
		adjustments = append(adjustments, model.StockAdjustment{ProductID: item.ProductID, Delta: -item.Quantity})
	}
	return adjustments
}

// Apply records a validated change on the order value.
func Apply(order *model.Order, change model.StatusChange) {
	order.Status = change.To
	order.UpdatedAt = change.At
	at := change.At
	switch change.To {
	case model.OrderStatusProcessing:
		order.ProcessingAt = &at
	case model.OrderStatusShipped:
		order.ShippedAt = &at
	case model.OrderStatusDelivered:
		order.DeliveredAt = &at
	case model.OrderStatusCancelled:
		order.CancelledAt = &at
	}
}

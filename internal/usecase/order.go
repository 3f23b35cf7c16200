package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
	"github.com/polkiloo/autoparts/internal/domain/repository"
	"github.com/polkiloo/autoparts/internal/engine"
)

// OrderDetail is an order with its derived totals and the single status an
// operator may advance it to.
type OrderDetail struct {
	Order      model.Order
	Totals     model.Totals
	NextStatus *model.OrderStatus
}

// OrderUseCase encapsulates order lifecycle logic for customers and operators.
type OrderUseCase struct {
	orders repository.OrderRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{orders: orders, logger: logger, now: time.Now}
}

// ListByUser returns the customer's orders, newest first.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID int64) ([]OrderDetail, error) {
	orders, err := u.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return details(orders), nil
}

// GetForUser returns one of the customer's orders. Orders of other customers
// are reported as not found.
func (u *OrderUseCase) GetForUser(ctx context.Context, userID, orderID int64) (*OrderDetail, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domainErrors.ErrNotFound
	}
	d := NewOrderDetail(*order)
	return &d, nil
}

// CancelByCustomer cancels the customer's own order while it awaits payment
// verification. Reserved stock is always returned.
func (u *OrderUseCase) CancelByCustomer(ctx context.Context, userID, orderID int64) (*OrderDetail, error) {
	return u.transition(ctx, orderID, func(order model.Order) (model.StatusChange, bool, error) {
		if order.UserID != userID {
			return model.StatusChange{}, false, domainErrors.ErrNotFound
		}
		if order.Status != model.OrderStatusPendingPaymentVerification && order.Status != model.OrderStatusCancelled {
			return model.StatusChange{}, false, fmt.Errorf("%w: order %d is %s", domainErrors.ErrOrderLocked, order.ID, order.Status)
		}
		return engine.Cancel(order, true, u.now().UTC())
	})
}

// List returns every order, optionally filtered by status.
func (u *OrderUseCase) List(ctx context.Context, status *model.OrderStatus) ([]OrderDetail, error) {
	if status != nil && !engine.KnownStatus(*status) {
		return nil, fmt.Errorf("%w: unknown status %q", domainErrors.ErrInvalidInput, *status)
	}
	orders, err := u.orders.ListAll(ctx, status)
	if err != nil {
		return nil, err
	}
	return details(orders), nil
}

// Get returns any order for the dashboard.
func (u *OrderUseCase) Get(ctx context.Context, orderID int64) (*OrderDetail, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	d := NewOrderDetail(*order)
	return &d, nil
}

// Advance moves an order to its immediate successor.
func (u *OrderUseCase) Advance(ctx context.Context, orderID int64, target model.OrderStatus) (*OrderDetail, error) {
	return u.transition(ctx, orderID, func(order model.Order) (model.StatusChange, bool, error) {
		change, err := engine.Advance(order, target, u.now().UTC())
		return change, false, err
	})
}

// Cancel cancels any non-terminal order. restoreStock=false keeps the
// reserved units out of stock, e.g. when goods were damaged in transit.
func (u *OrderUseCase) Cancel(ctx context.Context, orderID int64, restoreStock bool) (*OrderDetail, error) {
	return u.transition(ctx, orderID, func(order model.Order) (model.StatusChange, bool, error) {
		return engine.Cancel(order, restoreStock, u.now().UTC())
	})
}

// Amend changes item quantities of an order awaiting payment verification.
// A zero quantity removes the line.
func (u *OrderUseCase) Amend(ctx context.Context, orderID int64, quantities map[int64]int) (*OrderDetail, error) {
	if len(quantities) == 0 {
		return nil, fmt.Errorf("%w: no quantities to change", domainErrors.ErrInvalidInput)
	}
	order, err := u.orders.AmendQuantities(ctx, orderID, func(order model.Order, stock map[int64]int) (model.OrderAmendment, error) {
		return engine.Amend(order, quantities, stock, u.now().UTC())
	})
	if err != nil {
		u.logger.Info("order amendment rejected", slog.Int64("order_id", orderID), slog.String("error", err.Error()))
		return nil, err
	}
	d := NewOrderDetail(*order)
	u.logger.Info("order amended",
		slog.Int64("order_id", order.ID),
		slog.String("grand_total", d.Totals.GrandTotal.StringFixed(2)),
	)
	return &d, nil
}

func (u *OrderUseCase) transition(ctx context.Context, orderID int64, decide repository.TransitionDecider) (*OrderDetail, error) {
	order, err := u.orders.Transition(ctx, orderID, decide)
	if err != nil {
		u.logger.Info("order transition rejected", slog.Int64("order_id", orderID), slog.String("error", err.Error()))
		return nil, err
	}
	u.logger.Info("order transitioned", slog.Int64("order_id", order.ID), slog.String("status", string(order.Status)))
	d := NewOrderDetail(*order)
	return &d, nil
}

// NewOrderDetail derives totals and the next status of order.
func NewOrderDetail(order model.Order) OrderDetail {
	d := OrderDetail{Order: order, Totals: engine.Aggregate(order.Items)}
	if next, ok := engine.NextStatus(order.Status); ok {
		d.NextStatus = &next
	}
	return d
}

func details(orders []model.Order) []OrderDetail {
	out := make([]OrderDetail, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrderDetail(o))
	}
	return out
}

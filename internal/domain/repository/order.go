package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/autoparts/internal/domain/model"
)

// IntentGuard re-validates a creation intent against product rows locked by
// the creating transaction and the categories read alongside them.
// Returning an error aborts the transaction.
type IntentGuard func(locked []model.Product, categories []model.Category) error

// TransitionDecider validates a status change against the locked order.
// noop reports that the order already has the requested outcome.
type TransitionDecider func(order model.Order) (change model.StatusChange, noop bool, err error)

// AmendmentPlanner computes an amendment for the locked order given the
// current stock of its products.
type AmendmentPlanner func(order model.Order, stock map[int64]int) (model.OrderAmendment, error)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// CreateFromIntent persists the intent atomically. When an order with the
	// same checkout key exists it is returned with created=false.
	CreateFromIntent(ctx context.Context, intent *model.OrderCreationIntent, guard IntentGuard) (*model.Order, bool, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByCheckoutKey(ctx context.Context, key uuid.UUID) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListAll(ctx context.Context, status *model.OrderStatus) ([]model.Order, error)
	Transition(ctx context.Context, orderID int64, decide TransitionDecider) (*model.Order, error)
	AmendQuantities(ctx context.Context, orderID int64, plan AmendmentPlanner) (*model.Order, error)
}

// InvoiceRepository stores issued invoices, at most one per order.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice model.Invoice) (*model.Invoice, bool, error)
	GetByOrder(ctx context.Context, orderID int64) (*model.Invoice, error)
}

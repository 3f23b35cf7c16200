package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
	"github.com/polkiloo/autoparts/internal/domain/repository"
	"github.com/polkiloo/autoparts/internal/engine"
)

// InvoiceView is an invoice rendered from its order's frozen items.
type InvoiceView struct {
	Invoice model.Invoice
	Order   model.Order
	Totals  model.Totals
	Display *Display
}

// InvoiceUseCase issues and renders invoices.
type InvoiceUseCase struct {
	invoices  repository.InvoiceRepository
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	exchange  *ExchangeUseCase
	node      *snowflake.Node
	logger    *slog.Logger
	now       func() time.Time
}

// NewInvoiceUseCase constructs InvoiceUseCase.
func NewInvoiceUseCase(
	invoices repository.InvoiceRepository,
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	exchange *ExchangeUseCase,
	node *snowflake.Node,
	logger *slog.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		invoices:  invoices,
		orders:    orders,
		customers: customers,
		exchange:  exchange,
		node:      node,
		logger:    logger,
		now:       time.Now,
	}
}

// Issue creates the invoice of a shipped or delivered order. Issuing twice
// returns the first invoice with created=false.
func (u *InvoiceUseCase) Issue(ctx context.Context, orderID int64) (*InvoiceView, bool, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	return u.issue(ctx, order)
}

// ForCustomer returns the invoice of the customer's order, issuing it on
// first access once the order has shipped.
func (u *InvoiceUseCase) ForCustomer(ctx context.Context, userID, orderID int64) (*InvoiceView, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domainErrors.ErrNotFound
	}

	invoice, err := u.invoices.GetByOrder(ctx, order.ID)
	switch {
	case err == nil:
		return u.render(*invoice, *order), nil
	case !errors.Is(err, domainErrors.ErrNotFound):
		return nil, err
	}

	view, _, err := u.issue(ctx, order)
	return view, err
}

func (u *InvoiceUseCase) issue(ctx context.Context, order *model.Order) (*InvoiceView, bool, error) {
	if order.Status != model.OrderStatusShipped && order.Status != model.OrderStatusDelivered {
		return nil, false, fmt.Errorf("%w: order %d is %s", domainErrors.ErrInvoiceNotReady, order.ID, order.Status)
	}

	customer, err := u.customerSnapshot(ctx, order)
	if err != nil {
		return nil, false, err
	}

	invoice, created, err := u.invoices.Create(ctx, model.Invoice{
		Number:   u.node.Generate().String(),
		OrderID:  order.ID,
		Customer: customer,
		IssuedAt: u.now().UTC(),
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		u.logger.Info("invoice issued", slog.Int64("order_id", order.ID), slog.String("number", invoice.Number))
	}
	return u.render(*invoice, *order), created, nil
}

// customerSnapshot prefers the stored profile and falls back to the
// shipment recipient for fields the profile leaves empty.
func (u *InvoiceUseCase) customerSnapshot(ctx context.Context, order *model.Order) (model.CustomerProfile, error) {
	profile, err := u.customers.Get(ctx, order.UserID)
	if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		return model.CustomerProfile{}, err
	}
	if profile == nil {
		profile = &model.CustomerProfile{UserID: order.UserID}
	}
	if order.Shipment != nil {
		r := order.Shipment.Recipient
		fill := func(dst *string, src string) {
			if strings.TrimSpace(*dst) == "" {
				*dst = src
			}
		}
		fill(&profile.FullName, r.Name)
		fill(&profile.NationalID, r.NationalID)
		fill(&profile.Phone, r.Phone)
		fill(&profile.Address, r.Address)
		fill(&profile.City, r.City)
		fill(&profile.State, r.State)
	}
	return *profile, nil
}

func (u *InvoiceUseCase) render(invoice model.Invoice, order model.Order) *InvoiceView {
	totals := engine.Aggregate(order.Items)
	return &InvoiceView{
		Invoice: invoice,
		Order:   order,
		Totals:  totals,
		Display: u.exchange.Display(totals.GrandTotal),
	}
}

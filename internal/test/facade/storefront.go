// Package facade provides storefront facade stubs for HTTP layer tests.
package facade

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/autoparts/internal/domain/model"
	"github.com/polkiloo/autoparts/internal/engine"
	"github.com/polkiloo/autoparts/internal/test"
	"github.com/polkiloo/autoparts/internal/usecase"
)

// SampleOrder returns a pending order with one line of two units at 10.00.
func SampleOrder(id, userID int64) model.Order {
	return model.Order{
		ID:     id,
		UserID: userID,
		Status: model.OrderStatusPendingPaymentVerification,
		Items: []model.LineItem{{
			ProductID:      1,
			ProductName:    "Brake pad",
			Quantity:       2,
			UnitPrice:      decimal.RequireFromString("10.00"),
			FinalUnitPrice: decimal.RequireFromString("10.00"),
			DiscountPct:    decimal.Zero,
			DiscountSource: model.DiscountSourceNone,
		}},
		Payment:   &model.Payment{OrderID: id, Method: model.PaymentMethodCash, Amount: decimal.RequireFromString("20.00")},
		CreatedAt: time.Unix(0, 0).UTC(),
		UpdatedAt: time.Unix(0, 0).UTC(),
	}
}

func sampleDetail(id, userID int64) *usecase.OrderDetail {
	d := usecase.NewOrderDetail(SampleOrder(id, userID))
	return &d
}

func sampleInvoice(orderID int64) *usecase.InvoiceView {
	order := SampleOrder(orderID, 1)
	order.Status = model.OrderStatusShipped
	return &usecase.InvoiceView{
		Invoice: model.Invoice{ID: 1, Number: "1700000000000000001", OrderID: orderID, IssuedAt: time.Unix(0, 0).UTC()},
		Order:   order,
		Totals:  engine.Aggregate(order.Items),
	}
}

// StorefrontStub implements every facade consumed by HTTP handlers.
type StorefrontStub struct {
	test.AuthFacadeStub

	ProfileFn       func(context.Context, int64) (*model.CustomerProfile, error)
	UpdateProfileFn func(context.Context, model.CustomerProfile) (*model.CustomerProfile, error)

	ProductsFn  func(context.Context) ([]usecase.ProductView, error)
	ProductFn   func(context.Context, int64) (*usecase.ProductView, error)
	QuoteCartFn func(context.Context, []usecase.CartLine) (*usecase.CartQuote, error)
	Rate        *model.ExchangeRate

	CheckoutFn func(context.Context, usecase.CheckoutInput) (*usecase.OrderDetail, bool, error)

	OrdersFn      func(context.Context, int64) ([]usecase.OrderDetail, error)
	OrderFn       func(context.Context, int64, int64) (*usecase.OrderDetail, error)
	CancelOrderFn func(context.Context, int64, int64) (*usecase.OrderDetail, error)
	InvoiceFn     func(context.Context, int64, int64) (*usecase.InvoiceView, error)

	AdminOrdersFn      func(context.Context, *model.OrderStatus) ([]usecase.OrderDetail, error)
	AdminOrderFn       func(context.Context, int64) (*usecase.OrderDetail, error)
	AdvanceOrderFn     func(context.Context, int64, model.OrderStatus) (*usecase.OrderDetail, error)
	AdminCancelOrderFn func(context.Context, int64, bool) (*usecase.OrderDetail, error)
	AmendOrderFn       func(context.Context, int64, map[int64]int) (*usecase.OrderDetail, error)
	IssueInvoiceFn     func(context.Context, int64) (*usecase.InvoiceView, bool, error)
}

// Profile returns the configured profile or an empty one.
func (s StorefrontStub) Profile(ctx context.Context, userID int64) (*model.CustomerProfile, error) {
	if s.ProfileFn != nil {
		return s.ProfileFn(ctx, userID)
	}
	return &model.CustomerProfile{UserID: userID}, nil
}

// UpdateProfile echoes the profile back.
func (s StorefrontStub) UpdateProfile(ctx context.Context, profile model.CustomerProfile) (*model.CustomerProfile, error) {
	if s.UpdateProfileFn != nil {
		return s.UpdateProfileFn(ctx, profile)
	}
	return &profile, nil
}

// Products returns a single undiscounted product by default.
func (s StorefrontStub) Products(ctx context.Context) ([]usecase.ProductView, error) {
	if s.ProductsFn != nil {
		return s.ProductsFn(ctx)
	}
	view, _ := s.Product(ctx, 1)
	return []usecase.ProductView{*view}, nil
}

// Product returns the configured product or a default one with id.
func (s StorefrontStub) Product(ctx context.Context, id int64) (*usecase.ProductView, error) {
	if s.ProductFn != nil {
		return s.ProductFn(ctx, id)
	}
	p := model.Product{ID: id, SKU: "BP-1", Name: "Brake pad", Price: decimal.RequireFromString("10.00"), Stock: 5}
	return &usecase.ProductView{Product: p, Price: engine.ResolvePrice(p, nil)}, nil
}

// QuoteCart prices every line at 10.00 unless overridden.
func (s StorefrontStub) QuoteCart(ctx context.Context, lines []usecase.CartLine) (*usecase.CartQuote, error) {
	if s.QuoteCartFn != nil {
		return s.QuoteCartFn(ctx, lines)
	}
	items := make([]model.LineItem, 0, len(lines))
	for _, l := range lines {
		price := decimal.RequireFromString("10.00")
		items = append(items, model.LineItem{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: price, FinalUnitPrice: price, DiscountSource: model.DiscountSourceNone})
	}
	return &usecase.CartQuote{Items: items, Totals: engine.Aggregate(items)}, nil
}

// ExchangeRate returns the configured rate.
func (s StorefrontStub) ExchangeRate() (*model.ExchangeRate, bool) {
	return s.Rate, s.Rate != nil
}

// Checkout creates a sample order for the caller unless overridden.
func (s StorefrontStub) Checkout(ctx context.Context, in usecase.CheckoutInput) (*usecase.OrderDetail, bool, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, in)
	}
	return sampleDetail(1, in.UserID), true, nil
}

// Orders returns one sample order.
func (s StorefrontStub) Orders(ctx context.Context, userID int64) ([]usecase.OrderDetail, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userID)
	}
	return []usecase.OrderDetail{*sampleDetail(1, userID)}, nil
}

// Order returns a sample order owned by userID.
func (s StorefrontStub) Order(ctx context.Context, userID, orderID int64) (*usecase.OrderDetail, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, userID, orderID)
	}
	return sampleDetail(orderID, userID), nil
}

// CancelOrder returns the sample order cancelled.
func (s StorefrontStub) CancelOrder(ctx context.Context, userID, orderID int64) (*usecase.OrderDetail, error) {
	if s.CancelOrderFn != nil {
		return s.CancelOrderFn(ctx, userID, orderID)
	}
	order := SampleOrder(orderID, userID)
	order.Status = model.OrderStatusCancelled
	d := usecase.NewOrderDetail(order)
	return &d, nil
}

// Invoice returns a sample invoice.
func (s StorefrontStub) Invoice(ctx context.Context, userID, orderID int64) (*usecase.InvoiceView, error) {
	if s.InvoiceFn != nil {
		return s.InvoiceFn(ctx, userID, orderID)
	}
	return sampleInvoice(orderID), nil
}

// AdminOrders returns one sample order.
func (s StorefrontStub) AdminOrders(ctx context.Context, status *model.OrderStatus) ([]usecase.OrderDetail, error) {
	if s.AdminOrdersFn != nil {
		return s.AdminOrdersFn(ctx, status)
	}
	return []usecase.OrderDetail{*sampleDetail(1, 1)}, nil
}

// AdminOrder returns a sample order.
func (s StorefrontStub) AdminOrder(ctx context.Context, orderID int64) (*usecase.OrderDetail, error) {
	if s.AdminOrderFn != nil {
		return s.AdminOrderFn(ctx, orderID)
	}
	return sampleDetail(orderID, 1), nil
}

// AdvanceOrder returns the sample order moved to target.
func (s StorefrontStub) AdvanceOrder(ctx context.Context, orderID int64, target model.OrderStatus) (*usecase.OrderDetail, error) {
	if s.AdvanceOrderFn != nil {
		return s.AdvanceOrderFn(ctx, orderID, target)
	}
	order := SampleOrder(orderID, 1)
	order.Status = target
	d := usecase.NewOrderDetail(order)
	return &d, nil
}

// AdminCancelOrder returns the sample order cancelled.
func (s StorefrontStub) AdminCancelOrder(ctx context.Context, orderID int64, restoreStock bool) (*usecase.OrderDetail, error) {
	if s.AdminCancelOrderFn != nil {
		return s.AdminCancelOrderFn(ctx, orderID, restoreStock)
	}
	return s.CancelOrder(ctx, 1, orderID)
}

// AmendOrder returns the sample order.
func (s StorefrontStub) AmendOrder(ctx context.Context, orderID int64, quantities map[int64]int) (*usecase.OrderDetail, error) {
	if s.AmendOrderFn != nil {
		return s.AmendOrderFn(ctx, orderID, quantities)
	}
	return sampleDetail(orderID, 1), nil
}

// IssueInvoice returns a freshly issued sample invoice.
func (s StorefrontStub) IssueInvoice(ctx context.Context, orderID int64) (*usecase.InvoiceView, bool, error) {
	if s.IssueInvoiceFn != nil {
		return s.IssueInvoiceFn(ctx, orderID)
	}
	return sampleInvoice(orderID), true, nil
}

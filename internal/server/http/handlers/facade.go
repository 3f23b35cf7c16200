package handlers

import (
	"context"

	"github.com/polkiloo/autoparts/internal/domain/model"
	pkgAuth "github.com/polkiloo/autoparts/internal/pkg/auth"
	"github.com/polkiloo/autoparts/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (pkgAuth.Claims, error)
}

// ProfileFacade reads and stores customer contact data.
type ProfileFacade interface {
	Profile(ctx context.Context, userID int64) (*model.CustomerProfile, error)
	UpdateProfile(ctx context.Context, profile model.CustomerProfile) (*model.CustomerProfile, error)
}

// CatalogFacade serves the priced catalog.
type CatalogFacade interface {
	Products(ctx context.Context) ([]usecase.ProductView, error)
	Product(ctx context.Context, id int64) (*usecase.ProductView, error)
	QuoteCart(ctx context.Context, lines []usecase.CartLine) (*usecase.CartQuote, error)
	ExchangeRate() (*model.ExchangeRate, bool)
}

// CheckoutFacade turns carts into orders.
type CheckoutFacade interface {
	Checkout(ctx context.Context, in usecase.CheckoutInput) (*usecase.OrderDetail, bool, error)
}

// CustomerOrderFacade exposes a customer's own orders.
type CustomerOrderFacade interface {
	Orders(ctx context.Context, userID int64) ([]usecase.OrderDetail, error)
	Order(ctx context.Context, userID, orderID int64) (*usecase.OrderDetail, error)
	CancelOrder(ctx context.Context, userID, orderID int64) (*usecase.OrderDetail, error)
	Invoice(ctx context.Context, userID, orderID int64) (*usecase.InvoiceView, error)
}

// AdminOrderFacade exposes the operator dashboard.
type AdminOrderFacade interface {
	AdminOrders(ctx context.Context, status *model.OrderStatus) ([]usecase.OrderDetail, error)
	AdminOrder(ctx context.Context, orderID int64) (*usecase.OrderDetail, error)
	AdvanceOrder(ctx context.Context, orderID int64, target model.OrderStatus) (*usecase.OrderDetail, error)
	AdminCancelOrder(ctx context.Context, orderID int64, restoreStock bool) (*usecase.OrderDetail, error)
	AmendOrder(ctx context.Context, orderID int64, quantities map[int64]int) (*usecase.OrderDetail, error)
	IssueInvoice(ctx context.Context, orderID int64) (*usecase.InvoiceView, bool, error)
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	AuthFacade
	ProfileFacade
	CatalogFacade
	CheckoutFacade
	CustomerOrderFacade
	AdminOrderFacade
}

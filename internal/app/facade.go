package app

import (
	"context"

	"github.com/polkiloo/autoparts/internal/domain/model"
	pkgAuth "github.com/polkiloo/autoparts/internal/pkg/auth"
	"github.com/polkiloo/autoparts/internal/usecase"
)

// StorefrontFacade bundles the use cases behind the HTTP API and the
// background rate refresher.
type StorefrontFacade struct {
	auth     *usecase.AuthUseCase
	catalog  *usecase.CatalogUseCase
	checkout *usecase.CheckoutUseCase
	orders   *usecase.OrderUseCase
	invoices *usecase.InvoiceUseCase
	exchange *usecase.ExchangeUseCase
}

// NewStorefrontFacade constructs StorefrontFacade.
func NewStorefrontFacade(
	auth *usecase.AuthUseCase,
	catalog *usecase.CatalogUseCase,
	checkout *usecase.CheckoutUseCase,
	orders *usecase.OrderUseCase,
	invoices *usecase.InvoiceUseCase,
	exchange *usecase.ExchangeUseCase,
) *StorefrontFacade {
	return &StorefrontFacade{
		auth:     auth,
		catalog:  catalog,
		checkout: checkout,
		orders:   orders,
		invoices: invoices,
		exchange: exchange,
	}
}

func (f *StorefrontFacade) Register(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password)
	return token, err
}

func (f *StorefrontFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *StorefrontFacade) ParseToken(token string) (pkgAuth.Claims, error) {
	return f.auth.ParseToken(token)
}

// EnsureAdmin bootstraps the operator account.
func (f *StorefrontFacade) EnsureAdmin(ctx context.Context, login, password string) error {
	_, err := f.auth.EnsureAdmin(ctx, login, password)
	return err
}

func (f *StorefrontFacade) Profile(ctx context.Context, userID int64) (*model.CustomerProfile, error) {
	return f.auth.Profile(ctx, userID)
}

func (f *StorefrontFacade) UpdateProfile(ctx context.Context, profile model.CustomerProfile) (*model.CustomerProfile, error) {
	return f.auth.UpdateProfile(ctx, profile)
}

func (f *StorefrontFacade) Products(ctx context.Context) ([]usecase.ProductView, error) {
	return f.catalog.Products(ctx)
}

func (f *StorefrontFacade) Product(ctx context.Context, id int64) (*usecase.ProductView, error) {
	return f.catalog.Product(ctx, id)
}

func (f *StorefrontFacade) QuoteCart(ctx context.Context, lines []usecase.CartLine) (*usecase.CartQuote, error) {
	return f.catalog.Quote(ctx, lines)
}

func (f *StorefrontFacade) ExchangeRate() (*model.ExchangeRate, bool) {
	return f.exchange.Current()
}

// RefreshExchangeRate is polled by the background refresher.
func (f *StorefrontFacade) RefreshExchangeRate(ctx context.Context) (*model.ExchangeRate, error) {
	return f.exchange.Refresh(ctx)
}

func (f *StorefrontFacade) Checkout(ctx context.Context, in usecase.CheckoutInput) (*usecase.OrderDetail, bool, error) {
	order, created, err := f.checkout.Checkout(ctx, in)
	if err != nil {
		return nil, false, err
	}
	detail := usecase.NewOrderDetail(*order)
	return &detail, created, nil
}

func (f *StorefrontFacade) Orders(ctx context.Context, userID int64) ([]usecase.OrderDetail, error) {
	return f.orders.ListByUser(ctx, userID)
}

func (f *StorefrontFacade) Order(ctx context.Context, userID, orderID int64) (*usecase.OrderDetail, error) {
	return f.orders.GetForUser(ctx, userID, orderID)
}

func (f *StorefrontFacade) CancelOrder(ctx context.Context, userID, orderID int64) (*usecase.OrderDetail, error) {
	return f.orders.CancelByCustomer(ctx, userID, orderID)
}

func (f *StorefrontFacade) Invoice(ctx context.Context, userID, orderID int64) (*usecase.InvoiceView, error) {
	return f.invoices.ForCustomer(ctx, userID, orderID)
}

func (f *StorefrontFacade) AdminOrders(ctx context.Context, status *model.OrderStatus) ([]usecase.OrderDetail, error) {
	return f.orders.List(ctx, status)
}

func (f *StorefrontFacade) AdminOrder(ctx context.Context, orderID int64) (*usecase.OrderDetail, error) {
	return f.orders.Get(ctx, orderID)
}

func (f *StorefrontFacade) AdvanceOrder(ctx context.Context, orderID int64, target model.OrderStatus) (*usecase.OrderDetail, error) {
	return f.orders.Advance(ctx, orderID, target)
}

func (f *StorefrontFacade) AdminCancelOrder(ctx context.Context, orderID int64, restoreStock bool) (*usecase.OrderDetail, error) {
	return f.orders.Cancel(ctx, orderID, restoreStock)
}

func (f *StorefrontFacade) AmendOrder(ctx context.Context, orderID int64, quantities map[int64]int) (*usecase.OrderDetail, error) {
	return f.orders.Amend(ctx, orderID, quantities)
}

func (f *StorefrontFacade) IssueInvoice(ctx context.Context, orderID int64) (*usecase.InvoiceView, bool, error) {
	return f.invoices.Issue(ctx, orderID)
}

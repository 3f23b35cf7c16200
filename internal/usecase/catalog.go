package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
	"github.com/polkiloo/autoparts/internal/domain/repository"
	"github.com/polkiloo/autoparts/internal/engine"
)

// ProductView is a catalog entry with its effective price.
type ProductView struct {
	Product  model.Product
	Category *model.Category
	Price    engine.PriceQuote
	Display  *Display
}

// CartLine is a requested product and quantity.
type CartLine struct {
	ProductID int64
	Quantity  int
}

// CartQuote is a priced cart that has not been ordered.
type CartQuote struct {
	Items       []model.LineItem
	Totals      model.Totals
	Shortfalls  []domainErrors.Shortfall
	Unavailable []int64
	Display     *Display
}

// CatalogUseCase serves priced catalog reads and cart quotes.
type CatalogUseCase struct {
	catalog  repository.CatalogRepository
	exchange *ExchangeUseCase
	limit    int
}

// NewCatalogUseCase constructs CatalogUseCase. limit caps storefront cart lines.
func NewCatalogUseCase(catalog repository.CatalogRepository, exchange *ExchangeUseCase, limit int) *CatalogUseCase {
	return &CatalogUseCase{catalog: catalog, exchange: exchange, limit: limit}
}

// Products lists the catalog with effective prices.
func (u *CatalogUseCase) Products(ctx context.Context) ([]ProductView, error) {
	var (
		products   []model.Product
		categories []model.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = u.catalog.ListProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = u.catalog.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	snapshot := engine.NewCatalog(products, categories)
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, u.view(snapshot, p))
	}
	return views, nil
}

// Product returns one catalog entry with its effective price.
func (u *CatalogUseCase) Product(ctx context.Context, id int64) (*ProductView, error) {
	product, err := u.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	var categories []model.Category
	if product.CategoryID != nil {
		if categories, err = u.catalog.GetCategoriesByIDs(ctx, []int64{*product.CategoryID}); err != nil {
			return nil, err
		}
	}
	view := u.view(engine.NewCatalog([]model.Product{*product}, categories), *product)
	return &view, nil
}

// Snapshot loads the given products and every category.
func (u *CatalogUseCase) Snapshot(ctx context.Context, productIDs []int64) (*engine.Catalog, []model.Category, error) {
	return loadSnapshot(ctx, u.catalog, productIDs)
}

// Quote prices a storefront cart against the live catalog without reserving
// anything. Lines for the same product merge; a quantity below one or a merged
// quantity above the cart limit is rejected.
func (u *CatalogUseCase) Quote(ctx context.Context, lines []CartLine) (*CartQuote, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domainErrors.ErrInvalidInput)
	}

	merged := make(map[int64]int, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity %d for product %d out of range", domainErrors.ErrInvalidInput, line.Quantity, line.ProductID)
		}
		merged[line.ProductID] += line.Quantity
		if u.limit > 0 && merged[line.ProductID] > u.limit {
			return nil, fmt.Errorf("%w: quantity %d for product %d exceeds limit %d", domainErrors.ErrInvalidInput, merged[line.ProductID], line.ProductID, u.limit)
		}
	}

	cart := engine.NewCart(u.limit)
	for _, line := range lines {
		cart = cart.AddItem(model.LineItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	snapshot, _, err := u.Snapshot(ctx, productIDs(cart.Items))
	if err != nil {
		return nil, err
	}

	cart, missing := cart.Reprice(snapshot)
	report := engine.ValidateStock(engine.StockLines(cart.Items, snapshot))
	totals := cart.Totals()

	return &CartQuote{
		Items:       cart.Items,
		Totals:      totals,
		Shortfalls:  report.Shortfalls,
		Unavailable: missing,
		Display:     u.exchange.Display(totals.GrandTotal),
	}, nil
}

func (u *CatalogUseCase) view(snapshot *engine.Catalog, p model.Product) ProductView {
	quote := engine.ResolvePrice(p, snapshot.CategoryOf(p))
	return ProductView{
		Product:  p,
		Category: snapshot.CategoryOf(p),
		Price:    quote,
		Display:  u.exchange.Display(quote.FinalUnitPrice),
	}
}

// loadSnapshot reads products and categories concurrently.
func loadSnapshot(ctx context.Context, catalog repository.CatalogRepository, ids []int64) (*engine.Catalog, []model.Category, error) {
	var (
		products   []model.Product
		categories []model.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = catalog.GetProductsByIDs(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = catalog.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("load catalog snapshot: %w", err)
	}
	return engine.NewCatalog(products, categories), categories, nil
}

func productIDs(items []model.LineItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

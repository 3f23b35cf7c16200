package engine

import (
	"fmt"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
)

// Catalog is a read-only snapshot of products and categories.
type Catalog struct {
	products   map[int64]model.Product
	categories map[int64]model.Category
}

// NewCatalog indexes the given products and categories.
func NewCatalog(products []model.Product, categories []model.Category) *Catalog {
	c := &Catalog{
		products:   make(map[int64]model.Product, len(products)),
		categories: make(map[int64]model.Category, len(categories)),
	}
	for _, p := range products {
		c.products[p.ID] = p
	}
	for _, cat := range categories {
		c.categories[cat.ID] = cat
	}
	return c
}

// Product returns the snapshot of a product.
func (c *Catalog) Product(id int64) (model.Product, bool) {
	p, ok := c.products[id]
	return p, ok
}

// CategoryOf returns the product's category, or nil when the product has no
// category or references one missing from the snapshot.
func (c *Catalog) CategoryOf(p model.Product) *model.Category {
	if p.CategoryID == nil {
		return nil
	}
	cat, ok := c.categories[*p.CategoryID]
	if !ok {
		return nil
	}
	return &cat
}

// Quote resolves the current price of a product.
func (c *Catalog) Quote(productID int64) (PriceQuote, error) {
	p, ok := c.products[productID]
	if !ok {
		return PriceQuote{}, fmt.Errorf("%w: product %d", domainErrors.ErrNotFound, productID)
	}
	return ResolvePrice(p, c.CategoryOf(p)), nil
}

// Price builds a freshly priced line item.
func (c *Catalog) Price(productID int64, quantity int) (model.LineItem, error) {
	quote, err := c.Quote(productID)
	if err != nil {
		return model.LineItem{}, err
	}
	return quote.LineItem(c.products[productID], quantity), nil
}

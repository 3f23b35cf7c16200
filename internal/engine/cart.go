package engine

import "github.com/polkiloo/autoparts/internal/domain/model"

// StorefrontQuantityLimit caps a line's quantity in customer carts.
const StorefrontQuantityLimit = 10

// Cart is an immutable list of line items. Every update returns a new Cart.
// Limit caps per-line quantities; zero means unbounded (admin context).
type Cart struct {
	Items []model.LineItem
	Limit int
}

// NewCart returns an empty cart with the given quantity limit.
func NewCart(limit int) Cart {
	return Cart{Limit: limit}
}

func (c Cart) clamp(qty int) int {
	if qty < 1 {
		qty = 1
	}
	if c.Limit > 0 && qty > c.Limit {
		qty = c.Limit
	}
	return qty
}

func (c Cart) clone() []model.LineItem {
	items := make([]model.LineItem, len(c.Items))
	copy(items, c.Items)
	return items
}

func (c Cart) index(productID int64) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem adds a priced item, merging with an existing line for the same
// product. The newer capture replaces the older prices.
func (c Cart) AddItem(item model.LineItem) Cart {
	items := c.clone()
	if i := c.index(item.ProductID); i >= 0 {
		item.Quantity += items[i].Quantity
		item.Quantity = c.clamp(item.Quantity)
		items[i] = item
		return Cart{Items: items, Limit: c.Limit}
	}
	item.Quantity = c.clamp(item.Quantity)
	return Cart{Items: append(items, item), Limit: c.Limit}
}

// SetQuantity changes a line's quantity; a non-positive quantity removes it.
func (c Cart) SetQuantity(productID int64, qty int) Cart {
	if qty <= 0 {
		return c.RemoveItem(productID)
	}
	i := c.index(productID)
	if i < 0 {
		return c
	}
	items := c.clone()
	items[i].Quantity = c.clamp(qty)
	return Cart{Items: items, Limit: c.Limit}
}

// RemoveItem drops the line for productID.
func (c Cart) RemoveItem(productID int64) Cart {
	items := make([]model.LineItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	return Cart{Items: items, Limit: c.Limit}
}

// Reprice refreshes captured prices from the catalog. Products no longer in
// the catalog are dropped and returned separately.
func (c Cart) Reprice(catalog *Catalog) (Cart, []int64) {
	items := make([]model.LineItem, 0, len(c.Items))
	var missing []int64
	for _, item := range c.Items {
		fresh, err := catalog.Price(item.ProductID, item.Quantity)
		if err != nil {
			missing = append(missing, item.ProductID)
			continue
		}
		items = append(items, fresh)
	}
	return Cart{Items: items, Limit: c.Limit}, missing
}

// Totals aggregates the cart.
func (c Cart) Totals() model.Totals {
	return Aggregate(c.Items)
}

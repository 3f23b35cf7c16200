package dto

import "time"

// DisplayResponse is an informational conversion into the local currency.
type DisplayResponse struct {
	Currency string    `json:"currency"`
	Rate     string    `json:"rate"`
	Amount   string    `json:"amount"`
	AsOf     time.Time `json:"as_of"`
}

// CategoryResponse describes a product category.
type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DiscountPct string `json:"discount_pct"`
}

// ProductResponse is a catalog entry with its effective price.
type ProductResponse struct {
	ID             int64             `json:"id"`
	SKU            string            `json:"sku"`
	Name           string            `json:"name"`
	Stock          int               `json:"stock"`
	Category       *CategoryResponse `json:"category,omitempty"`
	UnitPrice      string            `json:"unit_price"`
	FinalUnitPrice string            `json:"final_unit_price"`
	DiscountPct    string            `json:"discount_pct"`
	DiscountSource string            `json:"discount_source"`
	Display        *DisplayResponse  `json:"display,omitempty"`
}

// CartLineRequest is a product and quantity in a cart.
type CartLineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CartQuoteRequest asks for a priced cart.
type CartQuoteRequest struct {
	Items []CartLineRequest `json:"items"`
}

// LineItemResponse is a priced order or cart line.
type LineItemResponse struct {
	ProductID      int64  `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPrice      string `json:"unit_price"`
	FinalUnitPrice string `json:"final_unit_price"`
	DiscountPct    string `json:"discount_pct"`
	DiscountSource string `json:"discount_source"`
	LineTotal      string `json:"line_total"`
}

// TotalsResponse summarises line items.
type TotalsResponse struct {
	SubtotalBeforeDiscount string `json:"subtotal_before_discount"`
	TotalDiscount          string `json:"total_discount"`
	GrandTotal             string `json:"grand_total"`
}

// CartQuoteResponse is a priced cart.
type CartQuoteResponse struct {
	Items       []LineItemResponse  `json:"items"`
	Totals      TotalsResponse      `json:"totals"`
	Shortfalls  []ShortfallResponse `json:"shortfalls,omitempty"`
	Unavailable []int64             `json:"unavailable,omitempty"`
	Display     *DisplayResponse    `json:"display,omitempty"`
}

// RateResponse is the cached exchange rate.
type RateResponse struct {
	Currency string    `json:"currency"`
	Rate     string    `json:"rate"`
	AsOf     time.Time `json:"as_of"`
}

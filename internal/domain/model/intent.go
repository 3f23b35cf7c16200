package model

import (
	"time"

	"github.com/google/uuid"
)

// StockDecrement reserves quantity of a product for a new order.
type StockDecrement struct {
	ProductID int64
	Quantity  int
}

// OrderCreationIntent bundles every record a checkout must persist together.
type OrderCreationIntent struct {
	CheckoutKey uuid.UUID
	UserID      int64
	Items       []LineItem
	Totals      Totals
	Status      OrderStatus
	Payment     Payment
	Shipment    Shipment
	Decrements  []StockDecrement
	CreatedAt   time.Time
}

// StockAdjustment changes reserved stock for an existing order. A positive
// Delta takes more units from stock, a negative one returns them.
type StockAdjustment struct {
	ProductID int64
	Delta     int
}

// OrderAmendment replaces item quantities of an order that is not yet fulfilled.
type OrderAmendment struct {
	OrderID     int64
	Items       []LineItem
	Adjustments []StockAdjustment
	Totals      Totals
	At          time.Time
}

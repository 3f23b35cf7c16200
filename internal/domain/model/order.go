package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus describes fulfillment lifecycle.
type OrderStatus string

const (
	OrderStatusPendingPaymentVerification OrderStatus = "PENDING_PAYMENT_VERIFICATION"
	OrderStatusProcessing                 OrderStatus = "PROCESSING"
	OrderStatusShipped                    OrderStatus = "SHIPPED"
	OrderStatusDelivered                  OrderStatus = "DELIVERED"
	OrderStatusCancelled                  OrderStatus = "CANCELLED"
)

// Order is a persisted purchase with frozen line items.
type Order struct {
	ID           int64
	CheckoutKey  uuid.UUID
	UserID       int64
	Items        []LineItem
	Status       OrderStatus
	Payment      *Payment
	Shipment     *Shipment
	InvoiceID    *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ProcessingAt *time.Time
	ShippedAt    *time.Time
	DeliveredAt  *time.Time
	CancelledAt  *time.Time
}

// StatusChange describes a validated transition ready to be persisted.
type StatusChange struct {
	OrderID      int64
	From         OrderStatus
	To           OrderStatus
	RestoreStock bool
	At           time.Time
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutLineRequest is a cart line with the prices the customer saw.
type CheckoutLineRequest struct {
	ProductID      int64           `json:"product_id"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	FinalUnitPrice decimal.Decimal `json:"final_unit_price"`
}

// RecipientPayload identifies who receives a shipment.
type RecipientPayload struct {
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
}

// DeliveryRequest is the chosen delivery method and recipient.
type DeliveryRequest struct {
	Method    string           `json:"method"`
	Recipient RecipientPayload `json:"recipient"`
}

// PaymentRequest is the chosen payment method and its proof.
type PaymentRequest struct {
	Method    string `json:"method"`
	Reference string `json:"reference"`
	ProofURL  string `json:"proof_url"`
}

// CheckoutRequest describes POST /api/checkout payload.
type CheckoutRequest struct {
	Items    []CheckoutLineRequest `json:"items"`
	Delivery DeliveryRequest       `json:"delivery"`
	Payment  PaymentRequest        `json:"payment"`
}

// PaymentResponse describes the payment attached to an order.
type PaymentResponse struct {
	Method    string `json:"method"`
	Reference string `json:"reference,omitempty"`
	ProofURL  string `json:"proof_url,omitempty"`
	Amount    string `json:"amount"`
}

// ShipmentResponse describes how an order leaves the store.
type ShipmentResponse struct {
	Method    string           `json:"method"`
	Recipient RecipientPayload `json:"recipient"`
}

// OrderResponse describes an order.
type OrderResponse struct {
	ID           int64              `json:"id"`
	UserID       int64              `json:"user_id"`
	Status       string             `json:"status"`
	NextStatus   *string            `json:"next_status"`
	Items        []LineItemResponse `json:"items"`
	Totals       TotalsResponse     `json:"totals"`
	Payment      *PaymentResponse   `json:"payment,omitempty"`
	Shipment     *ShipmentResponse  `json:"shipment,omitempty"`
	InvoiceID    *int64             `json:"invoice_id,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	ProcessingAt *time.Time         `json:"processing_at,omitempty"`
	ShippedAt    *time.Time         `json:"shipped_at,omitempty"`
	DeliveredAt  *time.Time         `json:"delivered_at,omitempty"`
	CancelledAt  *time.Time         `json:"cancelled_at,omitempty"`
}

// AdvanceRequest moves an order to its next status.
type AdvanceRequest struct {
	Target string `json:"target"`
}

// CancelRequest cancels an order. RestoreStock defaults to true.
type CancelRequest struct {
	RestoreStock *bool `json:"restore_stock"`
}

// AmendLineRequest sets the quantity of one order line. Zero removes it.
type AmendLineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// AmendRequest describes PUT /api/admin/orders/:id/items payload.
type AmendRequest struct {
	Items []AmendLineRequest `json:"items"`
}

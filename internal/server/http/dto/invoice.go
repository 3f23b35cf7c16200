package dto

import "time"

// InvoiceResponse is an invoice rendered from its order.
type InvoiceResponse struct {
	ID       int64              `json:"id"`
	Number   string             `json:"number"`
	OrderID  int64              `json:"order_id"`
	Customer ProfileResponse    `json:"customer"`
	Items    []LineItemResponse `json:"items"`
	Totals   TotalsResponse     `json:"totals"`
	Display  *DisplayResponse   `json:"display,omitempty"`
	IssuedAt time.Time          `json:"issued_at"`
}

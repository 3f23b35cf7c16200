package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates accepted payment channels.
type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "CASH"
	PaymentMethodBankTransfer  PaymentMethod = "BANK_TRANSFER"
	PaymentMethodMobilePayment PaymentMethod = "MOBILE_PAYMENT"
	PaymentMethodZelle         PaymentMethod = "ZELLE"
)

// Electronic reports whether the method needs a reference and proof of payment.
func (m PaymentMethod) Electronic() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodMobilePayment, PaymentMethodZelle:
		return true
	}
	return false
}

// Valid reports whether the method is known.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m.Electronic()
}

// PaymentDetails is what the customer submits at checkout.
type PaymentDetails struct {
	Method    PaymentMethod
	Reference string
	ProofURL  string
}

// Payment records the payment attached to an order.
type Payment struct {
	ID        int64
	OrderID   int64
	Method    PaymentMethod
	Reference string
	ProofURL  string
	Amount    decimal.Decimal
	CreatedAt time.Time
}

package model

import "time"

// Invoice is issued once per order. Totals are derived from the order items
// every time the invoice is rendered.
type Invoice struct {
	ID       int64
	Number   string
	OrderID  int64
	Customer CustomerProfile
	IssuedAt time.Time
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate converts base-currency amounts for display.
type ExchangeRate struct {
	Currency  string
	Rate      decimal.Decimal
	FetchedAt time.Time
}

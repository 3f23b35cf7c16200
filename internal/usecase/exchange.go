package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/autoparts/internal/domain/model"
	"github.com/polkiloo/autoparts/internal/engine"
)

// RateFetcher reads the current exchange rate from an external service.
type RateFetcher interface {
	Fetch(ctx context.Context, currency string) (*model.ExchangeRate, error)
}

// RateStore keeps the last known rate per currency.
type RateStore interface {
	Get(currency string) (model.ExchangeRate, bool)
	Set(rate model.ExchangeRate)
}

// Display is an informational conversion of a base-currency amount.
type Display struct {
	Currency string
	Rate     decimal.Decimal
	Amount   decimal.Decimal
	AsOf     time.Time
}

// ExchangeUseCase converts prices for display. Stored amounts never change.
type ExchangeUseCase struct {
	fetcher  RateFetcher
	store    RateStore
	currency string
}

// NewExchangeUseCase constructs ExchangeUseCase for the configured currency.
func NewExchangeUseCase(fetcher RateFetcher, store RateStore, currency string) *ExchangeUseCase {
	return &ExchangeUseCase{fetcher: fetcher, store: store, currency: currency}
}

// Refresh fetches the rate and caches it.
func (u *ExchangeUseCase) Refresh(ctx context.Context) (*model.ExchangeRate, error) {
	rate, err := u.fetcher.Fetch(ctx, u.currency)
	if err != nil {
		return nil, err
	}
	u.store.Set(*rate)
	return rate, nil
}

// Current returns the cached rate, if any.
func (u *ExchangeUseCase) Current() (*model.ExchangeRate, bool) {
	rate, ok := u.store.Get(u.currency)
	if !ok {
		return nil, false
	}
	return &rate, true
}

// Display converts amount with the cached rate. It returns nil when no rate
// has been fetched yet.
func (u *ExchangeUseCase) Display(amount decimal.Decimal) *Display {
	rate, ok := u.Current()
	if !ok {
		return nil
	}
	return &Display{
		Currency: rate.Currency,
		Rate:     rate.Rate,
		Amount:   engine.Convert(amount, rate.Rate),
		AsOf:     rate.FetchedAt,
	}
}

package test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/autoparts/internal/domain/model"
)

// RateFacadeStub mimics the exchange-rate refresh used by the worker.
type RateFacadeStub struct {
	mu        sync.Mutex
	RefreshFn func(context.Context) (*model.ExchangeRate, error)
	calls     int
	Called    chan struct{}
}

// RefreshExchangeRate counts calls and returns the configured result.
func (s *RateFacadeStub) RefreshExchangeRate(ctx context.Context) (*model.ExchangeRate, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.Called != nil {
		select {
		case s.Called <- struct{}{}:
		default:
		}
	}
	if s.RefreshFn != nil {
		return s.RefreshFn(ctx)
	}
	return &model.ExchangeRate{Currency: "VES", Rate: decimal.NewFromInt(36), FetchedAt: time.Unix(0, 0)}, nil
}

// Calls reports how many refreshes were attempted.
func (s *RateFacadeStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// RateClientStub implements the exchange-rate client contract.
type RateClientStub struct {
	FetchFn func(context.Context, string) (*model.ExchangeRate, error)
	Rate    *model.ExchangeRate
	Err     error
}

// Fetch returns configured response or a fixed rate for currency.
func (s RateClientStub) Fetch(ctx context.Context, currency string) (*model.ExchangeRate, error) {
	if s.FetchFn != nil {
		return s.FetchFn(ctx, currency)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Rate != nil {
		return s.Rate, nil
	}
	return &model.ExchangeRate{Currency: currency, Rate: decimal.NewFromInt(36), FetchedAt: time.Unix(0, 0)}, nil
}

package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/autoparts/internal/adapter/rates"
	"github.com/polkiloo/autoparts/internal/domain/model"
)

// RateFacade exposes the subset of application functionality required by the worker.
type RateFacade interface {
	RefreshExchangeRate(ctx context.Context) (*model.ExchangeRate, error)
}

// RateRefresher keeps the display exchange rate warm in the background.
type RateRefresher struct {
	facade       RateFacade
	pollInterval time.Duration
	logger       *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewRateRefresher constructs the refresher.
func NewRateRefresher(facade RateFacade, pollInterval time.Duration, logger *slog.Logger) *RateRefresher {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &RateRefresher{
		facade:       facade,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Start launches background polling. The first refresh happens immediately.
func (r *RateRefresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.run(runCtx)
}

// Stop cancels polling and waits for the loop to exit.
func (r *RateRefresher) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *RateRefresher) run(ctx context.Context) {
	defer r.wg.Done()

	wait := time.Duration(0)
	for {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		next, stop := r.refresh(ctx)
		if stop {
			return
		}
		wait = next
	}
}

// refresh performs one poll and returns the delay before the next one.
func (r *RateRefresher) refresh(ctx context.Context) (time.Duration, bool) {
	rate, err := r.facade.RefreshExchangeRate(ctx)
	if err == nil {
		r.logger.Debug("exchange rate refreshed",
			slog.String("currency", rate.Currency),
			slog.String("rate", rate.Rate.String()),
		)
		return r.pollInterval, false
	}

	var tooMany rates.TooManyRequestsError
	switch {
	case errors.Is(err, rates.ErrDisabled):
		r.logger.Info("exchange rate refresher stopped, no rate service configured")
		return 0, true
	case errors.As(err, &tooMany):
		r.logger.Warn("rate service limited requests", slog.Duration("retry_after", tooMany.RetryAfter))
		if tooMany.RetryAfter > 0 {
			return tooMany.RetryAfter, false
		}
		return r.pollInterval, false
	case ctx.Err() != nil:
		return 0, true
	default:
		r.logger.Error("exchange rate refresh failed", slog.String("error", err.Error()))
		return r.pollInterval, false
	}
}

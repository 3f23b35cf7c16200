package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
	"github.com/polkiloo/autoparts/internal/domain/repository"
	"github.com/polkiloo/autoparts/internal/engine"
)

// CheckoutInput is a customer's checkout submission. Lines carry the prices
// the customer saw; they must still match the live catalog.
type CheckoutInput struct {
	Key      uuid.UUID
	UserID   int64
	Lines    []model.LineItem
	Delivery model.DeliveryDetails
	Payment  model.PaymentDetails
}

// CheckoutUseCase turns a cart into a persisted order.
type CheckoutUseCase struct {
	catalog   repository.CatalogRepository
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	logger    *slog.Logger
	limit     int
	now       func() time.Time
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(catalog repository.CatalogRepository, customers repository.CustomerRepository, orders repository.OrderRepository, logger *slog.Logger, limit int) *CheckoutUseCase {
	return &CheckoutUseCase{
		catalog:   catalog,
		customers: customers,
		orders:    orders,
		logger:    logger,
		limit:     limit,
		now:       time.Now,
	}
}

// Checkout validates the cart and persists the order atomically. A repeated
// key returns the order created by the first attempt with created=false.
func (u *CheckoutUseCase) Checkout(ctx context.Context, in CheckoutInput) (*model.Order, bool, error) {
	if in.Key != uuid.Nil {
		existing, err := u.orders.GetByCheckoutKey(ctx, in.Key)
		switch {
		case err == nil:
			if existing.UserID != in.UserID {
				return nil, false, domainErrors.ErrAlreadyExists
			}
			u.logger.Info("checkout replayed", slog.Int64("order_id", existing.ID), slog.String("checkout_key", in.Key.String()))
			return existing, false, nil
		case !errors.Is(err, domainErrors.ErrNotFound):
			return nil, false, err
		}
	}

	snapshot, _, err := loadSnapshot(ctx, u.catalog, productIDs(in.Lines))
	if err != nil {
		return nil, false, err
	}

	profile, err := u.customers.Get(ctx, in.UserID)
	if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, false, err
	}

	intent, err := engine.Checkout(engine.CheckoutRequest{
		Key:         in.Key,
		UserID:      in.UserID,
		Lines:       in.Lines,
		Delivery:    in.Delivery,
		Payment:     in.Payment,
		Profile:     profile,
		Catalog:     snapshot,
		MaxQuantity: u.limit,
		Now:         u.now(),
	})
	if err != nil {
		u.logger.Info("checkout rejected",
			slog.Int64("user_id", in.UserID),
			slog.String("error", err.Error()),
		)
		return nil, false, err
	}

	guard := func(locked []model.Product, categories []model.Category) error {
		return engine.Revalidate(intent.Items, engine.NewCatalog(locked, categories))
	}

	order, created, err := u.orders.CreateFromIntent(ctx, intent, guard)
	if err != nil {
		var partial *domainErrors.PartialCommitError
		if errors.As(err, &partial) {
			u.logger.Error("checkout rolled back",
				slog.String("checkout_key", intent.CheckoutKey.String()),
				slog.String("stage", partial.Stage),
				slog.String("error", err.Error()),
			)
		} else {
			u.logger.Info("checkout rejected",
				slog.Int64("user_id", in.UserID),
				slog.String("checkout_key", intent.CheckoutKey.String()),
				slog.String("error", err.Error()),
			)
		}
		return nil, false, err
	}

	if created {
		u.logger.Info("order committed",
			slog.Int64("order_id", order.ID),
			slog.Int64("user_id", order.UserID),
			slog.String("grand_total", intent.Totals.GrandTotal.StringFixed(2)),
		)
	} else {
		u.logger.Info("checkout replayed", slog.Int64("order_id", order.ID), slog.String("checkout_key", intent.CheckoutKey.String()))
	}
	return order, created, nil
}

package usecase

import (
	"log/slog"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/polkiloo/autoparts/internal/adapter/rates"
	"github.com/polkiloo/autoparts/internal/config"
	"github.com/polkiloo/autoparts/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	NewOrderUseCase,
	NewInvoiceUseCase,
	newExchangeUseCase,
	newCatalogUseCase,
	newCheckoutUseCase,
	newSnowflakeNode,
)

func newExchangeUseCase(client rates.Client, cache *rates.Cache, cfg *config.Config) *ExchangeUseCase {
	return NewExchangeUseCase(client, cache, cfg.RateCurrency)
}

func newCatalogUseCase(catalog repository.CatalogRepository, exchange *ExchangeUseCase, cfg *config.Config) *CatalogUseCase {
	return NewCatalogUseCase(catalog, exchange, cfg.MaxCartQuantity)
}

type checkoutParams struct {
	fx.In

	Catalog   repository.CatalogRepository
	Customers repository.CustomerRepository
	Orders    repository.OrderRepository
	Logger    *slog.Logger
	Config    *config.Config
}

func newCheckoutUseCase(p checkoutParams) *CheckoutUseCase {
	return NewCheckoutUseCase(p.Catalog, p.Customers, p.Orders, p.Logger, p.Config.MaxCartQuantity)
}

func newSnowflakeNode(cfg *config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}

package rates

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/autoparts/internal/config"
)

// Module exposes the rate client and the shared rate cache to fx graph.
var Module = fx.Provide(newClient, NewCache)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	if !p.Config.RatesEnabled() {
		p.Logger.Info("rate service not configured, display conversion disabled")
		return disabledClient{}, nil
	}
	return NewHTTPClient(p.Config.RateServiceAddress, p.Logger)
}

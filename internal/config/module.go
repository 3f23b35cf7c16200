package config

import "go.uber.org/fx"

// Module loads Config once per fx graph.
var Module = fx.Module("config", fx.Provide(Load))

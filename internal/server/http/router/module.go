package router

import "go.uber.org/fx"

// Module builds the storefront gin engine.
var Module = fx.Module("router", fx.Provide(Setup))

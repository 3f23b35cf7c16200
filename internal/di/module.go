package di

import (
	"github.com/polkiloo/autoparts/internal/adapter/rates"
	"github.com/polkiloo/autoparts/internal/app"
	"github.com/polkiloo/autoparts/internal/config"
	"github.com/polkiloo/autoparts/internal/logger"
	"github.com/polkiloo/autoparts/internal/pkg/auth"
	"github.com/polkiloo/autoparts/internal/server/http/router"
	"github.com/polkiloo/autoparts/internal/storage/postgres"
	"github.com/polkiloo/autoparts/internal/usecase"
	"go.uber.org/fx"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		rates.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/autoparts/internal/config"
	"github.com/polkiloo/autoparts/internal/server/http/handlers"
	"github.com/polkiloo/autoparts/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewStorefrontFacade,
		newHandlersFacade,
		newAdminBootstrapper,
		newHTTPServer,
		newRateRefresher,
	),
	fx.Invoke(registerLifecycle),
)

func newHandlersFacade(f *StorefrontFacade) handlers.StorefrontFacade {
	return f
}

func newAdminBootstrapper(f *StorefrontFacade) AdminBootstrapper {
	return f
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *StorefrontFacade
	Config *config.Config
	Logger *slog.Logger
}

func newRateRefresher(p workerParams) *worker.RateRefresher {
	return worker.NewRateRefresher(p.Facade, p.Config.RatePollInterval, p.Logger)
}

// AdminBootstrapper creates the operator account on start.
type AdminBootstrapper interface {
	EnsureAdmin(ctx context.Context, login, password string) error
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.RateRefresher
	Admins     AdminBootstrapper
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting autoparts", slog.String("addr", p.Server.Addr))

			if p.Config.AdminLogin != "" {
				if err := p.Admins.EnsureAdmin(ctx, p.Config.AdminLogin, p.Config.AdminPassword); err != nil {
					return fmt.Errorf("bootstrap admin: %w", err)
				}
				p.Logger.Info("admin account ready", slog.String("login", p.Config.AdminLogin))
			}

			// The start context ends once fx finishes starting.
			p.Worker.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Worker.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("autoparts stopped")
			return nil
		},
	})
}

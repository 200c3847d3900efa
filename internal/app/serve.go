package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"politrades/internal/httpapi"
	"politrades/internal/scheduler"
	"politrades/internal/state"
)

// Serve runs the JSON API and, when alerting is enabled, the alert watch
// alongside it.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if mode := a.Config.Server.Mode; mode != "" {
		gin.SetMode(mode)
	}

	return a.withRuntime(ctx, func(rt *Runtime) error {
		gate := state.NewGate(rt.Stores.Preferences, func(from, to state.Route) {
			a.Logger.Info().Str("from", string(from)).Str("to", string(to)).Msg("onboarding gate changed")
		})
		defer gate.Close()

		watchErr := make(chan error, 1)
		if a.Config.Alerting.Enabled {
			sched := scheduler.New(scheduler.Options{Interval: a.Config.Alerting.Interval, RunImmediately: true}, a.Logger)
			svc, err := a.newService(rt, sched)
			if err != nil {
				return err
			}
			go func() { watchErr <- svc.Run(ctx) }()
		} else {
			close(watchErr)
		}

		srv := httpapi.New(httpapi.Deps{
			Engine:  rt.Engine,
			Stores:  rt.Stores,
			Metrics: a.Metrics,
			Now:     a.Now,
		}, a.Logger)
		serveErr := srv.Run(ctx, a.Config.Server.Addr, a.Config.Server.ShutdownTimeout)
		cancel()

		if err := <-watchErr; err != nil && !errors.Is(err, context.Canceled) {
			a.Logger.Error().Err(err).Msg("alert watch terminated with error")
		}
		return serveErr
	})
}

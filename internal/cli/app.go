// Package cli wires the engine into cobra commands. Each command mounts
// one view: it loads state through the reconciler, talks to the
// backend, and propagates whatever it produced before exiting.
package cli

import (
	"context"
	"fmt"

	"atsctl/internal/api"
	"atsctl/internal/common/config"
	"atsctl/internal/common/logger"
	"atsctl/internal/common/observability"
	"atsctl/internal/dashboard"
	"atsctl/internal/history"
	"atsctl/internal/optimize"
	"atsctl/internal/reconcile"
	"atsctl/internal/session"
	"atsctl/internal/storage"
)

// App bundles the wired services commands pull from the context.
type App struct {
	Config     *config.Config
	Log        logger.Logger
	Store      storage.Store
	Client     *api.Client
	Session    *session.Manager
	Loader     *reconcile.Loader
	Propagator *reconcile.Propagator
	History    *history.Service
	Optimize   *optimize.Service
	Dashboard  *dashboard.Service
	Obs        *observability.Observability
}

// NewApp builds the full service graph from configuration.
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("storage init: %w", err)
	}

	client := api.New(cfg.Backend, store, log)
	propagator := reconcile.NewPropagator(store, log)
	hist := history.NewService(client, propagator, log)

	return &App{
		Config:     cfg,
		Log:        log,
		Store:      store,
		Client:     client,
		Session:    session.NewManager(client, store, log),
		Loader:     reconcile.NewLoader(store, log),
		Propagator: propagator,
		History:    hist,
		Optimize:   optimize.NewService(client, propagator, log),
		Dashboard:  dashboard.NewService(client, hist, log),
		Obs:        observability.New(cfg.App.Name),
	}, nil
}

// Close releases the storage backend and flushes telemetry.
func (a *App) Close() error {
	if a.Obs != nil {
		a.Obs.Shutdown()
	}
	return a.Store.Close()
}

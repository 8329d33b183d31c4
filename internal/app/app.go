// Package app wires together configuration, the API client, settings storage
// and the period store into a single Deps struct that commands receive at
// runtime.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/derickschaefer/aquarius/internal/api"
	"github.com/derickschaefer/aquarius/internal/config"
	"github.com/derickschaefer/aquarius/internal/dashboard"
	"github.com/derickschaefer/aquarius/internal/observability"
	"github.com/derickschaefer/aquarius/internal/period"
	"github.com/derickschaefer/aquarius/internal/store"
)

// Deps holds all runtime dependencies injected into command Run functions.
type Deps struct {
	Config    *config.Config
	Logger    *slog.Logger
	Metrics   *observability.Metrics
	Client    *api.Client
	Dashboard *dashboard.Service
	Period    *period.Store

	// Store is nil when the run was started with --no-store; the period
	// then lives in memory only.
	Store *store.Store
}

// New builds a Deps from resolved config. It opens settings storage and
// hydrates the period store, so it should run once per process.
func New(cfg *config.Config, logger *slog.Logger) (*Deps, error) {
	if logger == nil {
		logger = slog.Default()
	}
	metrics := observability.NewMetrics()

	client := api.NewClient(api.Options{
		Origin:          cfg.Origin,
		Timeout:         cfg.Timeout,
		Rate:            cfg.Rate,
		BreakerFailures: cfg.BreakerFailures,
		Logger:          logger,
		Metrics:         metrics,
	})

	d := &Deps{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics,
		Client:    client,
		Dashboard: dashboard.New(client, cfg.Concurrency),
	}

	var storage period.Storage
	if cfg.NoStore {
		storage = period.NewMemoryStorage()
	} else {
		s, err := store.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		d.Store = s
		storage = s
	}

	d.Period = period.New(storage, logger)
	d.Period.OnChange(metrics.PeriodChanges.Inc)
	d.Period.Hydrate()
	return d, nil
}

// Context returns ctx carrying the period store.
func (d *Deps) Context(ctx context.Context) context.Context {
	return period.NewContext(ctx, d.Period)
}

// RequireStore returns the settings store or an error when storage is
// disabled for this run.
func (d *Deps) RequireStore() (*store.Store, error) {
	if d.Store == nil {
		return nil, errors.New("settings storage is disabled (--no-store)")
	}
	return d.Store, nil
}

// Close tears down the period store, closes storage and writes the metrics
// textfile when one is configured.
func (d *Deps) Close() error {
	var errs []error
	if d.Period != nil {
		d.Period.Close()
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing store: %w", err))
		}
	}
	if d.Config != nil && d.Config.MetricsFile != "" {
		if err := d.Metrics.WriteTextfile(d.Config.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("writing metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

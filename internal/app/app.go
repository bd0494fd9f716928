package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/bndl/internal/badgerstore"
	"github.com/vk/bndl/internal/builder"
	"github.com/vk/bndl/internal/compiler"
	"github.com/vk/bndl/internal/config"
	"github.com/vk/bndl/internal/ctxlog"
	"github.com/vk/bndl/internal/inmemorystore"
	"github.com/vk/bndl/internal/planstore"
	"github.com/vk/bndl/internal/value"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	units    *value.UnitTable
	compiler *compiler.Compiler
	store    planstore.Store
	builders *builder.Registry
	metrics  *Metrics

	closers []func() error
}

// New is the constructor for the main application. cfg must already be
// validated. Log output goes to logW.
func New(logW io.Writer, cfg *config.Config) (*App, error) {
	logger := NewLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	units, err := cfg.UnitTable()
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		logger:   logger,
		units:    units,
		compiler: compiler.New(cfg.CompilerOptions()...),
		builders: newBuilderRegistry(),
		metrics:  newMetrics(),
	}

	switch {
	case !cfg.CacheEnabled:
		logger.Debug("Plan cache disabled.")
	case cfg.CachePath() != "":
		db, err := badgerstore.Open(badgerstore.Config{
			Path:   cfg.CachePath(),
			Logger: logger.With("component", "badger"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open plan cache: %w", err)
		}
		a.store = db
		a.closers = append(a.closers, db.Close)
		logger.Debug("Persistent plan cache opened.", "path", cfg.CachePath())
	default:
		a.store = inmemorystore.New()
		logger.Debug("In-memory plan cache created.")
	}

	return a, nil
}

// Context returns ctx carrying the application's logger. A logger already in
// ctx, such as one tagged with a request id, is kept.
func (a *App) Context(ctx context.Context) context.Context {
	if _, ok := ctxlog.Lookup(ctx); ok {
		return ctx
	}
	return ctxlog.WithLogger(ctx, a.logger)
}

// Config returns the configuration the app was built with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Metrics returns the application's collectors. This is primarily for testing.
func (a *App) Metrics() *Metrics {
	return a.metrics
}

// Builders returns the builder registry.
func (a *App) Builders() *builder.Registry {
	return a.builders
}

// Close releases the plan cache.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

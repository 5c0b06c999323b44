package main

import (
	"context"
	"log/slog"

	"github.com/aretw0/stitch"
	"github.com/aretw0/stitch/internal/config"
	"github.com/aretw0/stitch/pkg/domain"
)

// newEngine opens the configured definitions and store and builds an engine over them.
// The caller must Close the returned store.
func newEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*stitch.Engine, *stateStore, error) {
	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	opts := []stitch.Option{
		stitch.WithStore(store.Store),
		stitch.WithLogger(logger),
	}
	if store.Locker != nil {
		opts = append(opts, stitch.WithLocker(store.Locker))
	}
	for _, h := range hooks {
		opts = append(opts, stitch.WithLifecycleHooks(h))
	}

	engine, err := stitch.New(cfg.Definitions, opts...)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	logger.Debug("engine ready", "definitions", cfg.Definitions, "store", cfg.Store.Driver)
	return engine, store, nil
}

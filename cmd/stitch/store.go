package main

import (
	"context"
	"fmt"

	"github.com/aretw0/stitch/internal/config"
	"github.com/aretw0/stitch/pkg/adapters/file"
	"github.com/aretw0/stitch/pkg/adapters/memory"
	"github.com/aretw0/stitch/pkg/adapters/redis"
	"github.com/aretw0/stitch/pkg/adapters/sqlite"
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/persistence/middleware"
	"github.com/aretw0/stitch/pkg/ports"
)

// sessionLister is implemented by stores that can enumerate their sessions.
type sessionLister interface {
	Sessions(ctx context.Context) ([]string, error)
}

// stateStore is the configured store: Store is what the engine writes
// through (masking and encryption applied), Base is the raw backend and
// Locker, when set, coordinates replicas sharing it.
type stateStore struct {
	Store  ports.StateStore
	Base   ports.StateStore
	Locker ports.DistributedLocker
	close  func() error
}

func (s *stateStore) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Sessions lists stored session ids when the backend supports it.
func (s *stateStore) Sessions(ctx context.Context) ([]string, error) {
	lister, ok := s.Base.(sessionLister)
	if !ok {
		return nil, fmt.Errorf("store %T cannot list sessions", s.Base)
	}
	return lister.Sessions(ctx)
}

// Get reads a wizard state through the middleware chain.
func (s *stateStore) Get(ctx context.Context, sessionID, wizardID string) (domain.Values, error) {
	return s.Store.Get(ctx, domain.StateKey{SessionID: sessionID, WizardID: wizardID})
}

func openStore(ctx context.Context, cfg config.StoreConfig) (*stateStore, error) {
	out := &stateStore{}

	switch cfg.Driver {
	case config.DriverMemory, "":
		out.Base = memory.NewStore()
	case config.DriverFile:
		out.Base = file.NewStore(cfg.File.Dir)
	case config.DriverRedis:
		opts := []redis.Option{redis.WithTTL(cfg.Redis.TTL)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		out.Base, out.Locker, out.close = store, store.Locker(), store.Close
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLite.DSN)
		if err != nil {
			return nil, err
		}
		out.Base, out.close = store, store.Close
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	var mws []middleware.Middleware
	if len(cfg.Mask) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.Mask)
		if err != nil {
			_ = out.Close()
			return nil, err
		}
		mws = append(mws, pii)
	}
	if cfg.EncryptionKey != "" {
		enc, err := encryptionMiddleware(cfg)
		if err != nil {
			_ = out.Close()
			return nil, err
		}
		mws = append(mws, enc)
	}

	out.Store = middleware.Chain(out.Base, mws...)
	return out, nil
}

func encryptionMiddleware(cfg config.StoreConfig) (middleware.Middleware, error) {
	active, err := middleware.DecodeKey(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}
	var fallbacks [][]byte
	for i, encoded := range cfg.FallbackKeys {
		key, err := middleware.DecodeKey(encoded)
		if err != nil {
			return nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		fallbacks = append(fallbacks, key)
	}
	return middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    active,
		FallbackKeys: fallbacks,
	})
}

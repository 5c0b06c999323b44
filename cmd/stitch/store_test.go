package main

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stitch/internal/config"
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/persistence/middleware"
)

func TestOpenStore_Drivers(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name     string
		cfg      config.StoreConfig
		sessions bool
	}{
		{"Memory", config.StoreConfig{Driver: config.DriverMemory}, false},
		{"File", config.StoreConfig{Driver: config.DriverFile, File: config.FileConfig{Dir: t.TempDir()}}, true},
		{"Redis", config.StoreConfig{Driver: config.DriverRedis, Redis: config.RedisConfig{Addr: mr.Addr(), Prefix: "test:"}}, true},
		{"SQLite", config.StoreConfig{Driver: config.DriverSQLite, SQLite: config.SQLiteConfig{DSN: ":memory:"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store, err := openStore(ctx, tt.cfg)
			require.NoError(t, err)
			defer store.Close()

			key := domain.StateKey{SessionID: "s1", WizardID: "loan"}
			require.NoError(t, store.Store.Put(ctx, key, domain.Values{"name": "Ada"}))

			values, err := store.Get(ctx, "s1", "loan")
			require.NoError(t, err)
			assert.Equal(t, "Ada", values["name"])

			sessions, err := store.Sessions(ctx)
			if !tt.sessions {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"s1"}, sessions)
		})
	}
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := openStore(context.Background(), config.StoreConfig{Driver: "etcd"})
	assert.Error(t, err)
}

func TestOpenStore_Middleware(t *testing.T) {
	ctx := context.Background()
	key := domain.StateKey{SessionID: "s1", WizardID: "loan"}
	cfg := config.StoreConfig{
		Driver:        config.DriverMemory,
		Mask:          []string{"^card"},
		EncryptionKey: base64.StdEncoding.EncodeToString(make([]byte, 32)),
	}

	store, err := openStore(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, store.Store.Put(ctx, key, domain.Values{"name": "Ada", "card_number": "4242"}))

	values, err := store.Get(ctx, "s1", "loan")
	require.NoError(t, err)
	assert.Equal(t, "Ada", values["name"])
	assert.Equal(t, middleware.Mask, values["card_number"])

	raw, err := store.Base.Get(ctx, key)
	require.NoError(t, err)
	assert.NotContains(t, raw, "name", "backend only sees ciphertext")

	t.Run("Bad Key", func(t *testing.T) {
		_, err := openStore(ctx, config.StoreConfig{EncryptionKey: "not base64!"})
		assert.Error(t, err)
	})
	t.Run("Bad Mask", func(t *testing.T) {
		_, err := openStore(ctx, config.StoreConfig{Mask: []string{"("}})
		assert.Error(t, err)
	})
}

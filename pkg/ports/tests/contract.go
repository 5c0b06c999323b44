// Package tests holds reusable contract suites for adapters implementing the ports.
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/ports"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store ports.StateStore) {
	t.Helper()
	ctx := context.Background()
	sessionID := "contract-session-" + time.Now().Format("20060102150405.000000000")
	key := domain.StateKey{SessionID: sessionID, WizardID: "demo"}

	t.Run("Get Missing", func(t *testing.T) {
		values, err := store.Get(ctx, domain.StateKey{SessionID: sessionID, WizardID: "never-written"})
		require.NoError(t, err, "Get of a missing key must not fail")
		assert.NotNil(t, values)
		assert.Empty(t, values)
	})

	t.Run("Put and Get", func(t *testing.T) {
		err := store.Put(ctx, key, domain.Values{
			"full_name": "Ada Lovelace",
			"income":    1500,
			"agree":     true,
			"tags":      []any{"a", "b"},
			"address":   map[string]any{"city": "London"},
		})
		require.NoError(t, err)

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", loaded["full_name"])
		// JSON-backed stores widen numbers to float64.
		assert.EqualValues(t, 1500, loaded["income"])
		assert.Equal(t, true, loaded["agree"])
		assert.Equal(t, []any{"a", "b"}, loaded["tags"])
		assert.Equal(t, map[string]any{"city": "London"}, loaded["address"])
	})

	t.Run("Put Replaces", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key, domain.Values{"a": "1", "b": "2"}))
		require.NoError(t, store.Put(ctx, key, domain.Values{"a": "3"}))

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, domain.Values{"a": "3"}, loaded)
	})

	t.Run("Returned Values Are Detached", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key, domain.Values{"a": "1"}))

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err)
		loaded["a"] = "mutated"

		again, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "1", again["a"])
	})

	t.Run("Keys Are Isolated", func(t *testing.T) {
		other := domain.StateKey{SessionID: sessionID, WizardID: "real-estate"}
		otherSession := domain.StateKey{SessionID: sessionID + "-other", WizardID: "demo"}
		require.NoError(t, store.Put(ctx, key, domain.Values{"owner": "demo"}))
		require.NoError(t, store.Put(ctx, other, domain.Values{"owner": "real-estate"}))

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "demo", loaded["owner"])

		loaded, err = store.Get(ctx, otherSession)
		require.NoError(t, err)
		assert.Empty(t, loaded)

		require.NoError(t, store.Clear(ctx, other))
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key, domain.Values{"a": "1"}))
		require.NoError(t, store.Clear(ctx, key), "Clear should not return error")

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Empty(t, loaded, "Get after Clear should return an empty state")
	})

	t.Run("Clear Missing", func(t *testing.T) {
		err := store.Clear(ctx, domain.StateKey{SessionID: "missing-" + sessionID, WizardID: "demo"})
		assert.NoError(t, err)
	})
}

// RunDefinitionSourceContract verifies a DefinitionSource against the ids it is expected to serve.
func RunDefinitionSourceContract(t *testing.T, source ports.DefinitionSource, expected []string) {
	t.Helper()

	t.Run("Load", func(t *testing.T) {
		for _, id := range expected {
			def, err := source.Load(id)
			require.NoError(t, err, "loading %s", id)
			assert.Equal(t, id, def.ID)
			assert.NotEmpty(t, def.Steps, "wizard %s has no steps", id)
		}
	})

	t.Run("Load Missing", func(t *testing.T) {
		_, err := source.Load("non-existent-wizard")
		assert.ErrorIs(t, err, domain.ErrWizardNotFound)
	})

	t.Run("List", func(t *testing.T) {
		ids, err := source.List()
		require.NoError(t, err)
		assert.ElementsMatch(t, expected, ids)
	})
}

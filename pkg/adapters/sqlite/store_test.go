package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stitch/pkg/adapters/sqlite"
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/ports"
	"github.com/aretw0/stitch/pkg/ports/tests"
)

var _ ports.StateStore = (*sqlite.Store)(nil)

func openMemory(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	tests.RunStateStoreContract(t, openMemory(t))
}

func TestSQLiteStore_Sessions(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)

	require.NoError(t, store.Put(ctx, domain.StateKey{SessionID: "b", WizardID: "demo"}, domain.Values{}))
	require.NoError(t, store.Put(ctx, domain.StateKey{SessionID: "a", WizardID: "demo"}, domain.Values{}))
	require.NoError(t, store.Put(ctx, domain.StateKey{SessionID: "a", WizardID: "survey"}, domain.Values{}))

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, sessions)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stitch.db")
	key := domain.StateKey{SessionID: "s1", WizardID: "demo"}

	store, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, key, domain.Values{"full_name": "Ada"}))
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	values, err := reopened.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Ada", values["full_name"])
}

func TestSQLiteStore_UpsertKeepsSingleRow(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stitch.db")
	key := domain.StateKey{SessionID: "s1", WizardID: "demo"}

	store, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Put(ctx, key, domain.Values{"n": i}))
	}

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wizard_states`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSQLiteStore_RequiresPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), "")
	assert.Error(t, err)
}

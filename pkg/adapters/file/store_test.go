package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stitch/pkg/adapters/file"
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/ports"
	"github.com/aretw0/stitch/pkg/ports/tests"
)

var _ ports.StateStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	store := file.NewStore(t.TempDir())
	tests.RunStateStoreContract(t, store)
}

func TestFileStore_Layout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := file.NewStore(dir)
	key := domain.StateKey{SessionID: "abc", WizardID: "demo"}

	require.NoError(t, store.Put(ctx, key, domain.Values{"full_name": "Ada"}))

	data, err := os.ReadFile(filepath.Join(dir, "abc", "demo.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"full_name":"Ada"}`, string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "abc"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, sessions)

	require.NoError(t, store.Clear(ctx, key))
	_, err = os.Stat(filepath.Join(dir, "abc"))
	assert.True(t, os.IsNotExist(err), "empty session directory should be removed")
}

func TestFileStore_RejectsUnsafeKeys(t *testing.T) {
	ctx := context.Background()
	store := file.NewStore(t.TempDir())

	for _, key := range []domain.StateKey{
		{SessionID: "", WizardID: "demo"},
		{SessionID: "..", WizardID: "demo"},
		{SessionID: "a/b", WizardID: "demo"},
		{SessionID: "abc", WizardID: `..\evil`},
	} {
		err := store.Put(ctx, key, domain.Values{})
		assert.Error(t, err, "key %v", key)
		_, err = store.Get(ctx, key)
		assert.Error(t, err, "key %v", key)
	}
}

func TestFileStore_SessionsOnMissingDir(t *testing.T) {
	store := file.NewStore(filepath.Join(t.TempDir(), "nope"))
	sessions, err := store.Sessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "abc"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc", "demo.json"), []byte("{oops"), 0o644))

	_, err := file.NewStore(dir).Get(context.Background(), domain.StateKey{SessionID: "abc", WizardID: "demo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal wizard state")
}

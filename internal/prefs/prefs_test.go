package prefs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetBool_DefaultWhenUnset(t *testing.T) {
	store := openTestStore(t)

	got, err := store.GetBool(KeyDarkMode, true)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = store.GetBool(KeyDarkMode, false)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestSetBool_Roundtrip(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SetBool(KeyDarkMode, true))

	got, err := store.GetBool(KeyDarkMode, false)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestSetBool_ReplacesPriorValue(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SetBool(KeyDarkMode, true))
	require.NoError(t, store.SetBool(KeyDarkMode, false))

	got, err := store.GetBool(KeyDarkMode, true)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.SetBool(KeyDarkMode, true))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetBool(KeyDarkMode, false)
	require.NoError(t, err)
	assert.True(t, got)
}

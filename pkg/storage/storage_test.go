package storage_test

import (
	"testing"

	"github.com/canvion/canvion/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := storage.NewMemoryStore(0)

	require.NoError(t, store.Set("a", []byte("hello")))

	got, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryStoreQuota(t *testing.T) {
	store := storage.NewMemoryStore(10)

	require.NoError(t, store.Set("a", []byte("12345")))
	assert.ErrorIs(t, store.Set("b", []byte("123456789")), storage.ErrQuotaExceeded)

	// Overwriting releases the old value's bytes first.
	require.NoError(t, store.Set("a", []byte("1234567890")))
	assert.Equal(t, 10, store.Used())

	require.NoError(t, store.Delete("a"))
	assert.Zero(t, store.Used())
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := storage.NewMemoryStore(0)

	require.NoError(t, store.Set("a", []byte("abc")))

	got, err := store.Get("a")
	require.NoError(t, err)

	got[0] = 'z'

	again, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("canvas_background_tasks", []byte(`{"a":1}`)))

	got, err := store.Get("canvas_background_tasks")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))

	require.NoError(t, store.Delete("canvas_background_tasks"))

	_, err = store.Get("canvas_background_tasks")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFileStoreDeleteMissingKey(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete("never-written"))
}

func TestFileStoreStripsScheme(t *testing.T) {
	store, err := storage.NewFileStore("file://" + t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("k", []byte("v")))

	got, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

package storage_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticefs/lattice/internal/storage"
)

func newIndex(t *testing.T) *storage.Index {
	t.Helper()
	idx, err := storage.OpenIndex(filepath.Join(t.TempDir(), "index"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestIndexPutGetDelete(t *testing.T) {
	idx := newIndex(t)

	require.NoError(t, idx.Put("/a.txt", 42, time.Now()))

	entry, ok, err := idx.Get("/a.txt")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), entry.Size)

	require.NoError(t, idx.Delete("/a.txt"))
	_, ok, err = idx.Get("/a.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIndexRebuildPopulatesFromDisk(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()
	require.NoError(t, store.WriteWhole(ctx, "/a.txt", []byte("hello")))
	require.NoError(t, store.WriteWhole(ctx, "/dir/b.txt", []byte("world!")))

	idx := newIndex(t)
	n, err := idx.Rebuild(store)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entry, ok, err := idx.Get("/a.txt")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(5), entry.Size)
}

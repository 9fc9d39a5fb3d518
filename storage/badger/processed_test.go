package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/contextgraph/core"
	"github.com/poiesic/contextgraph/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) storage.ProcessedStore {
	t.Helper()
	store, backend, err := NewMemoryProcessedStore()
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		backend.Close()
	})
	return store
}

func TestMarkAndIsProcessed(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	processed, err := store.IsProcessed(ctx, "src-1")
	require.NoError(t, err)
	assert.False(t, processed)

	err = store.MarkProcessed(ctx, &core.ProcessedRecord{SourceID: "src-1"})
	require.NoError(t, err)

	processed, err = store.IsProcessed(ctx, "src-1")
	require.NoError(t, err)
	assert.True(t, processed)

	// Other sources remain unprocessed.
	processed, err = store.IsProcessed(ctx, "src-2")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestMarkProcessedPopulatesDefaults(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	before := time.Now().UTC()
	require.NoError(t, store.MarkProcessed(ctx, &core.ProcessedRecord{SourceID: "src-1"}))

	record, err := store.Get(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, "src-1", record.SourceID)
	assert.Equal(t, core.StatusProcessed, record.Status)
	assert.False(t, record.ProcessedAt.Before(before.Truncate(time.Microsecond)))
}

func TestMarkProcessedEmptySourceID(t *testing.T) {
	store := setupStore(t)

	err := store.MarkProcessed(context.Background(), &core.ProcessedRecord{})
	assert.ErrorIs(t, err, core.ErrEmptySourceID)
}

func TestGetNotFound(t *testing.T) {
	store := setupStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMarkProcessedIdempotent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.MarkProcessed(ctx, &core.ProcessedRecord{SourceID: "src-1"}))
	}

	record, err := store.Get(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusProcessed, record.Status)
}

func TestDurableAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	store, err := NewProcessedRepository(backend)
	require.NoError(t, err)
	require.NoError(t, store.MarkProcessed(ctx, &core.ProcessedRecord{SourceID: "src-1"}))
	require.NoError(t, backend.Close())

	// Reopen the same directory; the ledger must survive restart.
	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()
	store, err = NewProcessedRepository(backend)
	require.NoError(t, err)

	processed, err := store.IsProcessed(ctx, "src-1")
	require.NoError(t, err)
	assert.True(t, processed)
}

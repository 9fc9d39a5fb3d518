package contextgraph

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/contextgraph/ai"
	"github.com/poiesic/contextgraph/ai/hash"
	"github.com/poiesic/contextgraph/storage/memory"
	"github.com/poiesic/contextgraph/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	service, err := NewServiceFromComponents(
		filepath.Join(t.TempDir(), "ledger"),
		memory.NewVectorIndex(),
		memory.NewGraphStore(),
		nil,
	)
	require.NoError(t, err)
	return service
}

func TestNewServiceFromComponents(t *testing.T) {
	t.Run("create new service", func(t *testing.T) {
		service := newTestService(t)
		defer service.Close()

		assert.NotNil(t, service.Store())
		assert.NotNil(t, service.ProcessedStore())
		assert.NotNil(t, service.Provider())
	})

	t.Run("error with invalid ledger path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

		service, err := NewServiceFromComponents(tmpFile,
			memory.NewVectorIndex(), memory.NewGraphStore(), nil)
		assert.Error(t, err)
		assert.Nil(t, service)
	})
}

func TestService_Close(t *testing.T) {
	service := newTestService(t)
	assert.NoError(t, service.Close())
}

// failingCloseProvider wraps the default provider with a Close that errors.
type failingCloseProvider struct {
	ai.Provider
	err error
}

func (p *failingCloseProvider) Close() error {
	return p.err
}

func TestService_CloseReturnsProviderError(t *testing.T) {
	boom := errors.New("provider close failed")
	service, err := NewServiceFromComponents(
		filepath.Join(t.TempDir(), "ledger"),
		memory.NewVectorIndex(),
		memory.NewGraphStore(),
		&failingCloseProvider{Provider: hash.NewProvider(), err: boom},
	)
	require.NoError(t, err)

	assert.ErrorIs(t, service.Close(), boom)
}

func TestService_FactoryMethods(t *testing.T) {
	service := newTestService(t)
	defer service.Close()

	pipeline, err := service.NewIngestionPipeline()
	require.NoError(t, err)
	require.NotNil(t, pipeline)
	defer pipeline.Close()

	client, err := upstream.NewHTTPClient("http://localhost:9999")
	require.NoError(t, err)
	loop := service.NewSyncLoop(client, pipeline)
	assert.NotNil(t, loop)
}

func TestService_EndToEnd(t *testing.T) {
	service := newTestService(t)
	defer service.Close()
	ctx := context.Background()

	require.NoError(t, service.Store().EnsureSchema(ctx))

	pipeline, err := service.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Close()

	// Default provider is the deterministic hash stack; no external
	// services are needed to ingest and search.
	result, err := pipeline.ProcessDocuments(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, result.StoredIDs)

	vector, err := service.Provider().Embedder().EmbedText(ctx, "loan flow")
	require.NoError(t, err)
	matches, err := service.Store().SearchSimilar(ctx, vector, 3)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

package syncloop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/contextgraph/ai/mock"
	"github.com/poiesic/contextgraph/core"
	"github.com/poiesic/contextgraph/hybrid"
	"github.com/poiesic/contextgraph/ingestion"
	badgerstore "github.com/poiesic/contextgraph/storage/badger"
	"github.com/poiesic/contextgraph/storage/memory"
	"github.com/poiesic/contextgraph/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lendingCreatedAt = time.Date(2025, 9, 15, 8, 0, 0, 0, time.UTC)

// fakeClient is an in-memory upstream.Client with per-call accounting.
type fakeClient struct {
	mu       sync.Mutex
	sources  []upstream.Source
	content  map[string]string
	listErr  error
	fetches  map[string]int
	onFetch  func(sourceID string)
}

var _ upstream.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		sources: []upstream.Source{
			{ID: "src-lending", Name: "Lending API", Category: "lending", CreatedAt: lendingCreatedAt},
			{ID: "src-ekyc", Name: "eKYC Service", Category: "ekyc"},
			{ID: "src-pan", Name: "PAN Registry", Category: "pan"},
		},
		content: map[string]string{
			"src-lending": "Loan origination posts to /loans/apply.",
			"src-ekyc":    "Identity checks hit the /ekyc/verify endpoint.",
			"src-pan":     "PAN lookup server exposes /pan/check.",
		},
		fetches: make(map[string]int),
	}
}

func (f *fakeClient) ListSources(ctx context.Context) ([]upstream.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.sources, nil
}

func (f *fakeClient) FetchContent(ctx context.Context, sourceID string) (string, error) {
	f.mu.Lock()
	f.fetches[sourceID]++
	onFetch := f.onFetch
	content := f.content[sourceID]
	f.mu.Unlock()
	if onFetch != nil {
		onFetch(sourceID)
	}
	return content, nil
}

func (f *fakeClient) fetchCount(sourceID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[sourceID]
}

type loopFixture struct {
	loop   *Loop
	client *fakeClient
	vector *memory.VectorIndex
	graph  *memory.GraphStore
}

func setupLoop(t *testing.T, opts ...Option) *loopFixture {
	t.Helper()

	vector := memory.NewVectorIndex()
	graph := memory.NewGraphStore()
	store := hybrid.NewStore(vector, graph)
	require.NoError(t, store.EnsureSchema(context.Background()))

	pipeline, err := ingestion.NewPipeline(store, mock.NewMockProvider())
	require.NoError(t, err)

	processed, backend, err := badgerstore.NewMemoryProcessedStore()
	require.NoError(t, err)

	t.Cleanup(func() {
		pipeline.Close()
		store.Close()
		backend.Close()
	})

	client := newFakeClient()
	return &loopFixture{
		loop:   NewLoop(client, processed, pipeline, opts...),
		client: client,
		vector: vector,
		graph:  graph,
	}
}

func TestRunOnceIngestsAllSources(t *testing.T) {
	f := setupLoop(t)
	ctx := context.Background()

	require.NoError(t, f.loop.RunOnce(ctx))

	assert.Equal(t, 3, f.vector.Len())
	ids, err := f.graph.ListDocumentIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	// The graph source node carries the upstream creation time.
	src, ok := f.graph.Source("src-lending")
	require.True(t, ok)
	assert.Equal(t, lendingCreatedAt, src.CreatedAt)
}

func TestRepeatedCyclesIngestAtMostOnce(t *testing.T) {
	f := setupLoop(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, f.loop.RunOnce(ctx))
	}

	// Processed sources are skipped before any fetch, so each source was
	// fetched and ingested exactly once.
	assert.Equal(t, 3, f.vector.Len())
	for _, id := range []string{"src-lending", "src-ekyc", "src-pan"} {
		assert.Equal(t, 1, f.client.fetchCount(id), id)
	}
}

func TestPartialFailureRetriesWholeSource(t *testing.T) {
	f := setupLoop(t)
	ctx := context.Background()

	boom := errors.New("graph down")
	f.graph.MergeDocumentHook = func(doc *core.Document) error {
		if doc.Category == "ekyc" {
			return boom
		}
		return nil
	}

	require.NoError(t, f.loop.RunOnce(ctx))
	assert.Equal(t, 1, f.client.fetchCount("src-ekyc"))

	// Backend recovers; the failed source is retried whole, the others are
	// not touched again.
	f.graph.MergeDocumentHook = nil
	require.NoError(t, f.loop.RunOnce(ctx))

	assert.Equal(t, 2, f.client.fetchCount("src-ekyc"))
	assert.Equal(t, 1, f.client.fetchCount("src-lending"))
	assert.Equal(t, 1, f.client.fetchCount("src-pan"))

	ids, err := f.graph.ListDocumentIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 3, "all three sources eventually land in the graph")

	// Third cycle: everything processed, nothing fetched.
	require.NoError(t, f.loop.RunOnce(ctx))
	assert.Equal(t, 2, f.client.fetchCount("src-ekyc"))
}

func TestEmptyContentStaysEligible(t *testing.T) {
	f := setupLoop(t)
	ctx := context.Background()

	f.client.mu.Lock()
	f.client.content["src-ekyc"] = ""
	f.client.mu.Unlock()

	require.NoError(t, f.loop.RunOnce(ctx))
	assert.Equal(t, 2, f.vector.Len(), "only the sources with content")

	// Content appears later; the source is picked up on the next cycle.
	f.client.mu.Lock()
	f.client.content["src-ekyc"] = "Identity checks hit the /ekyc/verify endpoint."
	f.client.mu.Unlock()

	require.NoError(t, f.loop.RunOnce(ctx))
	assert.Equal(t, 3, f.vector.Len())
	assert.Equal(t, 2, f.client.fetchCount("src-ekyc"))
}

func TestListFailureReturnsError(t *testing.T) {
	f := setupLoop(t)
	f.client.mu.Lock()
	f.client.listErr = errors.New("upstream down")
	f.client.mu.Unlock()

	err := f.loop.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, f.vector.Len())
}

func TestCancellationStopsBetweenSources(t *testing.T) {
	f := setupLoop(t)
	ctx, cancel := context.WithCancel(context.Background())

	// Cancel while the first source is in flight; it must still finish,
	// and the remaining sources must not start.
	f.client.onFetch = func(sourceID string) {
		cancel()
	}

	err := f.loop.RunOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 1, f.vector.Len(), "in-flight source completes")
	assert.Equal(t, 1, f.client.fetchCount("src-lending"))
	assert.Equal(t, 0, f.client.fetchCount("src-ekyc"))
	assert.Equal(t, 0, f.client.fetchCount("src-pan"))
}

package memory

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/poiesic/contextgraph/core"
	"github.com/poiesic/contextgraph/storage"
)

// VectorIndex is an in-memory storage.VectorIndex used by tests and local
// development. It mirrors the contract of the production backend: ids are
// generated on insert, vectors are supplied externally, and search reports a
// cosine distance where lower is more similar.
type VectorIndex struct {
	// InsertHook, if set, runs before each insert and can force a failure.
	InsertHook func(doc *core.Document) error

	mu     sync.RWMutex
	docs   map[string]core.Document
	nextID int
	closed bool
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates an empty in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{docs: make(map[string]core.Document)}
}

// EnsureCollection recreates the collection, dropping any stored documents.
func (v *VectorIndex) EnsureCollection(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return storage.ErrStorageClosed
	}
	v.docs = make(map[string]core.Document)
	return nil
}

// DropCollection removes all stored documents.
func (v *VectorIndex) DropCollection(ctx context.Context) error {
	return v.EnsureCollection(ctx)
}

// Insert stores the document and returns a generated identifier.
func (v *VectorIndex) Insert(ctx context.Context, doc *core.Document) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return "", storage.ErrStorageClosed
	}
	if v.InsertHook != nil {
		if err := v.InsertHook(doc); err != nil {
			return "", err
		}
	}

	v.nextID++
	id := fmt.Sprintf("vec-%06d", v.nextID)
	stored := *doc
	stored.ID = id
	v.docs[id] = stored
	return id, nil
}

// SearchNearVector returns up to limit documents ordered by ascending cosine
// distance from the query vector.
func (v *VectorIndex) SearchNearVector(ctx context.Context, vector []float32, limit int) ([]core.SimilarityMatch, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return nil, storage.ErrStorageClosed
	}

	matches := make([]core.SimilarityMatch, 0, len(v.docs))
	for _, doc := range v.docs {
		matches = append(matches, core.SimilarityMatch{
			Document: doc,
			Distance: cosineDistance(vector, doc.Vector),
		})
	}

	slices.SortStableFunc(matches, func(a, b core.SimilarityMatch) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// ListIDs returns all stored document identifiers.
func (v *VectorIndex) ListIDs(ctx context.Context) ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return nil, storage.ErrStorageClosed
	}

	ids := make([]string, 0, len(v.docs))
	for id := range v.docs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Get returns a stored document by id, for test assertions.
func (v *VectorIndex) Get(id string) (core.Document, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	doc, ok := v.docs[id]
	return doc, ok
}

// Len returns the number of stored documents.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.docs)
}

// Close marks the index closed. Idempotent.
func (v *VectorIndex) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	return nil
}

// cosineDistance computes 1 - cos(a, b). For unit-norm vectors this equals
// 1 minus the dot product, matching the production backend's orientation.
func cosineDistance(a, b []float32) float32 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}

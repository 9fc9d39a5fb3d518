package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/poiesic/contextgraph/core"
	"github.com/poiesic/contextgraph/storage"
)

// edge is a typed directed relationship between two node identifiers.
type edge struct {
	From string
	To   string
	Type core.RelationshipType
}

// GraphStore is an in-memory storage.GraphStore used by tests and local
// development. All writes follow merge semantics: repeated calls with
// identical arguments leave a single node or edge.
type GraphStore struct {
	// MergeDocumentHook, if set, runs before each document merge and can
	// force a failure (used to simulate partial writes).
	MergeDocumentHook func(doc *core.Document) error

	mu        sync.RWMutex
	sources   map[string]core.Source
	documents map[string]core.Document
	keywords  map[string]struct{}
	edges     map[edge]struct{}
	closed    bool
}

var _ storage.GraphStore = (*GraphStore)(nil)

// NewGraphStore creates an empty in-memory graph store.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		sources:   make(map[string]core.Source),
		documents: make(map[string]core.Document),
		keywords:  make(map[string]struct{}),
		edges:     make(map[edge]struct{}),
	}
}

// EnsureConstraints is a no-op; map keys are unique by construction.
func (g *GraphStore) EnsureConstraints(ctx context.Context) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.closed {
		return storage.ErrStorageClosed
	}
	return nil
}

// MergeSource stores or updates the source node.
func (g *GraphStore) MergeSource(ctx context.Context, source *core.Source) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return storage.ErrStorageClosed
	}
	if source.ID == "" {
		return core.ErrEmptySourceID
	}
	g.sources[source.ID] = *source
	return nil
}

// MergeDocument stores or updates the document node.
func (g *GraphStore) MergeDocument(ctx context.Context, doc *core.Document) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return storage.ErrStorageClosed
	}
	if g.MergeDocumentHook != nil {
		if err := g.MergeDocumentHook(doc); err != nil {
			return err
		}
	}
	if doc.ID == "" {
		return fmt.Errorf("document id required")
	}
	g.documents[doc.ID] = *doc
	return nil
}

// MergeKeyword stores the keyword node, deduplicated by name.
func (g *GraphStore) MergeKeyword(ctx context.Context, kw core.Keyword) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return storage.ErrStorageClosed
	}
	if kw.Name == "" {
		return fmt.Errorf("keyword name required")
	}
	g.keywords[kw.Name] = struct{}{}
	return nil
}

// MergeRelationship creates the edge if absent. Both endpoints must exist.
func (g *GraphStore) MergeRelationship(ctx context.Context, fromID, toID string, relType core.RelationshipType) error {
	if err := core.ValidateRelationshipType(relType); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return storage.ErrStorageClosed
	}
	if !g.nodeExists(fromID) {
		return fmt.Errorf("%w: node %q", storage.ErrNotFound, fromID)
	}
	if !g.nodeExists(toID) {
		return fmt.Errorf("%w: node %q", storage.ErrNotFound, toID)
	}

	g.edges[edge{From: fromID, To: toID, Type: relType}] = struct{}{}
	return nil
}

func (g *GraphStore) nodeExists(id string) bool {
	if _, ok := g.documents[id]; ok {
		return true
	}
	if _, ok := g.sources[id]; ok {
		return true
	}
	_, ok := g.keywords[id]
	return ok
}

// HasDocument reports whether a document node exists.
func (g *GraphStore) HasDocument(ctx context.Context, id string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.closed {
		return false, storage.ErrStorageClosed
	}
	_, ok := g.documents[id]
	return ok, nil
}

// ListDocumentIDs returns all document node identifiers.
func (g *GraphStore) ListDocumentIDs(ctx context.Context) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.closed {
		return nil, storage.ErrStorageClosed
	}

	ids := make([]string, 0, len(g.documents))
	for id := range g.documents {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// EdgeCount returns the number of edges of the given shape, for test
// assertions. Merge semantics guarantee this is 0 or 1.
func (g *GraphStore) EdgeCount(fromID, toID string, relType core.RelationshipType) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.edges[edge{From: fromID, To: toID, Type: relType}]; ok {
		return 1
	}
	return 0
}

// EdgesByType returns all edges of the given type, for test assertions.
func (g *GraphStore) EdgesByType(relType core.RelationshipType) [][2]string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out [][2]string
	for e := range g.edges {
		if e.Type == relType {
			out = append(out, [2]string{e.From, e.To})
		}
	}
	return out
}

// Source returns a stored source node by id, for test assertions.
func (g *GraphStore) Source(id string) (core.Source, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	src, ok := g.sources[id]
	return src, ok
}

// Document returns a stored document node by id, for test assertions.
func (g *GraphStore) Document(id string) (core.Document, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	doc, ok := g.documents[id]
	return doc, ok
}

// HasKeyword reports whether a keyword node exists, for test assertions.
func (g *GraphStore) HasKeyword(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.keywords[name]
	return ok
}

// Close marks the store closed. Idempotent.
func (g *GraphStore) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

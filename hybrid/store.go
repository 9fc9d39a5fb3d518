// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hybrid

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/contextgraph/core"
	"github.com/poiesic/contextgraph/storage"
)

// Store coordinates a vector index and a graph store so documents exist in
// both. The vector index is written first and is the source of truth for
// document identity: the id it generates keys the mirrored graph node. A
// graph write that fails after a successful vector insert leaves an orphaned
// vector entry; that is accepted, reported via storage.ErrPartialWrite, and
// never rolled back. Callers retry the whole document.
type Store struct {
	vector storage.VectorIndex
	graph  storage.GraphStore
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger.With("component", "hybrid-store")
	}
}

// NewStore creates a hybrid store over the given backends.
func NewStore(vector storage.VectorIndex, graph storage.GraphStore, opts ...Option) *Store {
	s := &Store{
		vector: vector,
		graph:  graph,
		logger: slog.Default().With("component", "hybrid-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema prepares both backends: the vector collection and the graph
// uniqueness constraints.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.vector.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("ensure vector collection: %w", err)
	}
	if err := s.graph.EnsureConstraints(ctx); err != nil {
		return fmt.Errorf("ensure graph constraints: %w", err)
	}
	return nil
}

// AddDocument stores the document in both backends and returns the id the
// vector index generated. On graph failure the vector entry is kept and the
// error wraps storage.ErrPartialWrite; the returned id is empty because the
// document is not considered stored.
func (s *Store) AddDocument(ctx context.Context, doc *core.Document) (string, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return "", err
	}

	id, err := s.vector.Insert(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("vector insert: %w", err)
	}

	mirrored := *doc
	mirrored.ID = id
	if err := s.graph.MergeDocument(ctx, &mirrored); err != nil {
		s.logger.Warn("graph mirror failed, vector entry orphaned",
			"id", id, "category", doc.Category, "error", err)
		return "", fmt.Errorf("%w: graph mirror for %s: %w", storage.ErrPartialWrite, id, err)
	}

	s.logger.Debug("document stored in both backends", "id", id, "category", doc.Category)
	return id, nil
}

// AddSource merges the source node into the graph.
func (s *Store) AddSource(ctx context.Context, source *core.Source) error {
	return s.graph.MergeSource(ctx, source)
}

// AddKeyword merges the keyword node into the graph.
func (s *Store) AddKeyword(ctx context.Context, kw core.Keyword) error {
	return s.graph.MergeKeyword(ctx, kw)
}

// CreateRelationship merges a typed edge between two graph nodes. The type
// must belong to the core.RelationshipType enum; repeated calls with the
// same arguments leave exactly one edge.
func (s *Store) CreateRelationship(ctx context.Context, fromID, toID string, relType core.RelationshipType) error {
	if err := core.ValidateRelationshipType(relType); err != nil {
		return err
	}
	if err := s.graph.MergeRelationship(ctx, fromID, toID, relType); err != nil {
		return fmt.Errorf("merge relationship %s: %w", relType, err)
	}
	return nil
}

// SearchSimilar returns up to limit documents nearest to the query vector,
// ordered nearest first. Distance is backend-reported; lower is closer.
func (s *Store) SearchSimilar(ctx context.Context, vector []float32, limit int) ([]core.SimilarityMatch, error) {
	matches, err := s.vector.SearchNearVector(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return matches, nil
}

// HasDocument reports whether the document exists in the graph backend. A
// document present in the vector index but absent here is an orphan from a
// partial write.
func (s *Store) HasDocument(ctx context.Context, id string) (bool, error) {
	return s.graph.HasDocument(ctx, id)
}

// Close releases both backends. Both are attempted even if the first fails.
func (s *Store) Close() error {
	vErr := s.vector.Close()
	gErr := s.graph.Close()
	if vErr != nil {
		return fmt.Errorf("close vector index: %w", vErr)
	}
	if gErr != nil {
		return fmt.Errorf("close graph store: %w", gErr)
	}
	return nil
}

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

// Package neo4j implements storage.GraphStore against a Neo4j instance.
//
// All node and relationship writes use MERGE so repeated ingestion of the
// same source converges instead of duplicating. Values always travel as
// query parameters; the one thing Cypher cannot parameterize, the
// relationship type token, is validated against the closed
// core.RelationshipType set before it is spliced into a query.
package neo4j

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/poiesic/contextgraph/core"
	"github.com/poiesic/contextgraph/storage"
)

const contentPreviewLen = 200

// Config holds connection parameters for the Neo4j backend.
type Config struct {
	// URI is the bolt endpoint, e.g. "bolt://localhost:7687".
	URI string
	// Username and Password authenticate via basic auth.
	Username string
	Password string
}

// Store implements storage.GraphStore on Neo4j.
type Store struct {
	driver neo4j.DriverWithContext
	logger *slog.Logger
}

var _ storage.GraphStore = (*Store)(nil)

// NewStore connects to Neo4j and verifies connectivity.
//
// Returns storage.GraphStore interface to enforce abstraction.
func NewStore(ctx context.Context, config Config) (storage.GraphStore, error) {
	if config.URI == "" {
		return nil, fmt.Errorf("neo4j: uri is required")
	}

	driver, err := neo4j.NewDriverWithContext(config.URI, neo4j.BasicAuth(config.Username, config.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j: create driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}

	return &Store{
		driver: driver,
		logger: slog.Default().With("component", "neo4j-store"),
	}, nil
}

func (s *Store) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
}

func (s *Store) readSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
}

// run executes a single write statement and consumes the result.
func (s *Store) run(ctx context.Context, query string, params map[string]any) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}

// EnsureConstraints creates the uniqueness constraints the merge queries
// rely on. Idempotent via IF NOT EXISTS.
func (s *Store) EnsureConstraints(ctx context.Context) error {
	constraints := []string{
		"CREATE CONSTRAINT document_id IF NOT EXISTS FOR (d:Document) REQUIRE d.id IS UNIQUE",
		"CREATE CONSTRAINT source_id IF NOT EXISTS FOR (s:Source) REQUIRE s.id IS UNIQUE",
		"CREATE CONSTRAINT keyword_name IF NOT EXISTS FOR (k:Keyword) REQUIRE k.name IS UNIQUE",
	}
	for _, constraint := range constraints {
		if err := s.run(ctx, constraint, nil); err != nil {
			return fmt.Errorf("neo4j: create constraint: %w", err)
		}
	}
	s.logger.Info("graph constraints ready")
	return nil
}

// MergeSource creates or updates a Source node keyed by id.
func (s *Store) MergeSource(ctx context.Context, source *core.Source) error {
	if source.ID == "" {
		return core.ErrEmptySourceID
	}

	query := `
		MERGE (s:Source {id: $id})
		SET s.name = $name, s.description = $description, s.created_at = $created_at`
	params := map[string]any{
		"id":          source.ID,
		"name":        source.Name,
		"description": source.Description,
		"created_at":  source.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if err := s.run(ctx, query, params); err != nil {
		return fmt.Errorf("neo4j: merge source %s: %w", source.ID, err)
	}
	return nil
}

// MergeDocument creates or updates a Document node keyed by id. The node
// carries a content preview rather than the full text; the vector backend
// owns the full content.
func (s *Store) MergeDocument(ctx context.Context, doc *core.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("neo4j: %w: document id required", core.ErrInvalidDocument)
	}

	query := `
		MERGE (d:Document {id: $id})
		SET d.content_preview = $content_preview,
		    d.summary = $summary,
		    d.category = $category,
		    d.source_id = $source_id`
	params := map[string]any{
		"id":              doc.ID,
		"content_preview": doc.Preview(contentPreviewLen),
		"summary":         doc.Summary,
		"category":        doc.Category,
		"source_id":       doc.SourceID,
	}
	if err := s.run(ctx, query, params); err != nil {
		return fmt.Errorf("neo4j: merge document %s: %w", doc.ID, err)
	}
	return nil
}

// MergeKeyword creates a Keyword node keyed by name if absent.
func (s *Store) MergeKeyword(ctx context.Context, kw core.Keyword) error {
	if kw.Name == "" {
		return fmt.Errorf("neo4j: keyword name required")
	}

	// Keywords carry an id equal to their name so relationship merges,
	// which match on id, can target them.
	query := "MERGE (k:Keyword {name: $name}) SET k.id = $name"
	if err := s.run(ctx, query, map[string]any{"name": kw.Name}); err != nil {
		return fmt.Errorf("neo4j: merge keyword %s: %w", kw.Name, err)
	}
	return nil
}

// MergeRelationship creates a typed edge between two existing nodes if
// absent. Cypher cannot take the relationship type as a parameter, so the
// type is validated against the closed enum before query construction;
// anything outside the enum is rejected with core.ErrInvalidRelationshipType.
func (s *Store) MergeRelationship(ctx context.Context, fromID, toID string, relType core.RelationshipType) error {
	if err := core.ValidateRelationshipType(relType); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		MATCH (a {id: $from_id})
		MATCH (b {id: $to_id})
		MERGE (a)-[:%s]->(b)`, relType)
	params := map[string]any{
		"from_id": fromID,
		"to_id":   toID,
	}

	session := s.writeSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return fmt.Errorf("neo4j: merge relationship %s: %w", relType, err)
	}
	summary, err := result.Consume(ctx)
	if err != nil {
		return fmt.Errorf("neo4j: merge relationship %s: %w", relType, err)
	}

	// MATCH on a missing endpoint silently matches nothing; surface that
	// as a not-found instead of a no-op.
	if summary.Counters().RelationshipsCreated() == 0 {
		exists, err := s.relationshipExists(ctx, fromID, toID, relType)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: relationship endpoints %q -> %q", storage.ErrNotFound, fromID, toID)
		}
	}
	return nil
}

func (s *Store) relationshipExists(ctx context.Context, fromID, toID string, relType core.RelationshipType) (bool, error) {
	query := fmt.Sprintf(`
		MATCH (a {id: $from_id})-[:%s]->(b {id: $to_id})
		RETURN count(*) AS n`, relType)

	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, map[string]any{"from_id": fromID, "to_id": toID})
	if err != nil {
		return false, fmt.Errorf("neo4j: check relationship: %w", err)
	}
	if result.Next(ctx) {
		if n, ok := result.Record().Get("n"); ok {
			if count, ok := n.(int64); ok {
				return count > 0, nil
			}
		}
	}
	return false, result.Err()
}

// HasDocument reports whether a Document node with the given id exists.
func (s *Store) HasDocument(ctx context.Context, id string) (bool, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		"MATCH (d:Document {id: $id}) RETURN count(d) AS n",
		map[string]any{"id": id})
	if err != nil {
		return false, fmt.Errorf("neo4j: check document %s: %w", id, err)
	}
	if result.Next(ctx) {
		if n, ok := result.Record().Get("n"); ok {
			if count, ok := n.(int64); ok {
				return count > 0, nil
			}
		}
	}
	return false, result.Err()
}

// ListDocumentIDs returns the ids of all Document nodes.
func (s *Store) ListDocumentIDs(ctx context.Context) ([]string, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, "MATCH (d:Document) RETURN d.id AS id ORDER BY id", nil)
	if err != nil {
		return nil, fmt.Errorf("neo4j: list documents: %w", err)
	}

	var ids []string
	for result.Next(ctx) {
		if v, ok := result.Record().Get("id"); ok {
			if id, ok := v.(string); ok {
				ids = append(ids, id)
			}
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("neo4j: list documents: %w", err)
	}
	return ids, nil
}

// Close shuts down the driver and its connection pool.
func (s *Store) Close() error {
	return s.driver.Close(context.Background())
}

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

// Package weaviate implements storage.VectorIndex against a Weaviate
// instance. The collection is created with the vectorizer disabled: vectors
// are always supplied by the caller, never computed by the backend.
package weaviate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/contextgraph/core"
	"github.com/poiesic/contextgraph/storage"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const (
	defaultClassName = "Document"
	defaultTimeout   = 30 * time.Second

	// listLimit caps the reconciliation listing. Well above anything the
	// sync loop produces in practice.
	listLimit = 10000
)

// Config holds connection parameters for the Weaviate backend.
type Config struct {
	// Scheme is "http" or "https".
	Scheme string
	// Host is the host:port of the Weaviate instance.
	Host string
	// ClassName is the document collection name. Default "Document".
	ClassName string
	// Timeout bounds each outbound call. Default 30s.
	Timeout time.Duration
}

// Index implements storage.VectorIndex on Weaviate.
type Index struct {
	client    *weaviate.Client
	className string
	timeout   time.Duration
	logger    *slog.Logger
}

var _ storage.VectorIndex = (*Index)(nil)

// NewIndex connects to Weaviate and returns a vector index.
//
// Returns storage.VectorIndex interface to enforce abstraction.
func NewIndex(config Config) (storage.VectorIndex, error) {
	if config.Scheme == "" {
		config.Scheme = "http"
	}
	if config.Host == "" {
		return nil, fmt.Errorf("weaviate: host is required")
	}
	if config.ClassName == "" {
		config.ClassName = defaultClassName
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Scheme: config.Scheme,
		Host:   config.Host,
	})
	if err != nil {
		return nil, fmt.Errorf("weaviate: %w", err)
	}

	return &Index{
		client:    client,
		className: config.ClassName,
		timeout:   config.Timeout,
		logger:    slog.Default().With("component", "weaviate-index"),
	}, nil
}

func (i *Index) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, i.timeout)
}

// EnsureCollection drops and recreates the document collection with an
// explicit property list and the vectorizer disabled. Idempotent: a missing
// collection is fine on delete, and recreation after delete cannot conflict.
func (i *Index) EnsureCollection(ctx context.Context) error {
	if err := i.DropCollection(ctx); err != nil {
		return err
	}

	cctx, cancel := i.withTimeout(ctx)
	defer cancel()

	class := &models.Class{
		Class:       i.className,
		Description: "A collection of documents with externally supplied vector embeddings",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "summary", DataType: []string{"text"}},
			{Name: "category", DataType: []string{"text"}},
			{Name: "source_id", DataType: []string{"text"}},
		},
	}

	if err := i.client.Schema().ClassCreator().WithClass(class).Do(cctx); err != nil {
		return fmt.Errorf("weaviate: create collection %s: %w", i.className, err)
	}

	i.logger.Info("vector collection ready", "class", i.className)
	return nil
}

// DropCollection deletes the document collection if it exists.
func (i *Index) DropCollection(ctx context.Context) error {
	cctx, cancel := i.withTimeout(ctx)
	defer cancel()

	exists, err := i.client.Schema().ClassExistenceChecker().WithClassName(i.className).Do(cctx)
	if err != nil {
		return fmt.Errorf("weaviate: check collection %s: %w", i.className, err)
	}
	if !exists {
		return nil
	}

	if err := i.client.Schema().ClassDeleter().WithClassName(i.className).Do(cctx); err != nil {
		return fmt.Errorf("weaviate: delete collection %s: %w", i.className, err)
	}
	return nil
}

// Insert stores the document with its vector and returns the generated id.
func (i *Index) Insert(ctx context.Context, doc *core.Document) (string, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return "", err
	}

	cctx, cancel := i.withTimeout(ctx)
	defer cancel()

	wrapper, err := i.client.Data().Creator().
		WithClassName(i.className).
		WithProperties(map[string]any{
			"content":   doc.Content,
			"summary":   doc.Summary,
			"category":  doc.Category,
			"source_id": doc.SourceID,
		}).
		WithVector(doc.Vector).
		Do(cctx)
	if err != nil {
		return "", fmt.Errorf("weaviate: insert: %w", err)
	}

	id := string(wrapper.Object.ID)
	i.logger.Debug("document inserted", "id", id, "category", doc.Category)
	return id, nil
}

// SearchNearVector performs a nearest-neighbor query. Results are ordered by
// the backend nearest first; Distance is the backend-reported value where
// lower means more similar.
func (i *Index) SearchNearVector(ctx context.Context, vector []float32, limit int) ([]core.SimilarityMatch, error) {
	cctx, cancel := i.withTimeout(ctx)
	defer cancel()

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "summary"},
		{Name: "category"},
		{Name: "source_id"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "id"},
			{Name: "distance"},
		}},
	}

	nearVector := i.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	resp, err := i.client.GraphQL().Get().
		WithClassName(i.className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(limit).
		Do(cctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate: near-vector query: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate: near-vector query: %s", resp.Errors[0].Message)
	}

	return i.parseMatches(resp)
}

func (i *Index) parseMatches(resp *models.GraphQLResponse) ([]core.SimilarityMatch, error) {
	get, ok := resp.Data["Get"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("weaviate: unexpected response shape")
	}
	items, ok := get[i.className].([]any)
	if !ok {
		return nil, nil
	}

	matches := make([]core.SimilarityMatch, 0, len(items))
	for _, item := range items {
		props, ok := item.(map[string]any)
		if !ok {
			continue
		}

		match := core.SimilarityMatch{
			Document: core.Document{
				Content:  stringProp(props, "content"),
				Summary:  stringProp(props, "summary"),
				Category: stringProp(props, "category"),
				SourceID: stringProp(props, "source_id"),
			},
		}
		if additional, ok := props["_additional"].(map[string]any); ok {
			match.Document.ID = stringProp(additional, "id")
			if d, ok := additional["distance"].(float64); ok {
				match.Distance = float32(d)
			}
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// ListIDs returns the identifiers of stored documents, capped at listLimit.
func (i *Index) ListIDs(ctx context.Context) ([]string, error) {
	cctx, cancel := i.withTimeout(ctx)
	defer cancel()

	objects, err := i.client.Data().ObjectsGetter().
		WithClassName(i.className).
		WithLimit(listLimit).
		Do(cctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate: list objects: %w", err)
	}

	ids := make([]string, 0, len(objects))
	for _, obj := range objects {
		ids = append(ids, string(obj.ID))
	}
	return ids, nil
}

// Close releases the client. The underlying HTTP client needs no explicit
// cleanup; Close exists to satisfy the interface and is idempotent.
func (i *Index) Close() error {
	return nil
}

func stringProp(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

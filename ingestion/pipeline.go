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

package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/contextgraph/ai"
	"github.com/poiesic/contextgraph/chunk"
	"github.com/poiesic/contextgraph/core"
	"github.com/poiesic/contextgraph/hybrid"
	"github.com/poiesic/contextgraph/keyword"
	"github.com/poiesic/contextgraph/storage"
)

const defaultPoolSize = 4

// DefaultRelationshipRules is the built-in category dependency table:
// lending flows require an eKYC step, which in turn requires PAN
// verification. Deployments with other domains inject their own table via
// WithRelationshipRules.
func DefaultRelationshipRules() []core.RelationshipRule {
	return []core.RelationshipRule{
		{FromCategory: "lending", ToCategory: "ekyc", Type: core.RelRequires},
		{FromCategory: "ekyc", ToCategory: "pan", Type: core.RelRequires},
	}
}

// SourceDocument is one upstream document to ingest: the raw extracted
// content plus the identity of the source it came from.
type SourceDocument struct {
	SourceID    string
	SourceName  string
	Description string
	Category    string
	Content     string
	// CreatedAt is the upstream creation time of the source, mirrored onto
	// the graph node. Zero means unknown; the merge time is used instead.
	CreatedAt time.Time
}

// Pipeline turns source documents into stored, linked documents: summarize,
// chunk, embed, store in both backends, then wire CONTAINS, MENTIONS, and
// rule-driven REQUIRES relationships.
type Pipeline struct {
	store     *hybrid.Store
	provider  ai.Provider
	splitter  *chunk.Splitter
	extractor *keyword.Extractor
	rules     []core.RelationshipRule
	pool      *ants.Pool
	logger    *slog.Logger

	mu     sync.Mutex
	closed bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPoolSize sets the number of source documents processed concurrently.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) {
		if size > 0 {
			p.pool.Tune(size)
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger.With("component", "ingestion-pipeline")
	}
}

// WithRelationshipRules replaces the built-in category dependency table.
func WithRelationshipRules(rules []core.RelationshipRule) Option {
	return func(p *Pipeline) {
		p.rules = rules
	}
}

// WithSplitter replaces the default chunk splitter.
func WithSplitter(splitter *chunk.Splitter) Option {
	return func(p *Pipeline) {
		p.splitter = splitter
	}
}

// NewPipeline creates an ingestion pipeline over the hybrid store.
// The rule table is validated up front; a bad table is a configuration
// error, not a per-document failure.
func NewPipeline(store *hybrid.Store, provider ai.Provider, opts ...Option) (*Pipeline, error) {
	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	p := &Pipeline{
		store:     store,
		provider:  provider,
		splitter:  chunk.NewDefaultSplitter(),
		extractor: keyword.NewExtractor(),
		rules:     DefaultRelationshipRules(),
		pool:      pool,
		logger:    slog.Default().With("component", "ingestion-pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := core.ValidateRelationshipRules(p.rules); err != nil {
		pool.Release()
		return nil, err
	}
	return p, nil
}

// Result reports the outcome of one ProcessDocuments call.
type Result struct {
	// StoredIDs are the ids of documents stored in both backends,
	// across all source documents.
	StoredIDs []string
	// Partial counts documents that hit a partial write (vector stored,
	// graph mirror failed).
	Partial int
	// Failed counts documents that failed before any storage.
	Failed int

	// incomplete marks source ids with at least one unstored document.
	incomplete map[string]struct{}
}

// SourceComplete reports whether every document derived from the source was
// stored in both backends. Only complete sources may be marked processed.
func (r *Result) SourceComplete(sourceID string) bool {
	_, bad := r.incomplete[sourceID]
	return !bad
}

// sourceOutcome is the per-source result collected from the worker pool.
type sourceOutcome struct {
	sourceID string
	category string
	// firstDocID is the id of the first stored chunk document, used as the
	// category representative for rule-driven relationships.
	firstDocID string
	storedIDs  []string
	partial    int
	failed     int
	complete   bool
}

// ProcessDocuments runs the full pipeline over the given source documents.
// Source documents are processed concurrently; the relationship pass that
// links categories runs after all storage has settled. Per-document failures
// are recorded in the Result, never returned: one bad document must not
// block the batch.
func (p *Pipeline) ProcessDocuments(ctx context.Context, docs []SourceDocument) (*Result, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPipelineClosed
	}
	p.mu.Unlock()

	result := &Result{incomplete: make(map[string]struct{})}
	if len(docs) == 0 {
		return result, nil
	}

	outcomes := make([]sourceOutcome, len(docs))
	var wg sync.WaitGroup
	for i := range docs {
		i := i
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			outcomes[i] = p.processOne(ctx, docs[i])
		})
		if submitErr != nil {
			wg.Done()
			outcomes[i] = sourceOutcome{
				sourceID: docs[i].SourceID,
				category: docs[i].Category,
				failed:   1,
			}
		}
	}
	wg.Wait()

	// Category representatives for the relationship pass: the first stored
	// document of each category, in input order.
	firstByCategory := make(map[string]string)
	for _, out := range outcomes {
		result.StoredIDs = append(result.StoredIDs, out.storedIDs...)
		result.Partial += out.partial
		result.Failed += out.failed
		if !out.complete {
			result.incomplete[out.sourceID] = struct{}{}
		}
		if out.firstDocID != "" {
			if _, ok := firstByCategory[out.category]; !ok {
				firstByCategory[out.category] = out.firstDocID
			}
		}
	}

	p.applyRules(ctx, firstByCategory)

	p.logger.Info("batch processed",
		"sources", len(docs),
		"stored", len(result.StoredIDs),
		"partial", result.Partial,
		"failed", result.Failed)
	return result, nil
}

// processOne ingests a single source document: summary, chunks, embeddings,
// dual-backend storage, source node, CONTAINS and MENTIONS edges.
func (p *Pipeline) processOne(ctx context.Context, doc SourceDocument) sourceOutcome {
	out := sourceOutcome{sourceID: doc.SourceID, category: doc.Category}
	logger := p.logger.With("source_id", doc.SourceID, "category", doc.Category)

	if doc.Content == "" {
		logger.Warn("empty content, nothing to ingest")
		out.failed = 1
		return out
	}

	// A failed summary degrades the document, it does not fail it.
	summary, err := p.provider.Summarizer().Summarize(ctx, doc.Content)
	if err != nil {
		logger.Warn("summarization failed, storing without summary", "error", err)
		summary = ""
	}

	chunks := p.splitter.Split(doc.Content)
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := p.provider.Embedder().EmbedTexts(ctx, texts)
	if err != nil || len(vectors) != len(chunks) {
		logger.Error("embedding failed", "chunks", len(chunks), "error", err)
		out.failed = len(chunks)
		return out
	}

	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if err := p.store.AddSource(ctx, &core.Source{
		ID:          doc.SourceID,
		Name:        doc.SourceName,
		Description: doc.Description,
		CreatedAt:   createdAt,
	}); err != nil {
		logger.Error("source node merge failed", "error", err)
		out.failed = len(chunks)
		return out
	}

	out.complete = true
	for i, c := range chunks {
		id, err := p.storeChunk(ctx, doc, c, summary, vectors[i])
		if err != nil {
			logger.Warn("chunk not stored", "chunk", c.Index, "error", err)
			out.complete = false
			// A partial write left an orphaned vector entry; anything
			// else stored nothing at all.
			if errors.Is(err, storage.ErrPartialWrite) {
				out.partial++
			} else {
				out.failed++
			}
			continue
		}
		out.storedIDs = append(out.storedIDs, id)
		if out.firstDocID == "" {
			out.firstDocID = id
		}
	}
	return out
}

// storeChunk stores one chunk as a document in both backends and links it to
// its source and keywords.
func (p *Pipeline) storeChunk(ctx context.Context, doc SourceDocument, c core.Chunk, summary string, vector []float32) (string, error) {
	id, err := p.store.AddDocument(ctx, &core.Document{
		Content:  c.Content,
		Summary:  summary,
		Category: doc.Category,
		SourceID: doc.SourceID,
		Vector:   vector,
	})
	if err != nil {
		return "", err
	}

	if err := p.store.CreateRelationship(ctx, doc.SourceID, id, core.RelContains); err != nil {
		return "", fmt.Errorf("contains edge: %w", err)
	}

	// Keyword edges are best effort; a missed MENTIONS edge never fails
	// the chunk.
	for _, kw := range p.extractor.Extract(c.Content) {
		if err := p.store.AddKeyword(ctx, core.Keyword{Name: kw}); err != nil {
			p.logger.Warn("keyword merge failed", "keyword", kw, "error", err)
			continue
		}
		if err := p.store.CreateRelationship(ctx, id, kw, core.RelMentions); err != nil {
			p.logger.Warn("mentions edge failed", "keyword", kw, "error", err)
		}
	}
	return id, nil
}

// applyRules walks the category dependency table and links the category
// representatives that exist. Both endpoints must have been stored this run
// or earlier; merge semantics keep repeated runs at one edge per pair.
func (p *Pipeline) applyRules(ctx context.Context, firstByCategory map[string]string) {
	for _, rule := range p.rules {
		fromID, okFrom := firstByCategory[rule.FromCategory]
		toID, okTo := firstByCategory[rule.ToCategory]
		if !okFrom || !okTo {
			continue
		}
		if err := p.store.CreateRelationship(ctx, fromID, toID, rule.Type); err != nil {
			p.logger.Warn("rule relationship failed",
				"from_category", rule.FromCategory,
				"to_category", rule.ToCategory,
				"type", rule.Type,
				"error", err)
			continue
		}
		p.logger.Debug("rule relationship created",
			"from", fromID, "to", toID, "type", rule.Type)
	}
}

// Close releases the worker pool. Idempotent.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.pool.Release()
	return nil
}

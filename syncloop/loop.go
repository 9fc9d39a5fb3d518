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

// Package syncloop polls the upstream document service and feeds new sources
// through the ingestion pipeline.
//
// The loop is idempotent across restarts: a durable processed ledger records
// which sources have been fully ingested, and a source is marked processed
// only after every document derived from it landed in both backends. A
// source that fails partway stays unmarked and is retried whole on a later
// cycle. Shutdown is graceful: cancellation is observed between sources, so
// the source in flight always finishes.
package syncloop

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/contextgraph/core"
	"github.com/poiesic/contextgraph/ingestion"
	"github.com/poiesic/contextgraph/storage"
	"github.com/poiesic/contextgraph/upstream"
)

// Default cycle intervals.
const (
	DefaultPollInterval  = 10 * time.Second
	DefaultErrorInterval = 30 * time.Second
)

// Loop drives the periodic sync of upstream sources into storage.
type Loop struct {
	client        upstream.Client
	processed     storage.ProcessedStore
	pipeline      *ingestion.Pipeline
	pollInterval  time.Duration
	errorInterval time.Duration
	logger        *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithPollInterval sets the delay between successful cycles.
func WithPollInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.pollInterval = d
		}
	}
}

// WithErrorInterval sets the backoff after a failed cycle.
func WithErrorInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.errorInterval = d
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger.With("component", "sync-loop")
	}
}

// NewLoop creates a sync loop over the given client, ledger, and pipeline.
func NewLoop(client upstream.Client, processed storage.ProcessedStore, pipeline *ingestion.Pipeline, opts ...Option) *Loop {
	l := &Loop{
		client:        client,
		processed:     processed,
		pipeline:      pipeline,
		pollInterval:  DefaultPollInterval,
		errorInterval: DefaultErrorInterval,
		logger:        slog.Default().With("component", "sync-loop"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes sync cycles until the context is cancelled. A failed cycle
// logs and backs off with the error interval instead of stopping the loop.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("sync loop started",
		"poll_interval", l.pollInterval, "error_interval", l.errorInterval)

	for {
		interval := l.pollInterval
		if err := l.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				l.logger.Info("sync loop stopped")
				return nil
			}
			l.logger.Error("sync cycle failed", "error", err)
			interval = l.errorInterval
		}

		select {
		case <-ctx.Done():
			l.logger.Info("sync loop stopped")
			return nil
		case <-time.After(interval):
		}
	}
}

// RunOnce executes a single sync cycle: list upstream sources, ingest the
// unprocessed ones, and mark the fully stored ones processed. Cancellation
// is honored between sources; the source being ingested always completes.
func (l *Loop) RunOnce(ctx context.Context) error {
	sources, err := l.client.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	var ingested, skipped int
	for _, source := range sources {
		if ctx.Err() != nil {
			l.logger.Info("cycle interrupted", "ingested", ingested, "skipped", skipped)
			return ctx.Err()
		}

		done, err := l.syncSource(ctx, source)
		if err != nil {
			l.logger.Warn("source sync failed", "source_id", source.ID, "error", err)
			continue
		}
		if done {
			ingested++
		} else {
			skipped++
		}
	}

	l.logger.Info("cycle complete",
		"sources", len(sources), "ingested", ingested, "skipped", skipped)
	return nil
}

// syncSource ingests one source if it has not been processed yet. It reports
// whether the source was ingested and marked this cycle.
func (l *Loop) syncSource(ctx context.Context, source upstream.Source) (bool, error) {
	already, err := l.processed.IsProcessed(ctx, source.ID)
	if err != nil {
		return false, fmt.Errorf("check ledger: %w", err)
	}
	if already {
		return false, nil
	}

	content, err := l.client.FetchContent(ctx, source.ID)
	if err != nil {
		return false, fmt.Errorf("fetch content: %w", err)
	}
	if content == "" {
		// Not marked processed: the source stays eligible until content
		// shows up.
		l.logger.Warn("source has no content yet", "source_id", source.ID)
		return false, nil
	}

	result, err := l.pipeline.ProcessDocuments(ctx, []ingestion.SourceDocument{{
		SourceID:    source.ID,
		SourceName:  source.Name,
		Description: source.Description,
		Category:    source.Category,
		Content:     content,
		CreatedAt:   source.CreatedAt,
	}})
	if err != nil {
		return false, fmt.Errorf("process documents: %w", err)
	}

	if !result.SourceComplete(source.ID) {
		l.logger.Warn("source stored incompletely, will retry",
			"source_id", source.ID,
			"partial", result.Partial, "failed", result.Failed)
		return false, nil
	}

	if err := l.processed.MarkProcessed(ctx, &core.ProcessedRecord{SourceID: source.ID}); err != nil {
		return false, fmt.Errorf("mark processed: %w", err)
	}
	l.logger.Info("source ingested",
		"source_id", source.ID, "documents", len(result.StoredIDs))
	return true, nil
}

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

package contextgraph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/contextgraph/ai"
	"github.com/poiesic/contextgraph/ai/hash"
	"github.com/poiesic/contextgraph/ai/openai"
	"github.com/poiesic/contextgraph/hybrid"
	"github.com/poiesic/contextgraph/ingestion"
	"github.com/poiesic/contextgraph/storage"
	"github.com/poiesic/contextgraph/storage/badger"
	"github.com/poiesic/contextgraph/storage/neo4j"
	"github.com/poiesic/contextgraph/storage/weaviate"
	"github.com/poiesic/contextgraph/syncloop"
	"github.com/poiesic/contextgraph/upstream"
)

// Config assembles connection settings for every backend the service needs.
type Config struct {
	// Weaviate is the vector backend configuration.
	Weaviate weaviate.Config
	// Neo4j is the graph backend configuration.
	Neo4j neo4j.Config
	// LedgerPath is the directory of the durable processed ledger.
	LedgerPath string
}

// Service wires the backends, the AI provider, and the hybrid store
// together and owns their lifecycle.
type Service struct {
	backend   *badger.Backend
	processed storage.ProcessedStore
	store     *hybrid.Store
	provider  ai.Provider
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
}

// WithAIConfig builds an OpenAI-compatible provider from the given config
// instead of the default local hash provider.
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a prebuilt AI provider.
func WithProvider(provider ai.Provider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// NewService connects to all backends. Resources acquired before a failure
// are released before the error is returned.
func NewService(ctx context.Context, config Config, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(config.LedgerPath, false)
	if err != nil {
		return nil, fmt.Errorf("open ledger backend: %w", err)
	}

	processed, err := badger.NewProcessedRepository(backend)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("create processed ledger: %w", err)
	}

	vector, err := weaviate.NewIndex(config.Weaviate)
	if err != nil {
		backend.Close()
		return nil, err
	}

	graph, err := neo4j.NewStore(ctx, config.Neo4j)
	if err != nil {
		vector.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		if options.aiConfig != nil {
			provider, err = openai.NewProvider(options.aiConfig)
			if err != nil {
				graph.Close()
				vector.Close()
				backend.Close()
				return nil, err
			}
		} else {
			provider = hash.NewProvider()
		}
	}

	return &Service{
		backend:   backend,
		processed: processed,
		store:     hybrid.NewStore(vector, graph),
		provider:  provider,
		logger:    slog.Default().With("component", "service"),
	}, nil
}

// NewServiceFromComponents assembles a service over prebuilt backends. The
// ledger backend is still owned by the service; pass the stores and provider
// you want wired in. Used when the standard Weaviate/Neo4j pairing is
// replaced, and by tests.
func NewServiceFromComponents(ledgerPath string, vector storage.VectorIndex, graph storage.GraphStore, provider ai.Provider) (*Service, error) {
	backend, err := badger.OpenBackend(ledgerPath, false)
	if err != nil {
		return nil, fmt.Errorf("open ledger backend: %w", err)
	}
	processed, err := badger.NewProcessedRepository(backend)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("create processed ledger: %w", err)
	}
	if provider == nil {
		provider = hash.NewProvider()
	}

	return &Service{
		backend:   backend,
		processed: processed,
		store:     hybrid.NewStore(vector, graph),
		provider:  provider,
		logger:    slog.Default().With("component", "service"),
	}, nil
}

// Store returns the hybrid document store.
func (s *Service) Store() *hybrid.Store {
	return s.store
}

// ProcessedStore returns the durable processed ledger.
func (s *Service) ProcessedStore() storage.ProcessedStore {
	return s.processed
}

// Provider returns the AI provider.
func (s *Service) Provider() ai.Provider {
	return s.provider
}

// NewIngestionPipeline builds a pipeline over the service's store and
// provider.
func (s *Service) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(s.store, s.provider, opts...)
}

// NewSyncLoop builds a sync loop over the given upstream client, the
// service's ledger, and the given pipeline.
func (s *Service) NewSyncLoop(client upstream.Client, pipeline *ingestion.Pipeline, opts ...syncloop.Option) *syncloop.Loop {
	return syncloop.NewLoop(client, s.processed, pipeline, opts...)
}

// Close releases everything in reverse acquisition order. Errors are logged
// and the first one is returned.
func (s *Service) Close() error {
	var firstErr error
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
		firstErr = err
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing hybrid store", "err", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	if err := s.processed.Close(); err != nil {
		s.logger.Error("error closing processed ledger", "err", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing ledger backend", "err", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

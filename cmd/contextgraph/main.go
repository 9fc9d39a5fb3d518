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

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/poiesic/contextgraph"
	"github.com/poiesic/contextgraph/ai"
	"github.com/poiesic/contextgraph/ai/hash"
	"github.com/poiesic/contextgraph/chunk"
	"github.com/poiesic/contextgraph/ingestion"
	"github.com/poiesic/contextgraph/proxy"
	"github.com/poiesic/contextgraph/storage/neo4j"
	"github.com/poiesic/contextgraph/storage/weaviate"
	"github.com/poiesic/contextgraph/syncloop"
	"github.com/poiesic/contextgraph/upstream"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "contextgraph",
		Usage: "Hybrid vector and graph document store with upstream sync",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file if it exists",
				Value: ".env",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Drop and recreate the vector collection and graph constraints",
				Action: schemaCommand,
				Flags:  backendFlags(),
			},
			{
				Name:   "sync",
				Usage:  "Run the upstream sync loop until interrupted",
				Action: syncCommand,
				Flags: append(backendFlags(),
					&cli.StringFlag{
						Name:     "upstream-url",
						Usage:    "Base URL of the upstream document service",
						EnvVars:  []string{"CONTEXTGRAPH_UPSTREAM_URL"},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "upstream-token",
						Usage:   "Bearer token for the upstream document service",
						EnvVars: []string{"CONTEXTGRAPH_UPSTREAM_TOKEN"},
					},
					&cli.DurationFlag{
						Name:  "poll-interval",
						Usage: "Delay between successful sync cycles",
						Value: syncloop.DefaultPollInterval,
					},
					&cli.DurationFlag{
						Name:  "error-interval",
						Usage: "Backoff after a failed sync cycle",
						Value: syncloop.DefaultErrorInterval,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of documents processed concurrently",
						Value: 4,
					},
				),
			},
			{
				Name:   "ingest",
				Usage:  "Ingest documents from a file or a directory of files",
				Action: ingestCommand,
				Flags: append(backendFlags(),
					&cli.StringFlag{
						Name:     "path",
						Aliases:  []string{"f"},
						Usage:    "Document file or directory of document files",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "category",
						Usage:    "Document category",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "source-id",
						Usage: "Source identifier (defaults to the file name)",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk size in characters",
						Value: chunk.DefaultSize,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Chunk overlap in characters",
						Value: chunk.DefaultOverlap,
					},
				),
			},
			{
				Name:   "search",
				Usage:  "Search for documents similar to a query",
				Action: searchCommand,
				Flags: append(backendFlags(),
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Query text",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 5,
					},
				),
			},
			{
				Name:   "reconcile",
				Usage:  "Report documents present in only one backend",
				Action: reconcileCommand,
				Flags:  backendFlags(),
			},
			{
				Name:   "proxy",
				Usage:  "Serve the embedder over an OpenAI-compatible HTTP API",
				Action: proxyCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "listen",
						Usage:   "Listen address",
						EnvVars: []string{"CONTEXTGRAPH_PROXY_LISTEN"},
						Value:   ":8090",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// backendFlags returns the connection flags shared by every command that
// touches the backends. Returned fresh each call; urfave/cli mutates flags.
func backendFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "weaviate-scheme",
			Usage:   "Weaviate URL scheme",
			EnvVars: []string{"CONTEXTGRAPH_WEAVIATE_SCHEME"},
			Value:   "http",
		},
		&cli.StringFlag{
			Name:    "weaviate-host",
			Usage:   "Weaviate host:port",
			EnvVars: []string{"CONTEXTGRAPH_WEAVIATE_HOST"},
			Value:   "localhost:8080",
		},
		&cli.StringFlag{
			Name:    "neo4j-uri",
			Usage:   "Neo4j bolt URI",
			EnvVars: []string{"CONTEXTGRAPH_NEO4J_URI"},
			Value:   "bolt://localhost:7687",
		},
		&cli.StringFlag{
			Name:    "neo4j-user",
			Usage:   "Neo4j username",
			EnvVars: []string{"CONTEXTGRAPH_NEO4J_USER"},
			Value:   "neo4j",
		},
		&cli.StringFlag{
			Name:    "neo4j-password",
			Usage:   "Neo4j password",
			EnvVars: []string{"CONTEXTGRAPH_NEO4J_PASSWORD"},
			Value:   "password",
		},
		&cli.StringFlag{
			Name:    "ledger",
			Usage:   "Directory of the durable processed ledger",
			EnvVars: []string{"CONTEXTGRAPH_LEDGER_PATH"},
			Value:   "./data/ledger",
		},
		&cli.StringFlag{
			Name:    "ai-host",
			Usage:   "OpenAI-compatible service URL; empty uses the local hash embedder",
			EnvVars: []string{"CONTEXTGRAPH_AI_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			EnvVars: []string{"CONTEXTGRAPH_EMBEDDING_MODEL"},
			Value:   "embeddinggemma",
		},
		&cli.StringFlag{
			Name:    "summarizer-model",
			Usage:   "Summarizer model name",
			EnvVars: []string{"CONTEXTGRAPH_SUMMARIZER_MODEL"},
			Value:   "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:    "ai-token",
			Usage:   "API token for the AI service",
			EnvVars: []string{"CONTEXTGRAPH_AI_TOKEN"},
			Value:   "none",
		},
	}
}

func newService(ctx context.Context, c *cli.Context) (*contextgraph.Service, error) {
	config := contextgraph.Config{
		Weaviate: weaviate.Config{
			Scheme: c.String("weaviate-scheme"),
			Host:   c.String("weaviate-host"),
		},
		Neo4j: neo4j.Config{
			URI:      c.String("neo4j-uri"),
			Username: c.String("neo4j-user"),
			Password: c.String("neo4j-password"),
		},
		LedgerPath: c.String("ledger"),
	}

	var opts []contextgraph.ServiceOption
	if host := c.String("ai-host"); host != "" {
		opts = append(opts, contextgraph.WithAIConfig(ai.NewConfig(
			ai.WithHost(host),
			ai.WithEmbeddingModel(c.String("embedding-model")),
			ai.WithSummarizerModel(c.String("summarizer-model")),
			ai.WithToken(c.String("ai-token")),
		)))
	}
	return contextgraph.NewService(ctx, config, opts...)
}

func schemaCommand(c *cli.Context) error {
	ctx := c.Context
	service, err := newService(ctx, c)
	if err != nil {
		return err
	}
	defer service.Close()

	if err := service.Store().EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	fmt.Fprintln(os.Stderr, "schema ready")
	return nil
}

func syncCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := newService(ctx, c)
	if err != nil {
		return err
	}
	defer service.Close()

	var clientOpts []upstream.HTTPOption
	if token := c.String("upstream-token"); token != "" {
		clientOpts = append(clientOpts, upstream.WithToken(token))
	}
	client, err := upstream.NewHTTPClient(c.String("upstream-url"), clientOpts...)
	if err != nil {
		return err
	}

	pipeline, err := service.NewIngestionPipeline(
		ingestion.WithPoolSize(c.Int("pool-size")),
	)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	loop := service.NewSyncLoop(client, pipeline,
		syncloop.WithPollInterval(c.Duration("poll-interval")),
		syncloop.WithErrorInterval(c.Duration("error-interval")),
	)
	return loop.Run(ctx)
}

func ingestCommand(c *cli.Context) error {
	ctx := c.Context

	docs, err := loadDocuments(c.String("path"), c.String("source-id"), c.String("category"))
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents found at %s", c.String("path"))
	}

	splitter, err := chunk.NewSplitter(chunk.Config{
		Size:    c.Int("chunk-size"),
		Overlap: c.Int("chunk-overlap"),
	})
	if err != nil {
		return err
	}

	service, err := newService(ctx, c)
	if err != nil {
		return err
	}
	defer service.Close()

	pipeline, err := service.NewIngestionPipeline(ingestion.WithSplitter(splitter))
	if err != nil {
		return err
	}
	defer pipeline.Close()

	result, err := pipeline.ProcessDocuments(ctx, docs)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "stored %d documents (partial: %d, failed: %d)\n",
		len(result.StoredIDs), result.Partial, result.Failed)
	for _, doc := range docs {
		if !result.SourceComplete(doc.SourceID) {
			return fmt.Errorf("source %s stored incompletely", doc.SourceID)
		}
	}
	return nil
}

// loadDocuments reads one document per regular file. A file path yields a
// single document; a directory yields one per file in it (not recursive).
func loadDocuments(path, sourceID, category string) ([]ingestion.SourceDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	readOne := func(p, id string) (ingestion.SourceDocument, error) {
		content, err := os.ReadFile(p)
		if err != nil {
			return ingestion.SourceDocument{}, fmt.Errorf("read document: %w", err)
		}
		if id == "" {
			id = filepath.Base(p)
		}
		return ingestion.SourceDocument{
			SourceID:   id,
			SourceName: filepath.Base(p),
			Category:   category,
			Content:    string(content),
		}, nil
	}

	if !info.IsDir() {
		doc, err := readOne(path, sourceID)
		if err != nil {
			return nil, err
		}
		return []ingestion.SourceDocument{doc}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", path, err)
	}

	var docs []ingestion.SourceDocument
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		doc, err := readOne(filepath.Join(path, entry.Name()), "")
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func searchCommand(c *cli.Context) error {
	ctx := c.Context
	service, err := newService(ctx, c)
	if err != nil {
		return err
	}
	defer service.Close()

	vector, err := service.Provider().Embedder().EmbedText(ctx, c.String("query"))
	if err != nil {
		return fmt.Errorf("embed query: %w", err)
	}

	matches, err := service.Store().SearchSimilar(ctx, vector, c.Int("limit"))
	if err != nil {
		return err
	}

	for i, m := range matches {
		fmt.Printf("%d. [%.4f] %s (%s)\n   %s\n",
			i+1, m.Distance, m.Document.ID, m.Document.Category,
			m.Document.Preview(120))
	}
	if len(matches) == 0 {
		fmt.Println("no matches")
	}
	return nil
}

func reconcileCommand(c *cli.Context) error {
	ctx := c.Context
	service, err := newService(ctx, c)
	if err != nil {
		return err
	}
	defer service.Close()

	report, err := service.Store().Reconcile(ctx)
	if err != nil {
		return err
	}

	if report.Clean() {
		fmt.Println("backends are consistent")
		return nil
	}
	for _, id := range report.VectorOnly {
		fmt.Printf("vector-only: %s\n", id)
	}
	for _, id := range report.GraphOnly {
		fmt.Printf("graph-only: %s\n", id)
	}
	return nil
}

func proxyCommand(c *cli.Context) error {
	server := proxy.NewServer(hash.NewEmbedder(), "hash-v1")
	return server.ListenAndServe(c.String("listen"))
}

func setup(c *cli.Context) error {
	// Missing env file is fine; flags and real env still apply.
	if err := godotenv.Load(c.String("env-file")); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load env file", "path", c.String("env-file"), "error", err)
	}

	levelStr := strings.ToLower(c.String("log-level"))
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}

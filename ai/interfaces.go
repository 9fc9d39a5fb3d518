package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use.
//
// Any implementer is acceptable to the rest of the system; the default
// deterministic hash embedder (ai/hash) and a real semantic provider
// (ai/openai) are interchangeable without touching callers.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as the
	// input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Summarizer produces a concise summary of a document's text.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// Summarize returns a short summary of the given text.
	// Returns an error if the summarization call fails; callers treat a
	// failed summary as missing, never as a storage failure.
	Summarize(ctx context.Context, text string) (string, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Summarizer returns the document summarization service.
	Summarizer() Summarizer

	// Close releases resources held by the provider and its services.
	Close() error
}

package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/contextgraph/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const summarizerSystemPrompt = "You are a helpful assistant that summarizes documents concisely."

// Summarizer implements ai.Summarizer using OpenAI-compatible chat APIs.
type Summarizer struct {
	client llms.Model
	logger *slog.Logger
}

var _ ai.Summarizer = (*Summarizer)(nil)

// newSummarizer is an internal constructor that returns the concrete type.
func newSummarizer(config *ai.Config) (*Summarizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.SummarizerHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.SummarizerModel),
	)
	if err != nil {
		return nil, err
	}

	return &Summarizer{
		client: client,
		logger: slog.Default().With("component", "openai-summarizer"),
	}, nil
}

// NewSummarizer creates a new summarizer using the provided configuration.
//
// Returns ai.Summarizer interface to enforce abstraction.
func NewSummarizer(config *ai.Config) (ai.Summarizer, error) {
	return newSummarizer(config)
}

// Summarize returns a concise summary of the given text.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	s.logger.Debug("summarizing document", "length", len(text))

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(summarizerSystemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart("Please summarize the following document:\n\n" + text)},
		},
	}

	response, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		s.logger.Error("summarization call failed", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		return "", fmt.Errorf("summarizer returned no choices")
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}

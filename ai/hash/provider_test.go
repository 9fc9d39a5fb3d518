package hash

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderAggregatesServices(t *testing.T) {
	provider := NewProvider()
	assert.NotNil(t, provider.Embedder())
	assert.NotNil(t, provider.Summarizer())
	assert.NoError(t, provider.Close())
}

func TestExcerptSummarizerShortTextUnchanged(t *testing.T) {
	provider := NewProvider()

	summary, err := provider.Summarizer().Summarize(context.Background(), "  short note  ")
	require.NoError(t, err)
	assert.Equal(t, "short note", summary)
}

func TestExcerptSummarizerTruncatesAtWordBoundary(t *testing.T) {
	provider := NewProvider()
	text := strings.Repeat("lending onboarding flow ", 30)

	summary, err := provider.Summarizer().Summarize(context.Background(), text)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(summary), excerptLen+3)
	assert.True(t, strings.HasSuffix(summary, "..."))
	assert.NotContains(t, strings.TrimSuffix(summary, "..."), "  ")
}

package hash

import (
	"context"
	"math"
	"testing"

	"github.com/poiesic/contextgraph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestEmbedTextDeterministic(t *testing.T) {
	e := NewEmbedder()
	ctx := context.Background()

	v1, err := e.EmbedText(ctx, "personal loans require valid PAN and eKYC")
	require.NoError(t, err)
	v2, err := e.EmbedText(ctx, "personal loans require valid PAN and eKYC")
	require.NoError(t, err)

	assert.Equal(t, v1, v2, "identical text must yield bit-identical vectors")
	assert.Len(t, v1, core.EmbeddingDim)
}

func TestEmbedTextDistinctTexts(t *testing.T) {
	e := NewEmbedder()
	ctx := context.Background()

	v1, err := e.EmbedText(ctx, "aadhaar verification")
	require.NoError(t, err)
	v2, err := e.EmbedText(ctx, "PAN format rules")
	require.NoError(t, err)

	assert.NotEqual(t, v1, v2)
}

func TestEmbedTextUnitNorm(t *testing.T) {
	e := NewEmbedder()
	ctx := context.Background()

	for _, text := range []string{"a", "lending requires ekyc", "CONFIG_VALUE /api/health"} {
		v, err := e.EmbedText(ctx, text)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, vectorNorm(v), 1e-5, "vector for %q must be unit-norm", text)
	}
}

func TestEmbedTexts(t *testing.T) {
	e := NewEmbedder()
	ctx := context.Background()

	texts := []string{"one", "two", "three"}
	vectors, err := e.EmbedTexts(ctx, texts)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	// Batch output must agree with single calls.
	for i, text := range texts {
		single, err := e.EmbedText(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, vectors[i])
	}
}

func TestWithDimension(t *testing.T) {
	e := NewEmbedder(WithDimension(32))

	v, err := e.EmbedText(context.Background(), "short vector")
	require.NoError(t, err)
	assert.Len(t, v, 32)
	assert.InDelta(t, 1.0, vectorNorm(v), 1e-5)
}

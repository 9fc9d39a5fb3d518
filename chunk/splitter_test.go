package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/poiesic/contextgraph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSplitterRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"overlap equals size", Config{Size: 100, Overlap: 100}},
		{"overlap greater than size", Config{Size: 100, Overlap: 150}},
		{"zero size", Config{Size: 0, Overlap: 0}},
		{"negative size", Config{Size: -1, Overlap: 0}},
		{"negative overlap", Config{Size: 100, Overlap: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSplitter(tt.config)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidChunkConfig)
		})
	}
}

func TestSplitEmptyText(t *testing.T) {
	s := NewDefaultSplitter()
	assert.Nil(t, s.Split(""))
}

func TestSplitSingleChunk(t *testing.T) {
	s, err := NewSplitter(Config{Size: 100, Overlap: 20})
	require.NoError(t, err)

	chunks := s.Split("short text")
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[0].Total)
}

func TestSplitOrderingAndTotals(t *testing.T) {
	s, err := NewSplitter(Config{Size: 10, Overlap: 3})
	require.NoError(t, err)

	text := strings.Repeat("abcdefg", 10) // 70 characters
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, len(chunks), c.Total)
		assert.LessOrEqual(t, len(c.Content), 10)
	}
}

func TestSplitCoverageWithOverlap(t *testing.T) {
	size, overlap := 10, 4
	s, err := NewSplitter(Config{Size: size, Overlap: overlap})
	require.NoError(t, err)

	text := "0123456789abcdefghijklmnopqrstuvwxyz"
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	// Dropping the first `overlap` characters of every chunk after the
	// first must reconstruct the source text exactly.
	reconstructed := chunks[0].Content
	for _, c := range chunks[1:] {
		require.GreaterOrEqual(t, len(c.Content), overlap)
		reconstructed += c.Content[overlap:]
	}
	assert.Equal(t, text, reconstructed)

	// Consecutive chunks share exactly the configured overlap.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Content
		assert.Equal(t, prev[len(prev)-overlap:], chunks[i].Content[:overlap])
	}
}

func TestSplitTextShorterThanOverlapTail(t *testing.T) {
	s, err := NewSplitter(Config{Size: 8, Overlap: 2})
	require.NoError(t, err)

	// 13 characters: chunks [0:8], [6:13]
	chunks := s.Split("hello world!!")
	require.Len(t, chunks, 2)
	assert.Equal(t, "hello wo", chunks[0].Content)
	assert.Equal(t, "world!!", chunks[1].Content)
}

func TestSplitMultiByteRunesStayIntact(t *testing.T) {
	size, overlap := 10, 3
	s, err := NewSplitter(Config{Size: size, Overlap: overlap})
	require.NoError(t, err)

	// 3-byte runes; any byte-offset window would land mid-rune.
	text := strings.Repeat("日本語テキスト", 12)
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c.Content), "chunk %d is not valid UTF-8", c.Index)
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Content), size)
	}

	reconstructed := []rune(chunks[0].Content)
	for _, c := range chunks[1:] {
		runes := []rune(c.Content)
		require.GreaterOrEqual(t, len(runes), overlap)
		reconstructed = append(reconstructed, runes[overlap:]...)
	}
	assert.Equal(t, text, string(reconstructed))
}

package keyword

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractUpperSnakeTokens(t *testing.T) {
	e := NewExtractor()

	keywords := e.Extract("set DATABASE_URL and API_KEY before starting")
	assert.Contains(t, keywords, "DATABASE_URL")
	assert.Contains(t, keywords, "API_KEY")
}

func TestExtractPathTokens(t *testing.T) {
	e := NewExtractor()

	keywords := e.Extract("the service exposes /api/health and /v1/sources")
	assert.Contains(t, keywords, "/api/health")
}

func TestExtractVocabularyCaseInsensitive(t *testing.T) {
	e := NewExtractor()

	keywords := e.Extract("the Server listens on a PORT behind CORS with a health check")
	assert.Contains(t, keywords, "server")
	assert.Contains(t, keywords, "port")
	assert.Contains(t, keywords, "cors")
	assert.Contains(t, keywords, "health")
}

func TestExtractDeduplicates(t *testing.T) {
	e := NewExtractor()

	keywords := e.Extract("config config CONFIG database database")
	counts := make(map[string]int)
	for _, k := range keywords {
		counts[k]++
	}
	for k, n := range counts {
		assert.Equal(t, 1, n, "keyword %q appears %d times", k, n)
	}
}

func TestExtractCaps(t *testing.T) {
	e := NewExtractor()

	var parts []string
	for _, c := range "ABCDEFGHIJKLMNOP" {
		parts = append(parts, strings.Repeat(string(c), 3)+"_VAR")
	}
	keywords := e.Extract(strings.Join(parts, " "))

	upper := 0
	for _, k := range keywords {
		if strings.Contains(k, "_VAR") {
			upper++
		}
	}
	assert.LessOrEqual(t, upper, maxUpperTokens)
}

func TestExtractNothingRelevant(t *testing.T) {
	e := NewExtractor()
	assert.Empty(t, e.Extract("plain lowercase prose with no notable terms"))
	assert.Empty(t, e.Extract(""))
}

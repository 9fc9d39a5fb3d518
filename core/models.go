package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// EmbeddingDim is the dimensionality of document vectors produced by the
// default embedding strategy. Real embedding providers may use a different
// dimension; the vector backend stores whatever it is given.
const EmbeddingDim = 128

// IDFromContent generates a deterministic identifier from text content using
// BLAKE2b hashing. Identical content always produces the same value.
func IDFromContent(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// Source represents an externally-owned document origin. Sources are never
// created by this system; they are discovered from the upstream API and
// mirrored as graph nodes.
type Source struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Document is the unit of storage in both backends. The identifier is
// assigned by the vector backend on insert and reused as the join key for
// the graph copy. Documents are immutable after creation; re-ingestion
// creates new ones.
type Document struct {
	ID       string
	Content  string
	Summary  string
	Category string
	Vector   []float32
	SourceID string
}

// Preview returns the first maxLen characters of the document content,
// suitable for denormalized storage in the graph backend. Truncation is by
// rune so multi-byte content stays valid UTF-8.
func (d *Document) Preview(maxLen int) string {
	if len(d.Content) <= maxLen {
		return d.Content
	}
	runes := []rune(d.Content)
	if len(runes) <= maxLen {
		return d.Content
	}
	return string(runes[:maxLen])
}

// Chunk is a contiguous sub-span of a document's text with positional
// metadata. Index is 0-based; Total is identical across all chunks of the
// same document.
type Chunk struct {
	Content string
	Index   int
	Total   int
}

// Keyword is a normalized term extracted from document content. Keywords are
// deduplicated by name within the graph backend.
type Keyword struct {
	Name string
}

// RelationshipType identifies a typed directed edge between two graph nodes.
type RelationshipType string

const (
	// RelContains links a Source to a Document it produced.
	RelContains RelationshipType = "CONTAINS"
	// RelMentions links a Document to a Keyword found in its content.
	RelMentions RelationshipType = "MENTIONS"
	// RelRequires links a Document to another Document it depends on.
	RelRequires RelationshipType = "REQUIRES"
)

// Valid reports whether t is one of the enumerated relationship types.
// Relationship types end up as tokens in graph queries, so anything outside
// the enumeration is rejected before a query is built.
func (t RelationshipType) Valid() bool {
	switch t {
	case RelContains, RelMentions, RelRequires:
		return true
	}
	return false
}

// RelationshipRule declares a derived dependency between document
// categories. When documents of both categories are present in an ingestion
// batch, an edge of Type is created from the first stored document of
// FromCategory to the first stored document of ToCategory.
type RelationshipRule struct {
	FromCategory string
	ToCategory   string
	Type         RelationshipType
}

// ProcessedStatus describes the outcome recorded for a synced source.
type ProcessedStatus int

const (
	// StatusProcessed means every derived document was stored in both backends.
	StatusProcessed ProcessedStatus = iota + 1
)

// ProcessedRecord marks an upstream source as fully ingested. A record is
// written only after every derived document succeeded in both backends; a
// source with partial success carries no record and is retried.
type ProcessedRecord struct {
	SourceID    string
	ProcessedAt time.Time
	Status      ProcessedStatus
}

// DocumentStatus tracks a source document through the ingestion pipeline.
type DocumentStatus int

const (
	StatusLoaded DocumentStatus = iota + 1
	StatusChunked
	StatusEmbedded
	StatusStoredPartial
	StatusStoredComplete
	StatusLinked
)

// SimilarityMatch is a nearest-neighbor query result. Distance is reported
// by the vector backend; lower values mean more similar.
type SimilarityMatch struct {
	Document Document
	Distance float32
}

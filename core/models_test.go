package core

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := IDFromContent("personal loans require valid PAN and eKYC")
		id2 := IDFromContent("personal loans require valid PAN and eKYC")
		assert.Equal(t, id1, id2)
	})

	t.Run("distinct content yields distinct ids", func(t *testing.T) {
		id1 := IDFromContent("aadhaar verification")
		id2 := IDFromContent("PAN format rules")
		assert.NotEqual(t, id1, id2)
	})

	t.Run("empty content is valid input", func(t *testing.T) {
		assert.NotPanics(t, func() { IDFromContent("") })
	})
}

func TestDocumentPreview(t *testing.T) {
	doc := &Document{Content: "abcdefghij"}

	assert.Equal(t, "abcde", doc.Preview(5))
	assert.Equal(t, "abcdefghij", doc.Preview(10))
	assert.Equal(t, "abcdefghij", doc.Preview(200))

	multi := &Document{Content: "日本語テキスト"}
	preview := multi.Preview(4)
	assert.Equal(t, "日本語テ", preview)
	assert.True(t, utf8.ValidString(preview))
}

func TestRelationshipTypeValid(t *testing.T) {
	assert.True(t, RelContains.Valid())
	assert.True(t, RelMentions.Valid())
	assert.True(t, RelRequires.Valid())

	assert.False(t, RelationshipType("").Valid())
	assert.False(t, RelationshipType("DELETE_ALL]->(x) MATCH (y").Valid())
	assert.False(t, RelationshipType("requires").Valid(), "types are case-sensitive")
}

func TestProcessedRecordMUSRoundTrip(t *testing.T) {
	record := ProcessedRecord{
		SourceID:    "source-f81d4fae",
		ProcessedAt: time.Date(2025, 11, 3, 12, 30, 0, 123456000, time.UTC),
		Status:      StatusProcessed,
	}

	bs := make([]byte, ProcessedRecordMUS.Size(record))
	n := ProcessedRecordMUS.Marshal(record, bs)
	require.Equal(t, len(bs), n)

	decoded, n, err := ProcessedRecordMUS.Unmarshal(bs)
	require.NoError(t, err)
	require.Equal(t, len(bs), n)
	assert.Equal(t, record, decoded)
}

func TestProcessedRecordMUSTruncated(t *testing.T) {
	record := ProcessedRecord{SourceID: "s1", ProcessedAt: time.Now().UTC(), Status: StatusProcessed}
	bs := make([]byte, ProcessedRecordMUS.Size(record))
	ProcessedRecordMUS.Marshal(record, bs)

	_, _, err := ProcessedRecordMUS.Unmarshal(bs[:1])
	assert.Error(t, err)
}

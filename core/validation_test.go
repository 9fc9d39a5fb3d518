package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDocument(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc := &Document{Content: "aadhaar verification", Category: "ekyc"}
		assert.NoError(t, ValidateDocument(doc))
	})

	t.Run("nil document", func(t *testing.T) {
		err := ValidateDocument(nil)
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("empty content", func(t *testing.T) {
		err := ValidateDocument(&Document{Category: "ekyc"})
		assert.ErrorIs(t, err, ErrInvalidDocument)
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("empty category", func(t *testing.T) {
		err := ValidateDocument(&Document{Content: "text"})
		assert.ErrorIs(t, err, ErrInvalidDocument)
		assert.ErrorIs(t, err, ErrEmptyCategory)
	})
}

func TestValidateRelationshipType(t *testing.T) {
	assert.NoError(t, ValidateRelationshipType(RelRequires))

	err := ValidateRelationshipType(RelationshipType("KNOWS"))
	assert.ErrorIs(t, err, ErrInvalidRelationshipType)
}

func TestValidateRelationshipRules(t *testing.T) {
	valid := []RelationshipRule{
		{FromCategory: "lending", ToCategory: "ekyc", Type: RelRequires},
		{FromCategory: "ekyc", ToCategory: "pan", Type: RelRequires},
	}
	assert.NoError(t, ValidateRelationshipRules(valid))

	t.Run("empty category", func(t *testing.T) {
		rules := []RelationshipRule{{FromCategory: "", ToCategory: "pan", Type: RelRequires}}
		assert.Error(t, ValidateRelationshipRules(rules))
	})

	t.Run("self-referential", func(t *testing.T) {
		rules := []RelationshipRule{{FromCategory: "pan", ToCategory: "pan", Type: RelRequires}}
		assert.Error(t, ValidateRelationshipRules(rules))
	})

	t.Run("bad type", func(t *testing.T) {
		rules := []RelationshipRule{{FromCategory: "a", ToCategory: "b", Type: "LINKS"}}
		assert.ErrorIs(t, ValidateRelationshipRules(rules), ErrInvalidRelationshipType)
	})
}

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


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - Category must not be empty
//
// NOT validated (populated by the pipeline and backends):
//   - ID (assigned by the vector backend on insert)
//   - Vector (populated by the embedder)
//   - Summary (populated by the summarizer, may stay empty)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}

	if doc.Category == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyCategory)
	}

	return nil
}

// ValidateRelationshipType validates that a relationship type belongs to the
// enumerated set.
func ValidateRelationshipType(t RelationshipType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRelationshipType, string(t))
	}
	return nil
}

// ValidateRelationshipRules validates a rule table. Categories must be
// non-empty, distinct per rule, and every rule type must be valid.
func ValidateRelationshipRules(rules []RelationshipRule) error {
	for i, rule := range rules {
		if rule.FromCategory == "" || rule.ToCategory == "" {
			return fmt.Errorf("%w: rule %d has an empty category", ErrInvalidRelationshipType, i)
		}
		if rule.FromCategory == rule.ToCategory {
			return fmt.Errorf("%w: rule %d is self-referential", ErrInvalidRelationshipType, i)
		}
		if err := ValidateRelationshipType(rule.Type); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

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


// Package keyword provides lightweight pattern-based term extraction.
//
// Extraction is a heuristic relevance signal used to seed graph
// relationships, not NLP. The failure mode is returning fewer or less
// relevant keywords, never an error.
package keyword

import (
	"regexp"
	"strings"
)

// Per-rule output caps.
const (
	maxUpperTokens = 10
	maxPathTokens  = 5
	maxVocabTokens = 5
)

var (
	// Environment-variable-like identifiers: uppercase snake tokens, length >= 3.
	upperSnakeRe = regexp.MustCompile(`[A-Z_]{3,}(?:_[A-Z_]+)*`)

	// Path-like tokens: /segment/segment...
	pathRe = regexp.MustCompile(`/[a-z-]+(?:/[a-z-]+)*`)

	// Fixed vocabulary of domain terms, matched case-insensitively.
	vocabRe = regexp.MustCompile(`(?i)\b(?:config|endpoint|database|server|port|cors|health)\b`)
)

// Extractor extracts keywords from document content.
type Extractor struct{}

// NewExtractor creates a keyword extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns deduplicated keywords found in the text, in discovery
// order: uppercase-snake identifiers first (capped at 10), then path-like
// tokens (capped at 5), then fixed-vocabulary terms lowercased (capped at 5).
func (e *Extractor) Extract(text string) []string {
	var keywords []string
	seen := make(map[string]struct{})

	add := func(matches []string, limit int, lower bool) {
		n := 0
		for _, m := range matches {
			if n >= limit {
				break
			}
			if lower {
				m = strings.ToLower(m)
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			keywords = append(keywords, m)
			n++
		}
	}

	add(upperSnakeRe.FindAllString(text, -1), maxUpperTokens, false)
	add(pathRe.FindAllString(text, -1), maxPathTokens, false)
	add(vocabRe.FindAllString(text, -1), maxVocabTokens, true)

	return keywords
}

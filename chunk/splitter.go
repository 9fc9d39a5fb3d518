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


// Package chunk splits raw document text into overlapping fixed-size chunks
// with positional metadata.
//
// Boundaries operate on character (rune) count, not semantic boundaries, so
// multi-byte text never splits mid-rune. Ordering is preserved and
// significant: chunk indices run 0..N-1, contiguous, covering the source
// text with the configured overlap.
package chunk

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/poiesic/contextgraph/core"
)

// Default chunking parameters.
const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Config holds chunking parameters.
type Config struct {
	// Size is the maximum chunk length in characters.
	Size int
	// Overlap is the number of characters shared between consecutive
	// chunks. Must be strictly less than Size.
	Overlap int
}

// Validate checks the chunking parameters. Overlap >= Size is rejected: the
// split would never advance.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Size, validation.Required, validation.Min(1)),
		validation.Field(&c.Overlap, validation.Min(0)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidChunkConfig, err)
	}
	if c.Overlap >= c.Size {
		return fmt.Errorf("%w: overlap %d must be less than size %d", core.ErrInvalidChunkConfig, c.Overlap, c.Size)
	}
	return nil
}

// Splitter splits text into overlapping chunks.
type Splitter struct {
	config Config
}

// NewSplitter creates a splitter with the given configuration.
// Returns core.ErrInvalidChunkConfig if the parameters are invalid; this is
// a configuration error and fatal at startup.
func NewSplitter(config Config) (*Splitter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Splitter{config: config}, nil
}

// NewDefaultSplitter creates a splitter with the default size and overlap.
func NewDefaultSplitter() *Splitter {
	s, err := NewSplitter(Config{Size: DefaultSize, Overlap: DefaultOverlap})
	if err != nil {
		panic(err) // defaults are statically valid
	}
	return s
}

// Split divides text into ordered chunks. Every chunk carries its index and
// the total chunk count for the document. Empty text yields nil.
func (s *Splitter) Split(text string) []core.Chunk {
	if text == "" {
		return nil
	}

	// Windows advance over runes, not bytes; a byte window would cut
	// multi-byte runes in half and store invalid UTF-8.
	runes := []rune(text)
	step := s.config.Size - s.config.Overlap
	var spans []string
	for start := 0; start < len(runes); start += step {
		end := start + s.config.Size
		if end > len(runes) {
			end = len(runes)
		}
		spans = append(spans, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}

	chunks := make([]core.Chunk, len(spans))
	for i, span := range spans {
		chunks[i] = core.Chunk{
			Content: span,
			Index:   i,
			Total:   len(spans),
		}
	}
	return chunks
}

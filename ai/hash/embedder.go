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


// Package hash provides a deterministic pseudo-embedding strategy.
//
// The embedder seeds a PRNG from a BLAKE2b hash of the input text, draws a
// fixed number of uniform samples, and L2-normalizes the result. Identical
// text always yields a bit-identical unit-norm vector; distinct texts yield
// pseudo-random but reproducible vectors. The strategy carries no semantic
// signal and exists as the default until a real embedding provider is
// configured (see ai/openai).
package hash

import (
	"context"
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/contextgraph/ai"
	"github.com/poiesic/contextgraph/core"
)

// Embedder implements ai.Embedder with deterministic hash-seeded vectors.
type Embedder struct {
	dim int
}

var _ ai.Embedder = (*Embedder)(nil)

// Option configures an Embedder.
type Option func(*Embedder)

// WithDimension sets the vector dimensionality.
// Default is core.EmbeddingDim.
func WithDimension(dim int) Option {
	return func(e *Embedder) {
		if dim > 0 {
			e.dim = dim
		}
	}
}

// NewEmbedder creates a deterministic hash-seeded embedder.
//
// Returns ai.Embedder interface to keep the strategy swappable.
func NewEmbedder(opts ...Option) ai.Embedder {
	e := &Embedder{dim: core.EmbeddingDim}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EmbedText generates a deterministic unit-norm vector for the text.
// It is a pure function and never returns an error.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

// EmbedTexts generates deterministic vectors for each text in order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

func (e *Embedder) embed(text string) []float32 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	seed := binary.LittleEndian.Uint64(h.Sum(nil))

	rng := rand.New(rand.NewSource(int64(seed)))
	vector := make([]float32, e.dim)
	var sumSquares float64
	for i := range vector {
		v := rng.Float64()
		vector[i] = float32(v)
		sumSquares += v * v
	}

	// L2-normalize so cosine distance behaves consistently downstream.
	if sumSquares > 0 {
		norm := float32(1.0 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}

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


// Package ai provides abstractions for AI services used in contextgraph.
//
// This package defines interfaces for text embedding and document
// summarization. It follows the dependency inversion principle, allowing the
// ingestion pipeline and hybrid store to depend on abstractions rather than
// concrete implementations.
//
// # Implementation Packages
//
// The ai package includes three implementation sub-packages:
//
//   - ai/hash: Deterministic hash-seeded embedder. This is the default
//     embedding strategy and a stated placeholder: identical text always
//     yields an identical unit-norm vector, which makes ingestion
//     reproducible but carries no semantic signal.
//   - ai/openai: Production implementation using OpenAI-compatible APIs for
//     both embeddings and summarization.
//   - ai/mock: Test doubles for unit testing without external dependencies.
//
// Public constructors (openai.NewProvider, hash.NewEmbedder) return interface
// types to enforce abstraction. Mock constructors return concrete types so
// tests can inject behavior and assert call counts.
package ai

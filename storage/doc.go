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


// Package storage provides the storage abstraction layer for contextgraph.
//
// It defines the three consumed capability sets the core depends on and
// deliberately says nothing about backend products:
//
//   - VectorIndex: document storage with nearest-neighbor queries
//     (implemented by storage/weaviate, storage/memory)
//   - GraphStore: typed nodes and directed, typed edges with merge semantics
//     (implemented by storage/neo4j, storage/memory)
//   - ProcessedStore: the durable idempotency ledger for the sync loop
//     (implemented by storage/badger)
//
// Public constructors return interface types to enforce abstraction and keep
// backends swappable; tests use the in-memory implementations without
// touching business logic.
//
// All implementations must be thread-safe and accept context.Context for
// cancellation on every blocking operation.
package storage

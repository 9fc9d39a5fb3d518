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

// Package hybrid pairs a vector index with a graph store so every document
// lives in both: the vector side answers similarity queries, the graph side
// carries sources, keywords, and typed relationships.
//
// Writes go to the vector index first; the id it generates is the join key
// for the mirrored graph node. There is no cross-backend transaction. A
// failed graph mirror surfaces as storage.ErrPartialWrite and the orphaned
// vector entry is left in place for Reconcile to report.
package hybrid

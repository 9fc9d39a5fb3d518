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

// Package ingestion turns upstream source documents into stored, linked
// documents.
//
// For each source document the pipeline summarizes the content, splits it
// into overlapping chunks, embeds each chunk, stores every chunk in both
// backends through the hybrid store, and wires the graph: a CONTAINS edge
// from the source to each stored document, MENTIONS edges to extracted
// keywords, and REQUIRES edges between category representatives according
// to an injectable rule table.
//
// Failure handling is per document. A chunk that cannot be stored in both
// backends leaves its source incomplete, and incomplete sources are reported
// through Result.SourceComplete so callers retry the whole source later.
package ingestion

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

package ingestion

import "errors"

var (
	// ErrEmbeddingFailed indicates the embedder could not produce vectors
	// for a document's chunks.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrStorageFailed indicates a chunk could not be stored in both
	// backends.
	ErrStorageFailed = errors.New("storage failed")

	// ErrPipelineClosed is returned when processing is attempted after
	// Close.
	ErrPipelineClosed = errors.New("pipeline closed")
)

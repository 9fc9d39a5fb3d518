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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyCategory indicates the Category field is empty.
	ErrEmptyCategory = errors.New("category cannot be empty")

	// ErrEmptySourceID indicates a source identifier is empty.
	ErrEmptySourceID = errors.New("source id cannot be empty")

	// ErrInvalidRelationshipType indicates a relationship type outside the
	// enumerated set. Unknown types are rejected rather than spliced into
	// graph queries.
	ErrInvalidRelationshipType = errors.New("invalid relationship type")

	// ErrInvalidChunkConfig indicates invalid chunk size/overlap parameters.
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")
)

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


package storage

import (
	"fmt"

	"github.com/poiesic/contextgraph/core"
)

// MarshalProcessedRecord serializes a ProcessedRecord to bytes.
func MarshalProcessedRecord(record *core.ProcessedRecord) []byte {
	buf := make([]byte, core.ProcessedRecordMUS.Size(*record))
	core.ProcessedRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalProcessedRecord deserializes a ProcessedRecord from bytes.
func UnmarshalProcessedRecord(data []byte) (*core.ProcessedRecord, error) {
	record, _, err := core.ProcessedRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

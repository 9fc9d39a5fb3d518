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


package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/contextgraph/core"
	"github.com/poiesic/contextgraph/storage"
)

// ProcessedRepository implements storage.ProcessedStore on BadgerDB.
// It survives process restarts, so a restarted sync loop does not reprocess
// every upstream source.
type ProcessedRepository struct {
	backend *Backend
}

var _ storage.ProcessedStore = (*ProcessedRepository)(nil)

// NewProcessedRepository creates a processed-record repository on the given
// backend.
//
// Returns storage.ProcessedStore interface to enforce abstraction.
func NewProcessedRepository(backend *Backend) (storage.ProcessedStore, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &ProcessedRepository{backend: backend}, nil
}

// IsProcessed reports whether the source id has a durable processed record.
func (r *ProcessedRepository) IsProcessed(ctx context.Context, sourceID string) (bool, error) {
	var found bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeProcessedRecordKey(sourceID))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

// MarkProcessed persists the record. Sets ProcessedAt if unset.
func (r *ProcessedRepository) MarkProcessed(ctx context.Context, record *core.ProcessedRecord) error {
	if record.SourceID == "" {
		return core.ErrEmptySourceID
	}
	if record.ProcessedAt.IsZero() {
		record.ProcessedAt = time.Now().UTC()
	}
	if record.Status == 0 {
		record.Status = core.StatusProcessed
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeProcessedRecordKey(record.SourceID)
		if err := tx.Set(key, storage.MarshalProcessedRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Get retrieves the record for a source id.
// Returns storage.ErrNotFound if the source has not been processed.
func (r *ProcessedRepository) Get(ctx context.Context, sourceID string) (*core.ProcessedRecord, error) {
	var record *core.ProcessedRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeProcessedRecordKey(sourceID))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			record, unmarshalErr = storage.UnmarshalProcessedRecord(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Close is a no-op; the shared Backend owns the database lifecycle.
func (r *ProcessedRepository) Close() error {
	return nil
}

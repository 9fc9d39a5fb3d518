package storage

import (
	"context"

	"github.com/poiesic/contextgraph/core"
)

// VectorIndex is the consumed capability set of the vector backend: a
// service storing documents alongside fixed-length numeric vectors and
// answering nearest-neighbor queries. Implementations must be thread-safe.
//
// Distance semantics: SearchNearVector reports a backend-provided distance
// where lower values mean more similar. All implementations must preserve
// this orientation.
type VectorIndex interface {
	// EnsureCollection deletes and recreates the document collection with an
	// explicit property list and the vectorizer disabled (vectors are always
	// supplied externally). Idempotent; "already exists" during setup is
	// success, not failure.
	EnsureCollection(ctx context.Context) error

	// DropCollection removes the document collection. A missing collection
	// is not an error.
	DropCollection(ctx context.Context) error

	// Insert stores a document with its vector and returns the identifier
	// generated by the backend. The identifier is the join key shared with
	// the graph backend.
	Insert(ctx context.Context, doc *core.Document) (string, error)

	// SearchNearVector returns up to limit documents ordered nearest first,
	// each annotated with the backend-reported distance.
	SearchNearVector(ctx context.Context, vector []float32, limit int) ([]core.SimilarityMatch, error)

	// ListIDs returns the identifiers of all stored documents. Used by the
	// reconciliation pass to surface partial writes.
	ListIDs(ctx context.Context) ([]string, error)

	// Close releases the backend connection. Idempotent.
	Close() error
}

// GraphStore is the consumed capability set of the graph backend: a service
// storing typed nodes and directed, typed edges. All write operations use
// merge semantics (create if absent, else match existing), so repeated calls
// with identical arguments are no-ops. Implementations must be thread-safe
// and must parameterize every query value.
type GraphStore interface {
	// EnsureConstraints creates the uniqueness constraint on Document.id
	// using "create if not exists" semantics. Idempotent.
	EnsureConstraints(ctx context.Context) error

	// MergeSource mirrors an upstream source as a graph node.
	MergeSource(ctx context.Context, source *core.Source) error

	// MergeDocument mirrors a stored document as a graph node keyed by the
	// vector backend's identifier. The graph copy carries a denormalized
	// content preview, not the full text.
	MergeDocument(ctx context.Context, doc *core.Document) error

	// MergeKeyword creates a keyword node, deduplicated by name.
	MergeKeyword(ctx context.Context, kw core.Keyword) error

	// MergeRelationship creates a typed directed edge between two existing
	// nodes matched by id (or name, for keywords). Returns
	// core.ErrInvalidRelationshipType for types outside the enumerated set;
	// returns ErrNotFound if either endpoint does not exist.
	MergeRelationship(ctx context.Context, fromID, toID string, relType core.RelationshipType) error

	// HasDocument reports whether a document node with the given id exists.
	HasDocument(ctx context.Context, id string) (bool, error)

	// ListDocumentIDs returns the identifiers of all document nodes. Used by
	// the reconciliation pass.
	ListDocumentIDs(ctx context.Context) ([]string, error)

	// Close releases the backend connection. Idempotent.
	Close() error
}

// ProcessedStore is the durable idempotency ledger for the sync loop. A
// source id enters the ledger only after every backend write for all its
// derived documents succeeded; partially processed sources carry no record
// and are retried on the next cycle.
type ProcessedStore interface {
	// IsProcessed reports whether the source has already been fully ingested.
	IsProcessed(ctx context.Context, sourceID string) (bool, error)

	// MarkProcessed records a source as fully ingested. Overwriting an
	// existing record with the same source id is harmless.
	MarkProcessed(ctx context.Context, record *core.ProcessedRecord) error

	// Get retrieves the record for a source. Returns ErrNotFound if the
	// source has not been processed.
	Get(ctx context.Context, sourceID string) (*core.ProcessedRecord, error)

	// Close closes the ledger and releases resources.
	Close() error
}

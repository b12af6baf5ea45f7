package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DocumentStore persists documents and their embeddings.
//
// Implementations must allow concurrent Scan calls and serialise writers.
// A Scan observes a consistent snapshot: writes that start after the scan
// began are not visible to it.
type DocumentStore interface {
	// Insert appends a document. It fails with domain.ErrDimensionMismatch when
	// the embedding length differs from the dimensionality fixed by the first
	// insert, and with domain.ErrAlreadyExists on a duplicate ID.
	Insert(ctx context.Context, doc domain.Document) error

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// DeleteByID removes a document. Returns domain.ErrNotFound if absent.
	DeleteByID(ctx context.Context, id string) error

	// DeleteByFilter removes every document matching the filter and
	// returns how many were removed.
	DeleteByFilter(ctx context.Context, filter domain.Filter) (int, error)

	// Scan returns the documents matching the filter, in no particular order.
	Scan(ctx context.Context, filter domain.Filter) ([]domain.Document, error)

	// Touch records an access time for the given documents.
	// It is best-effort; unknown IDs are ignored.
	Touch(ctx context.Context, ids []string, at time.Time) error

	// Dimensions returns the established embedding length, or 0 if none yet.
	Dimensions() int

	// Close releases resources.
	Close() error
}

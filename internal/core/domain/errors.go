package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfiguration indicates chunking or ranking parameters are unusable.
	// It is fatal to the call and never retried.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDimensionMismatch indicates an embedding length differs from the
	// dimensionality established by the store's first insert.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingUnavailable indicates the embedding service could not produce a vector.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingTimeout indicates an embedding call exceeded its deadline.
	ErrEmbeddingTimeout = errors.New("embedding timed out")

	// ErrInsertFailed indicates the document store could not persist a document.
	ErrInsertFailed = errors.New("insert failed")
)

// ChunkError reports a failure for a single chunk of an index request.
// Callers can retry just the failed chunk using Index.
type ChunkError struct {
	// Index is the zero-based chunk ordinal.
	Index int

	// DocumentID is the id that was assigned to the chunk.
	DocumentID string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *ChunkError) Error() string {
	if e.DocumentID == "" {
		return fmt.Sprintf("chunk %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("chunk %d (document %s): %v", e.Index, e.DocumentID, e.Err)
}

// Unwrap returns the underlying error.
func (e *ChunkError) Unwrap() error {
	return e.Err
}

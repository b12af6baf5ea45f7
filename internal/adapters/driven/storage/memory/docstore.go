package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// entry wraps an immutable document with its mutable access time.
type entry struct {
	doc        domain.Document
	lastAccess atomic.Int64
}

func (e *entry) snapshot() domain.Document {
	doc := e.doc
	doc.Metadata = e.doc.Metadata.Clone()
	doc.LastAccessedAt = fromNanos(e.lastAccess.Load())
	return doc
}

// toNanos maps the zero time to 0 so it survives the round trip.
func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// DocumentStore is an in-memory implementation of driven.DocumentStore.
//
// Scans read a published slice without locking. Writers are serialised by mu
// and either append past the published length or publish a fresh slice, so a
// scan never observes a write that started after it.
type DocumentStore struct {
	mu   sync.RWMutex
	byID map[string]*entry
	docs atomic.Pointer[[]*entry]
	dims atomic.Int64
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	s := &DocumentStore{
		byID: make(map[string]*entry),
	}
	empty := make([]*entry, 0)
	s.docs.Store(&empty)
	return s
}

// Insert appends a document.
func (s *DocumentStore) Insert(ctx context.Context, doc domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if len(doc.Embedding) == 0 {
		return fmt.Errorf("%w: document %s has no embedding", domain.ErrInvalidInput, doc.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[doc.ID]; ok {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrAlreadyExists)
	}

	dims := int(s.dims.Load())
	if dims != 0 && len(doc.Embedding) != dims {
		return fmt.Errorf("%w: got %d, store uses %d", domain.ErrDimensionMismatch, len(doc.Embedding), dims)
	}

	e := &entry{doc: doc}
	e.doc.Embedding = append([]float32(nil), doc.Embedding...)
	e.doc.Metadata = doc.Metadata.Clone()
	e.lastAccess.Store(toNanos(doc.LastAccessedAt))

	// Appending never touches elements below the published length.
	next := append(*s.docs.Load(), e)
	s.docs.Store(&next)
	s.byID[doc.ID] = e

	if dims == 0 {
		s.dims.Store(int64(len(doc.Embedding)))
	}
	return nil
}

// Get retrieves a document by ID.
func (s *DocumentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	e, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := e.snapshot()
	return &doc, nil
}

// DeleteByID removes a document.
func (s *DocumentStore) DeleteByID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return domain.ErrNotFound
	}
	s.removeLocked(func(e *entry) bool { return e.doc.ID == id })
	return nil
}

// DeleteByFilter removes every document matching the filter.
func (s *DocumentStore) DeleteByFilter(ctx context.Context, filter domain.Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeLocked(func(e *entry) bool { return filter.Matches(&e.doc) }), nil
}

// removeLocked publishes a new slice without the matching entries.
// Callers must hold mu.
func (s *DocumentStore) removeLocked(match func(*entry) bool) int {
	current := *s.docs.Load()
	next := make([]*entry, 0, len(current))
	removed := 0
	for _, e := range current {
		if match(e) {
			delete(s.byID, e.doc.ID)
			removed++
			continue
		}
		next = append(next, e)
	}
	if removed > 0 {
		s.docs.Store(&next)
	}
	return removed
}

// Scan returns the documents matching the filter.
func (s *DocumentStore) Scan(ctx context.Context, filter domain.Filter) ([]domain.Document, error) {
	current := *s.docs.Load()

	result := make([]domain.Document, 0, len(current))
	for i, e := range current {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !filter.Matches(&e.doc) {
			continue
		}
		result = append(result, e.snapshot())
	}
	return result, nil
}

// Touch records an access time for the given documents.
func (s *DocumentStore) Touch(_ context.Context, ids []string, at time.Time) error {
	nanos := toNanos(at)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range ids {
		if e, ok := s.byID[id]; ok {
			e.lastAccess.Store(nanos)
		}
	}
	return nil
}

// Dimensions returns the established embedding length.
func (s *DocumentStore) Dimensions() int {
	return int(s.dims.Load())
}

// Len returns the number of stored documents.
func (s *DocumentStore) Len() int {
	return len(*s.docs.Load())
}

// Close is a no-op for the in-memory store.
func (s *DocumentStore) Close() error {
	return nil
}

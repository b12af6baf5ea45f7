package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// --- Mock implementations ---

// stubEmbedder implements driven.EmbeddingService with canned vectors.
type stubEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	errs     map[string]error
	hooks    map[string]func(ctx context.Context)
	fallback []float32
	block    bool
	calls    []string
}

func newStubEmbedder(fallback ...float32) *stubEmbedder {
	return &stubEmbedder{
		vectors:  make(map[string][]float32),
		errs:     make(map[string]error),
		hooks:    make(map[string]func(ctx context.Context)),
		fallback: fallback,
	}
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls = append(e.calls, text)
	hook := e.hooks[text]
	err := e.errs[text]
	vec, ok := e.vectors[text]
	block := e.block
	e.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if ok {
		return vec, nil
	}
	return e.fallback, nil
}

func (e *stubEmbedder) Dimensions() int {
	return len(e.fallback)
}

func (e *stubEmbedder) ModelName() string {
	return "stub"
}

func (e *stubEmbedder) Ping(_ context.Context) error {
	return nil
}

func (e *stubEmbedder) Close() error {
	return nil
}

func (e *stubEmbedder) set(text string, vec ...float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vectors[text] = vec
}

func (e *stubEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

// notifyingStore wraps a store and signals each successful insert.
type notifyingStore struct {
	driven.DocumentStore
	inserted chan string
}

func (s *notifyingStore) Insert(ctx context.Context, doc domain.Document) error {
	if err := s.DocumentStore.Insert(ctx, doc); err != nil {
		return err
	}
	select {
	case s.inserted <- doc.ID:
	default:
	}
	return nil
}

// failingStore wraps a store and fails selected operations.
type failingStore struct {
	driven.DocumentStore
	insertErr error
	touchErr  error
	scanErr   error
}

func (s *failingStore) Insert(ctx context.Context, doc domain.Document) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.DocumentStore.Insert(ctx, doc)
}

func (s *failingStore) Scan(ctx context.Context, filter domain.Filter) ([]domain.Document, error) {
	if s.scanErr != nil {
		return nil, s.scanErr
	}
	return s.DocumentStore.Scan(ctx, filter)
}

func (s *failingStore) Touch(ctx context.Context, ids []string, at time.Time) error {
	if s.touchErr != nil {
		return s.touchErr
	}
	return s.DocumentStore.Touch(ctx, ids, at)
}

// sequentialIDs returns a generator producing doc-1, doc-2, ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("doc-%d", n)
	}
}

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// hookStore wraps a store and runs afterInsert after each successful insert.
type hookStore struct {
	driven.DocumentStore
	afterInsert func(ctx context.Context, doc domain.Document)
}

func (s *hookStore) Insert(ctx context.Context, doc domain.Document) error {
	if err := s.DocumentStore.Insert(ctx, doc); err != nil {
		return err
	}
	if s.afterInsert != nil {
		s.afterInsert(ctx, doc)
	}
	return nil
}

// Package cached wraps an embedding service with an LRU cache of vectors.
//
// Repeated queries and re-indexed content skip the underlying model. Cached
// vectors are copied on the way in and out so callers cannot corrupt them.
package cached

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService caches embeddings produced by another service.
type EmbeddingService struct {
	next  driven.EmbeddingService
	cache *lru.Cache[string, []float32]
}

// NewEmbeddingService wraps next with a cache holding up to size vectors.
func NewEmbeddingService(next driven.EmbeddingService, size int) (*EmbeddingService, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("creating embedding cache: %w", err)
	}
	return &EmbeddingService{next: next, cache: cache}, nil
}

// Embed returns the cached vector for text, computing it on a miss.
// Failures are never cached.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := s.cache.Get(text); ok {
		return append([]float32(nil), vec...), nil
	}

	vec, err := s.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	s.cache.Add(text, append([]float32(nil), vec...))
	return vec, nil
}

// Len returns the number of cached vectors.
func (s *EmbeddingService) Len() int {
	return s.cache.Len()
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.next.Dimensions()
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.next.ModelName()
}

// Ping validates the underlying service.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close purges the cache and closes the underlying service.
func (s *EmbeddingService) Close() error {
	s.cache.Purge()
	return s.next.Close()
}

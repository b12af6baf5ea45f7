// Package throttled wraps an embedding service with a token-bucket rate limit.
package throttled

import (
	"context"
	"math"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService limits how often the underlying service is called.
type EmbeddingService struct {
	next    driven.EmbeddingService
	limiter *rate.Limiter
}

// NewEmbeddingService allows perSecond calls per second to next, with a burst
// of the same size rounded up. A non-positive rate disables limiting.
func NewEmbeddingService(next driven.EmbeddingService, perSecond float64) *EmbeddingService {
	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = int(math.Ceil(perSecond))
	}
	return &EmbeddingService{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Embed waits for a token, then delegates. Waiting honours ctx.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// Wait fails early when the deadline cannot be met.
		return nil, context.DeadlineExceeded
	}
	return s.next.Embed(ctx, text)
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.next.Dimensions()
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.next.ModelName()
}

// Ping validates the underlying service without consuming a token.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close closes the underlying service.
func (s *EmbeddingService) Close() error {
	return s.next.Close()
}

package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// IndexService ingests and removes content.
type IndexService interface {
	// Index chunks, embeds and stores the request content.
	// On partial failure it returns both the result and the first chunk error.
	Index(ctx context.Context, req domain.IndexRequest) (*domain.IndexResult, error)

	// Delete removes a single document by ID.
	Delete(ctx context.Context, id string) error

	// DeleteWhere removes all documents matching the filter.
	DeleteWhere(ctx context.Context, filter domain.Filter) (int, error)

	// Stats returns the most recently computed index statistics.
	Stats() domain.IndexStats

	// RefreshStats recomputes statistics from the document store.
	RefreshStats(ctx context.Context) error
}

package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// SearchService retrieves ranked documents for a query.
type SearchService interface {
	// Search returns at most query.Limit results ordered by descending score.
	// An empty slice (not an error) is returned when nothing clears the threshold.
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error)
}

package driving

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// ContextService turns ranked results into prompt-ready context.
type ContextService interface {
	// Assemble builds a token-budgeted block grouped by source.
	// A non-positive maxTokens uses the default budget.
	Assemble(results []domain.SearchResult, maxTokens int) domain.ContextBlock

	// PrimarySource returns the kind with the most results.
	PrimarySource(results []domain.SearchResult) (domain.SourceKind, bool)
}

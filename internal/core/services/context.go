package services

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure ContextService implements the interface.
var _ driving.ContextService = (*ContextService)(nil)

// ContextService formats ranked results into prompt-ready context.
// It holds no state and is safe for concurrent use.
type ContextService struct{}

// NewContextService creates a new context service.
func NewContextService() *ContextService {
	return &ContextService{}
}

// Assemble builds a context block grouped by source kind.
//
// Sections follow the fixed source kind order, each holding at most
// domain.MaxEntriesPerSource results in rank order. Every entry costs
// domain.EstimateTokens of its text. Assembly stops entirely at the first
// entry that would exceed maxTokens; entries already written are kept.
func (s *ContextService) Assemble(results []domain.SearchResult, maxTokens int) domain.ContextBlock {
	if maxTokens <= 0 {
		maxTokens = domain.DefaultContextTokens
	}

	block := domain.ContextBlock{}
	block.PrimarySource, _ = s.PrimarySource(results)

	groups := groupBySource(results)
	var b strings.Builder

assembly:
	for _, kind := range domain.AllSourceKinds() {
		group := groups[kind]
		if len(group) > domain.MaxEntriesPerSource {
			group = group[:domain.MaxEntriesPerSource]
		}

		for i := range group {
			text := entryText(&group[i])
			cost := domain.EstimateTokens(text)
			if block.TokensUsed+cost > maxTokens {
				block.Truncated = true
				break assembly
			}

			if i == 0 {
				fmt.Fprintf(&b, "## %s\n\n", kind.Label())
			}
			fmt.Fprintf(&b, "%s (relevance: %d%%)\n%s\n\n",
				group[i].Document.Title(), relevancePercent(group[i].Similarity), text)

			block.TokensUsed += cost
			block.Entries++
		}
	}

	block.Text = strings.TrimRight(b.String(), "\n")
	logger.Debug("Context: %d entries, %d/%d tokens, truncated=%t",
		block.Entries, block.TokensUsed, maxTokens, block.Truncated)
	return block
}

// PrimarySource returns the kind with the most results.
// Ties go to the kind that comes first in the source kind order.
func (s *ContextService) PrimarySource(results []domain.SearchResult) (domain.SourceKind, bool) {
	counts := make(map[domain.SourceKind]int)
	for i := range results {
		counts[results[i].Document.Source]++
	}

	var best domain.SourceKind
	bestCount := 0
	for _, kind := range domain.AllSourceKinds() {
		if counts[kind] > bestCount {
			best, bestCount = kind, counts[kind]
		}
	}
	return best, bestCount > 0
}

// groupBySource buckets results by kind, ordered by rank within each bucket.
// Groups containing unranked results keep their incoming order.
func groupBySource(results []domain.SearchResult) map[domain.SourceKind][]domain.SearchResult {
	groups := make(map[domain.SourceKind][]domain.SearchResult)
	for i := range results {
		kind := results[i].Document.Source
		groups[kind] = append(groups[kind], results[i])
	}
	for _, group := range groups {
		ranked := !slices.ContainsFunc(group, func(r domain.SearchResult) bool { return r.Rank <= 0 })
		if ranked {
			slices.SortStableFunc(group, func(a, b domain.SearchResult) int { return a.Rank - b.Rank })
		}
	}
	return groups
}

// entryText is the explicit snippet, else the leading content.
func entryText(r *domain.SearchResult) string {
	if r.Snippet != "" {
		return r.Snippet
	}
	runes := []rune(r.Document.Content)
	if len(runes) > domain.SnippetFallbackChars {
		return string(runes[:domain.SnippetFallbackChars])
	}
	return r.Document.Content
}

// relevancePercent renders a similarity in [0,1] as a whole percentage.
func relevancePercent(similarity float64) int {
	return int(math.Round(similarity * 100))
}

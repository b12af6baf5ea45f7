package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// maxSnippetChars bounds the sentence excerpt attached to a result.
const maxSnippetChars = 200

// SearchService ranks stored documents against a query embedding.
type SearchService struct {
	store    driven.DocumentStore
	embedder driven.EmbeddingService
	cfg      domain.Config

	now func() time.Time
}

// NewSearchService creates a new search service.
// The embedder may be nil when every query carries its own embedding.
func NewSearchService(
	store driven.DocumentStore,
	embedder driven.EmbeddingService,
	cfg domain.Config,
) *SearchService {
	return &SearchService{
		store:    store,
		embedder: embedder,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Search returns ranked documents for the query.
//
// Similarity below the threshold drops a document. Survivors are scored by
// domain.CombinedScore plus a recency boost and ordered by score, then newest
// first, then source priority, then ID, so the order is total.
func (s *SearchService) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query.Text)
	defer logger.Timed("search")()

	if m := query.MinSimilarity; m != nil && !(*m >= 0 && *m <= 1) {
		return nil, fmt.Errorf("%w: min similarity %v outside [0,1]", domain.ErrInvalidInput, *m)
	}

	embedding := query.Embedding
	if len(embedding) == 0 {
		if strings.TrimSpace(query.Text) == "" {
			logger.Debug("Empty query, returning no results")
			return []domain.SearchResult{}, nil
		}

		var err error
		embedding, err = embedText(ctx, s.embedder, query.Text, s.cfg.EmbeddingTimeout)
		if err != nil {
			logger.Warn("Query embedding failed: %v", err)
			return nil, fmt.Errorf("embed query: %w", err)
		}
		logger.Debug("Query embedding: %d dimensions", len(embedding))
	}

	filter := query.Filter()
	sources, ok := effectiveSources(query.Sources, s.cfg.EnabledSources)
	if !ok {
		logger.Debug("No requested source is enabled")
		return []domain.SearchResult{}, nil
	}
	filter.Sources = sources

	docs, err := s.store.Scan(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	logger.Debug("Candidates: %d documents", len(docs))

	threshold := s.cfg.MinSimilarity
	if query.MinSimilarity != nil {
		threshold = *query.MinSimilarity
	}

	now := s.now()
	results := make([]domain.SearchResult, 0)
	for i := range docs {
		sim := CosineSimilarity(embedding, docs[i].Embedding)
		if sim < threshold {
			continue
		}
		results = append(results, domain.SearchResult{
			Document:   docs[i],
			Similarity: sim,
			Score:      domain.CombinedScore(sim, docs[i].Source) + s.recencyBoost(docs[i].CreatedAt, now),
		})
	}
	logger.Debug("Above threshold %.2f: %d", threshold, len(results))

	slices.SortFunc(results, compareResults)

	limit := s.limit(query.Limit)
	if len(results) > limit {
		results = results[:limit]
	}

	terms := queryTerms(query.Text)
	ids := make([]string, len(results))
	for i := range results {
		r := &results[i]
		r.Rank = i + 1
		r.Document.LastAccessedAt = now
		r.MatchedTerms, r.Snippet = highlight(r.Document.Content, terms)
		ids[i] = r.Document.ID
	}

	if len(ids) > 0 {
		if err := s.store.Touch(ctx, ids, now); err != nil {
			logger.Warn("Touch failed for %d documents: %v", len(ids), err)
		}
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}

// limit resolves the effective result count.
func (s *SearchService) limit(requested int) int {
	limit := requested
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	if s.cfg.MaxResults > 0 && limit > s.cfg.MaxResults {
		limit = s.cfg.MaxResults
	}
	return limit
}

// recencyBoost decays linearly from cfg.RecencyBoost at age zero to nothing
// at cfg.RecencyWindow. Documents dated in the future count as age zero.
func (s *SearchService) recencyBoost(createdAt, now time.Time) float64 {
	if s.cfg.RecencyBoost <= 0 || s.cfg.RecencyWindow <= 0 {
		return 0
	}

	age := now.Sub(createdAt)
	if age < 0 {
		age = 0
	}
	if age > s.cfg.RecencyWindow {
		return 0
	}
	return s.cfg.RecencyBoost * (1 - float64(age)/float64(s.cfg.RecencyWindow))
}

// compareResults orders by score desc, CreatedAt desc, priority desc, ID asc.
func compareResults(a, b domain.SearchResult) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := b.Document.CreatedAt.Compare(a.Document.CreatedAt); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Document.Source.Priority(), a.Document.Source.Priority()); c != 0 {
		return c
	}
	return strings.Compare(a.Document.ID, b.Document.ID)
}

// effectiveSources intersects the requested and enabled kinds. Nil on either
// side means unrestricted. ok is false when the intersection is empty.
func effectiveSources(requested, enabled []domain.SourceKind) ([]domain.SourceKind, bool) {
	switch {
	case len(enabled) == 0:
		return requested, true
	case len(requested) == 0:
		return enabled, true
	}

	out := make([]domain.SourceKind, 0, len(requested))
	for _, k := range requested {
		if slices.Contains(enabled, k) {
			out = append(out, k)
		}
	}
	return out, len(out) > 0
}

// queryTerms returns the distinct lower-cased words of a query.
func queryTerms(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := make([]string, 0, len(words))
	for _, w := range words {
		if !slices.Contains(terms, w) {
			terms = append(terms, w)
		}
	}
	return terms
}

// highlight returns the query terms present in content and the first
// sentence containing one of them.
func highlight(content string, terms []string) ([]string, string) {
	if len(terms) == 0 {
		return nil, ""
	}

	lower := strings.ToLower(content)
	var matched []string
	for _, term := range terms {
		if strings.Contains(lower, term) {
			matched = append(matched, term)
		}
	}
	if len(matched) == 0 {
		return nil, ""
	}

	for _, sentence := range splitSentences(content) {
		sentenceLower := strings.ToLower(sentence)
		for _, term := range matched {
			if strings.Contains(sentenceLower, term) {
				return matched, truncateRunes(sentence, maxSnippetChars)
			}
		}
	}
	return matched, ""
}

// truncateRunes shortens s to at most n runes, marking the cut with "...".
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// splitSentences splits content into sentences.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

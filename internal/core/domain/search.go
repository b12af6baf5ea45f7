package domain

// Ranking constants. The weights blend similarity with source priority.
const (
	// SimilarityWeight is the share of the combined score taken by similarity.
	SimilarityWeight = 0.7

	// PriorityWeight is the share of the combined score taken by source priority.
	PriorityWeight = 0.3

	// DefaultSearchLimit is used when a query does not set Limit.
	DefaultSearchLimit = 10
)

// ProtectedFilter controls how protected content participates in a search.
type ProtectedFilter int

const (
	// ProtectedInclude returns protected and unprotected documents.
	ProtectedInclude ProtectedFilter = iota

	// ProtectedExclude drops protected documents.
	ProtectedExclude

	// ProtectedOnly returns only protected documents.
	ProtectedOnly
)

// Allows reports whether a document with the given flag passes the filter.
func (f ProtectedFilter) Allows(protected bool) bool {
	switch f {
	case ProtectedExclude:
		return !protected
	case ProtectedOnly:
		return protected
	default:
		return true
	}
}

// SearchQuery configures a retrieval.
type SearchQuery struct {
	// Text is the free-text query.
	Text string

	// Embedding is an optional precomputed query vector.
	// When nil the retriever embeds Text.
	Embedding []float32

	// Sources restricts results to these kinds. Nil means all.
	Sources []SourceKind

	// ConversationID restricts results to one conversation.
	ConversationID string

	// TeamID restricts results to one team.
	TeamID string

	// Protected controls protected-content handling.
	Protected ProtectedFilter

	// Limit is the maximum number of results (default 10).
	Limit int

	// MinSimilarity overrides the configured threshold when non-nil.
	MinSimilarity *float64
}

// Filter returns the store filter implied by the query.
func (q *SearchQuery) Filter() Filter {
	return Filter{
		Sources:        q.Sources,
		ConversationID: q.ConversationID,
		TeamID:         q.TeamID,
		Protected:      q.Protected,
	}
}

// SearchResult is a ranked match.
type SearchResult struct {
	// Document is the matched document.
	Document Document

	// Similarity is the cosine similarity to the query, in [0, 1].
	Similarity float64

	// Score is the combined score plus any recency boost; results are sorted by it.
	Score float64

	// Rank is the 1-based position in the result list.
	Rank int

	// MatchedTerms lists query terms found in the content.
	MatchedTerms []string

	// Snippet is a short excerpt around the first matched term.
	Snippet string
}

// CombinedScore blends similarity with the source priority.
func (r *SearchResult) CombinedScore() float64 {
	return CombinedScore(r.Similarity, r.Document.Source)
}

// CombinedScore returns SimilarityWeight*similarity + PriorityWeight*(priority/10).
func CombinedScore(similarity float64, source SourceKind) float64 {
	return SimilarityWeight*similarity +
		PriorityWeight*(float64(source.Priority())/float64(MaxSourcePriority))
}

// Float returns a pointer to v, for optional query fields.
func Float(v float64) *float64 {
	return &v
}

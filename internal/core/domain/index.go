package domain

import "time"

// IndexRequest asks the indexer to embed and store content.
type IndexRequest struct {
	// Content is the text to index.
	Content string

	// Source identifies the content origin.
	Source SourceKind

	// Metadata is copied onto every produced document.
	Metadata Metadata

	// ChunkIfNeeded splits content longer than the configured chunk size.
	ChunkIfNeeded bool
}

// IndexResult reports the outcome of an index request.
// A non-nil result is returned even on partial failure.
type IndexResult struct {
	// DocumentIDs lists created documents in chunk order.
	DocumentIDs []string

	// ChunksCreated is the number of documents actually inserted.
	ChunksCreated int

	// TokensIndexed is the estimated token count of inserted chunks.
	TokensIndexed int

	// Duration is the wall-clock time spent on the request.
	Duration time.Duration

	// Errors holds one entry per failed chunk, in chunk order.
	Errors []*ChunkError
}

// IndexStats holds aggregate index counters.
type IndexStats struct {
	// TotalDocuments is the number of stored documents.
	TotalDocuments int

	// BySource counts documents per source kind.
	BySource map[SourceKind]int

	// AverageDimensions is the mean embedding length.
	AverageDimensions float64

	// ApproxSizeBytes estimates the in-memory footprint of the index.
	ApproxSizeBytes int64

	// LastUpdated is when the statistics were last recomputed.
	LastUpdated time.Time
}

// Clone returns a copy that does not share the BySource map.
func (s IndexStats) Clone() IndexStats {
	out := s
	out.BySource = make(map[SourceKind]int, len(s.BySource))
	for k, v := range s.BySource {
		out.BySource[k] = v
	}
	return out
}

// EstimateTokens approximates the token count of text as ceil(runes/4).
func EstimateTokens(text string) int {
	n := 0
	for range text {
		n++
	}
	return (n + CharsPerToken - 1) / CharsPerToken
}

// CharsPerToken is the character-to-token ratio used for budgeting.
const CharsPerToken = 4

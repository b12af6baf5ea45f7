package domain

// Context assembly constants.
const (
	// DefaultContextTokens is the budget used when the caller passes none.
	DefaultContextTokens = 2000

	// MaxEntriesPerSource caps how many results each source section may hold.
	MaxEntriesPerSource = 5

	// SnippetFallbackChars is how much content stands in for a missing snippet.
	SnippetFallbackChars = 300
)

// ContextBlock is token-budgeted text ready for prompt injection.
type ContextBlock struct {
	// Text is the formatted context.
	Text string

	// TokensUsed is the estimated token cost of the included entries.
	TokensUsed int

	// Entries is the number of results included.
	Entries int

	// Truncated is true when the budget stopped assembly early.
	Truncated bool

	// PrimarySource is the kind with the most results among all inputs.
	// Empty when there were no results.
	PrimarySource SourceKind
}

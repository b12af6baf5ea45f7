package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	searchLimit            int
	searchSources          []string
	searchConversation     string
	searchTeam             string
	searchMinSimilarity    float64
	searchExcludeProtected bool
	searchProtectedOnly    bool
	searchJSON             bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Ranks indexed documents by semantic similarity to the query.

Each result is scored as 0.7 x similarity + 0.3 x source priority, plus a
boost for recently created documents. Results below the similarity
threshold are dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().StringSliceVarP(&searchSources, "source", "s", nil, "restrict to source kinds (repeatable)")
	searchCmd.Flags().StringVar(&searchConversation, "conversation", "", "restrict to one conversation")
	searchCmd.Flags().StringVar(&searchTeam, "team", "", "restrict to one team")
	searchCmd.Flags().Float64Var(&searchMinSimilarity, "min-similarity", 0, "override the similarity threshold (0 to 1)")
	searchCmd.Flags().BoolVar(&searchExcludeProtected, "exclude-protected", false, "skip protected content")
	searchCmd.Flags().BoolVar(&searchProtectedOnly, "protected-only", false, "search only protected content")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	query, err := buildSearchQuery(cmd, args[0])
	if err != nil {
		return err
	}

	results, err := searchService.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

// buildSearchQuery maps the search flags onto a query.
func buildSearchQuery(cmd *cobra.Command, text string) (domain.SearchQuery, error) {
	sources, err := domain.ParseSourceKinds(searchSources)
	if err != nil {
		return domain.SearchQuery{}, err
	}

	query := domain.SearchQuery{
		Text:           text,
		Sources:        sources,
		ConversationID: searchConversation,
		TeamID:         searchTeam,
		Limit:          searchLimit,
	}
	if cmd.Flags().Changed("min-similarity") {
		query.MinSimilarity = domain.Float(searchMinSimilarity)
	}
	switch {
	case searchExcludeProtected && searchProtectedOnly:
		return domain.SearchQuery{}, fmt.Errorf("%w: use either --exclude-protected or --protected-only", domain.ErrInvalidInput)
	case searchExcludeProtected:
		query.Protected = domain.ProtectedExclude
	case searchProtectedOnly:
		query.Protected = domain.ProtectedOnly
	}
	return query, nil
}

// searchResultJSON is the JSON shape of a search result.
type searchResultJSON struct {
	Rank         int      `json:"rank"`
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Source       string   `json:"source"`
	Similarity   float64  `json:"similarity"`
	Score        float64  `json:"score"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
	Snippet      string   `json:"snippet,omitempty"`
	Content      string   `json:"content"`
	CreatedAt    string   `json:"created_at"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	out := make([]searchResultJSON, len(results))
	for i := range results {
		doc := &results[i].Document
		out[i] = searchResultJSON{
			Rank:         results[i].Rank,
			ID:           doc.ID,
			Title:        doc.Title(),
			Source:       doc.Source.String(),
			Similarity:   results[i].Similarity,
			Score:        results[i].Score,
			MatchedTerms: results[i].MatchedTerms,
			Snippet:      results[i].Snippet,
			Content:      doc.Content,
			CreatedAt:    doc.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return writeJSON(cmd, out)
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.Title("Results:"))
	cmd.Println()
	for i := range results {
		// Format: [N] Title (score, similarity)
		doc := &results[i].Document
		cmd.Printf("  [%d] %s %s\n", i+1, doc.Title(),
			st.Muted(fmt.Sprintf("(score %.2f, similarity %.2f)", results[i].Score, results[i].Similarity)))
		cmd.Printf("      %s %s\n", st.Subtitle(doc.Source.Label()), st.Muted(doc.ID))
		if results[i].Snippet != "" {
			cmd.Printf("      %s\n", results[i].Snippet)
		}
		cmd.Println()
	}

	return nil
}

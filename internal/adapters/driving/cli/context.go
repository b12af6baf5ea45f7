package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	contextBudget  int
	contextLimit   int
	contextSources []string
	contextJSON    bool
)

var contextCmd = &cobra.Command{
	Use:   "context [query]",
	Short: "Build prompt context for a query",
	Long: `Searches the index and formats the best matches as a context block.

Results are grouped under a heading per source kind, at most five per
source, and assembly stops once the token budget would be exceeded. The
block is written to stdout; a summary line goes to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runContext,
}

func init() {
	contextCmd.Flags().IntVarP(&contextBudget, "budget", "b", domain.DefaultContextTokens, "token budget for the context block")
	contextCmd.Flags().IntVarP(&contextLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results to consider")
	contextCmd.Flags().StringSliceVarP(&contextSources, "source", "s", nil, "restrict to source kinds (repeatable)")
	contextCmd.Flags().BoolVar(&contextJSON, "json", false, "output the block as JSON")
	rootCmd.AddCommand(contextCmd)
}

// contextBlockJSON is the JSON shape of an assembled block.
type contextBlockJSON struct {
	Context       string `json:"context"`
	TokensUsed    int    `json:"tokens_used"`
	Entries       int    `json:"entries"`
	Truncated     bool   `json:"truncated"`
	PrimarySource string `json:"primary_source,omitempty"`
	ResultCount   int    `json:"result_count"`
}

func runContext(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	if contextService == nil {
		return errors.New("context service not configured")
	}

	sources, err := domain.ParseSourceKinds(contextSources)
	if err != nil {
		return err
	}

	results, err := searchService.Search(cmd.Context(), domain.SearchQuery{
		Text:    args[0],
		Sources: sources,
		Limit:   contextLimit,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	block := contextService.Assemble(results, contextBudget)

	if contextJSON {
		return writeJSON(cmd, contextBlockJSON{
			Context:       block.Text,
			TokensUsed:    block.TokensUsed,
			Entries:       block.Entries,
			Truncated:     block.Truncated,
			PrimarySource: block.PrimarySource.String(),
			ResultCount:   len(results),
		})
	}

	if block.Text == "" {
		cmd.PrintErrln("No context found.")
		return nil
	}

	cmd.Println(block.Text)

	st := newStyles(cmd.ErrOrStderr())
	summary := fmt.Sprintf("%d entries, %d/%d tokens", block.Entries, block.TokensUsed, contextBudget)
	if block.Truncated {
		summary += ", truncated"
	}
	if block.PrimarySource != "" {
		summary += ", mostly " + block.PrimarySource.Label()
	}
	cmd.PrintErrln(st.Muted("(" + summary + ")"))
	return nil
}

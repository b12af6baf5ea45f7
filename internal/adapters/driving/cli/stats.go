package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

// statsJSONOutput is the JSON shape of index statistics.
type statsJSONOutput struct {
	TotalDocuments    int            `json:"total_documents"`
	BySource          map[string]int `json:"by_source"`
	AverageDimensions float64        `json:"average_dimensions"`
	ApproxSizeBytes   int64          `json:"approx_size_bytes"`
	LastUpdated       string         `json:"last_updated,omitempty"`
}

func runStats(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	stats := indexService.Stats()

	if statsJSON {
		out := statsJSONOutput{
			TotalDocuments:    stats.TotalDocuments,
			BySource:          make(map[string]int, len(stats.BySource)),
			AverageDimensions: stats.AverageDimensions,
			ApproxSizeBytes:   stats.ApproxSizeBytes,
		}
		for kind, n := range stats.BySource {
			out.BySource[kind.String()] = n
		}
		if !stats.LastUpdated.IsZero() {
			out.LastUpdated = stats.LastUpdated.UTC().Format(time.RFC3339)
		}
		return writeJSON(cmd, out)
	}

	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.Title("Index Statistics"))
	cmd.Println()
	cmd.Printf("  Documents:  %d\n", stats.TotalDocuments)
	cmd.Printf("  Dimensions: %.0f\n", stats.AverageDimensions)
	cmd.Printf("  Size:       %s\n", formatBytes(stats.ApproxSizeBytes))
	if !stats.LastUpdated.IsZero() {
		cmd.Printf("  Updated:    %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05"))
	}

	if stats.TotalDocuments == 0 {
		return nil
	}

	cmd.Println()
	cmd.Println(st.Subtitle("By source"))
	for _, kind := range domain.AllSourceKinds() {
		if n := stats.BySource[kind]; n > 0 {
			cmd.Printf("  %-16s %d\n", kind.Label(), n)
		}
	}
	return nil
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

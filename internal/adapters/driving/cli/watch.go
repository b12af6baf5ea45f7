package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/watcher"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	watchSource     string
	watchExtensions []string
	watchNoScan     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir...]",
	Short: "Keep directories indexed as files change",
	Long: `Watches directories recursively and re-indexes matching files when they
are created or modified. Deleted files are removed from the index.

Existing files are indexed when watching starts unless --no-scan is set.
Runs until interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchSource, "source", "s", "file", "source kind recorded for indexed files")
	watchCmd.Flags().StringSliceVarP(&watchExtensions, "ext", "e", watcher.DefaultExtensions, "file extensions to index")
	watchCmd.Flags().BoolVar(&watchNoScan, "no-scan", false, "skip indexing existing files at startup")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	source, err := parseSourceFlag(watchSource, domain.SourceFile)
	if err != nil {
		return err
	}

	st := newStyles(cmd.OutOrStdout())
	w := watcher.New(indexService,
		watcher.WithSource(source),
		watcher.WithExtensions(watchExtensions...),
		watcher.WithInitialScan(!watchNoScan),
		watcher.WithProcessed(func(e watcher.Event) {
			if e.Err != nil {
				cmd.Printf("%s %s: %v\n", st.Failure(e.Operation.String()), e.Path, e.Err)
				return
			}
			cmd.Printf("%s %s (%d chunks)\n", st.Success(e.Operation.String()), e.Path, e.Chunks)
		}),
	)

	cmd.Printf("Watching %d directories. Press Ctrl+C to stop.\n", len(args))
	return w.Run(cmd.Context(), args...)
}

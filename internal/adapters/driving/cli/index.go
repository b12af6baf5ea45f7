package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/watcher"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	indexText         string
	indexSource       string
	indexTitle        string
	indexConversation string
	indexSession      string
	indexTeam         string
	indexTags         []string
	indexProtected    bool
	indexNoChunk      bool
	indexJSON         bool
)

var indexCmd = &cobra.Command{
	Use:   "index [file...]",
	Short: "Index files or text",
	Long: `Chunks, embeds and stores content so later searches can find it.

Files are indexed under their absolute path: indexing a file again replaces
its previous chunks. Without files, the --text value or standard input is
indexed as a single request.

Examples:
  sercha-rag index notes.md design.md
  sercha-rag index --text "Standup moved to 10am" --source chat_message
  cat transcript.txt | sercha-rag index --source team_message --team eng`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexText, "text", "t", "", "text to index instead of files")
	indexCmd.Flags().StringVarP(&indexSource, "source", "s", "", "source kind (default file for files, document otherwise)")
	indexCmd.Flags().StringVar(&indexTitle, "title", "", "title recorded on every chunk")
	indexCmd.Flags().StringVar(&indexConversation, "conversation", "", "owning conversation ID")
	indexCmd.Flags().StringVar(&indexSession, "session", "", "owning session ID")
	indexCmd.Flags().StringVar(&indexTeam, "team", "", "owning team ID")
	indexCmd.Flags().StringSliceVar(&indexTags, "tag", nil, "tag attached to every chunk (repeatable)")
	indexCmd.Flags().BoolVar(&indexProtected, "protected", false, "mark the content as protected")
	indexCmd.Flags().BoolVar(&indexNoChunk, "no-chunk", false, "store text as one document even when long (text and stdin only)")
	indexCmd.Flags().BoolVar(&indexJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(indexCmd)
}

// indexOutcome is the per-target report of the index command.
type indexOutcome struct {
	Target        string   `json:"target"`
	DocumentIDs   []string `json:"document_ids"`
	ChunksCreated int      `json:"chunks_created"`
	TokensIndexed int      `json:"tokens_indexed"`
	DurationMS    int64    `json:"duration_ms"`
	Errors        []string `json:"errors,omitempty"`
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	defaultSource := domain.SourceDocument
	if len(args) > 0 {
		defaultSource = domain.SourceFile
	}
	source, err := parseSourceFlag(indexSource, defaultSource)
	if err != nil {
		return err
	}

	meta := domain.Metadata{
		ConversationID: indexConversation,
		SessionID:      indexSession,
		TeamID:         indexTeam,
		Title:          indexTitle,
		Tags:           indexTags,
		Protected:      indexProtected,
	}

	var (
		outcomes []indexOutcome
		errs     []error
	)

	if len(args) > 0 {
		if indexText != "" {
			return errors.New("pass either files or --text, not both")
		}
		for _, path := range args {
			result, err := watcher.IndexFile(cmd.Context(), indexService, nil, path, source, meta.Clone())
			outcomes = append(outcomes, newIndexOutcome(path, result, err))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
			}
		}
	} else {
		content, target, err := readIndexInput(cmd)
		if err != nil {
			return err
		}
		result, err := indexService.Index(cmd.Context(), domain.IndexRequest{
			Content:       content,
			Source:        source,
			Metadata:      meta,
			ChunkIfNeeded: !indexNoChunk,
		})
		outcomes = append(outcomes, newIndexOutcome(target, result, err))
		if err != nil {
			errs = append(errs, err)
		}
	}

	if indexJSON {
		if err := writeJSON(cmd, outcomes); err != nil {
			return err
		}
	} else {
		printIndexOutcomes(cmd, outcomes)
	}

	if len(errs) > 0 {
		return fmt.Errorf("indexing failed: %w", errors.Join(errs...))
	}
	return nil
}

// readIndexInput returns the --text value or all of standard input.
func readIndexInput(cmd *cobra.Command) (content, target string, err error) {
	if indexText != "" {
		return indexText, "text", nil
	}

	in := cmd.InOrStdin()
	if isTerminal(in) {
		return "", "", errors.New("nothing to index: pass files, --text, or pipe content on stdin")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", "", fmt.Errorf("reading stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", "", errors.New("nothing to index: stdin was empty")
	}
	return string(data), "stdin", nil
}

func newIndexOutcome(target string, result *domain.IndexResult, err error) indexOutcome {
	out := indexOutcome{Target: target, DocumentIDs: []string{}}
	if result != nil {
		out.DocumentIDs = result.DocumentIDs
		out.ChunksCreated = result.ChunksCreated
		out.TokensIndexed = result.TokensIndexed
		out.DurationMS = result.Duration.Milliseconds()
		for _, chunkErr := range result.Errors {
			out.Errors = append(out.Errors, chunkErr.Error())
		}
	}
	if err != nil && len(out.Errors) == 0 {
		out.Errors = append(out.Errors, err.Error())
	}
	return out
}

func printIndexOutcomes(cmd *cobra.Command, outcomes []indexOutcome) {
	st := newStyles(cmd.OutOrStdout())
	for i := range outcomes {
		o := &outcomes[i]
		status := st.Success("Indexed")
		if len(o.Errors) > 0 {
			status = st.Warning("Partially indexed")
			if o.ChunksCreated == 0 {
				status = st.Failure("Failed")
			}
		}
		cmd.Printf("%s %s: %d chunks, %d tokens (%s)\n",
			status, o.Target, o.ChunksCreated, o.TokensIndexed,
			(time.Duration(o.DurationMS) * time.Millisecond).String())
		for _, e := range o.Errors {
			cmd.Printf("  %s\n", st.Muted(e))
		}
	}
}

// parseSourceFlag parses a --source value, falling back to def when empty.
func parseSourceFlag(value string, def domain.SourceKind) (domain.SourceKind, error) {
	if value == "" {
		return def, nil
	}
	return domain.ParseSourceKind(value)
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

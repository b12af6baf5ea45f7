package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	deleteSources       []string
	deleteConversation  string
	deleteSession       string
	deleteMessage       string
	deleteFile          string
	deleteWorkflow      string
	deleteTask          string
	deleteDocument      string
	deleteTeam          string
	deleteProtectedOnly bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id...]",
	Short: "Remove documents from the index",
	Long: `Removes documents by ID, or every document matching the filter flags.

At least one ID or filter flag is required; an empty filter never deletes
the whole index.

Examples:
  sercha-rag delete 3f2a9c1e-...
  sercha-rag delete --conversation conv-42
  sercha-rag delete --source chat_message --team eng`,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().StringSliceVarP(&deleteSources, "source", "s", nil, "match source kinds (repeatable)")
	deleteCmd.Flags().StringVar(&deleteConversation, "conversation", "", "match conversation ID")
	deleteCmd.Flags().StringVar(&deleteSession, "session", "", "match session ID")
	deleteCmd.Flags().StringVar(&deleteMessage, "message", "", "match message ID")
	deleteCmd.Flags().StringVar(&deleteFile, "file", "", "match file ID (absolute path for indexed files)")
	deleteCmd.Flags().StringVar(&deleteWorkflow, "workflow", "", "match workflow ID")
	deleteCmd.Flags().StringVar(&deleteTask, "task", "", "match task ID")
	deleteCmd.Flags().StringVar(&deleteDocument, "document", "", "match document ID from metadata")
	deleteCmd.Flags().StringVar(&deleteTeam, "team", "", "match team ID")
	deleteCmd.Flags().BoolVar(&deleteProtectedOnly, "protected-only", false, "match only protected content")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	filter, err := buildDeleteFilter()
	if err != nil {
		return err
	}

	if len(args) > 0 {
		if !filter.IsZero() {
			return errors.New("pass either document IDs or filter flags, not both")
		}
		return deleteByID(cmd, args)
	}

	if filter.IsZero() {
		return errors.New("specify document IDs or at least one filter flag")
	}

	n, err := indexService.DeleteWhere(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	cmd.Printf("Deleted %d documents.\n", n)
	return nil
}

func deleteByID(cmd *cobra.Command, ids []string) error {
	var errs []error
	deleted := 0
	for _, id := range ids {
		if err := indexService.Delete(cmd.Context(), id); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		deleted++
	}

	cmd.Printf("Deleted %d documents.\n", deleted)
	if len(errs) > 0 {
		return fmt.Errorf("delete failed: %w", errors.Join(errs...))
	}
	return nil
}

// buildDeleteFilter maps the delete flags onto a filter.
func buildDeleteFilter() (domain.Filter, error) {
	sources, err := domain.ParseSourceKinds(deleteSources)
	if err != nil {
		return domain.Filter{}, err
	}

	filter := domain.Filter{
		Sources:        sources,
		ConversationID: deleteConversation,
		SessionID:      deleteSession,
		MessageID:      deleteMessage,
		FileID:         deleteFile,
		WorkflowID:     deleteWorkflow,
		TaskID:         deleteTask,
		DocumentID:     deleteDocument,
		TeamID:         deleteTeam,
	}
	if deleteProtectedOnly {
		filter.Protected = domain.ProtectedOnly
	}
	return filter, nil
}

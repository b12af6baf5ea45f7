package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var (
	providerModel      string
	providerBaseURL    string
	providerNoValidate bool
)

// validateEmbedding checks that the configured provider is reachable.
var validateEmbedding = ai.ValidateEmbeddingConfig

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure retrieval, embedding and storage settings.

Settings are stored in config.toml in the data directory. Run without a
subcommand to show the current values.`,
	Annotations: map[string]string{annotationSettingsOnly: ""},
	RunE:        runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsPresetCmd = &cobra.Command{
	Use:   "preset [name]",
	Short: "Switch to a retrieval preset",
	Long: `Switch to a built-in retrieval preset, discarding per-key overrides.

Available presets:
  default      - Balanced threshold and recency
  aggressive   - Lower threshold, more results, stronger recency
  conservative - Higher threshold, fewer results, weaker recency`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsPreset,
}

var settingsProviderCmd = &cobra.Command{
	Use:   "provider [hashing|ollama]",
	Short: "Configure the embedding provider",
	Long: `Configure the embedding provider used for indexing and search.

The hashing provider works offline with no model. The ollama provider calls a
local Ollama server; the server is checked unless --no-validate is set.

Changing provider changes the embedding dimensions: documents indexed with the
previous provider no longer match and should be re-indexed.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsProvider,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by key. Run 'sercha-rag settings keys' to list keys.

Examples:
  sercha-rag settings set rag.min_similarity 0.45
  sercha-rag settings set rag.enabled_sources chat_message,file
  sercha-rag settings set rag.recency_window 72h`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	RunE:  runSettingsKeys,
}

func init() {
	settingsProviderCmd.Flags().StringVar(&providerModel, "model", "", "embedding model (ollama only)")
	settingsProviderCmd.Flags().StringVar(&providerBaseURL, "base-url", "", "server URL (ollama only)")
	settingsProviderCmd.Flags().BoolVar(&providerNoValidate, "no-validate", false, "skip the reachability check")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsPresetCmd)
	settingsCmd.AddCommand(settingsProviderCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	st := newStyles(cmd.OutOrStdout())
	cmd.Println(st.Title("Current Settings"))
	cmd.Println()

	// Retrieval settings
	rag := &settings.RAG
	cmd.Println(st.Subtitle("[Retrieval]"))
	cmd.Printf("  Preset: %s\n", settings.Preset.Description())
	cmd.Printf("  Chunk size: %d (overlap %d)\n", rag.MaxChunkSize, rag.ChunkOverlap)
	cmd.Printf("  Min similarity: %.2f\n", rag.MinSimilarity)
	cmd.Printf("  Max results: %d\n", rag.MaxResults)
	cmd.Printf("  Recency boost: %.2f over %s\n", rag.RecencyBoost, rag.RecencyWindow)
	cmd.Printf("  Enabled sources: %s\n", formatSources(rag.EnabledSources))
	cmd.Printf("  Embedding timeout: %s (concurrency %d)\n", rag.EmbeddingTimeout, rag.EmbedConcurrency)
	cmd.Println()

	// Embedding settings
	emb := &settings.Embedding
	cmd.Println(st.Subtitle("[Embedding]"))
	cmd.Printf("  Provider: %s\n", emb.Provider.Description())
	if emb.Provider == domain.EmbeddingProviderOllama {
		cmd.Printf("  Model: %s\n", valueOrDefault(emb.Model))
		cmd.Printf("  Base URL: %s\n", valueOrDefault(emb.BaseURL))
	}
	cmd.Printf("  Dimensions: %s\n", intOrDefault(emb.Dimensions))
	cmd.Printf("  Cache size: %s\n", intOrDisabled(emb.CacheSize))
	if emb.RateLimit > 0 {
		cmd.Printf("  Rate limit: %.1f/s\n", emb.RateLimit)
	} else {
		cmd.Println("  Rate limit: disabled")
	}
	cmd.Println()

	// Storage settings
	cmd.Println(st.Subtitle("[Storage]"))
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	cmd.Printf("  Data dir: %s\n", valueOrDefault(settings.Storage.DataDir))

	return nil
}

func runSettingsPreset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	preset := domain.Preset(strings.ToLower(args[0]))
	if err := settingsService.SetPreset(preset); err != nil {
		return fmt.Errorf("failed to set preset: %w", err)
	}

	cmd.Printf("Preset set to: %s\n", preset.Description())
	return nil
}

func runSettingsProvider(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	provider := domain.EmbeddingProvider(strings.ToLower(args[0]))
	if err := settingsService.SetEmbeddingProvider(provider, providerModel, providerBaseURL); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if !providerNoValidate {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		// Validate the configuration by pinging the service
		cmd.Print("Validating configuration... ")
		if err := validateEmbedding(&settings.Embedding); err != nil {
			cmd.Println("FAILED")
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("Embedding provider configured: %s\n", provider.Description())
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.SetValue(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}

	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

// Helper functions.

func formatSources(kinds []domain.SourceKind) string {
	if len(kinds) == 0 {
		return "all"
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}

func valueOrDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

func intOrDefault(n int) string {
	if n <= 0 {
		return "(provider default)"
	}
	return fmt.Sprint(n)
}

func intOrDisabled(n int) string {
	if n <= 0 {
		return "disabled"
	}
	return fmt.Sprint(n)
}

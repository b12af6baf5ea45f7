// Package cli provides the sercha-rag command line interface.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Command annotations that control service bootstrapping.
const (
	annotationNoServices   = "sercha-rag/no-services"
	annotationSettingsOnly = "sercha-rag/settings-only"
)

var version = "dev"

// Driving ports used by the commands.
var (
	indexService    driving.IndexService
	searchService   driving.SearchService
	contextService  driving.ContextService
	settingsService driving.SettingsService
)

// Global flags.
var (
	verbose   bool
	ephemeral bool
	dataDir   string
)

var (
	bootstrap BootstrapFunc
	cleanup   func()
)

// Options are the global settings handed to the bootstrap function.
type Options struct {
	// Ephemeral keeps documents and settings in memory only.
	Ephemeral bool

	// DataDir overrides the directory holding the database and config.
	DataDir string

	// SettingsOnly asks for the settings service alone, so that broken
	// embedding or storage settings can still be repaired.
	SettingsOnly bool
}

// Services groups the driving ports a bootstrap function provides.
type Services struct {
	Index    driving.IndexService
	Search   driving.SearchService
	Context  driving.ContextService
	Settings driving.SettingsService
}

// BootstrapFunc builds the services for one invocation.
// The returned function releases whatever the services hold open.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, func(), error)

var rootCmd = &cobra.Command{
	Use:   "sercha-rag",
	Short: "Local retrieval-augmented context for assistants",
	Long: `sercha-rag indexes text on this machine, retrieves it by semantic
similarity weighted by source priority and recency, and assembles the best
matches into token-budgeted context for language models.

Nothing leaves the device: embeddings come from a local Ollama server or the
built-in hashing embedder, and documents live in a local SQLite database.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
}

func init() {
	// cobra's Print helpers default to stderr; results belong on stdout.
	rootCmd.SetOut(os.Stdout)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep documents and settings in memory only")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for the database and config (default ~/.sercha-rag)")
}

// SetServices injects the driving ports directly, bypassing bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	indexService = s.Index
	searchService = s.Search
	contextService = s.Context
	settingsService = s.Settings
}

// SetBootstrap registers the function that builds services on demand.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases bootstrapped resources.
func Execute(ctx context.Context) error {
	defer func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// runBootstrap configures logging and builds services for commands that need them.
func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || hasAnnotation(cmd, annotationNoServices) {
		return nil
	}

	opts := Options{
		Ephemeral:    ephemeral,
		DataDir:      dataDir,
		SettingsOnly: hasAnnotation(cmd, annotationSettingsOnly),
	}
	if settingsService != nil && (opts.SettingsOnly || indexService != nil) {
		return nil
	}

	services, release, err := bootstrap(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if services == nil {
		return errors.New("bootstrap returned no services")
	}

	SetServices(services)
	cleanup = release
	return nil
}

// hasAnnotation reports whether cmd or any of its parents carries key.
func hasAnnotation(cmd *cobra.Command, key string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[key]; ok {
			return true
		}
	}
	return false
}

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

// bootstrap wires the store, embedder and services for one invocation.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, func(), error) {
	configStore, err := openConfigStore(opts)
	if err != nil {
		return nil, nil, err
	}
	settingsService := services.NewSettingsService(configStore)

	if opts.SettingsOnly {
		return &cli.Services{Settings: settingsService}, func() {}, nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("loading settings: %w (run 'sercha-rag settings' to fix)", err)
	}

	store, err := openDocumentStore(opts, settings)
	if err != nil {
		return nil, nil, err
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	logger.Debug("Embedding: %s (%d dimensions)", embedder.ModelName(), embedder.Dimensions())

	cfg := settings.RAG
	indexService := services.NewIndexService(store, embedder, chunker.FromConfig(cfg), cfg)
	if err := indexService.RefreshStats(ctx); err != nil {
		embedder.Close()
		store.Close()
		return nil, nil, fmt.Errorf("loading index statistics: %w", err)
	}

	release := func() {
		if err := embedder.Close(); err != nil {
			logger.Warn("Failed to close embedder: %v", err)
		}
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close document store: %v", err)
		}
	}

	return &cli.Services{
		Index:    indexService,
		Search:   services.NewSearchService(store, embedder, cfg),
		Context:  services.NewContextService(),
		Settings: settingsService,
	}, release, nil
}

// openConfigStore returns the TOML store, or a memory store when ephemeral.
func openConfigStore(opts cli.Options) (driven.ConfigStore, error) {
	if opts.Ephemeral {
		return memory.NewConfigStore(), nil
	}
	store, err := file.NewConfigStore(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	return store, nil
}

// openDocumentStore opens the configured backend.
// An explicit --data-dir wins over the storage.data_dir setting.
func openDocumentStore(opts cli.Options, settings *domain.AppSettings) (driven.DocumentStore, error) {
	if opts.Ephemeral || settings.Storage.Backend == domain.StorageMemory {
		logger.Debug("Storage: memory")
		return memory.NewDocumentStore(), nil
	}

	dataDir := settings.Storage.DataDir
	if opts.DataDir != "" {
		dataDir = filepath.Join(opts.DataDir, "data")
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening document store: %w", err)
	}
	logger.Debug("Storage: %s", store.Path())
	return store.DocumentStore(), nil
}

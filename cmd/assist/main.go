// Command assist is the retrieval-augmented assistant CLI.
// main wires the driven adapters into the core services and hands the
// result to the cli package. It contains no business logic.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jkkn-ai/assist/internal/adapters/driven/ai"
	memorycache "github.com/jkkn-ai/assist/internal/adapters/driven/cache/memory"
	rediscache "github.com/jkkn-ai/assist/internal/adapters/driven/cache/redis"
	configfile "github.com/jkkn-ai/assist/internal/adapters/driven/config/file"
	"github.com/jkkn-ai/assist/internal/adapters/driven/index/lexical"
	"github.com/jkkn-ai/assist/internal/adapters/driven/index/vector"
	snapshotfile "github.com/jkkn-ai/assist/internal/adapters/driven/snapshot/file"
	"github.com/jkkn-ai/assist/internal/adapters/driven/storage/sqlite"
	"github.com/jkkn-ai/assist/internal/adapters/driving/cli"
	"github.com/jkkn-ai/assist/internal/connectors"
	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driven"
	"github.com/jkkn-ai/assist/internal/core/services"
	"github.com/jkkn-ai/assist/internal/normalisers"
	"github.com/jkkn-ai/assist/internal/postprocessors"
)

// buildVersion is set at build time via -ldflags "-X main.buildVersion=...".
var buildVersion string

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "assist: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	dataDir, err := resolveDataDir()
	if err != nil {
		return fmt.Errorf("resolve data directory: %w", err)
	}

	configStore, err := configfile.NewConfigStore(dataDir)
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}

	promptStore, err := configfile.NewPromptStore(filepath.Join(dataDir, "prompts"))
	if err != nil {
		return fmt.Errorf("open prompt store: %w", err)
	}
	ai.Prompts = promptStore

	settingsService := services.NewSettingsService(
		configStore,
		func(s domain.EmbeddingSettings) (driven.EmbeddingService, error) {
			return ai.CreateAndValidateEmbeddingService(&s)
		},
		func(s domain.ComposerSettings) (driven.AnswerComposer, error) {
			return ai.CreateAndValidateComposer(&s)
		},
	)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	searchIndex := lexical.NewEngine()
	vectorIndex := vector.NewIndex()

	// AI adapters are optional at startup: commands that need them report
	// the configuration gap themselves, so a bad provider must not stop
	// keyword-only retrieval from working.
	var embedder driven.EmbeddingService
	if settings.Embedding.IsConfigured() {
		embedder, err = ai.CreateEmbeddingService(settings.Embedding)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: embedding provider unavailable: %v\n", err)
		}
	}

	var composer driven.AnswerComposer
	if settings.Composer.IsConfigured() {
		composer, err = ai.CreateComposer(settings.Composer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: composer provider unavailable: %v\n", err)
		}
	}

	answerCache := buildAnswerCache(settings.Cache)

	registry := normalisers.NewDefaultRegistry()

	processorRegistry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(processorRegistry)
	chunkProcessor, err := processorRegistry.Build("chunker", map[string]any{
		"chunk_size": settings.Chunking.Size,
	})
	if err != nil {
		return fmt.Errorf("build chunker: %w", err)
	}
	pipeline := postprocessors.NewPipeline(chunkProcessor)
	connectorFactory := connectors.NewFactory()

	expander := services.NewQueryExpander(settings.Expansion)
	searchService := services.NewSearchService(
		store.DocumentStore(), searchIndex, vectorIndex, embedder, expander,
	)
	searchService.SetDenseWeight(settings.Retrieval.DenseWeight)

	assistService := services.NewAssistService(
		searchService,
		services.NewReranker(),
		answerCache,
		composer,
		settings.Retrieval,
		settings.Cache.TTL,
		settings.Composer.Timeout,
	)

	sourceService := services.NewSourceService(
		store.SourceStore(), store.SyncStateStore(), store.DocumentStore(),
	)
	documentService := services.NewDocumentService(store.DocumentStore())

	syncOrchestrator := services.NewSyncOrchestrator(
		store.SourceStore(),
		store.SyncStateStore(),
		store.DocumentStore(),
		connectorFactory,
		registry,
		pipeline,
		searchIndex,
		vectorIndex,
		embedder,
	)

	var snapshots *services.SnapshotManager
	if settings.Snapshot.Dir != "" {
		snapStore, snapErr := snapshotfile.NewStore(settings.Snapshot.Dir)
		if snapErr != nil {
			fmt.Fprintf(os.Stderr, "warning: snapshots disabled: %v\n", snapErr)
		} else {
			snapshots = services.NewSnapshotManager(
				snapStore,
				store.DocumentStore(),
				searchIndex,
				vectorIndex,
				embedder,
				settings.Snapshot.TTL,
			)
			// A stale or missing snapshot just means the indexes rebuild
			// on the next sync.
			if _, restoreErr := snapshots.Restore(context.Background()); restoreErr != nil {
				fmt.Fprintf(os.Stderr, "warning: snapshot restore failed: %v\n", restoreErr)
			}
		}
	}

	// The indexes live in memory. When no snapshot restored them, rebuild
	// from the document store so previously synced documents stay
	// searchable across restarts.
	if searchIndex.Generation() == 0 {
		if rebuildErr := syncOrchestrator.RebuildIndexes(context.Background()); rebuildErr != nil {
			fmt.Fprintf(os.Stderr, "warning: index rebuild failed: %v\n", rebuildErr)
		}
	}

	schedulerConfig := settingsService.GetSchedulerConfig()
	if settings.SyncInterval > 0 {
		tc := schedulerConfig.TaskConfigs[domain.TaskIDDocumentSync]
		tc.Interval = settings.SyncInterval
		schedulerConfig.TaskConfigs[domain.TaskIDDocumentSync] = tc
	}
	scheduler := services.NewScheduler(
		schedulerConfig, store.SchedulerStore(), syncOrchestrator, snapshots,
	)

	cli.SetServices(cli.Services{
		Search:    searchService,
		Assist:    assistService,
		Source:    sourceService,
		Document:  documentService,
		Sync:      syncOrchestrator,
		Settings:  settingsService,
		Scheduler: scheduler,
		Connector: connectorFactory,
	})
	cli.SetVersion(buildVersion)

	return cli.Execute()
}

// resolveDataDir returns the directory holding config, prompts and the
// database. ASSIST_DATA_DIR overrides the default of ~/.assist.
func resolveDataDir() (string, error) {
	if dir := os.Getenv("ASSIST_DATA_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".assist"), nil
}

// buildAnswerCache selects the cache backend. Redis is used when an
// address is configured and reachable; otherwise the in-memory cache
// keeps ask working without an external dependency.
func buildAnswerCache(cfg domain.CacheSettings) driven.AnswerCache {
	if cfg.RedisAddr != "" {
		cache, err := rediscache.NewCache(context.Background(), cfg.RedisAddr)
		if err == nil {
			return cache
		}
		fmt.Fprintf(os.Stderr, "warning: redis cache unavailable, using in-memory cache: %v\n", err)
	}
	return memorycache.NewCache()
}

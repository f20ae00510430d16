package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driven"
	"github.com/jkkn-ai/assist/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyComposerProvider   = "composer.provider"
	keyComposerModel      = "composer.model"
	keyComposerBaseURL    = "composer.base_url"
	keyComposerAPIKey     = "composer.api_key"
	keyComposerMaxTokens  = "composer.max_tokens"
	keyComposerTimeout    = "composer.timeout"
	keyRetrievalTopK      = "retrieval.top_k"
	keyRetrievalContext   = "retrieval.context_size"
	keyRetrievalWeight    = "retrieval.dense_weight"
	keyRetrievalMaxChars  = "retrieval.max_context_chars"
	keyChunkingSize       = "chunking.size"
	keyCacheTTL           = "cache.ttl"
	keyCacheRedisAddr     = "cache.redis_addr"
	keySnapshotDir        = "snapshot.dir"
	keySnapshotTTL        = "snapshot.ttl"
	keyExpansionSynonyms  = "expansion.synonyms"
	keyExpansionDomain    = "expansion.domain_terms"
	keySyncInterval       = "sync.interval"
	validateCallTimeout   = 10 * time.Second
)

// EmbedderFactory builds an embedding service from settings.
// Used to ping the configured provider during validation.
type EmbedderFactory func(settings domain.EmbeddingSettings) (driven.EmbeddingService, error)

// ComposerFactory builds an answer composer from settings.
type ComposerFactory func(settings domain.ComposerSettings) (driven.AnswerComposer, error)

// SettingsService manages application settings.
type SettingsService struct {
	configStore     driven.ConfigStore
	embedderFactory EmbedderFactory
	composerFactory ComposerFactory
}

// NewSettingsService creates a new settings service.
// The factories are optional (can be nil): without them configuration
// validation skips the provider ping.
func NewSettingsService(
	configStore driven.ConfigStore,
	embedderFactory EmbedderFactory,
	composerFactory ComposerFactory,
) *SettingsService {
	return &SettingsService{
		configStore:     configStore,
		embedderFactory: embedderFactory,
		composerFactory: composerFactory,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		Composer: domain.ComposerSettings{
			Provider:  s.getProvider(keyComposerProvider, defaults.Composer.Provider),
			Model:     s.getString(keyComposerModel, defaults.Composer.Model),
			BaseURL:   s.configStore.GetString(keyComposerBaseURL),
			APIKey:    s.configStore.GetString(keyComposerAPIKey),
			MaxTokens: s.getInt(keyComposerMaxTokens, defaults.Composer.MaxTokens),
			Timeout:   s.getDuration(keyComposerTimeout, defaults.Composer.Timeout),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:            s.getInt(keyRetrievalTopK, defaults.Retrieval.TopK),
			ContextSize:     s.getInt(keyRetrievalContext, defaults.Retrieval.ContextSize),
			DenseWeight:     s.getFloat(keyRetrievalWeight, defaults.Retrieval.DenseWeight),
			MaxContextChars: s.getInt(keyRetrievalMaxChars, defaults.Retrieval.MaxContextChars),
		},
		Chunking: domain.ChunkingSettings{
			Size: s.getInt(keyChunkingSize, defaults.Chunking.Size),
		},
		Cache: domain.CacheSettings{
			TTL:       s.getDuration(keyCacheTTL, defaults.Cache.TTL),
			RedisAddr: s.configStore.GetString(keyCacheRedisAddr),
		},
		Snapshot: domain.SnapshotSettings{
			Dir: s.configStore.GetString(keySnapshotDir),
			TTL: s.getDuration(keySnapshotTTL, defaults.Snapshot.TTL),
		},
		Expansion: domain.ExpansionSettings{
			Synonyms:    parseSynonyms(s.configStore.GetStringSlice(keyExpansionSynonyms)),
			DomainTerms: s.configStore.GetStringSlice(keyExpansionDomain),
		},
		SyncInterval: s.getDuration(keySyncInterval, defaults.SyncInterval),
	}

	return settings, nil
}

// Save persists application settings.
//
//nolint:gocyclo // Sequential key writes
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save embedding settings
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	// Save composer settings
	if err := s.configStore.Set(keyComposerProvider, settings.Composer.Provider.String()); err != nil {
		return fmt.Errorf("save composer provider: %w", err)
	}
	if err := s.configStore.Set(keyComposerModel, settings.Composer.Model); err != nil {
		return fmt.Errorf("save composer model: %w", err)
	}
	if err := s.configStore.Set(keyComposerBaseURL, settings.Composer.BaseURL); err != nil {
		return fmt.Errorf("save composer base_url: %w", err)
	}
	if settings.Composer.APIKey != "" {
		if err := s.configStore.Set(keyComposerAPIKey, settings.Composer.APIKey); err != nil {
			return fmt.Errorf("save composer api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyComposerMaxTokens, settings.Composer.MaxTokens); err != nil {
		return fmt.Errorf("save composer max_tokens: %w", err)
	}
	if err := s.configStore.Set(keyComposerTimeout, settings.Composer.Timeout.String()); err != nil {
		return fmt.Errorf("save composer timeout: %w", err)
	}

	// Save retrieval settings
	if err := s.configStore.Set(keyRetrievalTopK, settings.Retrieval.TopK); err != nil {
		return fmt.Errorf("save retrieval top_k: %w", err)
	}
	if err := s.configStore.Set(keyRetrievalContext, settings.Retrieval.ContextSize); err != nil {
		return fmt.Errorf("save retrieval context_size: %w", err)
	}
	if err := s.configStore.Set(keyRetrievalWeight, settings.Retrieval.DenseWeight); err != nil {
		return fmt.Errorf("save retrieval dense_weight: %w", err)
	}
	if err := s.configStore.Set(keyRetrievalMaxChars, settings.Retrieval.MaxContextChars); err != nil {
		return fmt.Errorf("save retrieval max_context_chars: %w", err)
	}

	// Save chunking, cache and snapshot settings
	if err := s.configStore.Set(keyChunkingSize, settings.Chunking.Size); err != nil {
		return fmt.Errorf("save chunking size: %w", err)
	}
	if err := s.configStore.Set(keyCacheTTL, settings.Cache.TTL.String()); err != nil {
		return fmt.Errorf("save cache ttl: %w", err)
	}
	if err := s.configStore.Set(keyCacheRedisAddr, settings.Cache.RedisAddr); err != nil {
		return fmt.Errorf("save cache redis_addr: %w", err)
	}
	if err := s.configStore.Set(keySnapshotDir, settings.Snapshot.Dir); err != nil {
		return fmt.Errorf("save snapshot dir: %w", err)
	}
	if err := s.configStore.Set(keySnapshotTTL, settings.Snapshot.TTL.String()); err != nil {
		return fmt.Errorf("save snapshot ttl: %w", err)
	}
	if err := s.configStore.Set(keySyncInterval, settings.SyncInterval.String()); err != nil {
		return fmt.Errorf("save sync interval: %w", err)
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate provider supports embeddings
	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	// Local providers need a base URL; cloud providers use their own
	if provider == domain.AIProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetComposerProvider configures the answer composer provider.
func (s *SettingsService) SetComposerProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid composer provider: %s", provider)
	}

	valid := false
	for _, p := range domain.AllComposerProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support answer composition", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Composer.Provider = provider

	if model != "" {
		settings.Composer.Model = model
	} else if defaultModel, ok := domain.DefaultComposerModels()[provider]; ok {
		settings.Composer.Model = defaultModel
	}

	if provider == domain.AIProviderOllama {
		if settings.Composer.BaseURL == "" {
			settings.Composer.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Composer.BaseURL = ""
	}

	settings.Composer.APIKey = apiKey

	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the embedding configuration by
// pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.embedderFactory == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider not configured")
	}

	embedder, err := s.embedderFactory(settings.Embedding)
	if err != nil {
		return fmt.Errorf("create embedder: %w", err)
	}
	defer embedder.Close()

	ctx, cancel := context.WithTimeout(context.Background(), validateCallTimeout)
	defer cancel()
	return embedder.Ping(ctx)
}

// ValidateComposerConfig validates the composer configuration by
// pinging the provider.
func (s *SettingsService) ValidateComposerConfig() error {
	if s.composerFactory == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if !settings.Composer.IsConfigured() {
		return fmt.Errorf("composer provider not configured")
	}

	composer, err := s.composerFactory(settings.Composer)
	if err != nil {
		return fmt.Errorf("create composer: %w", err)
	}
	defer composer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), validateCallTimeout)
	defer cancel()
	return composer.Ping(ctx)
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	// Master switch
	if _, exists := s.configStore.Get("scheduler.enabled"); exists {
		defaults.Enabled = s.configStore.GetBool("scheduler.enabled")
	}

	// Per-task config
	// Map from task ID to config key (underscore version for TOML)
	taskKeys := map[string]string{
		domain.TaskIDDocumentSync: "document_sync",
		domain.TaskIDSnapshotSave: "snapshot_save",
	}

	for taskID, configKey := range taskKeys {
		prefix := "scheduler." + configKey + "."

		taskCfg := defaults.TaskConfigs[taskID]

		if _, exists := s.configStore.Get(prefix + "enabled"); exists {
			taskCfg.Enabled = s.configStore.GetBool(prefix + "enabled")
		}

		// Interval is a duration string like "45m" or "1h"
		if interval := s.configStore.GetString(prefix + "interval"); interval != "" {
			if d, err := time.ParseDuration(interval); err == nil {
				taskCfg.Interval = d
			}
		}

		defaults.TaskConfigs[taskID] = taskCfg
	}

	return defaults
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return defaultVal
	}
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

// parseSynonyms parses "term:alt1,alt2" entries into the expansion table.
func parseSynonyms(entries []string) map[string][]string {
	if len(entries) == 0 {
		return nil
	}
	synonyms := make(map[string][]string, len(entries))
	for _, entry := range entries {
		term, alts, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		term = strings.TrimSpace(strings.ToLower(term))
		if term == "" {
			continue
		}
		for _, alt := range strings.Split(alts, ",") {
			if alt = strings.TrimSpace(alt); alt != "" {
				synonyms[term] = append(synonyms[term], alt)
			}
		}
	}
	return synonyms
}

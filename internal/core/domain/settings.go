package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or answer
// composition.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
// The model identity is pinned for the lifetime of one index generation:
// changing the model invalidates the dense index and forces a rebuild.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// ComposerSettings holds answer composer provider configuration.
type ComposerSettings struct {
	// Provider is the composer service provider.
	Provider AIProvider

	// Model is the generation model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for Anthropic).
	APIKey string

	// MaxTokens bounds the generated answer length.
	MaxTokens int

	// Timeout bounds one composer call; past it the call is a failure.
	Timeout time.Duration
}

// IsConfigured returns true if the composer provider is set up.
func (c ComposerSettings) IsConfigured() bool {
	if !c.Provider.IsValid() {
		return false
	}
	if c.Provider.RequiresAPIKey() && c.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings holds hybrid retrieval configuration.
type RetrievalSettings struct {
	// TopK is the number of candidates returned by retrieval.
	TopK int

	// ContextSize is the number of reranked chunks composed into the
	// context window.
	ContextSize int

	// DenseWeight is the dense score weight in the hybrid blend (0-1).
	DenseWeight float64

	// MaxContextChars bounds the composed context window.
	MaxContextChars int
}

// ChunkingSettings holds document chunking configuration.
type ChunkingSettings struct {
	// Size is the chunk window width in characters.
	Size int
}

// CacheSettings holds query cache configuration.
type CacheSettings struct {
	// TTL is the lifetime of a cached answer.
	TTL time.Duration

	// RedisAddr enables the Redis cache backend when non-empty.
	// Empty selects the in-memory cache.
	RedisAddr string
}

// SnapshotSettings holds index snapshot configuration.
type SnapshotSettings struct {
	// Dir is the snapshot directory. Empty disables snapshots.
	Dir string

	// TTL is the maximum snapshot age accepted at startup.
	TTL time.Duration
}

// ExpansionSettings holds the query expansion table.
// Expansion is append-only: user terms are never removed.
type ExpansionSettings struct {
	// Synonyms maps a query term to related terms appended on expansion.
	Synonyms map[string][]string

	// DomainTerms are identity terms appended to every expanded query.
	DomainTerms []string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Composer holds answer composer settings.
	Composer ComposerSettings

	// Retrieval holds hybrid retrieval settings.
	Retrieval RetrievalSettings

	// Chunking holds document chunking settings.
	Chunking ChunkingSettings

	// Cache holds query cache settings.
	Cache CacheSettings

	// Snapshot holds index snapshot settings.
	Snapshot SnapshotSettings

	// Expansion holds the query expansion table.
	Expansion ExpansionSettings

	// SyncInterval is how often the ingestion sweep runs.
	SyncInterval time.Duration
}

// DefaultAppSettings returns settings with sensible defaults.
// AI features (Embedding, Composer) are left unconfigured: users must
// set them up via the settings command before dense retrieval and
// answer composition are available.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{},
		Composer: ComposerSettings{
			MaxTokens: 2048,
			Timeout:   60 * time.Second,
		},
		Retrieval: RetrievalSettings{
			TopK:            10,
			ContextSize:     3,
			DenseWeight:     0.7,
			MaxContextChars: 6000,
		},
		Chunking: ChunkingSettings{
			Size: 1000,
		},
		Cache: CacheSettings{
			TTL: time.Hour,
		},
		Snapshot: SnapshotSettings{
			TTL: 24 * time.Hour,
		},
		SyncInterval: time.Hour,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllComposerProviders returns providers that support answer composition.
func AllComposerProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultComposerModels returns default models for each composer provider.
func DefaultComposerModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

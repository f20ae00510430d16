package driving

import "github.com/jkkn-ai/assist/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetComposerProvider configures the answer composer provider.
	SetComposerProvider(provider domain.AIProvider, model, apiKey string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the embedding configuration by
	// pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateComposerConfig validates the composer configuration by
	// pinging the provider.
	ValidateComposerConfig() error
}

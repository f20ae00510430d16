package gdrive

import (
	"strconv"
	"strings"

	"github.com/jkkn-ai/assist/internal/core/domain"
)

// Config holds Google Drive connector configuration.
type Config struct {
	// FolderID is the Drive folder containing the documents.
	FolderID string

	// CredentialsPath points to a service account JSON key on disk.
	CredentialsPath string

	// MimeTypeFilter limits syncing to specific MIME types (optional).
	MimeTypeFilter []string

	// MaxResults is the page size for API requests.
	MaxResults int64
}

// DefaultMaxResults is the default listing page size.
const DefaultMaxResults = 100

// ParseConfig extracts configuration from a Source.
func ParseConfig(source domain.Source) (*Config, error) {
	cfg := &Config{
		FolderID:        strings.TrimSpace(source.Config["folder_id"]),
		CredentialsPath: strings.TrimSpace(source.Config["credentials_path"]),
		MaxResults:      DefaultMaxResults,
	}

	if cfg.FolderID == "" {
		return nil, domain.ErrInvalidInput
	}
	if cfg.CredentialsPath == "" {
		return nil, domain.ErrInvalidInput
	}

	if val := source.Config["mime_types"]; val != "" {
		cfg.MimeTypeFilter = strings.Split(val, ",")
		for i := range cfg.MimeTypeFilter {
			cfg.MimeTypeFilter[i] = strings.TrimSpace(cfg.MimeTypeFilter[i])
		}
	}

	if val := source.Config["max_results"]; val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil && n > 0 {
			cfg.MaxResults = n
		}
	}

	return cfg, nil
}

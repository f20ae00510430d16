package domain

import "time"

// Source represents a configured document source.
// Each source produces raw documents via a connector.
type Source struct {
	// ID is the unique identifier for the source.
	ID string

	// Type identifies the connector type (e.g. "filesystem", "gdrive").
	Type string

	// Name is the human-readable name for this source.
	Name string

	// Config contains connector-specific configuration
	// (folder ID, directory path, credentials file path).
	Config map[string]string

	// CreatedAt is when the source was created.
	CreatedAt time.Time

	// UpdatedAt is when the source was last updated.
	UpdatedAt time.Time
}

// SyncState tracks ingestion progress for a source.
type SyncState struct {
	// SourceID links to the Source being swept.
	SourceID string

	// LastSync is when the last successful sweep completed.
	LastSync time.Time
}

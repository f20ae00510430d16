package driving

import "context"

// SyncOrchestrator coordinates the document ingestion sweep.
// One sweep runs at a time: overlapping triggers are coalesced and
// rejected with domain.ErrSweepInProgress rather than queued.
type SyncOrchestrator interface {
	// Sync triggers an ingestion sweep for a source.
	Sync(ctx context.Context, sourceID string) error

	// SyncAll triggers an ingestion sweep for all configured sources.
	SyncAll(ctx context.Context) error

	// Status returns sweep status for a source.
	Status(ctx context.Context, sourceID string) (*SyncStatus, error)
}

// SyncStatus represents the current state of an ingestion sweep.
type SyncStatus struct {
	// SourceID identifies the source.
	SourceID string

	// Running indicates if a sweep is currently in progress.
	Running bool

	// DocumentsProcessed is the count of documents processed.
	DocumentsProcessed int

	// DocumentsSkipped is the count of documents skipped as fresh.
	DocumentsSkipped int

	// ErrorCount is the number of per-document failures.
	ErrorCount int
}

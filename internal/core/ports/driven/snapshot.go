package driven

import (
	"context"
	"time"

	"github.com/jkkn-ai/assist/internal/core/domain"
)

// Snapshot is one consistent, restorable image of the retrieval state:
// documents, chunks and their embeddings, taken at a single generation.
type Snapshot struct {
	// Documents are all stored documents.
	Documents []domain.Document

	// Chunks are all stored chunks with embeddings populated.
	Chunks []domain.Chunk

	// EmbeddingModel pins the model that produced the embeddings.
	// Loading a snapshot built by a different model must fail.
	EmbeddingModel string

	// Dimensions is the embedding vector size.
	Dimensions int

	// CreatedAt is when the snapshot was taken.
	CreatedAt time.Time
}

// SnapshotStore persists index snapshots across process restarts so a
// cold start can skip re-ingesting and re-embedding the corpus.
// This is an optional service - when nil, every start is a cold start.
type SnapshotStore interface {
	// Save persists a snapshot, replacing any previous one.
	Save(ctx context.Context, snap *Snapshot) error

	// Load restores the most recent snapshot. Returns
	// domain.ErrNotFound when none exists, domain.ErrSnapshotExpired
	// when it is older than the configured lifetime, and
	// domain.ErrSnapshotMismatch when the embedding model differs.
	Load(ctx context.Context, model string, maxAge time.Duration) (*Snapshot, error)
}

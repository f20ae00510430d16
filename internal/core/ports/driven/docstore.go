package driven

import (
	"context"

	"github.com/jkkn-ai/assist/internal/core/domain"
)

// DocumentStore persists documents and chunks.
// It owns the chunk lifecycle: saving a document's chunks replaces the
// previous set, and a chunk never outlives its document.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks replaces the chunk set for a document.
	SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document, ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// AllChunks retrieves every stored chunk. Used for full index rebuilds.
	AllChunks(ctx context.Context) ([]domain.Chunk, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all stored documents.
	// Pass an empty sourceID to list across sources.
	ListDocuments(ctx context.Context, sourceID string) ([]domain.Document, error)
}

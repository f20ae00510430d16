package driving

import (
	"context"
	"time"

	"github.com/jkkn-ai/assist/internal/core/domain"
)

// DocumentService exposes the indexed document set for display.
type DocumentService interface {
	// List returns all indexed documents, optionally filtered by source.
	List(ctx context.Context, sourceID string) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetDetails returns metadata for display.
	GetDetails(ctx context.Context, documentID string) (*DocumentDetails, error)
}

// DocumentDetails provides a standardised view of document metadata.
type DocumentDetails struct {
	// ID is the unique document identifier.
	ID string

	// SourceID links to the parent source.
	SourceID string

	// Name is the document name.
	Name string

	// ChunkCount is the number of chunks.
	ChunkCount int

	// ModifiedAt is the source-reported modification time.
	ModifiedAt time.Time

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested.
	UpdatedAt time.Time
}

package services

import (
	"context"

	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driven"
	"github.com/jkkn-ai/assist/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService exposes the indexed document set for display.
type DocumentService struct {
	docStore driven.DocumentStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(docStore driven.DocumentStore) *DocumentService {
	return &DocumentService{docStore: docStore}
}

// List returns all indexed documents, optionally filtered by source.
func (s *DocumentService) List(ctx context.Context, sourceID string) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx, sourceID)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// GetDetails returns metadata for display.
func (s *DocumentService) GetDetails(ctx context.Context, documentID string) (*driving.DocumentDetails, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	chunkCount := 0
	if chunks, err := s.docStore.GetChunks(ctx, documentID); err == nil {
		chunkCount = len(chunks)
	}

	return &driving.DocumentDetails{
		ID:         doc.ID,
		SourceID:   doc.SourceID,
		Name:       doc.Name,
		ChunkCount: chunkCount,
		ModifiedAt: doc.ModifiedAt,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}

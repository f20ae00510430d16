package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driven"
	"github.com/jkkn-ai/assist/internal/logger"
)

// SnapshotManager saves and restores the retrieval state across
// process restarts. A restored snapshot rebuilds both indexes without
// re-ingesting or re-embedding the corpus.
type SnapshotManager struct {
	store            driven.SnapshotStore
	docStore         driven.DocumentStore
	searchIndex      driven.SearchEngine
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService

	maxAge time.Duration
}

// NewSnapshotManager creates a new snapshot manager.
// store is optional (can be nil): without it Save and Restore are
// no-ops and every start is a cold start.
func NewSnapshotManager(
	store driven.SnapshotStore,
	docStore driven.DocumentStore,
	searchIndex driven.SearchEngine,
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
	maxAge time.Duration,
) *SnapshotManager {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &SnapshotManager{
		store:            store,
		docStore:         docStore,
		searchIndex:      searchIndex,
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
		maxAge:           maxAge,
	}
}

// Save captures the current documents, chunks and embeddings as one
// restorable snapshot.
func (m *SnapshotManager) Save(ctx context.Context) error {
	if m.store == nil {
		return nil
	}

	docs, err := m.docStore.ListDocuments(ctx, "")
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	chunks, err := m.docStore.AllChunks(ctx)
	if err != nil {
		return fmt.Errorf("list chunks: %w", err)
	}

	snap := &driven.Snapshot{
		Documents: docs,
		Chunks:    chunks,
		CreatedAt: time.Now(),
	}
	if m.embeddingService != nil {
		snap.EmbeddingModel = m.embeddingService.ModelName()
		snap.Dimensions = m.embeddingService.Dimensions()
	}

	if err := m.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	logger.Info("Snapshot saved: %d documents, %d chunks", len(docs), len(chunks))
	return nil
}

// Restore loads the most recent snapshot and rebuilds both indexes
// from it. Returns false when no usable snapshot exists (missing,
// expired or built by a different embedding model) - the caller should
// fall back to a fresh ingestion sweep.
func (m *SnapshotManager) Restore(ctx context.Context) (bool, error) {
	if m.store == nil {
		return false, nil
	}

	model := ""
	if m.embeddingService != nil {
		model = m.embeddingService.ModelName()
	}

	snap, err := m.store.Load(ctx, model, m.maxAge)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			logger.Debug("No snapshot to restore")
			return false, nil
		case errors.Is(err, domain.ErrSnapshotExpired):
			logger.Info("Snapshot expired, falling back to full sweep")
			return false, nil
		case errors.Is(err, domain.ErrSnapshotMismatch):
			logger.Warn("Snapshot built by a different embedding model, falling back to full sweep")
			return false, nil
		default:
			return false, fmt.Errorf("load snapshot: %w", err)
		}
	}

	for i := range snap.Documents {
		if err := m.docStore.SaveDocument(ctx, &snap.Documents[i]); err != nil {
			return false, fmt.Errorf("restore document: %w", err)
		}
	}

	byDoc := make(map[string][]domain.Chunk)
	for _, chunk := range snap.Chunks {
		byDoc[chunk.DocumentID] = append(byDoc[chunk.DocumentID], chunk)
	}
	for docID, chunks := range byDoc {
		if err := m.docStore.SaveChunks(ctx, docID, chunks); err != nil {
			return false, fmt.Errorf("restore chunks: %w", err)
		}
	}

	if err := m.searchIndex.Rebuild(ctx, snap.Chunks); err != nil {
		return false, fmt.Errorf("rebuild search index: %w", err)
	}

	if m.vectorIndex != nil {
		ids := make([]string, 0, len(snap.Chunks))
		vectors := make([][]float32, 0, len(snap.Chunks))
		for _, chunk := range snap.Chunks {
			if chunk.Embedding == nil {
				continue
			}
			ids = append(ids, chunk.ID)
			vectors = append(vectors, chunk.Embedding)
		}
		if err := m.vectorIndex.Rebuild(ctx, ids, vectors); err != nil {
			return false, fmt.Errorf("rebuild vector index: %w", err)
		}
	}

	logger.Info("Snapshot restored: %d documents, %d chunks (taken %s)",
		len(snap.Documents), len(snap.Chunks), snap.CreatedAt.Format(time.RFC3339))
	return true, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driven"
	"github.com/jkkn-ai/assist/internal/core/ports/driving"
	"github.com/jkkn-ai/assist/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// SyncOrchestrator coordinates the document ingestion sweep.
// One sweep runs at a time: triggers that arrive while a sweep is
// already running return domain.ErrSweepInProgress instead of queuing.
type SyncOrchestrator struct {
	sourceStore      driven.SourceStore
	syncStore        driven.SyncStateStore
	docStore         driven.DocumentStore
	factory          driven.ConnectorFactory
	registry         driven.NormaliserRegistry
	pipeline         driven.PostProcessorPipeline
	searchIndex      driven.SearchEngine
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService

	// Coalescing guard: non-zero while a sweep is running.
	sweeping atomic.Bool

	// Status tracking
	mu          sync.RWMutex
	activeSyncs map[string]*driving.SyncStatus
}

// NewSyncOrchestrator creates a new sync orchestrator.
// vectorIndex and embeddingService are optional - if nil, dense
// indexing is disabled and retrieval degrades to lexical only.
func NewSyncOrchestrator(
	sourceStore driven.SourceStore,
	syncStore driven.SyncStateStore,
	docStore driven.DocumentStore,
	factory driven.ConnectorFactory,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	searchIndex driven.SearchEngine,
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		sourceStore:      sourceStore,
		syncStore:        syncStore,
		docStore:         docStore,
		factory:          factory,
		registry:         registry,
		pipeline:         pipeline,
		searchIndex:      searchIndex,
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
		activeSyncs:      make(map[string]*driving.SyncStatus),
	}
}

// Sync triggers an ingestion sweep for a source.
func (o *SyncOrchestrator) Sync(ctx context.Context, sourceID string) error {
	if !o.sweeping.CompareAndSwap(false, true) {
		return domain.ErrSweepInProgress
	}
	defer o.sweeping.Store(false)

	return o.syncOne(ctx, sourceID)
}

// SyncAll triggers an ingestion sweep for all configured sources.
// Sources are swept sequentially under a single coalescing guard, so a
// SyncAll and a Sync can never interleave.
func (o *SyncOrchestrator) SyncAll(ctx context.Context) error {
	if !o.sweeping.CompareAndSwap(false, true) {
		return domain.ErrSweepInProgress
	}
	defer o.sweeping.Store(false)

	sources, err := o.sourceStore.List(ctx)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	var errs []error
	for _, source := range sources {
		if err := o.syncOne(ctx, source.ID); err != nil {
			errs = append(errs, fmt.Errorf("sync %s: %w", source.ID, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// RebuildIndexes replaces both index generations wholesale with the
// stored chunk set. The indexes live in memory, so a cold start with no
// restored snapshot must rebuild them here or previously ingested
// documents stay recorded as fresh but are unreachable from retrieval.
func (o *SyncOrchestrator) RebuildIndexes(ctx context.Context) error {
	if !o.sweeping.CompareAndSwap(false, true) {
		return domain.ErrSweepInProgress
	}
	defer o.sweeping.Store(false)

	return o.rebuildFromStore(ctx)
}

// rebuildFromStore rebuilds both indexes from stored chunks. Caller
// must hold the coalescing guard.
func (o *SyncOrchestrator) rebuildFromStore(ctx context.Context) error {
	chunks, err := o.docStore.AllChunks(ctx)
	if err != nil {
		return fmt.Errorf("load chunks: %w", err)
	}

	if err := o.searchIndex.Rebuild(ctx, chunks); err != nil {
		return fmt.Errorf("rebuild search index: %w", err)
	}

	if o.vectorIndex != nil {
		ids := make([]string, 0, len(chunks))
		vectors := make([][]float32, 0, len(chunks))
		for _, c := range chunks {
			if len(c.Embedding) == 0 {
				continue
			}
			ids = append(ids, c.ID)
			vectors = append(vectors, c.Embedding)
		}
		if err := o.vectorIndex.Rebuild(ctx, ids, vectors); err != nil {
			return fmt.Errorf("rebuild vector index: %w", err)
		}
	}

	logger.Info("Indexes rebuilt from store: %d chunks", len(chunks))
	return nil
}

// generationsDiverged reports whether the paired index generations no
// longer match. Only meaningful when dense indexing is enabled.
func (o *SyncOrchestrator) generationsDiverged() bool {
	if o.vectorIndex == nil {
		return false
	}
	return o.searchIndex.Generation() != o.vectorIndex.Generation()
}

// syncOne runs the sweep for a single source. Caller must hold the
// coalescing guard.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *SyncOrchestrator) syncOne(ctx context.Context, sourceID string) error {
	// 1. Get source configuration
	source, err := o.sourceStore.Get(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("get source: %w", err)
	}

	// 2. Create connector from source
	if o.factory == nil {
		return fmt.Errorf("create connector: connector factory not configured")
	}
	connector, err := o.factory.Create(ctx, *source)
	if err != nil {
		return fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	// 3. Validate connector (check credentials, configuration, connectivity)
	if connector.Capabilities().SupportsValidation {
		if err := connector.Validate(ctx); err != nil {
			return fmt.Errorf("validate connector: %w", err)
		}
	}

	// 4. Initialise status tracking
	status := &driving.SyncStatus{
		SourceID: sourceID,
		Running:  true,
	}
	o.setStatus(sourceID, status)
	defer o.clearStatus(sourceID)

	logger.Info("Starting sync for source %s", sourceID)

	// 5. Process the full document stream
	docsCh, errsCh := connector.FullSync(ctx)
	seen, err := o.processDocuments(ctx, docsCh, errsCh, status)
	if err != nil {
		return err
	}

	// 6. Remove documents that no longer exist at the source
	if err := o.reapStale(ctx, sourceID, seen, status); err != nil {
		return err
	}

	// 7. A half-written document leaves the generations diverged and
	// retrieval refusing to serve them; rebuild both wholesale from the
	// store, never serve from a diverged pair.
	if o.generationsDiverged() {
		logger.Warn("Index generations diverged, rebuilding from store")
		if err := o.rebuildFromStore(ctx); err != nil {
			return fmt.Errorf("rebuild diverged indexes: %w", err)
		}
	}

	// 8. Record the completed sweep
	if err := o.syncStore.Save(ctx, domain.SyncState{
		SourceID: sourceID,
		LastSync: time.Now(),
	}); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}

	logger.Info("Sync complete: %d processed, %d fresh, %d errors",
		status.DocumentsProcessed, status.DocumentsSkipped, status.ErrorCount)
	status.Running = false
	return nil
}

// Status returns sweep status for a source.
func (o *SyncOrchestrator) Status(_ context.Context, sourceID string) (*driving.SyncStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if status, ok := o.activeSyncs[sourceID]; ok {
		// Return a copy to avoid race conditions
		return &driving.SyncStatus{
			SourceID:           status.SourceID,
			Running:            status.Running,
			DocumentsProcessed: status.DocumentsProcessed,
			DocumentsSkipped:   status.DocumentsSkipped,
			ErrorCount:         status.ErrorCount,
		}, nil
	}

	// Not running - return idle status
	return &driving.SyncStatus{
		SourceID: sourceID,
		Running:  false,
	}, nil
}

// processDocuments drains the connector's document stream. Per-document
// failures increment ErrorCount and never abort the sweep. Returns the
// set of document IDs observed at the source.
func (o *SyncOrchestrator) processDocuments(
	ctx context.Context,
	docsCh <-chan domain.RawDocument,
	errsCh <-chan error,
	status *driving.SyncStatus,
) (map[string]bool, error) {
	seen := make(map[string]bool)

	for docsCh != nil || errsCh != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			status.ErrorCount++
			logger.Warn("Connector error: %v", err)

		case rawDoc, ok := <-docsCh:
			if !ok {
				docsCh = nil
				continue
			}

			docID := DocumentID(rawDoc.SourceID, rawDoc.ID)
			seen[docID] = true

			fresh, err := o.isFresh(ctx, docID, rawDoc.ModifiedAt)
			if err != nil {
				status.ErrorCount++
				logger.Warn("Freshness check failed for %s: %v", rawDoc.Name, err)
				continue
			}
			if fresh {
				logger.Debug("Skipping %s: unchanged", rawDoc.Name)
				status.DocumentsSkipped++
				continue
			}

			logger.Debug("Processing: %s", rawDoc.Name)
			if err := o.processOneDocument(ctx, docID, &rawDoc); err != nil {
				status.ErrorCount++
				if errors.Is(err, domain.ErrUnsupportedFormat) || errors.Is(err, domain.ErrCorruptFile) {
					logger.Debug("Skipping %s: %v", rawDoc.Name, err)
				} else {
					logger.Warn("Failed to process %s: %v", rawDoc.Name, err)
				}
				continue
			}
			status.DocumentsProcessed++
		}
	}
	return seen, nil
}

// isFresh reports whether the stored document already reflects the
// source's modification time. Re-running a sweep with no upstream
// changes is a no-op.
func (o *SyncOrchestrator) isFresh(ctx context.Context, docID string, modifiedAt time.Time) (bool, error) {
	existing, err := o.docStore.GetDocument(ctx, docID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return !modifiedAt.After(existing.ModifiedAt), nil
}

// processOneDocument runs the per-document ingestion pipeline:
// normalise, chunk, embed, persist, index.
func (o *SyncOrchestrator) processOneDocument(
	ctx context.Context,
	docID string,
	raw *domain.RawDocument,
) error {
	// 1. NORMALISE (produces Document with Content)
	result, err := o.registry.Normalise(ctx, raw)
	if err != nil {
		return fmt.Errorf("normalise: %w", err)
	}

	doc := result.Document
	doc.ID = docID
	doc.SourceID = raw.SourceID
	doc.ModifiedAt = raw.ModifiedAt

	// 2. RUN POST-PROCESSOR PIPELINE (produces Chunks)
	chunks, err := o.pipeline.Process(ctx, &doc)
	if err != nil {
		return fmt.Errorf("post-process: %w", err)
	}
	for i := range chunks {
		chunks[i].DocumentID = doc.ID
	}

	// 3. GENERATE EMBEDDINGS (if service available)
	if o.embeddingService != nil && o.vectorIndex != nil && len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}
		embeddings, err := o.embeddingService.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		if len(embeddings) != len(chunks) {
			return fmt.Errorf("embed chunks: got %d embeddings for %d chunks", len(embeddings), len(chunks))
		}
		for i := range chunks {
			chunks[i].Embedding = embeddings[i]
		}
	}

	// 4. DROP PREVIOUS INDEX ENTRIES (on re-ingestion)
	if err := o.unindexDocument(ctx, doc.ID); err != nil {
		return err
	}

	// 5. INDEX FOR LEXICAL SEARCH
	if err := o.searchIndex.Add(ctx, chunks); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}

	// 6. INDEX FOR DENSE SEARCH (kept in lockstep with lexical)
	if o.vectorIndex != nil && o.embeddingService != nil {
		ids := make([]string, len(chunks))
		vectors := make([][]float32, len(chunks))
		for i, c := range chunks {
			ids[i] = c.ID
			vectors[i] = c.Embedding
		}
		if err := o.vectorIndex.Add(ctx, ids, vectors); err != nil {
			return fmt.Errorf("add vectors: %w", err)
		}
	}

	// 7. COMMIT TO THE DOCUMENT STORE LAST. A failed index write above
	// leaves the stored ModifiedAt untouched, so the document is retried
	// on the next sweep instead of recorded fresh but unreachable.
	if err := o.docStore.SaveDocument(ctx, &doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	if err := o.docStore.SaveChunks(ctx, doc.ID, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}

	return nil
}

// reapStale deletes stored documents for the source that the sweep did
// not observe, so index content never refers to removed source items.
func (o *SyncOrchestrator) reapStale(
	ctx context.Context,
	sourceID string,
	seen map[string]bool,
	status *driving.SyncStatus,
) error {
	docs, err := o.docStore.ListDocuments(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	for i := range docs {
		if seen[docs[i].ID] {
			continue
		}
		logger.Debug("Removing stale document: %s", docs[i].Name)
		if err := o.deleteDocument(ctx, docs[i].ID); err != nil {
			status.ErrorCount++
			logger.Warn("Failed to remove %s: %v", docs[i].Name, err)
		}
	}
	return nil
}

// deleteDocument removes a document from both indexes and the store.
func (o *SyncOrchestrator) deleteDocument(ctx context.Context, docID string) error {
	if err := o.unindexDocument(ctx, docID); err != nil {
		return err
	}
	if err := o.docStore.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// unindexDocument removes a document's existing chunks from both
// indexes. Missing chunks are not an error.
func (o *SyncOrchestrator) unindexDocument(ctx context.Context, docID string) error {
	chunks, err := o.docStore.GetChunks(ctx, docID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get chunks: %w", err)
	}

	for _, chunk := range chunks {
		if err := o.searchIndex.Delete(ctx, chunk.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Debug("Failed to delete search entry %s: %v", chunk.ID, err)
		}
		if o.vectorIndex != nil {
			if err := o.vectorIndex.Delete(ctx, chunk.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
				logger.Debug("Failed to delete vector %s: %v", chunk.ID, err)
			}
		}
	}
	return nil
}

// setStatus sets the sweep status for a source.
func (o *SyncOrchestrator) setStatus(sourceID string, status *driving.SyncStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.activeSyncs[sourceID] = status
}

// clearStatus removes the sweep status for a source.
func (o *SyncOrchestrator) clearStatus(sourceID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.activeSyncs, sourceID)
}

// DocumentID derives the source-stable document identifier, so
// re-ingesting the same source item always lands on the same record.
func DocumentID(sourceID, itemID string) string {
	return sourceID + "/" + itemID
}

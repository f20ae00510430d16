package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkkn-ai/assist/internal/core/domain"
)

func TestNewDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.documents)
	assert.NotNil(t, store.chunks)
}

func TestDocumentStore_SaveDocument_Success(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	now := time.Now()
	doc := &domain.Document{
		ID:         "src-1/doc-1",
		SourceID:   "src-1",
		Name:       "report.txt",
		Content:    "Quarterly report contents.",
		ModifiedAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := store.SaveDocument(ctx, doc)
	require.NoError(t, err)

	saved, err := store.GetDocument(ctx, "src-1/doc-1")
	require.NoError(t, err)
	assert.Equal(t, "src-1/doc-1", saved.ID)
	assert.Equal(t, "src-1", saved.SourceID)
	assert.Equal(t, "report.txt", saved.Name)
	assert.Equal(t, "Quarterly report contents.", saved.Content)
}

func TestDocumentStore_SaveDocument_Update(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc1 := &domain.Document{ID: "doc-1", SourceID: "src-1", Name: "original.txt"}
	doc2 := &domain.Document{ID: "doc-1", SourceID: "src-1", Name: "updated.txt"}

	require.NoError(t, store.SaveDocument(ctx, doc1))
	require.NoError(t, store.SaveDocument(ctx, doc2))

	// Should have the updated values
	saved, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "updated.txt", saved.Name)
}

func TestDocumentStore_GetDocument_NotFound(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc, err := store.GetDocument(ctx, "nonexistent")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, doc)
}

func TestDocumentStore_SaveChunks_Success(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	chunks := []domain.Chunk{
		{ID: "chunk-1", DocumentID: "doc-1", Content: "First chunk", Position: 0, Embedding: []float32{0.1, 0.2, 0.3}},
		{ID: "chunk-2", DocumentID: "doc-1", Content: "Second chunk", Position: 1, Embedding: []float32{0.4, 0.5, 0.6}},
	}

	err := store.SaveChunks(ctx, "doc-1", chunks)
	require.NoError(t, err)

	saved, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Len(t, saved, 2)
	assert.Equal(t, "chunk-1", saved[0].ID)
	assert.Equal(t, "chunk-2", saved[1].ID)
}

func TestDocumentStore_SaveChunks_ReplacesPreviousSet(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	chunks1 := []domain.Chunk{
		{ID: "chunk-1", DocumentID: "doc-1", Content: "Original", Position: 0},
		{ID: "chunk-2", DocumentID: "doc-1", Content: "Original second", Position: 1},
	}
	chunks2 := []domain.Chunk{
		{ID: "chunk-3", DocumentID: "doc-1", Content: "Updated", Position: 0},
	}

	require.NoError(t, store.SaveChunks(ctx, "doc-1", chunks1))
	require.NoError(t, store.SaveChunks(ctx, "doc-1", chunks2))

	// The old set must be gone entirely
	saved, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "chunk-3", saved[0].ID)

	_, err = store.GetChunk(ctx, "chunk-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_SaveChunks_EmptyClearsSet(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveChunks(ctx, "doc-1", []domain.Chunk{
		{ID: "chunk-1", DocumentID: "doc-1", Content: "Content"},
	}))
	require.NoError(t, store.SaveChunks(ctx, "doc-1", nil))

	saved, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestDocumentStore_GetChunks_OrderedByPosition(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	// Saved out of order
	chunks := []domain.Chunk{
		{ID: "chunk-3", DocumentID: "doc-1", Content: "Third", Position: 2},
		{ID: "chunk-1", DocumentID: "doc-1", Content: "First", Position: 0},
		{ID: "chunk-2", DocumentID: "doc-1", Content: "Second", Position: 1},
	}

	require.NoError(t, store.SaveChunks(ctx, "doc-1", chunks))

	retrieved, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, retrieved, 3)
	assert.Equal(t, "chunk-1", retrieved[0].ID)
	assert.Equal(t, "chunk-2", retrieved[1].ID)
	assert.Equal(t, "chunk-3", retrieved[2].ID)
}

func TestDocumentStore_GetChunks_NotFound(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	chunks, err := store.GetChunks(ctx, "nonexistent")

	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestDocumentStore_GetChunk_Success(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	chunks := []domain.Chunk{
		{ID: "chunk-1", DocumentID: "doc-1", Content: "Content 1", Position: 0},
		{ID: "chunk-2", DocumentID: "doc-1", Content: "Content 2", Position: 1},
	}

	require.NoError(t, store.SaveChunks(ctx, "doc-1", chunks))

	retrieved, err := store.GetChunk(ctx, "chunk-2")

	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, "chunk-2", retrieved.ID)
	assert.Equal(t, "Content 2", retrieved.Content)
	assert.Equal(t, 1, retrieved.Position)
}

func TestDocumentStore_GetChunk_NotFound(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	chunk, err := store.GetChunk(ctx, "nonexistent")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, chunk)
}

func TestDocumentStore_AllChunks(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveChunks(ctx, "doc-b", []domain.Chunk{
		{ID: "chunk-b1", DocumentID: "doc-b", Content: "B1", Position: 0},
	}))
	require.NoError(t, store.SaveChunks(ctx, "doc-a", []domain.Chunk{
		{ID: "chunk-a1", DocumentID: "doc-a", Content: "A1", Position: 0},
		{ID: "chunk-a2", DocumentID: "doc-a", Content: "A2", Position: 1},
	}))

	all, err := store.AllChunks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Deterministic: grouped by document ID order
	assert.Equal(t, "chunk-a1", all[0].ID)
	assert.Equal(t, "chunk-a2", all[1].ID)
	assert.Equal(t, "chunk-b1", all[2].ID)
}

func TestDocumentStore_DeleteDocument_Success(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := &domain.Document{ID: "doc-1", SourceID: "src-1", Name: "test.txt"}
	chunks := []domain.Chunk{
		{ID: "chunk-1", DocumentID: "doc-1", Content: "Content"},
	}

	require.NoError(t, store.SaveDocument(ctx, doc))
	require.NoError(t, store.SaveChunks(ctx, "doc-1", chunks))

	err := store.DeleteDocument(ctx, "doc-1")
	require.NoError(t, err)

	// Document should be deleted
	_, err = store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Chunks should also be deleted
	deletedChunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Nil(t, deletedChunks)
}

func TestDocumentStore_DeleteDocument_NonExistent(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	// Delete non-existent should not error
	err := store.DeleteDocument(ctx, "nonexistent")
	assert.NoError(t, err)
}

func TestDocumentStore_ListDocuments_FiltersBySourceID(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	docs := []*domain.Document{
		{ID: "doc-1", SourceID: "src-1"},
		{ID: "doc-2", SourceID: "src-2"},
		{ID: "doc-3", SourceID: "src-1"},
	}

	for _, doc := range docs {
		require.NoError(t, store.SaveDocument(ctx, doc))
	}

	docs1, err := store.ListDocuments(ctx, "src-1")
	require.NoError(t, err)
	assert.Len(t, docs1, 2)

	docs2, err := store.ListDocuments(ctx, "src-2")
	require.NoError(t, err)
	assert.Len(t, docs2, 1)

	docs3, err := store.ListDocuments(ctx, "src-nonexistent")
	require.NoError(t, err)
	assert.Nil(t, docs3)
}

func TestDocumentStore_ListDocuments_EmptySourceListsAll(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1", SourceID: "src-1"}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-2", SourceID: "src-2"}))

	all, err := store.ListDocuments(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Sorted by ID for deterministic listings
	assert.Equal(t, "doc-1", all[0].ID)
	assert.Equal(t, "doc-2", all[1].ID)
}

func TestDocumentStore_Concurrency_MixedOperations(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	numOperations := 100

	// Pre-populate
	for i := 0; i < 10; i++ {
		doc := &domain.Document{
			ID:       "doc-" + string(rune('0'+i)),
			SourceID: "src-1",
		}
		require.NoError(t, store.SaveDocument(ctx, doc))
	}

	// Run mixed concurrent operations
	wg.Add(numOperations)
	for i := 0; i < numOperations; i++ {
		go func(id int) {
			defer wg.Done()
			switch id % 5 {
			case 0:
				doc := &domain.Document{
					ID:       "doc-concurrent-" + string(rune('A'+id%26)),
					SourceID: "src-1",
				}
				_ = store.SaveDocument(ctx, doc)
			case 1:
				_ = store.SaveChunks(ctx, "doc-concurrent", []domain.Chunk{
					{ID: "chunk-" + string(rune('A'+id%26)), DocumentID: "doc-concurrent"},
				})
			case 2:
				_, _ = store.GetDocument(ctx, "doc-"+string(rune('0'+id%10)))
			case 3:
				_, _ = store.GetChunks(ctx, "doc-"+string(rune('0'+id%10)))
			case 4:
				_, _ = store.ListDocuments(ctx, "src-1")
			}
		}(i)
	}
	wg.Wait()

	// Should not panic or deadlock
	docs, err := store.ListDocuments(ctx, "src-1")
	require.NoError(t, err)
	assert.NotNil(t, docs)
}

func TestDocumentStore_ChunkWithLargeEmbedding(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	embedding := make([]float32, 1536)
	for i := range embedding {
		embedding[i] = float32(i) * 0.001
	}

	chunks := []domain.Chunk{
		{ID: "chunk-1", DocumentID: "doc-1", Content: "Content", Embedding: embedding},
	}

	require.NoError(t, store.SaveChunks(ctx, "doc-1", chunks))

	retrieved, err := store.GetChunk(ctx, "chunk-1")
	require.NoError(t, err)
	assert.Len(t, retrieved.Embedding, 1536)
	assert.Equal(t, float32(0), retrieved.Embedding[0])
	assert.Equal(t, float32(1)*0.001, retrieved.Embedding[1])
}

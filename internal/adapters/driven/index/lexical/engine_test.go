package lexical

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkkn-ai/assist/internal/core/domain"
)

func testChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: "chunk-1", DocumentID: "doc-1", Content: "The programme budget is $50 per student per term."},
		{ID: "chunk-2", DocumentID: "doc-1", Content: "Admission requires a completed application form."},
		{ID: "chunk-3", DocumentID: "doc-2", Content: "The library opens at nine and closes at five."},
	}
}

func TestEngine_Search_EmptyIndex(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	hits, err := engine.Search(ctx, "anything", 10)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestEngine_Search_FindsRareTerm(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	require.NoError(t, engine.Rebuild(ctx, testChunks()))

	// "$50" appears in exactly one chunk and must rank it first
	hits, err := engine.Search(ctx, "$50", 10)

	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "chunk-1", hits[0].ChunkID)
}

func TestEngine_Search_NoMatch(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	require.NoError(t, engine.Rebuild(ctx, testChunks()))

	hits, err := engine.Search(ctx, "zebra", 10)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestEngine_Search_RespectsLimit(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	require.NoError(t, engine.Rebuild(ctx, []domain.Chunk{
		{ID: "chunk-1", Content: "apple banana"},
		{ID: "chunk-2", Content: "apple cherry"},
		{ID: "chunk-3", Content: "apple plum"},
	}))

	hits, err := engine.Search(ctx, "apple", 2)

	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestEngine_Search_Deterministic(t *testing.T) {
	ctx := context.Background()

	// Two engines built from the same corpus must rank identically
	engine1 := NewEngine()
	engine2 := NewEngine()
	require.NoError(t, engine1.Rebuild(ctx, testChunks()))
	require.NoError(t, engine2.Rebuild(ctx, testChunks()))

	hits1, err := engine1.Search(ctx, "student application term", 10)
	require.NoError(t, err)
	hits2, err := engine2.Search(ctx, "student application term", 10)
	require.NoError(t, err)

	assert.Equal(t, hits1, hits2)
}

func TestEngine_Rebuild_ReplacesContents(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	require.NoError(t, engine.Rebuild(ctx, testChunks()))
	require.NoError(t, engine.Rebuild(ctx, []domain.Chunk{
		{ID: "chunk-9", Content: "entirely new corpus"},
	}))

	hits, err := engine.Search(ctx, "student", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = engine.Search(ctx, "corpus", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "chunk-9", hits[0].ChunkID)
}

func TestEngine_Add_ExtendsCorpus(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	require.NoError(t, engine.Rebuild(ctx, testChunks()))
	require.NoError(t, engine.Add(ctx, []domain.Chunk{
		{ID: "chunk-4", Content: "Scholarships cover tuition fees."},
	}))

	hits, err := engine.Search(ctx, "scholarships", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "chunk-4", hits[0].ChunkID)

	// Existing chunks still searchable
	hits, err = engine.Search(ctx, "library", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "chunk-3", hits[0].ChunkID)
}

func TestEngine_Delete_RemovesChunk(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	require.NoError(t, engine.Rebuild(ctx, testChunks()))
	require.NoError(t, engine.Delete(ctx, "chunk-1"))

	hits, err := engine.Search(ctx, "$50", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestEngine_Delete_Unknown(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	require.NoError(t, engine.Rebuild(ctx, testChunks()))
	assert.NoError(t, engine.Delete(ctx, "nonexistent"))
}

func TestEngine_Generation(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	assert.Equal(t, uint64(0), engine.Generation())

	require.NoError(t, engine.Rebuild(ctx, testChunks()))
	assert.Equal(t, uint64(1), engine.Generation())

	require.NoError(t, engine.Add(ctx, []domain.Chunk{{ID: "chunk-4", Content: "more"}}))
	assert.Equal(t, uint64(2), engine.Generation())

	// Deletes do not advance the generation
	require.NoError(t, engine.Delete(ctx, "chunk-4"))
	assert.Equal(t, uint64(2), engine.Generation())

	// A rebuild starts a new lineage, so paired rebuilds realign a
	// drifted index pair.
	require.NoError(t, engine.Rebuild(ctx, testChunks()))
	assert.Equal(t, uint64(1), engine.Generation())
}

func TestEngine_SearchDuringRebuild(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	require.NoError(t, engine.Rebuild(ctx, testChunks()))

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = engine.Rebuild(ctx, testChunks())
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			hits, err := engine.Search(ctx, "student", 10)
			// Every observed generation is complete: either the term
			// matches its one chunk or the index swap is in flight,
			// never a partial posting list.
			assert.NoError(t, err)
			assert.LessOrEqual(t, len(hits), 1)
		}
	}()
	wg.Wait()
}

func TestTokenise(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "keeps currency tokens",
			text:     "costs $50 per term",
			expected: []string{"costs", "$50", "per", "term"},
		},
		{
			name:     "lowercases",
			text:     "Admission Form",
			expected: []string{"admission", "form"},
		},
		{
			name:     "drops stopwords",
			text:     "the cat and the hat",
			expected: []string{"cat", "hat"},
		},
		{
			name:     "empty input",
			text:     "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := tokenise(tt.text)
			if len(tt.expected) == 0 {
				assert.Empty(t, tokens)
				return
			}
			assert.Equal(t, tt.expected, tokens)
		})
	}
}

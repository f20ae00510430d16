package driven

import (
	"context"

	"github.com/jkkn-ai/assist/internal/core/domain"
)

// SearchEngine provides lexical (term-frequency) retrieval.
// Implementations must be deterministic: rebuilding from the same chunk
// set reproduces identical term statistics and identical rankings.
//
// Mutations operate on a new index copy that is swapped in atomically,
// so concurrent searches always observe a complete generation.
type SearchEngine interface {
	// Rebuild replaces the index contents with the given chunks.
	Rebuild(ctx context.Context, chunks []domain.Chunk) error

	// Add appends chunks to the index without a full rebuild.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// Delete removes a chunk from the index.
	Delete(ctx context.Context, chunkID string) error

	// Search returns the k best-matching chunk IDs with TF-IDF scores,
	// best first. An empty index yields an empty result, not an error.
	Search(ctx context.Context, query string, k int) ([]SearchHit, error)

	// Generation returns the current index generation. Add advances it,
	// Rebuild starts a new lineage at 1, and it is compared against the
	// dense index generation to detect divergence.
	Generation() uint64

	// Close releases resources.
	Close() error
}

// SearchHit represents a lexical search result.
type SearchHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the TF-IDF relevance score.
	Score float64
}

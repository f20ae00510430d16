package driven

import "context"

// VectorIndex provides dense similarity search over embedding vectors.
// The metric is inner product on unit-normalised vectors (equivalent to
// cosine similarity); higher scores are more similar, and the metric
// never changes between build and query.
//
// Mutations operate on a new index copy that is swapped in atomically,
// so concurrent searches always observe a complete generation.
type VectorIndex interface {
	// Rebuild replaces the index with the given vectors.
	// ids and vectors are parallel; all vectors share one dimension.
	Rebuild(ctx context.Context, ids []string, vectors [][]float32) error

	// Add appends vectors to the index without a full rebuild.
	Add(ctx context.Context, ids []string, vectors [][]float32) error

	// Delete removes a vector from the index.
	Delete(ctx context.Context, chunkID string) error

	// Search finds the k nearest neighbours to the query vector,
	// best first. An empty index yields an empty result, not an error.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Generation returns the current index generation. Add advances it,
	// Rebuild starts a new lineage at 1, and it is compared against the
	// lexical index generation to detect divergence.
	Generation() uint64

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the inner-product similarity score.
	Similarity float64
}

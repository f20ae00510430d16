package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil, dense retrieval is disabled.
//
// The mapping is deterministic for a given model version: the same text
// always yields the same vector. The same service embeds both corpus
// chunks and incoming queries, so the model identity is pinned for the
// lifetime of one index generation - swapping models invalidates the
// dense index and requires a full rebuild.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	// The output is order-preserving and has exactly one vector per
	// input text.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536).
	// This is determined by the model and must match the VectorIndex.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

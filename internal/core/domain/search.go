package domain

import "time"

// RetrievalOptions configures a retrieval request.
type RetrievalOptions struct {
	// Limit is the maximum number of candidates to return.
	Limit int

	// Expand enables query expansion with the configured synonym table.
	Expand bool
}

// Candidate is one entry in the hybrid candidate set before hydration.
// Ranks are zero-based positions in the per-index result lists; a rank
// of -1 means the chunk was absent from that list.
type Candidate struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the blended relevance score.
	Score float64

	// DenseRank is the position in the dense result list.
	DenseRank int

	// LexicalRank is the position in the lexical result list.
	LexicalRank int
}

// SearchResult represents a single hydrated retrieval hit.
type SearchResult struct {
	// Document is the matched document.
	Document Document

	// Chunk is the specific chunk that matched.
	Chunk Chunk

	// Score is the blended relevance score.
	Score float64
}

// Answer is the final response produced for a user query.
// It is a total result: even on internal failure the Text field
// carries a user-facing message.
type Answer struct {
	// Query is the original user query.
	Query string

	// Text is the composed answer text.
	Text string

	// Context is the retrieved context the answer was grounded on.
	Context string

	// Sources lists the names of documents the context was drawn from.
	Sources []string

	// Cached is true when the answer was served from the query cache.
	Cached bool

	// CreatedAt is when the answer was produced.
	CreatedAt time.Time
}

package domain

import "time"

// Document represents an ingested document with metadata.
// It is the canonical representation after text extraction.
type Document struct {
	// ID is the source-stable unique identifier for the document.
	// Re-ingesting the same source item always yields the same ID.
	ID string

	// SourceID links to the Source that produced this document.
	SourceID string

	// Name is the human-readable document name (e.g. the file name).
	Name string

	// Content is the full normalised UTF-8 text before chunking.
	Content string

	// ModifiedAt is the modification time reported by the source.
	// Ingestion is a no-op unless the source reports a newer time.
	ModifiedAt time.Time

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested.
	UpdatedAt time.Time
}

// Chunk represents a retrievable unit within a document.
// Documents are split into fixed-width chunks; the chunk set is
// replaced wholesale whenever the parent document changes.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation for dense retrieval.
	Embedding []float32
}

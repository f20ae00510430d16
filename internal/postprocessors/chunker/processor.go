// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"fmt"

	"github.com/jkkn-ai/assist/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// Processor splits document content into fixed-size chunks.
// It implements the PostProcessor interface.
//
// Chunking is deterministic: the same content always yields the same
// chunk set, and chunk IDs are derived from the document ID and the
// chunk position. Windows do not overlap; the final chunk may be
// shorter than the window.
type Processor struct {
	chunkSize int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from
// document content. Windows are counted in runes so multi-byte
// characters are never split.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	runes := []rune(doc.Content)
	chunks := make([]domain.Chunk, 0, (len(runes)/p.chunkSize)+1)

	for start, position := 0, 0; start < len(runes); start, position = start+p.chunkSize, position+1 {
		end := start + p.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, domain.Chunk{
			ID:         fmt.Sprintf("%s#%d", doc.ID, position),
			DocumentID: doc.ID,
			Content:    string(runes[start:end]),
			Position:   position,
		})
	}

	return chunks, nil
}

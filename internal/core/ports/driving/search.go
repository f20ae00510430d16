package driving

import (
	"context"

	"github.com/jkkn-ai/assist/internal/core/domain"
)

// SearchService provides hybrid retrieval to external actors.
type SearchService interface {
	// Search performs hybrid retrieval across all indexed documents
	// and returns hydrated, ranked results.
	Search(ctx context.Context, query string, opts domain.RetrievalOptions) ([]domain.SearchResult, error)
}

// AssistService answers user queries grounded on retrieved context.
type AssistService interface {
	// Ask runs the full query pipeline: cache lookup, query expansion,
	// hybrid retrieval, re-ranking, context composition and answer
	// generation. It is total: the returned Answer always carries a
	// user-facing message, even on internal failure.
	Ask(ctx context.Context, query string) (*domain.Answer, error)
}

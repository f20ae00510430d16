package driven

import (
	"context"
	"time"

	"github.com/jkkn-ai/assist/internal/core/domain"
)

// AnswerCache memoises answers keyed by normalised query text.
// At most one fresh entry exists per distinct key, and an expired entry
// is never returned. Implementations must be safe under concurrent
// access by multiple query handlers.
type AnswerCache interface {
	// Get returns the cached answer for a key, or ErrNotFound on a miss
	// or an expired entry. A miss is normal control flow, not a fault.
	Get(ctx context.Context, key string) (*domain.Answer, error)

	// Set stores an answer under a key with the given lifetime.
	// A non-positive ttl stores nothing.
	Set(ctx context.Context, key string, answer *domain.Answer, ttl time.Duration) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}

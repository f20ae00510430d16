package driven

import "context"

// AnswerComposer turns a user query and retrieved context into answer
// text. It is an external collaborator: the core supplies the context
// string and consumes the returned text, nothing more.
//
// Failures (rate limit, timeout, malformed output) surface as errors
// wrapped in domain.ErrGeneration; callers degrade to a fallback
// message rather than propagating a raw fault.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - Ollama (local models)
type AnswerComposer interface {
	// Compose produces answer text grounded on the supplied context.
	Compose(ctx context.Context, query, context string) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

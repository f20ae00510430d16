package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driven"
	"github.com/jkkn-ai/assist/internal/core/ports/driving"
	"github.com/jkkn-ai/assist/internal/logger"
)

// Ensure AssistService implements the interface.
var _ driving.AssistService = (*AssistService)(nil)

// User-facing messages for degraded outcomes. Internal failures are
// logged in full but never exposed raw to the end user.
const (
	noInformationMessage = "I couldn't find any information about that in the indexed documents."
	apologyMessage       = "I'm sorry, something went wrong while answering that. Please try again shortly."
)

// composerRetries is how many additional attempts one Ask makes after a
// failed composer call before degrading.
const composerRetries = 1

// AssistService answers user queries grounded on retrieved context.
// It runs the full pipeline: cache lookup, query expansion, hybrid
// retrieval, re-ranking, context composition and answer generation.
// Ask is total: it always produces a user-facing answer text.
type AssistService struct {
	search   driving.SearchService
	reranker *Reranker
	cache    driven.AnswerCache
	composer driven.AnswerComposer

	topK            int
	contextSize     int
	maxContextChars int
	cacheTTL        time.Duration
	composerTimeout time.Duration
}

// NewAssistService creates a new assist service.
// cache and composer are optional (can be nil): without a cache every
// query recomputes, without a composer the raw retrieved context is
// returned as the answer.
func NewAssistService(
	search driving.SearchService,
	reranker *Reranker,
	cache driven.AnswerCache,
	composer driven.AnswerComposer,
	retrieval domain.RetrievalSettings,
	cacheTTL time.Duration,
	composerTimeout time.Duration,
) *AssistService {
	topK := retrieval.TopK
	if topK <= 0 {
		topK = 10
	}
	contextSize := retrieval.ContextSize
	if contextSize <= 0 {
		contextSize = 3
	}
	maxContextChars := retrieval.MaxContextChars
	if maxContextChars <= 0 {
		maxContextChars = 6000
	}
	if composerTimeout <= 0 {
		composerTimeout = 60 * time.Second
	}
	return &AssistService{
		search:          search,
		reranker:        reranker,
		cache:           cache,
		composer:        composer,
		topK:            topK,
		contextSize:     contextSize,
		maxContextChars: maxContextChars,
		cacheTTL:        cacheTTL,
		composerTimeout: composerTimeout,
	}
}

// Ask answers a user query. It never propagates an internal fault to
// the caller: every stage failure degrades to an explicit user-facing
// message on the returned Answer.
func (s *AssistService) Ask(ctx context.Context, query string) (*domain.Answer, error) {
	logger.Section("Ask")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return s.answer(query, noInformationMessage, "", nil, false), nil
	}

	key := NormaliseQuery(query)

	if cached := s.cacheGet(ctx, key); cached != nil {
		logger.Info("Cache hit for %q", key)
		cached.Query = query
		cached.Cached = true
		return cached, nil
	}

	results, err := s.search.Search(ctx, query, domain.RetrievalOptions{
		Limit:  s.topK,
		Expand: true,
	})
	if err != nil {
		logger.Warn("Retrieval failed for %q: %v", query, err)
		return s.answer(query, apologyMessage, "", nil, false), nil
	}

	if len(results) == 0 {
		logger.Info("No candidates for %q", query)
		return s.answer(query, noInformationMessage, "", nil, false), nil
	}

	contextText, sources := s.composeContext(query, results)

	text, err := s.generate(ctx, query, contextText)
	if err != nil {
		logger.Warn("Answer generation failed for %q: %v", query, err)
		// Degrade to the retrieved context rather than failing the call.
		text = contextText
	}

	ans := s.answer(query, text, contextText, sources, false)
	s.cacheSet(ctx, key, ans)
	return ans, nil
}

// composeContext reranks the retrieved chunks with the secondary signal
// and joins the winners into one bounded context window.
func (s *AssistService) composeContext(query string, results []domain.SearchResult) (string, []string) {
	texts := make([]string, len(results))
	byText := make(map[string]domain.SearchResult, len(results))
	for i, r := range results {
		texts[i] = r.Chunk.Content
		byText[r.Chunk.Content] = r
	}

	top := texts
	if s.reranker != nil {
		top = s.reranker.Rerank(query, texts, s.contextSize)
	} else if len(top) > s.contextSize {
		top = top[:s.contextSize]
	}

	var b strings.Builder
	var sources []string
	seen := make(map[string]bool)

	for _, text := range top {
		separator := ""
		if b.Len() > 0 {
			separator = "\n\n"
		}
		remaining := s.maxContextChars - b.Len() - len(separator)
		if remaining <= 0 {
			break
		}

		// Attribute the source before any truncation: a cut chunk still
		// contributed to the context.
		if r, ok := byText[text]; ok && !seen[r.Document.Name] {
			seen[r.Document.Name] = true
			sources = append(sources, r.Document.Name)
		}

		b.WriteString(separator)
		b.WriteString(truncateOnRuneBoundary(text, remaining))
	}
	return b.String(), sources
}

// truncateOnRuneBoundary cuts s to at most max bytes without splitting a
// UTF-8 sequence mid-rune.
func truncateOnRuneBoundary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// generate calls the external answer composer with a timeout and at
// most one retry. Failures are wrapped in domain.ErrGeneration.
func (s *AssistService) generate(ctx context.Context, query, contextText string) (string, error) {
	if s.composer == nil {
		return "", domain.ErrComposerUnavailable
	}

	var lastErr error
	for attempt := 0; attempt <= composerRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, s.composerTimeout)
		text, err := s.composer.Compose(callCtx, query, contextText)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) {
			break
		}
		logger.Debug("Composer attempt %d failed: %v", attempt+1, err)
	}
	return "", fmt.Errorf("%w: %w", domain.ErrGeneration, lastErr)
}

func (s *AssistService) cacheGet(ctx context.Context, key string) *domain.Answer {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Cache read failed: %v", err)
		}
		return nil
	}
	return cached
}

func (s *AssistService) cacheSet(ctx context.Context, key string, ans *domain.Answer) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, ans, s.cacheTTL); err != nil {
		logger.Warn("Cache write failed: %v", err)
	}
}

func (s *AssistService) answer(query, text, contextText string, sources []string, cached bool) *domain.Answer {
	return &domain.Answer{
		Query:     query,
		Text:      text,
		Context:   contextText,
		Sources:   sources,
		Cached:    cached,
		CreatedAt: time.Now(),
	}
}

// NormaliseQuery derives the cache key for a query: case-folded with
// runs of whitespace collapsed, so trivially different inputs share one
// cache entry.
func NormaliseQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

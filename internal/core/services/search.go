package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driven"
	"github.com/jkkn-ai/assist/internal/core/ports/driving"
	"github.com/jkkn-ai/assist/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// overfetchFactor is how many times the requested limit is fetched from
// each index before blending, to keep enough recall for re-ranking.
const overfetchFactor = 2

// defaultDenseWeight is the dense share of the blended score when the
// caller does not supply one.
const defaultDenseWeight = 0.7

// SearchService provides hybrid (dense + lexical) retrieval.
type SearchService struct {
	docStore         driven.DocumentStore
	searchIndex      driven.SearchEngine
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService
	expander         *QueryExpander
	denseWeight      float64
}

// NewSearchService creates a new search service.
// vectorIndex and embeddingService are optional (can be nil): without
// them retrieval degrades to lexical-only. expander is optional.
func NewSearchService(
	docStore driven.DocumentStore,
	searchIndex driven.SearchEngine,
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
	expander *QueryExpander,
) *SearchService {
	return &SearchService{
		docStore:         docStore,
		searchIndex:      searchIndex,
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
		expander:         expander,
		denseWeight:      defaultDenseWeight,
	}
}

// SetDenseWeight overrides the dense share of the blended score.
// Values outside (0,1) are ignored. The ratio is a tunable, not an
// invariant; 0.7 is the default.
func (s *SearchService) SetDenseWeight(w float64) {
	if w > 0 && w < 1 {
		s.denseWeight = w
	}
}

// Search performs hybrid retrieval across all indexed documents.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.RetrievalOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	if opts.Expand && s.expander != nil {
		expanded := s.expander.Expand(query)
		if expanded != query {
			logger.Info("Expanded query: %q", expanded)
			query = expanded
		}
	}

	candidates, err := s.Retrieve(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	results, err := s.hydrate(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("hydrate results: %w", err)
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}

// Retrieve runs the hybrid candidate selection without hydration.
// It over-fetches from each index, normalises both score scales to a
// comparable range, blends them with the configured weighting and
// returns at most limit candidates.
func (s *SearchService) Retrieve(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	overfetch := limit * overfetchFactor

	if !s.canDense() {
		logger.Debug("Dense retrieval unavailable, lexical only")
		lexical, err := s.lexicalSearch(ctx, query, overfetch)
		if err != nil {
			return nil, err
		}
		return s.blend(nil, lexical, limit), nil
	}

	// A chunk present in one index but not the other corrupts ranking;
	// refuse to serve from diverged generations.
	if lg, vg := s.searchIndex.Generation(), s.vectorIndex.Generation(); lg != vg {
		return nil, fmt.Errorf("%w: lexical=%d dense=%d", domain.ErrIndexInconsistent, lg, vg)
	}

	var dense []driven.VectorHit
	var lexical []driven.SearchHit
	var denseErr, lexicalErr error

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		dense, denseErr = s.denseSearch(ctx, query, overfetch)
	}()
	go func() {
		defer wg.Done()
		lexical, lexicalErr = s.lexicalSearch(ctx, query, overfetch)
	}()
	wg.Wait()

	// Degrade one-sided when a single leg fails.
	if denseErr != nil && lexicalErr != nil {
		return nil, fmt.Errorf("hybrid retrieval: dense=%w, lexical=%w", denseErr, lexicalErr)
	}
	if denseErr != nil {
		logger.Warn("Dense retrieval failed, using lexical results only: %v", denseErr)
		dense = nil
	}
	if lexicalErr != nil {
		logger.Warn("Lexical retrieval failed, using dense results only: %v", lexicalErr)
		lexical = nil
	}

	logger.Debug("Blending %d dense + %d lexical hits", len(dense), len(lexical))
	return s.blend(dense, lexical, limit), nil
}

// canDense reports whether dense retrieval is configured.
func (s *SearchService) canDense() bool {
	return s.vectorIndex != nil && s.embeddingService != nil
}

// lexicalSearch performs TF-IDF retrieval.
func (s *SearchService) lexicalSearch(ctx context.Context, query string, limit int) ([]driven.SearchHit, error) {
	if s.searchIndex == nil {
		return nil, errors.New("search engine unavailable")
	}
	hits, err := s.searchIndex.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	logger.Debug("Lexical search: %d hits", len(hits))
	return hits, nil
}

// denseSearch embeds the query and performs nearest-neighbour retrieval.
func (s *SearchService) denseSearch(ctx context.Context, query string, limit int) ([]driven.VectorHit, error) {
	embedding, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := s.vectorIndex.Search(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("dense search: %w", err)
	}
	logger.Debug("Dense search: %d hits", len(hits))
	return hits, nil
}

// blend unions the two ranked lists into one candidate set.
// Raw dense similarity and raw TF-IDF scores are not on the same scale,
// so each list is min-max normalised to [0,1] first, then combined as
// weight*dense + (1-weight)*lexical. Ties break by original dense rank,
// then lexical rank, so the ordering is stable across runs.
func (s *SearchService) blend(dense []driven.VectorHit, lexical []driven.SearchHit, limit int) []domain.Candidate {
	denseWeight := s.denseWeight

	denseScores := make([]float64, len(dense))
	for i, h := range dense {
		denseScores[i] = h.Similarity
	}
	lexicalScores := make([]float64, len(lexical))
	for i, h := range lexical {
		lexicalScores[i] = h.Score
	}
	denseNorm := minMaxNormalise(denseScores)
	lexicalNorm := minMaxNormalise(lexicalScores)

	byID := make(map[string]*domain.Candidate)
	order := make([]string, 0, len(dense)+len(lexical))

	for rank, h := range dense {
		byID[h.ChunkID] = &domain.Candidate{
			ChunkID:     h.ChunkID,
			Score:       denseWeight * denseNorm[rank],
			DenseRank:   rank,
			LexicalRank: -1,
		}
		order = append(order, h.ChunkID)
	}
	for rank, h := range lexical {
		if c, ok := byID[h.ChunkID]; ok {
			c.Score += (1 - denseWeight) * lexicalNorm[rank]
			c.LexicalRank = rank
			continue
		}
		byID[h.ChunkID] = &domain.Candidate{
			ChunkID:     h.ChunkID,
			Score:       (1 - denseWeight) * lexicalNorm[rank],
			DenseRank:   -1,
			LexicalRank: rank,
		}
		order = append(order, h.ChunkID)
	}

	candidates := make([]domain.Candidate, 0, len(order))
	for _, id := range order {
		candidates = append(candidates, *byID[id])
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if ri, rj := rankOrMax(candidates[i].DenseRank), rankOrMax(candidates[j].DenseRank); ri != rj {
			return ri < rj
		}
		return rankOrMax(candidates[i].LexicalRank) < rankOrMax(candidates[j].LexicalRank)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// rankOrMax maps the absent-rank sentinel to a value that always loses
// the tie-break.
func rankOrMax(rank int) int {
	if rank < 0 {
		return int(^uint(0) >> 1)
	}
	return rank
}

// minMaxNormalise rescales scores to [0,1]. A single-element or
// constant list maps to all ones so its rank information is kept.
func minMaxNormalise(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	min, max := scores[0], scores[0]
	for _, v := range scores[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(scores))
	if max == min {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	for i, v := range scores {
		out[i] = (v - min) / (max - min)
	}
	return out
}

// hydrate converts candidates to full SearchResult objects.
// Chunks or documents deleted since the index generation was built are
// skipped, preserving referential integrity of the returned set.
func (s *SearchService) hydrate(ctx context.Context, candidates []domain.Candidate) ([]domain.SearchResult, error) {
	if s.docStore == nil {
		return nil, errors.New("document store unavailable")
	}

	results := make([]domain.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		chunk, err := s.docStore.GetChunk(ctx, c.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get chunk %s: %w", c.ChunkID, err)
		}

		doc, err := s.docStore.GetDocument(ctx, chunk.DocumentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get document %s: %w", chunk.DocumentID, err)
		}

		results = append(results, domain.SearchResult{
			Document: *doc,
			Chunk:    *chunk,
			Score:    c.Score,
		})
	}
	return results, nil
}

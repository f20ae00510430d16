// Package lexical provides an in-process TF-IDF search engine.
//
// The engine keeps its whole state in memory as an immutable generation.
// Mutations build a new generation from the retained corpus and swap it
// in atomically, so searches never observe a half-built index. Given the
// same corpus the rebuild is fully deterministic: the vocabulary is
// sorted, IDF values depend only on term statistics, and scoring
// iterates terms in sorted order.
package lexical

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.SearchEngine = (*Engine)(nil)

// Engine is an in-memory TF-IDF search engine.
type Engine struct {
	mu      sync.RWMutex
	texts   map[string]string // chunkID -> content, the retained corpus
	current *generation
	seq     uint64
}

// generation is one immutable index image.
type generation struct {
	idf     map[string]float64
	docs    map[string]map[string]float64 // chunkID -> term -> weight
	docIDs  []string                      // sorted, for deterministic iteration
}

// NewEngine creates an empty search engine.
func NewEngine() *Engine {
	return &Engine{
		texts:   make(map[string]string),
		current: buildGeneration(nil),
	}
}

// Rebuild replaces the index contents with the given chunks.
// A rebuild starts a new generation lineage at 1, so a paired rebuild
// of both retrieval indexes always lands them on equal generations
// regardless of how far apart they had drifted.
func (e *Engine) Rebuild(_ context.Context, chunks []domain.Chunk) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.texts = make(map[string]string, len(chunks))
	for _, chunk := range chunks {
		e.texts[chunk.ID] = chunk.Content
	}
	e.current = buildGeneration(e.texts)
	e.seq = 1
	return nil
}

// Add appends chunks to the index without discarding the rest of the
// corpus. Term statistics are recomputed over the whole corpus so
// scores stay exact.
func (e *Engine) Add(_ context.Context, chunks []domain.Chunk) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, chunk := range chunks {
		e.texts[chunk.ID] = chunk.Content
	}
	e.current = buildGeneration(e.texts)
	e.seq++
	return nil
}

// Delete removes a chunk from the index. Deletion does not advance the
// generation counter; it is always applied to both retrieval indexes in
// lockstep.
func (e *Engine) Delete(_ context.Context, chunkID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.texts[chunkID]; !ok {
		return nil
	}
	delete(e.texts, chunkID)
	e.current = buildGeneration(e.texts)
	return nil
}

// Search returns the k best-matching chunks by cosine similarity of
// TF-IDF vectors, best first. Ties break by chunk ID so the ordering is
// reproducible.
func (e *Engine) Search(_ context.Context, query string, k int) ([]driven.SearchHit, error) {
	e.mu.RLock()
	gen := e.current
	e.mu.RUnlock()

	if k <= 0 || len(gen.docs) == 0 {
		return []driven.SearchHit{}, nil
	}

	queryWeights := gen.vectorise(query)
	if len(queryWeights) == 0 {
		return []driven.SearchHit{}, nil
	}

	// Sorted query terms keep the floating-point accumulation order
	// fixed across runs.
	terms := make([]string, 0, len(queryWeights))
	for term := range queryWeights {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	hits := make([]driven.SearchHit, 0, len(gen.docIDs))
	for _, id := range gen.docIDs {
		doc := gen.docs[id]
		var score float64
		for _, term := range terms {
			if w, ok := doc[term]; ok {
				score += queryWeights[term] * w
			}
		}
		if score > 0 {
			hits = append(hits, driven.SearchHit{ChunkID: id, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Generation returns the current index generation.
func (e *Engine) Generation() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.seq
}

// Close releases resources.
func (e *Engine) Close() error {
	return nil
}

// buildGeneration computes term statistics for the corpus.
func buildGeneration(texts map[string]string) *generation {
	gen := &generation{
		idf:  make(map[string]float64),
		docs: make(map[string]map[string]float64, len(texts)),
	}
	if len(texts) == 0 {
		return gen
	}

	docIDs := make([]string, 0, len(texts))
	for id := range texts {
		docIDs = append(docIDs, id)
	}
	sort.Strings(docIDs)
	gen.docIDs = docIDs

	// Document frequencies
	tokens := make(map[string][]string, len(texts))
	df := make(map[string]int)
	for _, id := range docIDs {
		toks := tokenise(texts[id])
		tokens[id] = toks
		seen := make(map[string]struct{}, len(toks))
		for _, tok := range toks {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	// Smoothed IDF
	n := float64(len(docIDs))
	for term, count := range df {
		gen.idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}

	// Per-document L2-normalised TF-IDF weights
	for _, id := range docIDs {
		gen.docs[id] = gen.weigh(tokens[id])
	}
	return gen
}

// vectorise computes the L2-normalised TF-IDF weights for a query.
// Terms outside the vocabulary contribute nothing.
func (g *generation) vectorise(text string) map[string]float64 {
	return g.weigh(tokenise(text))
}

func (g *generation) weigh(tokens []string) map[string]float64 {
	tf := make(map[string]int)
	total := 0
	for _, tok := range tokens {
		if _, ok := g.idf[tok]; !ok {
			continue
		}
		tf[tok]++
		total++
	}
	if total == 0 {
		return nil
	}

	weights := make(map[string]float64, len(tf))
	var norm float64
	for term, count := range tf {
		w := float64(count) / float64(total) * g.idf[term]
		weights[term] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for term := range weights {
			weights[term] /= norm
		}
	}
	return weights
}

// tokenise splits text into lower-cased terms. Currency markers,
// apostrophes, digits and non-ASCII letters are kept inside terms so
// tokens like "$50" survive as searchable units.
func tokenise(text string) []string {
	terms := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})
	out := terms[:0]
	for _, term := range terms {
		if _, stop := stopwords[term]; stop {
			continue
		}
		out = append(out, term)
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '$' || r == '\'' ||
		('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') ||
		('0' <= r && r <= '9') || r > 127
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else",
		"for", "to", "of", "in", "on", "at", "by", "with", "as", "is",
		"are", "was", "were", "be", "been", "being", "it", "this",
		"that", "these", "those", "from", "so", "such", "into", "about",
		"can", "will", "just", "not", "no",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

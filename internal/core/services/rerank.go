package services

import (
	"math"
	"sort"
	"strings"
)

// Reranker refines a hybrid candidate set with a second relevance
// signal, independent of the scores that produced the candidates, to
// counteract biases of either individual retriever. The signal is
// cosine similarity between the query's and the chunk's term-frequency
// profiles.
type Reranker struct{}

// NewReranker creates a new reranker.
func NewReranker() *Reranker {
	return &Reranker{}
}

// rerankedText pairs a candidate text with its secondary score.
type rerankedText struct {
	text  string
	score float64
}

// Rerank orders the candidate texts by term-overlap similarity to the
// query, descending, and returns at most n of them. Fewer candidates
// than n returns all of them, still ordered.
func (r *Reranker) Rerank(query string, candidates []string, n int) []string {
	if len(candidates) == 0 || n <= 0 {
		return nil
	}

	queryProfile := termFrequencies(query)

	scored := make([]rerankedText, len(candidates))
	for i, text := range candidates {
		scored[i] = rerankedText{
			text:  text,
			score: cosineOverlap(queryProfile, termFrequencies(text)),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if n > len(scored) {
		n = len(scored)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = scored[i].text
	}
	return out
}

// termFrequencies tokenises text into lower-cased terms and counts them.
func termFrequencies(text string) map[string]float64 {
	freq := make(map[string]float64)
	for _, term := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	}) {
		if term != "" {
			freq[term]++
		}
	}
	return freq
}

func isWordRune(r rune) bool {
	return r == '$' || r == '\'' ||
		('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') ||
		('0' <= r && r <= '9') || r > 127
}

// cosineOverlap computes cosine similarity between two term profiles.
func cosineOverlap(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, na, nb float64
	for term, av := range a {
		na += av * av
		if bv, ok := b[term]; ok {
			dot += av * bv
		}
	}
	for _, bv := range b {
		nb += bv * bv
	}
	den := math.Sqrt(na) * math.Sqrt(nb)
	if den == 0 {
		return 0
	}
	return dot / den
}

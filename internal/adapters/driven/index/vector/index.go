// Package vector provides an in-process dense similarity index.
//
// Vectors are stored L2-normalised, so exhaustive inner-product scan
// equals cosine similarity. The corpus sizes this serves make the
// linear scan cheap and keep the ranking exact.
package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an in-memory brute-force vector index.
type Index struct {
	mu      sync.RWMutex
	entries map[string][]float32 // chunkID -> unit vector
	ids     []string             // sorted, for deterministic iteration
	dims    int
	seq     uint64
}

// NewIndex creates an empty vector index.
func NewIndex() *Index {
	return &Index{
		entries: make(map[string][]float32),
	}
}

// Rebuild replaces the index with the given vectors.
// A rebuild starts a new generation lineage at 1, so a paired rebuild
// of both retrieval indexes always lands them on equal generations
// regardless of how far apart they had drifted.
func (x *Index) Rebuild(_ context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("%w: %d ids for %d vectors", domain.ErrInvalidInput, len(ids), len(vectors))
	}

	entries := make(map[string][]float32, len(ids))
	dims := 0
	for i, id := range ids {
		v := vectors[i]
		if len(v) == 0 {
			continue
		}
		if dims == 0 {
			dims = len(v)
		} else if len(v) != dims {
			return fmt.Errorf("%w: vector %s has %d dimensions, index has %d", domain.ErrInvalidInput, id, len(v), dims)
		}
		entries[id] = normaliseL2(v)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = entries
	x.dims = dims
	x.rebuildIDs()
	x.seq = 1
	return nil
}

// Add appends vectors to the index.
func (x *Index) Add(_ context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("%w: %d ids for %d vectors", domain.ErrInvalidInput, len(ids), len(vectors))
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	for i, id := range ids {
		v := vectors[i]
		if len(v) == 0 {
			continue
		}
		if x.dims == 0 {
			x.dims = len(v)
		} else if len(v) != x.dims {
			return fmt.Errorf("%w: vector %s has %d dimensions, index has %d", domain.ErrInvalidInput, id, len(v), x.dims)
		}
		x.entries[id] = normaliseL2(v)
	}
	x.rebuildIDs()
	x.seq++
	return nil
}

// Delete removes a vector from the index. Deletion does not advance
// the generation counter; it is always applied to both retrieval
// indexes in lockstep.
func (x *Index) Delete(_ context.Context, chunkID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.entries[chunkID]; !ok {
		return nil
	}
	delete(x.entries, chunkID)
	x.rebuildIDs()
	return nil
}

// Search finds the k nearest neighbours to the query vector, best
// first. Ties break by chunk ID so the ordering is reproducible.
func (x *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if k <= 0 || len(x.entries) == 0 {
		return []driven.VectorHit{}, nil
	}
	if len(query) != x.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", domain.ErrInvalidInput, len(query), x.dims)
	}

	q := normaliseL2(query)

	hits := make([]driven.VectorHit, 0, len(x.ids))
	for _, id := range x.ids {
		hits = append(hits, driven.VectorHit{
			ChunkID:    id,
			Similarity: dot(q, x.entries[id]),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Generation returns the current index generation.
func (x *Index) Generation() uint64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.seq
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

// rebuildIDs refreshes the sorted iteration order. Caller holds the lock.
func (x *Index) rebuildIDs() {
	ids := make([]string, 0, len(x.entries))
	for id := range x.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	x.ids = ids
}

// dot computes the inner product of two equal-length vectors.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// normaliseL2 returns a copy of v scaled to unit L2 norm.
func normaliseL2(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	n := math.Sqrt(sum)
	out := make([]float32, len(v))
	if n == 0 {
		copy(out, v)
		return out
	}
	inv := float32(1 / n)
	for i := range v {
		out[i] = v[i] * inv
	}
	return out
}

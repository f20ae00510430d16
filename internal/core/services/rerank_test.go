package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReranker_OrdersByTermOverlap(t *testing.T) {
	reranker := NewReranker()

	candidates := []string{
		"our office hours are nine to five",
		"the refund policy allows returns within thirty days",
		"refund requests are processed within two business days",
		"shipping is free above fifty dollars",
		"contact support for a refund of your purchase",
	}

	top := reranker.Rerank("refund policy", candidates, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "the refund policy allows returns within thirty days", top[0])
	assert.Contains(t, top[1], "refund")
}

func TestReranker_FewerCandidatesThanRequested(t *testing.T) {
	reranker := NewReranker()

	top := reranker.Rerank("refund", []string{"refund policy"}, 3)
	require.Len(t, top, 1)
	assert.Equal(t, "refund policy", top[0])
}

func TestReranker_EmptyCandidates(t *testing.T) {
	reranker := NewReranker()

	assert.Nil(t, reranker.Rerank("refund", nil, 3))
	assert.Nil(t, reranker.Rerank("refund", []string{"text"}, 0))
}

func TestReranker_DollarAmountsAreTerms(t *testing.T) {
	reranker := NewReranker()

	candidates := []string{
		"orders ship within two days",
		"orders above $50 ship free",
	}

	top := reranker.Rerank("is shipping free above $50", candidates, 1)
	require.Len(t, top, 1)
	assert.Equal(t, "orders above $50 ship free", top[0])
}

func TestReranker_StableForEqualScores(t *testing.T) {
	reranker := NewReranker()

	candidates := []string{"alpha beta", "alpha gamma"}
	top := reranker.Rerank("alpha", candidates, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "alpha beta", top[0])
	assert.Equal(t, "alpha gamma", top[1])
}

func TestCosineOverlap(t *testing.T) {
	a := termFrequencies("refund refund policy")
	b := termFrequencies("refund policy")
	c := termFrequencies("shipping rates")

	assert.Greater(t, cosineOverlap(a, b), 0.9)
	assert.Zero(t, cosineOverlap(a, c))
	assert.Zero(t, cosineOverlap(nil, b))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docask/internal/common"
	"docask/internal/domain"
)

func TestRetrieveFiltersAndRanks(t *testing.T) {
	idx := buildIndex(t, 2, []indexEntry{
		{id: "cold", vector: []float32{0, 1}, source: "cold.txt", chunk: 0, text: "cold text"},
		{id: "warm", vector: []float32{0.6, 0.8}, source: "warm.txt", chunk: 1, text: "warm text"},
		{id: "hot", vector: []float32{1, 0}, source: "hot.txt", chunk: 2, text: "hot text"},
	})
	emb := &stubEmbedder{dim: 2, vecs: map[string][]float32{"query": {1, 0}}}
	engine := NewRetrievalEngine(emb, idx, common.GetLogger())

	hits, err := engine.Retrieve(context.Background(), "query", 5, 0.3)
	require.NoError(t, err)

	require.Len(t, hits, 2)
	assert.Equal(t, "hot", hits[0].ID)
	assert.Equal(t, "warm", hits[1].ID)
	for _, h := range hits {
		assert.GreaterOrEqual(t, h.Score, float32(0.3), "no ranked hit may fall below minScore")
	}
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i].Score, hits[i-1].Score)
	}
}

func TestRetrieveMayReturnEmpty(t *testing.T) {
	idx := buildIndex(t, 2, []indexEntry{
		{id: "a", vector: []float32{0, 1}, source: "a.txt", chunk: 0, text: "text"},
	})
	emb := &stubEmbedder{dim: 2, vecs: map[string][]float32{"query": {1, 0}}}
	engine := NewRetrievalEngine(emb, idx, common.GetLogger())

	hits, err := engine.Retrieve(context.Background(), "query", 5, 0.5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRetrievePropagatesEmbedFailure(t *testing.T) {
	idx := buildIndex(t, 2, nil)
	emb := &stubEmbedder{dim: 2, err: fmt.Errorf("%w: boom", domain.ErrEmbedding)}
	engine := NewRetrievalEngine(emb, idx, common.GetLogger())

	_, err := engine.Retrieve(context.Background(), "query", 5, 0.3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbedding))
}

func TestRetrieveStableTieOrder(t *testing.T) {
	// first and second tie exactly; native scan order must be kept.
	idx := buildIndex(t, 2, []indexEntry{
		{id: "first", vector: []float32{1, 0}, source: "a.txt", chunk: 0, text: "a"},
		{id: "second", vector: []float32{1, 0}, source: "b.txt", chunk: 0, text: "b"},
	})
	emb := &stubEmbedder{dim: 2, vecs: map[string][]float32{"query": {1, 0}}}
	engine := NewRetrievalEngine(emb, idx, common.GetLogger())

	hits, err := engine.Retrieve(context.Background(), "query", 5, 0.1)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "first", hits[0].ID)
	assert.Equal(t, "second", hits[1].ID)
}

package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"

	"docask/internal/domain"
	"docask/internal/vectorindex"
)

// RetrievalEngine embeds a question and turns index hits into a filtered,
// descending-score ranking.
type RetrievalEngine struct {
	embedder domain.EmbeddingProvider
	index    *vectorindex.Index
	logger   arbor.ILogger
}

// NewRetrievalEngine creates a retrieval engine over the given index.
func NewRetrievalEngine(embedder domain.EmbeddingProvider, index *vectorindex.Index, logger arbor.ILogger) *RetrievalEngine {
	return &RetrievalEngine{embedder: embedder, index: index, logger: logger}
}

// Retrieve embeds the query as a single-item batch and queries the index
// with 2x oversampling so score filtering can still fill topK. Hits below
// minScore are dropped; the rest are sorted by score descending with ties
// keeping the index's native order. The result may be empty.
func (e *RetrievalEngine) Retrieve(ctx context.Context, query string, topK int, minScore float32) ([]domain.RankedHit, error) {
	vectors, err := e.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1 query vector, got %d", domain.ErrEmbedding, len(vectors))
	}

	started := time.Now()
	hits, err := e.index.Query(vectors[0], topK*2)
	if err != nil {
		return nil, err
	}

	ranked := make([]domain.RankedHit, 0, len(hits))
	for _, h := range hits {
		if h.Score < minScore {
			continue
		}
		ranked = append(ranked, domain.RankedHit{ID: h.ID, Score: h.Score, Meta: h.Meta})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	e.logger.Debug().
		Int("candidates", len(hits)).
		Int("ranked", len(ranked)).
		Dur("duration", time.Since(started)).
		Msg("Retrieved context candidates")
	return ranked, nil
}

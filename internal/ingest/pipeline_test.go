package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docask/internal/chunker"
	"docask/internal/common"
	"docask/internal/domain"
	"docask/internal/vectorindex"
)

type stubEmbedder struct {
	dim   int
	err   error
	calls int
}

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, s.dim)
		v[i%s.dim] = 1
		out[i] = v
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int { return s.dim }

func newTestPipeline(t *testing.T, chunkSize, overlap int, emb *stubEmbedder) (*Pipeline, *vectorindex.Index) {
	t.Helper()
	ch, err := chunker.New(chunkSize, overlap)
	require.NoError(t, err)
	idx, err := vectorindex.Open(t.TempDir(), emb.dim, common.GetLogger())
	require.NoError(t, err)
	return New(ch, emb, idx, common.GetLogger()), idx
}

func TestIngestRejectsBlankText(t *testing.T) {
	emb := &stubEmbedder{dim: 4}
	p, idx := newTestPipeline(t, 1000, 200, emb)

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := p.Ingest(context.Background(), text, "empty.txt")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	}
	assert.Equal(t, 0, idx.Len(), "failed ingestion must not add entries")
	assert.Equal(t, 0, emb.calls)
}

func TestIngestChunksEmbedsAndIndexes(t *testing.T) {
	emb := &stubEmbedder{dim: 4}
	p, idx := newTestPipeline(t, 1000, 200, emb)

	// 2500 characters -> 3 chunks with chunkSize=1000, overlap=200.
	text := strings.Repeat("abcde", 500)
	docID, err := p.Ingest(context.Background(), text, "report.txt")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(docID, "doc_"))
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 1, emb.calls, "all chunks embed in one batched call")

	// Chunk metadata carries source, document id and ordinal position.
	hits, err := idx.Query([]float32{1, 0, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	indexes := map[int]bool{}
	for _, h := range hits {
		assert.Equal(t, "report.txt", h.Meta.Source)
		assert.Equal(t, docID, h.Meta.DocID)
		assert.NotEmpty(t, h.Meta.Text)
		indexes[h.Meta.ChunkIndex] = true
	}
	assert.Equal(t, map[int]bool{0: true, 1: true, 2: true}, indexes)
}

func TestIngestEmbeddingFailureAddsNothing(t *testing.T) {
	emb := &stubEmbedder{dim: 4, err: fmt.Errorf("%w: quota exceeded", domain.ErrEmbedding)}
	p, idx := newTestPipeline(t, 100, 20, emb)

	_, err := p.Ingest(context.Background(), "some document text to ingest", "doc.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbedding))
	assert.Equal(t, 0, idx.Len())
}

func TestIngestedDocumentsAreIndependent(t *testing.T) {
	emb := &stubEmbedder{dim: 4}
	p, idx := newTestPipeline(t, 100, 0, emb)

	first, err := p.Ingest(context.Background(), "first document body", "first.txt")
	require.NoError(t, err)
	require.Equal(t, 1, idx.Len())

	// A later failure leaves the earlier document queryable.
	emb.err = fmt.Errorf("%w: down", domain.ErrEmbedding)
	_, err = p.Ingest(context.Background(), "second document body", "second.txt")
	require.Error(t, err)
	assert.Equal(t, 1, idx.Len())

	hits, err := idx.Query([]float32{1, 0, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, first, hits[0].Meta.DocID)
}

func TestIngestGeneratesUniqueDocumentIDs(t *testing.T) {
	emb := &stubEmbedder{dim: 4}
	p, _ := newTestPipeline(t, 100, 0, emb)

	a, err := p.Ingest(context.Background(), "document one", "a.txt")
	require.NoError(t, err)
	b, err := p.Ingest(context.Background(), "document two", "b.txt")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

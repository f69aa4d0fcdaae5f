package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"docask/internal/common"
	"docask/internal/domain"
	"docask/internal/vectorindex"
)

// stubEmbedder maps known texts to fixed vectors; unknown texts get a unit
// basis vector so every embed succeeds deterministically.
type stubEmbedder struct {
	dim  int
	vecs map[string][]float32
	err  error
}

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := s.vecs[t]; ok {
			out[i] = v
			continue
		}
		v := make([]float32, s.dim)
		v[0] = 1
		out[i] = v
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int { return s.dim }

// stubGenerator returns a scripted answer and records the prompt it saw.
type stubGenerator struct {
	answer     string
	err        error
	lastPrompt string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

type indexEntry struct {
	id     string
	vector []float32
	source string
	chunk  int
	text   string
}

func buildIndex(t *testing.T, dim int, entries []indexEntry) *vectorindex.Index {
	t.Helper()
	idx, err := vectorindex.Open(t.TempDir(), dim, common.GetLogger())
	require.NoError(t, err)
	if len(entries) == 0 {
		return idx
	}
	ids := make([]string, len(entries))
	vectors := make([][]float32, len(entries))
	metas := make([]domain.ChunkMeta, len(entries))
	texts := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
		vectors[i] = e.vector
		metas[i] = domain.ChunkMeta{Source: e.source, DocID: "doc_test", ChunkIndex: e.chunk}
		texts[i] = e.text
	}
	require.NoError(t, idx.Add(ids, vectors, metas, texts))
	return idx
}

package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"docask/internal/chunker"
	"docask/internal/common"
	"docask/internal/domain"
	"docask/internal/vectorindex"
)

// Pipeline turns extracted document text into indexed, embedded chunks.
// Ingestion is all-or-nothing: if chunking, embedding or the index append
// fails, nothing of the document becomes queryable. Previously ingested
// documents are unaffected because the index is append-only.
type Pipeline struct {
	chunker  *chunker.Chunker
	embedder domain.EmbeddingProvider
	index    *vectorindex.Index
	logger   arbor.ILogger
}

// New creates an ingestion pipeline.
func New(ch *chunker.Chunker, embedder domain.EmbeddingProvider, index *vectorindex.Index, logger arbor.ILogger) *Pipeline {
	return &Pipeline{chunker: ch, embedder: embedder, index: index, logger: logger}
}

// Ingest chunks the extracted text, embeds all chunks in one batched call
// and appends them to the vector index. Returns the new document ID.
func (p *Pipeline) Ingest(ctx context.Context, extractedText, sourceFilename string) (string, error) {
	if strings.TrimSpace(extractedText) == "" {
		return "", fmt.Errorf("%w: file %q contains no extractable text", domain.ErrValidation, sourceFilename)
	}

	docID := common.NewDocumentID()
	chunks := p.chunker.Chunk(extractedText)
	if len(chunks) == 0 {
		return "", fmt.Errorf("%w: file %q produced no chunks", domain.ErrValidation, sourceFilename)
	}

	started := time.Now()
	vectors, err := p.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return "", fmt.Errorf("embedding document %q: %w", sourceFilename, err)
	}
	if len(vectors) != len(chunks) {
		return "", fmt.Errorf("%w: embedded %d of %d chunks", domain.ErrEmbedding, len(vectors), len(chunks))
	}

	ids := make([]string, len(chunks))
	metas := make([]domain.ChunkMeta, len(chunks))
	for i := range chunks {
		ids[i] = common.NewChunkID()
		metas[i] = domain.ChunkMeta{
			Source:     sourceFilename,
			DocID:      docID,
			ChunkIndex: i,
		}
	}
	if err := p.index.Add(ids, vectors, metas, chunks); err != nil {
		return "", fmt.Errorf("indexing document %q: %w", sourceFilename, err)
	}

	p.logger.Info().
		Str("doc_id", docID).
		Str("source", sourceFilename).
		Int("chunks", len(chunks)).
		Dur("duration", time.Since(started)).
		Msg("Document ingested")
	return docID, nil
}

package domain

import "context"

// EmbeddingProvider converts text into fixed-dimension numeric vectors.
// Output length equals input length and preserves order; vectors are
// unit-normalized so inner-product similarity equals cosine similarity.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// TextGenerator produces a completion for a prompt. Implementations may load
// a client or model lazily on first use.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TextExtractor pulls plain text out of an uploaded file before ingestion.
type TextExtractor interface {
	Extract(path string) (string, error)
}

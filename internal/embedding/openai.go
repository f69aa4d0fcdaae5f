package embedding

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/ternarybob/arbor"

	"docask/internal/domain"
)

// OpenAIProvider implements domain.EmbeddingProvider against the OpenAI
// embeddings API. Batches are sized to stay under rate limits and every
// returned vector is L2-normalized so the index's inner-product scores
// equal cosine similarity.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	dim       int
	batchSize int
	timeout   time.Duration
	logger    arbor.ILogger
}

// Config configures the OpenAI embeddings provider.
type Config struct {
	APIKeyEnv string
	Model     string
	Dimension int
	BatchSize int
	Timeout   time.Duration
}

// NewOpenAIProvider creates the provider. The API key is read from the
// configured environment variable; a missing key is a construction error.
func NewOpenAIProvider(cfg Config, logger arbor.ILogger) (*OpenAIProvider, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: missing API key in env %s", domain.ErrValidation, cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 1536
		if cfg.Model == "text-embedding-3-large" {
			cfg.Dimension = 3072
		}
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &OpenAIProvider{
		client:    openai.NewClient(key),
		model:     cfg.Model,
		dim:       cfg.Dimension,
		batchSize: cfg.BatchSize,
		timeout:   cfg.Timeout,
		logger:    logger,
	}, nil
}

// Dimension returns the dimensionality of the produced vectors.
func (p *OpenAIProvider) Dimension() int { return p.dim }

// EmbedTexts embeds all texts in batched API calls. Output length equals
// input length and preserves order; empty input yields empty output.
func (p *OpenAIProvider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += p.batchSize {
		end := start + p.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		if err := p.embedBatch(ctx, texts[start:end], out[start:end]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *OpenAIProvider) embedBatch(ctx context.Context, batch []string, out [][]float32) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	started := time.Now()
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.model),
		Input: batch,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	if len(resp.Data) != len(batch) {
		return fmt.Errorf("%w: requested %d embeddings, got %d", domain.ErrEmbedding, len(batch), len(resp.Data))
	}
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return fmt.Errorf("%w: embedding index %d out of range", domain.ErrEmbedding, d.Index)
		}
		if len(d.Embedding) != p.dim {
			return fmt.Errorf("%w: model returned dimension %d, expected %d",
				domain.ErrEmbedding, len(d.Embedding), p.dim)
		}
		v := make([]float32, len(d.Embedding))
		copy(v, d.Embedding)
		l2normalize(v)
		out[d.Index] = v
	}
	p.logger.Debug().
		Str("model", p.model).
		Int("batch", len(batch)).
		Dur("duration", time.Since(started)).
		Msg("Embedded batch")
	return nil
}

// l2normalize scales a vector to unit length in place.
func l2normalize(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}

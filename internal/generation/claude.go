package generation

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"docask/internal/domain"
)

// State tracks the lazy initialization of the underlying client.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// ClaudeGenerator implements domain.TextGenerator on the Anthropic Claude
// API. Construction is cheap; the client is initialized on first Generate
// through the Unloaded -> Loading -> Ready/Failed state machine, and a
// Failed state is sticky with its reason.
type ClaudeGenerator struct {
	mu      sync.Mutex
	state   State
	loadErr error
	client  anthropic.Client

	apiKeyEnv string
	model     string
	maxTokens int
	timeout   time.Duration
	logger    arbor.ILogger
}

// Config configures the Claude generator.
type Config struct {
	APIKeyEnv string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// NewClaudeGenerator creates an unloaded generator. No network or key
// lookup happens until the first Generate call.
func NewClaudeGenerator(cfg Config, logger arbor.ILogger) *ClaudeGenerator {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "ANTHROPIC_API_KEY"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &ClaudeGenerator{
		state:     StateUnloaded,
		apiKeyEnv: cfg.APIKeyEnv,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		logger:    logger,
	}
}

// State reports the current lifecycle state.
func (g *ClaudeGenerator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *ClaudeGenerator) ensureReady() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case StateReady:
		return nil
	case StateFailed:
		return g.loadErr
	}

	g.state = StateLoading
	key := os.Getenv(g.apiKeyEnv)
	if key == "" {
		g.state = StateFailed
		g.loadErr = fmt.Errorf("%w: missing API key in env %s", domain.ErrGeneration, g.apiKeyEnv)
		g.logger.Error().Str("env", g.apiKeyEnv).Msg("Claude generator load failed")
		return g.loadErr
	}
	g.client = anthropic.NewClient(option.WithAPIKey(key))
	g.state = StateReady
	g.logger.Debug().Str("model", g.model).Int("max_tokens", g.maxTokens).Msg("Claude generator ready")
	return nil
}

// Generate produces a completion for the prompt. Failures come back as
// wrapped errors for the synthesizer to recover into its fallback answer.
func (g *ClaudeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.ensureReady(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	started := time.Now()
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: int64(g.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w: empty response from model", domain.ErrGeneration)
	}

	g.logger.Debug().
		Str("model", g.model).
		Int("prompt_chars", len(prompt)).
		Dur("duration", time.Since(started)).
		Msg("Generated answer")
	return strings.TrimSpace(text.String()), nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"docask/internal/domain"
)

// Fixed fallback answers. The answer pipeline never fails outward; every
// degraded path ends in one of these.
const (
	NoInformationAnswer = "I couldn't find any relevant information to answer your question."
	LowConfidenceAnswer = "I'm not confident in my answer based on the available information. " +
		"Could you try rephrasing your question or providing more context?"
)

// Options bounds the retrieval and context assembly per question.
type Options struct {
	TopK            int
	MinScore        float32
	MaxContextChars int
}

// Synthesizer runs the question pipeline: retrieve, assemble context,
// generate, and verify the generation is grounded before returning it.
type Synthesizer struct {
	retrieval *RetrievalEngine
	assembler *ContextAssembler
	generator domain.TextGenerator
	opts      Options
	logger    arbor.ILogger
}

// NewSynthesizer creates an answer synthesizer. The generator is an
// explicit capability so tests can substitute a stub without touching
// process-wide state.
func NewSynthesizer(retrieval *RetrievalEngine, assembler *ContextAssembler, generator domain.TextGenerator, opts Options, logger arbor.ILogger) *Synthesizer {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = 4000
	}
	return &Synthesizer{
		retrieval: retrieval,
		assembler: assembler,
		generator: generator,
		opts:      opts,
		logger:    logger,
	}
}

// Answer runs the pipeline for one question. topK <= 0 uses the configured
// default. The returned answer is always well-formed: capability failures
// degrade to a fixed fallback with empty sources instead of propagating.
func (s *Synthesizer) Answer(ctx context.Context, question string, topK int) domain.Answer {
	if topK <= 0 {
		topK = s.opts.TopK
	}

	hits, err := s.retrieval.Retrieve(ctx, question, topK, s.opts.MinScore)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Retrieval failed, returning no-information answer")
		return domain.Answer{Answer: NoInformationAnswer, Sources: []domain.Source{}}
	}

	contexts, used := s.assembler.Assemble(hits, topK, s.opts.MaxContextChars)
	if len(contexts) == 0 {
		return domain.Answer{Answer: NoInformationAnswer, Sources: []domain.Source{}}
	}

	started := time.Now()
	answer, err := s.generator.Generate(ctx, BuildPrompt(question, contexts))
	if err != nil {
		s.logger.Warn().Err(err).Msg("Generation failed, returning low-confidence answer")
		return domain.Answer{Answer: LowConfidenceAnswer, Sources: []domain.Source{}}
	}

	if !IsGrounded(answer, contexts) {
		s.logger.Info().
			Int("contexts", len(contexts)).
			Dur("duration", time.Since(started)).
			Msg("Answer rejected as ungrounded")
		return domain.Answer{Answer: LowConfidenceAnswer, Sources: []domain.Source{}}
	}

	sources := make([]domain.Source, 0, len(used))
	for _, h := range used {
		sources = append(sources, domain.Source{
			Source:     h.Meta.Source,
			Score:      h.Score,
			ChunkIndex: h.Meta.ChunkIndex,
		})
	}
	s.logger.Debug().
		Int("contexts", len(contexts)).
		Int("sources", len(sources)).
		Dur("duration", time.Since(started)).
		Msg("Answered question")
	return domain.Answer{Answer: answer, Sources: sources}
}

// BuildPrompt instructs the model to answer strictly from the supplied
// context and to say "I don't know" otherwise.
func BuildPrompt(question string, contexts []string) string {
	var sb strings.Builder
	sb.WriteString("Answer the question using ONLY the information from the provided context.\n")
	sb.WriteString("If the answer cannot be found in the context, respond with \"I don't know\".\n\n")
	for i, c := range contexts {
		fmt.Fprintf(&sb, "Context %d: %s\n\n", i+1, c)
	}
	fmt.Fprintf(&sb, "Question: %s\n\nAnswer (use only the context above):", question)
	return sb.String()
}

package service

import (
	"docask/internal/domain"
	"docask/internal/vectorindex"
)

// ContextAssembler selects a prefix of ranked hits that fits the character
// budget handed to the generation model.
type ContextAssembler struct {
	index *vectorindex.Index
}

// NewContextAssembler creates an assembler resolving chunk texts through
// the given index.
func NewContextAssembler(index *vectorindex.Index) *ContextAssembler {
	return &ContextAssembler{index: index}
}

// Assemble walks hits best-first and accumulates their texts while the
// running total stays within maxChars. The first resolvable chunk is always
// admitted, even over budget, so any relevant hit yields at least one
// context item. Stops after topK chunks. Returns the selected texts and the
// hits that backed them; both are empty when no hit had resolvable text.
func (a *ContextAssembler) Assemble(hits []domain.RankedHit, topK, maxChars int) ([]string, []domain.RankedHit) {
	var (
		contexts []string
		used     []domain.RankedHit
		total    int
	)
	for _, hit := range hits {
		text, ok := a.resolveText(hit)
		if !ok {
			continue
		}
		if len(contexts) > 0 && total+len(text) > maxChars {
			break
		}
		contexts = append(contexts, text)
		used = append(used, hit)
		total += len(text)
		if len(contexts) >= topK {
			break
		}
	}
	return contexts, used
}

// resolveText prefers the index's id side table and falls back to the text
// carried in the hit's metadata.
func (a *ContextAssembler) resolveText(hit domain.RankedHit) (string, bool) {
	if text, ok := a.index.Text(hit.ID); ok {
		return text, true
	}
	if hit.Meta.Text != "" {
		return hit.Meta.Text, true
	}
	return "", false
}

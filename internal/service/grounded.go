package service

import "strings"

// Refusal and non-answer phrases that disqualify a generation outright.
var refusalPhrases = []string{
	"i don't know",
	"i do not know",
	"i don't have",
	"i'm not sure",
	"i am not sure",
	"i'm sorry",
	"i apologize",
	"i cannot",
	"as an ai",
}

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {},
}

// IsGrounded reports whether the answer is substantiated by the contexts.
// An answer fails when it is empty, contains a refusal phrase, or when
// fewer than half of its non-stopword tokens (length > 2, lower-cased)
// appear as substrings of the concatenated context text.
//
// This is a lexical-overlap heuristic, not semantic entailment. It can
// reject valid paraphrased answers; exactly 50% overlap passes.
func IsGrounded(answer string, contexts []string) bool {
	lowered := strings.ToLower(strings.TrimSpace(answer))
	if lowered == "" {
		return false
	}
	for _, phrase := range refusalPhrases {
		if strings.Contains(lowered, phrase) {
			return false
		}
	}

	tokens := make(map[string]struct{})
	for _, word := range strings.Fields(lowered) {
		word = strings.Trim(word, `.,;:!?"'()[]`)
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		tokens[word] = struct{}{}
	}
	if len(tokens) == 0 {
		return false
	}

	contextText := strings.ToLower(strings.Join(contexts, " "))
	matching := 0
	for token := range tokens {
		if strings.Contains(contextText, token) {
			matching++
		}
	}
	return float64(matching)/float64(len(tokens)) >= 0.5
}

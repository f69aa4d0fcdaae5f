package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"docask/internal/domain"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Chunker splits normalized text into overlapping fixed-size fragments.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New validates the window parameters up front. An overlap equal to or larger
// than the chunk size would keep the window from ever advancing, so it is
// rejected here instead of looping during ingestion.
func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrValidation, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrValidation, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrValidation, overlap, chunkSize)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// Chunk slides a window of chunkSize characters across the normalized text,
// stepping chunkSize-overlap each time. The final chunk may be shorter.
// Chunks come out in the document's natural order. Window offsets count
// runes, never bytes, so a boundary cannot split a multi-byte character.
func (c *Chunker) Chunk(text string) []string {
	runes := []rune(Normalize(text))
	if len(runes) == 0 {
		return nil
	}
	var chunks []string
	for start := 0; start < len(runes); {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, strings.TrimSpace(string(runes[start:end])))
		if end == len(runes) {
			break
		}
		start = end - c.overlap
	}
	return chunks
}

// Normalize collapses whitespace runs to single spaces and trims the ends.
func Normalize(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

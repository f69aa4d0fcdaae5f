package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/arbor"

	"docask/internal/domain"
)

// Extractor pulls plain text out of uploaded files, dispatching on the
// file extension. Supported: .txt, .md, .csv, .json, .docx, .pdf.
type Extractor struct {
	logger arbor.ILogger
}

// New creates a file extractor.
func New(logger arbor.ILogger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns the plain text content of the file at path.
func (e *Extractor) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".csv", ".json":
		return e.extractPlain(path)
	case ".md":
		return e.extractMarkdown(path)
	case ".docx":
		return e.extractDocx(path)
	case ".pdf":
		return e.extractPDF(path)
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", domain.ErrExtraction, ext)
	}
}

func (e *Extractor) extractPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrExtraction, filepath.Base(path))
	}
	return string(data), nil
}

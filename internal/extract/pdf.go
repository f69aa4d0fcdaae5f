package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"docask/internal/domain"
)

var (
	// Text-showing operators in decompressed content streams: (...) Tj and
	// the [...] TJ array form.
	textShowRe = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)\s*(?:Tj|'|")`)
	tjArrayRe  = regexp.MustCompile(`\[((?:\\.|[^\\\]])*)\]\s*TJ`)
	parenRe    = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)
	pageNumRe  = regexp.MustCompile(`(\d+)\D*$`)
)

// extractPDF decompresses the page content streams with pdfcpu and parses
// the text-showing operators out of them. Best effort: text using encoded
// or subset fonts may come out garbled, same as the usual PDF extractors.
func (e *Extractor) extractPDF(path string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "docask-pdf-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}
	defer os.RemoveAll(tmpDir)

	if err := api.ExtractContentFile(path, tmpDir, nil, nil); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	// Content files carry the page number in their name; sort numerically so
	// pages concatenate in reading order.
	sort.Slice(names, func(i, j int) bool { return pageNum(names[i]) < pageNum(names[j]) })

	var sb strings.Builder
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(tmpDir, name))
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrExtraction, err)
		}
		page := contentStreamText(string(data))
		if page != "" {
			sb.WriteString(page)
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

func pageNum(name string) int {
	m := pageNumRe.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// contentStreamText pulls the literal strings shown by Tj/TJ operators.
func contentStreamText(stream string) string {
	var parts []string
	for _, m := range textShowRe.FindAllStringSubmatch(stream, -1) {
		parts = append(parts, unescapePDFString(m[1]))
	}
	for _, m := range tjArrayRe.FindAllStringSubmatch(stream, -1) {
		for _, p := range parenRe.FindAllStringSubmatch(m[1], -1) {
			parts = append(parts, unescapePDFString(p[1]))
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func unescapePDFString(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '(', ')', '\\':
			sb.WriteByte(s[i])
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

package extract

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docask/internal/common"
	"docask/internal/domain"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestExtractPlainText(t *testing.T) {
	e := New(common.GetLogger())
	path := writeFile(t, "notes.txt", []byte("hello world\nsecond line"))

	text, err := e.Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world\nsecond line", text)
}

func TestExtractCSVAndJSONAsPlainText(t *testing.T) {
	e := New(common.GetLogger())

	csvPath := writeFile(t, "data.csv", []byte("name,age\nalice,30"))
	text, err := e.Extract(csvPath)
	require.NoError(t, err)
	assert.Contains(t, text, "alice,30")

	jsonPath := writeFile(t, "data.json", []byte(`{"key":"value"}`))
	text, err = e.Extract(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, text, `"key"`)
}

func TestExtractRejectsInvalidUTF8(t *testing.T) {
	e := New(common.GetLogger())
	path := writeFile(t, "binary.txt", []byte{0xff, 0xfe, 0x00, 0x80})

	_, err := e.Extract(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtraction))
}

func TestExtractUnsupportedExtension(t *testing.T) {
	e := New(common.GetLogger())
	path := writeFile(t, "tool.exe", []byte("does not matter"))

	_, err := e.Extract(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtraction))
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestExtractCaseInsensitiveExtension(t *testing.T) {
	e := New(common.GetLogger())
	path := writeFile(t, "UPPER.TXT", []byte("shouting"))

	text, err := e.Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "shouting", text)
}

func TestExtractMissingFile(t *testing.T) {
	e := New(common.GetLogger())
	_, err := e.Extract(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtraction))
}

func TestExtractMarkdownStripsMarkup(t *testing.T) {
	e := New(common.GetLogger())
	md := "# Title\n\nSome **bold** and *italic* text with a [link](https://example.com).\n\n- first item\n- second item\n\n```go\nfmt.Println(\"code\")\n```\n"
	path := writeFile(t, "doc.md", []byte(md))

	text, err := e.Extract(path)
	require.NoError(t, err)

	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "bold")
	assert.Contains(t, text, "italic")
	assert.Contains(t, text, "link")
	assert.Contains(t, text, "first item")
	assert.Contains(t, text, `fmt.Println("code")`)

	assert.NotContains(t, text, "#")
	assert.NotContains(t, text, "**")
	assert.NotContains(t, text, "](")
	assert.NotContains(t, text, "```")
}

func TestExtractDocx(t *testing.T) {
	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	e := New(common.GetLogger())
	text, err := e.Extract(path)
	require.NoError(t, err)
	assert.Contains(t, text, "First paragraph.")
	assert.Contains(t, text, "Second paragraph.")
	assert.NotContains(t, text, "<w:t>")
}

func TestExtractDocxWithoutDocumentXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("something/else.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	e := New(common.GetLogger())
	_, err = e.Extract(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtraction))
}

func TestContentStreamText(t *testing.T) {
	stream := `BT /F1 12 Tf 72 720 Td (Hello) Tj 0 -14 Td (World\(escaped\)) Tj ET
[(frag)-250(mented)]TJ`

	text := contentStreamText(stream)
	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "World(escaped)")
	assert.Contains(t, text, "frag")
	assert.Contains(t, text, "mented")
}

func TestUnescapePDFString(t *testing.T) {
	assert.Equal(t, "a(b)c", unescapePDFString(`a\(b\)c`))
	assert.Equal(t, "line1\nline2", unescapePDFString(`line1\nline2`))
	assert.Equal(t, `back\slash`, unescapePDFString(`back\\slash`))
	assert.Equal(t, "plain", unescapePDFString("plain"))
}

func TestPageNumOrdering(t *testing.T) {
	assert.Less(t, pageNum("doc_Content_page_2.txt"), pageNum("doc_Content_page_10.txt"))
}

package extraction

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSupported(t *testing.T) {
	e := NewExtractor()

	assert.True(t, e.IsSupported("notes.pdf"))
	assert.True(t, e.IsSupported("slides.PPTX"), "extension check should be case-insensitive")
	assert.True(t, e.IsSupported("essay.docx"))
	assert.True(t, e.IsSupported("readme.txt"))
	assert.False(t, e.IsSupported("image.png"))
	assert.False(t, e.IsSupported("archive"))
}

func TestExtractUnsupportedFormat(t *testing.T) {
	e := NewExtractor()

	result, err := e.Extract(context.Background(), "diagram.svg")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractMissingFile(t *testing.T) {
	e := NewExtractor()

	result, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestExtractTXT(t *testing.T) {
	// 120 lines should produce three units: 50, 50 and 20 lines.
	var sb strings.Builder
	for i := 1; i <= 120; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))

	e := NewExtractor()
	result, err := e.Extract(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, result.Units, 3)
	assert.Equal(t, 1, result.Units[0].Number)
	assert.Equal(t, 3, result.Units[2].Number)
	assert.True(t, strings.HasPrefix(result.Units[0].Text, "line 1\n"))
	assert.Contains(t, result.Units[1].Text, "line 51")
	assert.Contains(t, result.Units[2].Text, "line 120")
	assert.Equal(t, sb.String(), result.FullText)
	assert.Equal(t, "TXT", result.Metadata["format"])
	assert.Equal(t, "3", result.Metadata["page_count"])
}

func TestExtractTXTSkipsBlankGroups(t *testing.T) {
	// 50 blank lines followed by content: the first group is dropped but
	// the second keeps its number.
	content := strings.Repeat("\n", 50) + "actual content"
	path := filepath.Join(t.TempDir(), "sparse.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	e := NewExtractor()
	result, err := e.Extract(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, result.Units, 1)
	assert.Equal(t, 2, result.Units[0].Number)
	assert.Equal(t, "actual content", result.Units[0].Text)
}

// writeTestPPTX builds a minimal PPTX archive with the given slide texts.
// Each entry becomes one slide with one text run per line.
func writeTestPPTX(t *testing.T, path string, slides []string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for i, slideText := range slides {
		part, err := w.Create(fmt.Sprintf("ppt/slides/slide%d.xml", i+1))
		require.NoError(t, err)

		var body strings.Builder
		body.WriteString(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree>`)
		for _, line := range strings.Split(slideText, "\n") {
			fmt.Fprintf(&body, `<p:sp><p:txBody><a:p><a:r><a:t>%s</a:t></a:r></a:p></p:txBody></p:sp>`, line)
		}
		body.WriteString(`</p:spTree></p:cSld></p:sld>`)

		_, err = part.Write([]byte(body.String()))
		require.NoError(t, err)
	}

	core, err := w.Create("docProps/core.xml")
	require.NoError(t, err)
	_, err = core.Write([]byte(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:creator>Test Author</dc:creator><dc:title>Test Deck</dc:title></cp:coreProperties>`))
	require.NoError(t, err)

	require.NoError(t, w.Close())
}

func TestExtractPPTX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pptx")
	writeTestPPTX(t, path, []string{
		"Title slide\nSubtitle text",
		"",
		"Closing remarks",
	})

	e := NewExtractor()
	result, err := e.Extract(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, result.Units, 3)
	assert.Equal(t, 1, result.Units[0].Number)
	assert.Equal(t, "Title slide\nSubtitle text", result.Units[0].Text)
	assert.Equal(t, 2, result.Units[1].Number)
	assert.Empty(t, result.Units[1].Text, "empty slide should keep its number with no text")
	assert.Equal(t, "Closing remarks", result.Units[2].Text)
	assert.Equal(t, "Title slide\nSubtitle text\n\nClosing remarks", result.FullText)
	assert.Equal(t, "PPTX", result.Metadata["format"])
	assert.Equal(t, "3", result.Metadata["slide_count"])
	assert.Equal(t, "Test Author", result.Metadata["author"])
	assert.Equal(t, "Test Deck", result.Metadata["title"])
}

func TestExtractPPTXTableCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.pptx")

	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	part, err := w.Create("ppt/slides/slide1.xml")
	require.NoError(t, err)
	// A graphicFrame holding a table; cell text uses the same a:t runs
	// as shape text.
	_, err = part.Write([]byte(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><p:graphicFrame><a:graphic><a:graphicData><a:tbl><a:tr><a:tc><a:txBody><a:p><a:r><a:t>Cell one</a:t></a:r></a:p></a:txBody></a:tc><a:tc><a:txBody><a:p><a:r><a:t>Cell two</a:t></a:r></a:p></a:txBody></a:tc></a:tr></a:tbl></a:graphicData></a:graphic></p:graphicFrame></p:spTree></p:cSld></p:sld>`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	e := NewExtractor()
	result, err := e.Extract(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, result.Units, 1)
	assert.Equal(t, "Cell one\nCell two", result.Units[0].Text)
}

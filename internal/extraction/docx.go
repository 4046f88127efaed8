package extraction

import (
	"fmt"
	"strconv"
	"strings"

	"baliance.com/gooxml/document"
)

// docxParagraphsPerUnit groups paragraphs into numbered units for source
// attribution, since DOCX files have no physical page breaks in their
// markup.
const docxParagraphsPerUnit = 10

// extractDOCX reads a Word document and produces units of up to
// docxParagraphsPerUnit paragraphs each.
func extractDOCX(path string) (*Result, error) {
	doc, err := document.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}

	paragraphs := doc.Paragraphs()

	var units []Unit
	var all []string
	var group []string
	unitNum := 1

	for i, p := range paragraphs {
		var sb strings.Builder
		for _, r := range p.Runs() {
			sb.WriteString(r.Text())
		}
		text := strings.TrimSpace(sb.String())
		if text != "" {
			group = append(group, text)
			all = append(all, text)
		}

		if (i+1)%docxParagraphsPerUnit == 0 && len(group) > 0 {
			units = append(units, Unit{Number: unitNum, Text: strings.Join(group, "\n")})
			group = nil
			unitNum++
		}
	}
	if len(group) > 0 {
		units = append(units, Unit{Number: unitNum, Text: strings.Join(group, "\n")})
	}

	metadata := map[string]string{
		"format":          "DOCX",
		"page_count":      strconv.Itoa(len(units)),
		"paragraph_count": strconv.Itoa(len(paragraphs)),
	}
	if author := doc.CoreProperties.Author(); author != "" {
		metadata["author"] = author
	}
	if title := doc.CoreProperties.Title(); title != "" {
		metadata["title"] = title
	}

	return &Result{
		FullText: strings.Join(all, "\n\n"),
		Units:    units,
		Metadata: metadata,
	}, nil
}

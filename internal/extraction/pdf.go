package extraction

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF reads a PDF and produces one unit per page. A page that
// cannot be decoded still yields an empty unit so page numbering stays
// aligned with the physical document.
func extractPDF(path string) (*Result, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()

	metadata := map[string]string{
		"format":     "PDF",
		"page_count": strconv.Itoa(numPages),
	}
	info := reader.Trailer().Key("Info")
	if author := info.Key("Author"); author.Kind() == pdf.String {
		if s := author.RawString(); s != "" {
			metadata["author"] = s
		}
	}
	if title := info.Key("Title"); title.Kind() == pdf.String {
		if s := title.RawString(); s != "" {
			metadata["title"] = s
		}
	}

	units := make([]Unit, 0, numPages)
	var parts []string
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			units = append(units, Unit{Number: pageNum})
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("pdf page extraction failed",
				slog.String("path", path),
				slog.Int("page", pageNum),
				slog.String("error", err.Error()))
			units = append(units, Unit{Number: pageNum})
			continue
		}

		if strings.TrimSpace(text) == "" {
			units = append(units, Unit{Number: pageNum})
			continue
		}

		units = append(units, Unit{Number: pageNum, Text: text})
		parts = append(parts, text)
	}

	return &Result{
		FullText: strings.Join(parts, "\n\n"),
		Units:    units,
		Metadata: metadata,
	}, nil
}

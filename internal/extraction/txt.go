package extraction

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// txtLinesPerUnit groups plain-text lines into numbered units for source
// attribution.
const txtLinesPerUnit = 50

// extractTXT reads a plain-text file and produces units of up to
// txtLinesPerUnit lines each. Whitespace-only groups are skipped; the
// full text keeps the file content verbatim.
func extractTXT(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read txt: %w", err)
	}

	content := string(data)
	lines := strings.Split(content, "\n")

	var units []Unit
	for i := 0; i < len(lines); i += txtLinesPerUnit {
		end := i + txtLinesPerUnit
		if end > len(lines) {
			end = len(lines)
		}
		unitText := strings.Join(lines[i:end], "\n")
		if strings.TrimSpace(unitText) == "" {
			continue
		}
		units = append(units, Unit{
			Number: i/txtLinesPerUnit + 1,
			Text:   unitText,
		})
	}

	metadata := map[string]string{
		"format":     "TXT",
		"line_count": strconv.Itoa(len(lines)),
		"page_count": strconv.Itoa(len(units)),
	}

	return &Result{
		FullText: content,
		Units:    units,
		Metadata: metadata,
	}, nil
}

package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/opendeck/opendeck-api/internal/platform/logger"
)

// Extractor dispatches text extraction to a format-specific reader based
// on the document's file extension.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// supportedExtensions maps each handled extension to its reader.
var supportedExtensions = map[string]func(path string) (*Result, error){
	".pdf":  extractPDF,
	".docx": extractDOCX,
	".pptx": extractPPTX,
	".txt":  extractTXT,
}

// IsSupported reports whether the file's extension has a registered reader.
// The check is case-insensitive.
func (e *Extractor) IsSupported(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extract reads the document at path and returns its text with unit-level
// attribution. It returns ErrUnsupportedFormat for unknown extensions and
// wraps reader failures in ErrExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, path string) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, slog.Default())

	ext := strings.ToLower(filepath.Ext(path))
	reader, ok := supportedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	log.Info("extracting document",
		slog.String("path", path),
		slog.String("extension", ext))

	result, err := reader(path)
	if err != nil {
		log.Error("extraction failed",
			slog.String("path", path),
			slog.String("extension", ext),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	log.Info("document extracted",
		slog.String("path", path),
		slog.Int("units", len(result.Units)),
		slog.Int("chars", len(result.FullText)))

	return result, nil
}

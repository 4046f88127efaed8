package extraction

import "errors"

var (
	// ErrUnsupportedFormat is returned when a document's file extension
	// is not one of the supported formats.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtractionFailed is returned when text extraction fails for a
	// supported format, for example because the file is corrupt.
	ErrExtractionFailed = errors.New("extraction failed")
)

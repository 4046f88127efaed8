package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrFileNotFound is returned when the requested file does not exist
	// in the backend.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidPath is returned when a storage path escapes the
	// backend's root or is otherwise malformed.
	ErrInvalidPath = errors.New("invalid storage path")
)

// FileStore stores and retrieves uploaded document files. Paths returned
// by Save are opaque keys; callers persist them on the document record
// and pass them back unchanged.
type FileStore interface {
	// Save writes the file contents and returns its storage path. Files
	// are namespaced per owner; the stored name carries a timestamp so
	// repeated uploads of the same filename never collide.
	Save(ctx context.Context, ownerID uuid.UUID, filename string, r io.Reader) (string, error)

	// Get returns the file contents at the given storage path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Delete removes the file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether a file is present at the given path.
	Exists(ctx context.Context, path string) (bool, error)
}

var unsafeChars = regexp.MustCompile(`[^\w\s.-]`)

// sanitizeFilename strips path components and unsafe characters from an
// uploaded filename and prefixes a timestamp to avoid collisions.
func sanitizeFilename(filename string) string {
	name := filepath.Base(filename)
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." {
		name = "unnamed_file"
	}
	return fmt.Sprintf("%s_%s", time.Now().UTC().Format("20060102_150405"), name)
}

package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore keeps uploaded files on the local filesystem under a base
// directory, organized as <base>/<owner>/<timestamped filename>.
type LocalStore struct {
	basePath string
	logger   *slog.Logger
}

// NewLocalStore creates the base directory if needed and returns a
// filesystem-backed store.
func NewLocalStore(basePath string, logger *slog.Logger) (*LocalStore, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create base path: %w", err)
	}

	logger.Info("local storage initialized", slog.String("base_path", abs))

	return &LocalStore{basePath: abs, logger: logger}, nil
}

// fullPath resolves a storage path under the base directory, rejecting
// anything that would escape it.
func (s *LocalStore) fullPath(path string) (string, error) {
	full := filepath.Join(s.basePath, filepath.FromSlash(path))
	if !strings.HasPrefix(full, s.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return full, nil
}

func (s *LocalStore) Save(ctx context.Context, ownerID uuid.UUID, filename string, r io.Reader) (string, error) {
	safeName := sanitizeFilename(filename)
	storagePath := ownerID.String() + "/" + safeName

	full, err := s.fullPath(storagePath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create owner directory: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(full)
		return "", fmt.Errorf("write file: %w", err)
	}

	s.logger.InfoContext(ctx, "file saved",
		slog.String("owner_id", ownerID.String()),
		slog.String("path", storagePath),
		slog.Int64("size", size))

	return storagePath, nil
}

func (s *LocalStore) Get(ctx context.Context, path string) ([]byte, error) {
	full, err := s.fullPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func (s *LocalStore) Delete(ctx context.Context, path string) error {
	full, err := s.fullPath(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (s *LocalStore) Exists(ctx context.Context, path string) (bool, error) {
	full, err := s.fullPath(path)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

var _ FileStore = (*LocalStore)(nil)

// Package file provides a filesystem-backed blob store for uploaded documents.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/docqa-labs/docqa-cli/internal/core/domain"
	"github.com/docqa-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore stores raw uploaded bytes as files under a base directory.
// Locators are uuid-prefixed file names, so repeated uploads of the same
// file never collide.
type BlobStore struct {
	baseDir string
}

// NewBlobStore creates a blob store rooted at baseDir.
// If baseDir is empty, defaults to ~/.docqa/data/files.
func NewBlobStore(baseDir string) (*BlobStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".docqa", "data", "files")
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}

	return &BlobStore{baseDir: baseDir}, nil
}

// BaseDir returns the directory holding stored blobs.
func (s *BlobStore) BaseDir() string {
	return s.baseDir
}

// Store writes data to a new file and returns its locator.
func (s *BlobStore) Store(_ context.Context, name string, data []byte) (string, error) {
	locator := uuid.New().String() + "_" + sanitize(name)

	if err := os.WriteFile(filepath.Join(s.baseDir, locator), data, 0600); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}
	return locator, nil
}

// Read returns the stored bytes for a locator.
func (s *BlobStore) Read(_ context.Context, locator string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, sanitize(locator)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading blob: %w", err)
	}
	return data, nil
}

// Delete removes the stored file for a locator.
func (s *BlobStore) Delete(_ context.Context, locator string) error {
	err := os.Remove(filepath.Join(s.baseDir, sanitize(locator)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

// sanitize strips path separators so a locator or upload name can never
// escape the base directory.
func sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == string(filepath.Separator) {
		return "unnamed"
	}
	return name
}

// Package media stores uploaded assets, rendered previews and export
// bundles behind the BlobStore port. The local provider keeps an
// S3-like key layout on disk and is served back at a public URL base.
package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"autoficate/ports"
)

// Key layout:
//
//	main/<user_code>/<file>     uploaded base images
//	preview/<user_code>/<file>  rendered previews
//	export/<user_code>/<file>   export zip bundles
const (
	PrefixMain    = "main"
	PrefixPreview = "preview"
	PrefixExport  = "export"
)

// Key joins key segments with forward slashes.
func Key(segments ...string) string {
	return path.Join(segments...)
}

// LocalStore implements ports.BlobStore on the local filesystem.
type LocalStore struct {
	basePath   string
	publicBase string
}

// NewLocalStore creates a local blob store rooted at basePath. Stored
// keys resolve to publicBase+"/"+key URLs.
func NewLocalStore(basePath, publicBase string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &LocalStore{
		basePath:   basePath,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// BasePath returns the filesystem root, for static file serving.
func (s *LocalStore) BasePath() string { return s.basePath }

// Store writes the blob, creating parent directories as needed.
func (s *LocalStore) Store(ctx context.Context, key string, r io.Reader) error {
	filePath := s.keyToPath(key)

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Get opens the blob for reading.
func (s *LocalStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.keyToPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob not found: %s", key)
		}
		return nil, fmt.Errorf("failed to open %s: %w", key, err)
	}
	return f, nil
}

// Delete removes a blob. Missing blobs are not an error.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.keyToPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Exists checks whether a blob is present.
func (s *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.keyToPath(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", key, err)
}

// DeletePrefix removes every blob under the prefix. Used on logout and
// when an upload replaces the prior asset of the same kind.
func (s *LocalStore) DeletePrefix(ctx context.Context, prefix string) error {
	dir := s.keyToPath(prefix)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete prefix %s: %w", prefix, err)
	}
	return nil
}

// PublicURL maps a key to the URL the rendered page references.
func (s *LocalStore) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

func (s *LocalStore) keyToPath(key string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(key))
}

var _ ports.BlobStore = (*LocalStore)(nil)

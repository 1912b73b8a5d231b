package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prn-tf/bookworm-api/internal/pkg/crypto"
)

// FilesystemStore stores images on the local filesystem, content-addressed
// by their SHA-256 hash with 2-level directory sharding to keep directories
// small. Files are served under a configured public base URL.
type FilesystemStore struct {
	dataDir string
	baseURL string
	logger  zerolog.Logger
}

// NewFilesystemStore creates a filesystem-backed blob store.
// baseURL is the public prefix under which dataDir is served,
// e.g. "http://localhost:3000/media".
func NewFilesystemStore(dataDir, baseURL string, logger zerolog.Logger) (*FilesystemStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &FilesystemStore{
		dataDir: dataDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.With().Str("blob", "filesystem").Logger(),
	}, nil
}

// Upload stores the payload at its content-addressed path.
// Storing the same content twice is a no-op.
func (s *FilesystemStore) Upload(ctx context.Context, data []byte, contentType string) (*Upload, error) {
	hash := crypto.ComputeSHA256(data)
	path := s.shardedPath(hash)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
	}

	s.logger.Debug().Str("hash", hash).Int("size", len(data)).Msg("image stored")

	return &Upload{
		URL:    fmt.Sprintf("%s/%s/%s/%s", s.baseURL, hash[0:2], hash[2:4], hash),
		Handle: hash,
	}, nil
}

// Delete removes the image for the given handle.
func (s *FilesystemStore) Delete(ctx context.Context, handle string) error {
	if len(handle) < 4 {
		return fmt.Errorf("invalid blob handle: %q", handle)
	}

	if err := os.Remove(s.shardedPath(handle)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// shardedPath computes the on-disk location for a content hash.
// Example: {dataDir}/ab/cd/abcdef1234...
func (s *FilesystemStore) shardedPath(hash string) string {
	return filepath.Join(s.dataDir, hash[0:2], hash[2:4], hash)
}

// Ensure FilesystemStore implements Store.
var _ Store = (*FilesystemStore)(nil)

package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"inkwell/internal/models"

	"github.com/google/uuid"
)

// ImageUpload carries the bytes and metadata of an uploaded featured image.
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ImageStorage persists uploaded images and returns the relative path they
// are served under.
type ImageStorage interface {
	Save(ctx context.Context, upload *ImageUpload) (string, error)
	Remove(ctx context.Context, relPath string) error
}

// extensions by sniffed content type; anything else is rejected.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// DiskImageStore stores images on the local filesystem under a root
// directory, in a posts/ subdirectory with random names.
type DiskImageStore struct {
	root     string
	maxBytes int64
}

// NewDiskImageStore creates a DiskImageStore rooted at dir with an upload
// size cap in megabytes.
func NewDiskImageStore(dir string, maxSizeMB int) *DiskImageStore {
	return &DiskImageStore{
		root:     dir,
		maxBytes: int64(maxSizeMB) * 1024 * 1024,
	}
}

func (s *DiskImageStore) Save(_ context.Context, upload *ImageUpload) (string, error) {
	if int64(len(upload.Content)) > s.maxBytes {
		return "", models.NewValidationError(
			fmt.Sprintf("image must not exceed %dMB", s.maxBytes/(1024*1024)), nil)
	}

	// Trust the bytes, not the declared content type.
	sniffed := http.DetectContentType(upload.Content)
	ext, ok := imageExtensions[sniffed]
	if !ok {
		return "", models.NewValidationError("image must be a JPEG, PNG, or GIF", nil)
	}

	relPath := path.Join("posts", uuid.NewString()+ext)
	fullPath := filepath.Join(s.root, filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", models.NewInternalError("failed to create upload directory", err)
	}
	if err := os.WriteFile(fullPath, upload.Content, 0o644); err != nil {
		return "", models.NewInternalError("failed to write image", err)
	}

	return relPath, nil
}

// Remove deletes a previously stored image. Missing files are not an error;
// paths escaping the root are rejected.
func (s *DiskImageStore) Remove(_ context.Context, relPath string) error {
	if relPath == "" {
		return nil
	}

	clean := path.Clean(relPath)
	if strings.HasPrefix(clean, "..") || path.IsAbs(clean) {
		return models.NewValidationError("invalid image path", nil)
	}

	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return models.NewInternalError("failed to remove image", err)
	}
	return nil
}

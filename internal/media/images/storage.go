// Package images provides validation and storage of uploaded cover images.
package images

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// MaxUploadSize is the largest accepted cover upload in bytes.
const MaxUploadSize = 5 << 20

// allowedFormats maps decoded image formats to the stored file extension.
var allowedFormats = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"webp": "webp",
}

// Storage manages cover files on disk.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// NewStorage creates a Storage rooted at basePath.
// The directory is created if it doesn't exist.
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create covers directory: %w", err)
	}

	return &Storage{
		basePath: basePath,
	}, nil
}

// Save validates and stores an uploaded cover for a book.
// The data must decode as JPEG, PNG or WebP and be at most MaxUploadSize
// bytes. Returns the stored filename, e.g. "book-abc123.jpg".
// A previously stored cover in a different format is removed.
func (s *Storage) Save(id string, imgData []byte) (string, error) {
	if id == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}

	if len(imgData) == 0 {
		return "", fmt.Errorf("image data cannot be empty")
	}
	if len(imgData) > MaxUploadSize {
		return "", fmt.Errorf("image exceeds %d bytes", MaxUploadSize)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(imgData))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	ext, ok := allowedFormats[format]
	if !ok {
		return "", fmt.Errorf("unsupported image format %q", format)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeAllLocked(id)

	filename := fmt.Sprintf("%s.%s", id, ext)
	path := filepath.Join(s.basePath, filename)

	if err := os.WriteFile(path, imgData, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return filename, nil
}

// Get retrieves the stored cover data for a book.
func (s *Storage) Get(id string) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.pathLocked(id)
	if path == "" {
		return nil, os.ErrNotExist
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("cover not found for %s: %w", id, err)
		}
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}

	return data, nil
}

// Exists checks if a cover is stored for a book.
func (s *Storage) Exists(id string) bool {
	if id == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.pathLocked(id) != ""
}

// Delete removes a book's cover. Deleting a missing cover is not an error.
func (s *Storage) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeAllLocked(id)
	return nil
}

// Hash computes the SHA256 hash of a book's cover.
// Returns a hex-encoded string for ETag/cache validation.
func (s *Storage) Hash(id string) (string, error) {
	data, err := s.Get(id)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Path returns the full filesystem path of a book's cover, or an empty
// string when no cover is stored.
func (s *Storage) Path(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pathLocked(id)
}

// pathLocked probes the allowed extensions for an existing file.
// Callers must hold at least a read lock.
func (s *Storage) pathLocked(id string) string {
	for _, ext := range allowedFormats {
		path := filepath.Join(s.basePath, fmt.Sprintf("%s.%s", id, ext))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// removeAllLocked deletes every stored variant of a book's cover.
// Callers must hold the write lock.
func (s *Storage) removeAllLocked(id string) {
	for _, ext := range allowedFormats {
		os.Remove(filepath.Join(s.basePath, fmt.Sprintf("%s.%s", id, ext)))
	}
}

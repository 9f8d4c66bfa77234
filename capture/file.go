package capture

import (
	"context"
	"image"
	"os"
	"sync"

	"github.com/nvr-ai/go-snapshot/images"
	"github.com/pkg/errors"
)

// FileSource serves a still image from disk as if it were a camera that never moves.
type FileSource struct {
	path string

	mu     sync.RWMutex
	img    image.Image
	closed bool
}

// NewFileSource decodes the JPEG, PNG or WebP image at path.
//
// Arguments:
//   - path: The image file.
//
// Returns:
//   - *FileSource: The source.
//   - error: An error if the file cannot be read or decoded.
func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	img, _, err := images.Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return NewImageSource(path, img), nil
}

// NewImageSource wraps an already decoded image. name is used in error messages.
func NewImageSource(name string, img image.Image) *FileSource {
	return &FileSource{path: name, img: img}
}

// Frame returns the image.
func (s *FileSource) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, errors.Errorf("frame source %s is closed", s.path)
	}
	return s.img, nil
}

// Path returns the file the source was loaded from.
func (s *FileSource) Path() string {
	return s.path
}

// Close marks the source closed.
func (s *FileSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.img = nil
	return nil
}

package util

import (
	"image"
	"os"
	"path/filepath"

	"github.com/nvr-ai/go-snapshot/images"
	"github.com/pkg/errors"
)

// OutputDir writes encoded images into a directory.
type OutputDir struct {
	Dir     string
	Format  images.ImageFormat
	Quality int
}

// NewOutputDir creates dir if needed.
//
// Arguments:
// - dir: The output directory.
// - format: The encoding of written images.
// - quality: JPEG/WebP quality; see images.Encode.
//
// Returns:
// - *OutputDir: The writer.
// - error: Error if the directory cannot be created.
func NewOutputDir(dir string, format images.ImageFormat, quality int) (*OutputDir, error) {
	if format.Extension() == "" {
		return nil, errors.Wrapf(images.ErrUnsupportedFormat, "%q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", dir)
	}
	return &OutputDir{Dir: dir, Format: format, Quality: quality}, nil
}

// Save encodes img and writes it as <name><ext>, returning the written path.
func (o *OutputDir) Save(name string, img image.Image) (string, error) {
	encoded, err := images.Encode(img, o.Format, o.Quality)
	if err != nil {
		return "", err
	}

	path := filepath.Join(o.Dir, name+o.Format.Extension())
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encoded.Data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", errors.Wrapf(err, "rename %s", tmp)
	}
	return path, nil
}

// Remove deletes a file written by Save. A file that is already gone is not an error.
func (o *OutputDir) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %s", path)
	}
	return nil
}

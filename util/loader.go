// Package util - loading input images and writing annotated captures to disk.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nvr-ai/go-snapshot/images"
	"github.com/pkg/errors"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
	// Frame is the frame number parsed from names like "frame-12.jpg", or -1.
	Frame int
}

// LoadDirectoryImageFiles reads all JPEG, PNG and WebP files from a directory.
//
// Numbered frames ("frame-2.jpg" before "frame-10.jpg") come first in frame order,
// followed by the remaining files in name order.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: Slice of ImageFile, each containing the raw bytes of an image file.
// - error: Error if loading fails.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read directory %s", dir)
	}

	var out []ImageFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if _, err := images.FormatFromPath(file.Name()); err != nil {
			continue
		}

		imgPath := filepath.Join(dir, file.Name())
		data, err := os.ReadFile(imgPath)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", imgPath)
		}
		out = append(out, ImageFile{
			Path:  imgPath,
			Data:  data,
			Frame: frameNumber(file.Name()),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Frame >= 0 && b.Frame >= 0:
			return a.Frame < b.Frame
		case a.Frame >= 0 || b.Frame >= 0:
			return a.Frame >= 0
		default:
			return a.Path < b.Path
		}
	})

	return out, nil
}

// LoadImageFiles loads a single image file, or every image in a directory.
func LoadImageFiles(path string) ([]ImageFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if info.IsDir() {
		return LoadDirectoryImageFiles(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return []ImageFile{{Path: path, Data: data, Frame: frameNumber(filepath.Base(path))}}, nil
}

func frameNumber(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if !strings.HasPrefix(base, "frame-") {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimPrefix(base, "frame-"))
	if err != nil || n < 0 {
		return -1
	}
	return n
}

package util

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-snapshot/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600))
}

func TestLoadDirectoryImageFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame-10.jpg", "frame-2.png", "b.webp", "a.jpeg", "notes.txt", "frame-x.jpg"} {
		touch(t, dir, name)
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	files, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f.Path))
	}
	assert.Equal(t, []string{"frame-2.png", "frame-10.jpg", "a.jpeg", "b.webp", "frame-x.jpg"}, names)
	assert.Equal(t, 2, files[0].Frame)
	assert.Equal(t, -1, files[2].Frame)
	assert.Equal(t, []byte("frame-2.png"), files[0].Data)
}

func TestLoadDirectoryImageFiles_Missing(t *testing.T) {
	_, err := LoadDirectoryImageFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoadImageFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "frame-3.png")

	single, err := LoadImageFiles(filepath.Join(dir, "frame-3.png"))
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, 3, single[0].Frame)

	all, err := LoadImageFiles(dir)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = LoadImageFiles(filepath.Join(dir, "nope.png"))
	assert.Error(t, err)
}

func TestOutputDir_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "captures")
	out, err := NewOutputDir(dir, images.FormatPNG, 0)
	require.NoError(t, err)

	path, err := out.Save("abc", image.NewRGBA(image.Rect(0, 0, 8, 4)))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, format, err := images.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, images.FormatPNG, format)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestOutputDir_Remove(t *testing.T) {
	out, err := NewOutputDir(t.TempDir(), images.FormatPNG, 0)
	require.NoError(t, err)

	path, err := out.Save("abc", image.NewRGBA(image.Rect(0, 0, 8, 4)))
	require.NoError(t, err)

	require.NoError(t, out.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Already gone.
	assert.NoError(t, out.Remove(path))
}

func TestNewOutputDir_BadFormat(t *testing.T) {
	_, err := NewOutputDir(t.TempDir(), images.ImageFormat("gif"), 0)
	assert.ErrorIs(t, err, images.ErrUnsupportedFormat)
}

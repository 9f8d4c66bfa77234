package capture

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-snapshot/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, dir, name string, format images.ImageFormat) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	img.Set(5, 5, color.RGBA{R: 255, A: 255})
	encoded, err := images.Encode(img, format, 0)
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, encoded.Data, 0o600))
	return path
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()

	for _, format := range []images.ImageFormat{images.FormatPNG, images.FormatJPEG, images.FormatWebP} {
		t.Run(string(format), func(t *testing.T) {
			path := writeImage(t, dir, "frame"+format.Extension(), format)

			src, err := NewFileSource(path)
			require.NoError(t, err)
			assert.Equal(t, path, src.Path())

			frame, err := src.Frame(context.Background())
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 40, 30), frame.Bounds())

			require.NoError(t, src.Close())
			_, err = src.Frame(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFileSource(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o600))
	_, err = NewFileSource(bad)
	assert.Error(t, err)
}

func TestFileSource_CanceledContext(t *testing.T) {
	src := NewImageSource("mem", image.NewRGBA(image.Rect(0, 0, 1, 1)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := src.Frame(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSource_ImplementsFrameSource(t *testing.T) {
	var _ FrameSource = (*FileSource)(nil)
	var _ FrameSource = (*CameraSource)(nil)
}

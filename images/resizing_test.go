package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func getTestImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}

	return img
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name                string
		width, height       int
		maxWidth, maxHeight int
		wantW, wantH        int
	}{
		{name: "already fits", width: 100, height: 50, maxWidth: 200, maxHeight: 200, wantW: 100, wantH: 50},
		{name: "width bound", width: 400, height: 200, maxWidth: 200, maxHeight: 200, wantW: 200, wantH: 100},
		{name: "height bound", width: 200, height: 400, maxWidth: 200, maxHeight: 100, wantW: 50, wantH: 100},
		{name: "unbounded height", width: 400, height: 200, maxWidth: 100, maxHeight: 0, wantW: 100, wantH: 50},
		{name: "unbounded both", width: 400, height: 200, maxWidth: 0, maxHeight: -1, wantW: 400, wantH: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Thumbnail(getTestImage(tt.width, tt.height), tt.maxWidth, tt.maxHeight)
			assert.Equal(t, tt.wantW, got.Bounds().Dx())
			assert.Equal(t, tt.wantH, got.Bounds().Dy())
		})
	}
}

func TestThumbnail_ReturnsSameImageWhenItFits(t *testing.T) {
	img := getTestImage(10, 10)
	assert.Same(t, img.(*image.RGBA), Thumbnail(img, 10, 10).(*image.RGBA))
}

func TestResize(t *testing.T) {
	got := Resize(getTestImage(100, 100), 64, 32)
	assert.Equal(t, image.Rect(0, 0, 64, 32), got.Bounds())
}

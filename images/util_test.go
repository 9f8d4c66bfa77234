package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	a := image.NewRGBA(image.Rect(0, 0, 4, 4))
	b := image.NewRGBA(image.Rect(0, 0, 4, 4))
	assert.Equal(t, Checksum(a), Checksum(b))

	b.Set(3, 3, color.RGBA{G: 1, A: 255})
	assert.NotEqual(t, Checksum(a), Checksum(b))

	// Same pixel count, different shape.
	c := image.NewRGBA(image.Rect(0, 0, 2, 8))
	assert.NotEqual(t, Checksum(a), Checksum(c))

	assert.Equal(t, "empty", Checksum(nil))
	assert.Equal(t, "empty", Checksum(image.NewRGBA(image.Rectangle{})))
}

func TestChecksum_SubImageIgnoresStride(t *testing.T) {
	full := image.NewRGBA(image.Rect(0, 0, 8, 8))
	full.Set(1, 1, color.RGBA{R: 9, A: 255})
	sub := full.SubImage(image.Rect(0, 0, 4, 4)).(*image.RGBA)

	standalone := image.NewRGBA(image.Rect(0, 0, 4, 4))
	standalone.Set(1, 1, color.RGBA{R: 9, A: 255})

	assert.Equal(t, Checksum(standalone), Checksum(sub))
}

func TestChecksum_OtherModelsMatchRGBA(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 4, 4))
	nrgba := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	rgba.Set(2, 1, color.RGBA{R: 200, G: 10, B: 30, A: 255})
	nrgba.Set(2, 1, color.NRGBA{R: 200, G: 10, B: 30, A: 255})

	assert.Equal(t, Checksum(rgba), Checksum(nrgba))
}

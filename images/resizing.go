package images

import (
	"image"

	"github.com/nfnt/resize"
)

// Thumbnail scales img down to fit within maxWidth x maxHeight, keeping its aspect
// ratio. Images that already fit are returned unchanged.
//
// Arguments:
//   - img: The image to scale.
//   - maxWidth: The maximum width; zero or negative means unbounded.
//   - maxHeight: The maximum height; zero or negative means unbounded.
//
// Returns:
//   - image.Image: The scaled image.
//
// @example
// preview := images.Thumbnail(annotated, 1280, 720)
func Thumbnail(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 {
		maxWidth = b.Dx()
	}
	if maxHeight <= 0 {
		maxHeight = b.Dy()
	}
	if b.Dx() <= maxWidth && b.Dy() <= maxHeight {
		return img
	}
	return resize.Thumbnail(uint(maxWidth), uint(maxHeight), img, resize.Lanczos3)
}

// Resize stretches img to exactly width x height with Lanczos3 resampling.
func Resize(img image.Image, width, height int) image.Image {
	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
}

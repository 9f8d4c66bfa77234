package images

import (
	"crypto/md5"
	"fmt"
	"image"
	"image/draw"
)

// Checksum generates a deterministic checksum of an image's RGBA pixels and size,
// used to verify that rendering is repeatable and that sources are left untouched.
// Images in other color models are converted to RGBA first.
//
// Arguments:
// - img: The image to compute the checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string, or "empty" for nil or empty images.
//
// Example:
//
// ```go
//
//	checksum := Checksum(annotated)
//	fmt.Printf("Frame checksum: %s\n", checksum)
//
// ```
func Checksum(src image.Image) string {
	if src == nil || src.Bounds().Empty() {
		return "empty"
	}

	img, ok := src.(*image.RGBA)
	if !ok {
		img = image.NewRGBA(src.Bounds())
		draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)
	}

	hash := md5.New()
	fmt.Fprintf(hash, "%dx%d:", img.Bounds().Dx(), img.Bounds().Dy())
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		start := img.PixOffset(b.Min.X, y)
		hash.Write(img.Pix[start : start+b.Dx()*4])
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}

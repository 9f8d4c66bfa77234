// Package images - encoded image handling for captured and annotated frames.
package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
)

// ErrUnsupportedFormat is returned for formats other than JPEG, PNG and WebP.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Image represents an encoded image with a format, data, width, and height.
type Image struct {
	// The format of the image.
	Format ImageFormat `json:"format" yaml:"format"`
	// The data of the image.
	Data []byte `json:"data" yaml:"data"`
	// The width of the image.
	Width int `json:"width" yaml:"width"`
	// The height of the image.
	Height int `json:"height" yaml:"height"`
}

// ImageFormat represents supported image formats
type ImageFormat string

// ImageFormat constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
)

// DefaultQuality is the JPEG and WebP quality used when none is given.
const DefaultQuality = 90

// ParseFormat maps a format name or file extension ("jpg", ".png", "WEBP") to an ImageFormat.
//
// Arguments:
//   - s: The format name or extension.
//
// Returns:
//   - ImageFormat: The matching format.
//   - error: ErrUnsupportedFormat if s names no supported format.
func ParseFormat(s string) (ImageFormat, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedFormat, "%q", s)
	}
}

// FormatFromPath returns the format implied by a file name's extension.
func FormatFromPath(path string) (ImageFormat, error) {
	return ParseFormat(filepath.Ext(path))
}

// Extension returns the file extension for the format, including the dot.
func (f ImageFormat) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatPNG:
		return ".png"
	case FormatWebP:
		return ".webp"
	default:
		return ""
	}
}

// ContentType returns the MIME type for the format.
func (f ImageFormat) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// Encode encodes img in the given format.
//
// Arguments:
//   - img: The image to encode.
//   - format: The output format.
//   - quality: JPEG/WebP quality in [1, 100]; values outside use DefaultQuality. Ignored for PNG.
//
// Returns:
//   - *Image: The encoded image and its dimensions.
//   - error: An error if the format is unsupported or encoding fails.
//
// @example
// encoded, err := images.Encode(annotated, images.FormatJPEG, 85)
func Encode(img image.Image, format ImageFormat, quality int) (*Image, error) {
	if img == nil {
		return nil, errors.New("image is nil")
	}
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatWebP:
		err = webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)})
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", format)
	}

	b := img.Bounds()
	return &Image{
		Format: format,
		Data:   buf.Bytes(),
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// Decode decodes JPEG, PNG or WebP data, sniffing the format from the data itself.
//
// Arguments:
//   - data: The encoded image bytes.
//
// Returns:
//   - image.Image: The decoded image.
//   - ImageFormat: The detected format.
//   - error: An error if the data is empty, of an unknown format or corrupt.
func Decode(data []byte) (image.Image, ImageFormat, error) {
	if len(data) == 0 {
		return nil, "", errors.New("image data is empty")
	}

	format, err := sniff(data)
	if err != nil {
		return nil, "", err
	}

	var img image.Image
	switch format {
	case FormatJPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	case FormatPNG:
		img, err = png.Decode(bytes.NewReader(data))
	case FormatWebP:
		img, err = webp.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, "", errors.Wrapf(err, "decode %s", format)
	}
	return img, format, nil
}

// Decode decodes the image's data.
func (i *Image) Decode() (image.Image, error) {
	img, _, err := Decode(i.Data)
	return img, err
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sniff(data []byte) (ImageFormat, error) {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return FormatJPEG, nil
	case bytes.HasPrefix(data, pngMagic):
		return FormatPNG, nil
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return FormatWebP, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

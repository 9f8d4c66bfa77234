package annotate

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// ErrInvalidImage is returned for nil images and images without a positive width and height.
var ErrInvalidImage = errors.New("invalid image")

// defaultRenderer draws with the Go Regular font.
var defaultRenderer *Renderer

// init sets up the font we draw labels with.
func init() {
	var err error
	defaultRenderer, err = NewRenderer(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Annotation describes what is drawn for a single detection.
type Annotation struct {
	// Detection is the source detection, unchanged.
	Detection Detection `json:"detection"`
	// Box is the canonical outline that is stroked.
	Box Box `json:"box"`
	// Text is the label string.
	Text string `json:"text"`
	// Label is the placement of the label background and text origin.
	Label Placement `json:"label"`
	// TextBounds is the pixel area covered by the label glyphs.
	TextBounds image.Rectangle `json:"text_bounds"`
}

// Renderer draws annotations with a parsed TrueType font. A Renderer holds no per-call
// state and is safe for concurrent use.
type Renderer struct {
	font *truetype.Font
}

// NewRenderer parses a TrueType font for label text.
//
// Arguments:
//   - ttf: The raw TrueType font file.
//
// Returns:
//   - *Renderer: The renderer.
//   - error: An error if the font cannot be parsed.
func NewRenderer(ttf []byte) (*Renderer, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, errors.Wrap(err, "parse font")
	}
	return &Renderer{font: f}, nil
}

// Default returns the shared renderer using the Go Regular font.
func Default() *Renderer {
	return defaultRenderer
}

// Annotate draws detections onto a copy of img using the default renderer.
// See Renderer.Annotate.
func Annotate(img image.Image, detections []Detection, style Style) (draw.Image, error) {
	return defaultRenderer.Annotate(img, detections, style)
}

// Layout computes the annotations Annotate would draw using the default renderer.
func Layout(img image.Image, detections []Detection, style Style) ([]Annotation, error) {
	return defaultRenderer.Layout(img, detections, style)
}

// Annotate draws a box and a label for every detection scoring above the style's
// threshold onto a copy of img.
//
// Detections are drawn in the order given, so where labels overlap the later one wins.
// Inverted box corners are swapped before drawing. The source image is not modified;
// the returned image has the same size with its origin at (0, 0) and, for the models
// Copy keeps, the same color model as img.
//
// Arguments:
//   - img: The captured frame. Must be non-nil with a positive width and height.
//   - detections: The detections for img, in image pixel coordinates. May be empty.
//   - style: The drawing style; unset sizes and colors take their defaults.
//
// Returns:
//   - draw.Image: The annotated copy.
//   - error: ErrInvalidImage if img is unusable.
//
// @example
// out, err := annotate.Annotate(frame, []annotate.Detection{
// 	{Label: "cat", Score: 0.92, Box: annotate.Box{X1: 50, Y1: 50, X2: 150, Y2: 100}},
// }, annotate.DefaultStyle())
func (r *Renderer) Annotate(img image.Image, detections []Detection, style Style) (draw.Image, error) {
	if err := validate(img); err != nil {
		return nil, err
	}

	dst := Copy(img)
	if len(detections) == 0 {
		return dst, nil
	}

	size := dst.Bounds().Size()
	st := style.Resolve(size.Y)
	face := r.face(st.TextSize)
	defer face.Close()

	annotations := r.layout(face, size, detections, st)
	if len(annotations) == 0 {
		return dst, nil
	}

	if rgba, ok := dst.(*image.RGBA); ok {
		r.paint(rgba, face, annotations, st)
		return dst, nil
	}

	// gg only draws into RGBA, so other models get the annotations composited from an
	// overlay and keep every pixel the overlay leaves transparent.
	overlay := image.NewRGBA(dst.Bounds())
	r.paint(overlay, face, annotations, st)
	composite(dst, overlay)
	return dst, nil
}

func (r *Renderer) paint(dst *image.RGBA, face font.Face, annotations []Annotation, st Style) {
	dc := gg.NewContextForRGBA(dst)
	dc.SetFontFace(face)
	for _, a := range annotations {
		dc.SetColor(st.BoxColor)
		dc.SetLineWidth(st.StrokeWidth)
		dc.DrawRectangle(a.Box.X1, a.Box.Y1, a.Box.Width(), a.Box.Height())
		dc.Stroke()

		bg := a.Label.Background
		dc.SetColor(st.LabelBackground)
		dc.DrawRectangle(bg.X1, bg.Y1, bg.Width(), bg.Height())
		dc.Fill()

		dc.SetColor(st.TextColor)
		dc.DrawString(a.Text, a.Label.X, a.Label.Y)
	}
}

// composite draws overlay over dst, touching only pixels where overlay is not fully
// transparent.
func composite(dst draw.Image, overlay *image.RGBA) {
	const m = 0xffff
	b := overlay.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sr, sg, sb, sa := overlay.At(x, y).RGBA()
			if sa == 0 {
				continue
			}
			dr, dg, db, da := dst.At(x, y).RGBA()
			a := m - sa
			dst.Set(x, y, color.RGBA64{
				R: uint16(sr + dr*a/m),
				G: uint16(sg + dg*a/m),
				B: uint16(sb + db*a/m),
				A: uint16(sa + da*a/m),
			})
		}
	}
}

// Layout computes the annotations Annotate would draw for img without drawing them.
//
// Returns:
//   - []Annotation: One entry per drawn detection, in draw order.
//   - error: ErrInvalidImage if img is unusable.
func (r *Renderer) Layout(img image.Image, detections []Detection, style Style) ([]Annotation, error) {
	if err := validate(img); err != nil {
		return nil, err
	}

	size := img.Bounds().Size()
	st := style.Resolve(size.Y)
	face := r.face(st.TextSize)
	defer face.Close()

	return r.layout(face, size, detections, st), nil
}

func (r *Renderer) layout(face font.Face, size image.Point, detections []Detection, st Style) []Annotation {
	out := make([]Annotation, 0, len(detections))
	for _, d := range detections {
		// Written this way so NaN scores are skipped too.
		if !(d.Score > st.ScoreThreshold) {
			continue
		}

		box := d.Box.Canon()
		text := d.Text()
		labelWidth := fixedToFloat(font.MeasureString(face, text))
		p := PlaceLabel(box, labelWidth, st.TextSize, size.X)

		glyphs, _ := font.BoundString(face, text)
		out = append(out, Annotation{
			Detection: d,
			Box:       box,
			Text:      text,
			Label:     p,
			TextBounds: image.Rect(
				int(math.Floor(p.X+fixedToFloat(glyphs.Min.X))),
				int(math.Floor(p.Y+fixedToFloat(glyphs.Min.Y))),
				int(math.Ceil(p.X+fixedToFloat(glyphs.Max.X))),
				int(math.Ceil(p.Y+fixedToFloat(glyphs.Max.Y))),
			),
		})
	}
	return out
}

// face builds a font face at the given pixel size. Faces cache glyphs and must not be
// shared between goroutines, so each call gets its own.
func (r *Renderer) face(size float64) font.Face {
	return truetype.NewFace(r.font, &truetype.Options{Size: size})
}

// Copy returns a copy of img with its origin moved to (0, 0). NRGBA, NRGBA64, RGBA64,
// Gray and Gray16 images are copied byte for byte in their own model; everything else
// is converted to RGBA.
func Copy(img image.Image) draw.Image {
	b := img.Bounds()
	r := image.Rect(0, 0, b.Dx(), b.Dy())

	switch src := img.(type) {
	case *image.NRGBA:
		dst := image.NewNRGBA(r)
		copyRows(dst.Pix, dst.Stride, src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride, b.Dx()*4, b.Dy())
		return dst
	case *image.NRGBA64:
		dst := image.NewNRGBA64(r)
		copyRows(dst.Pix, dst.Stride, src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride, b.Dx()*8, b.Dy())
		return dst
	case *image.RGBA64:
		dst := image.NewRGBA64(r)
		copyRows(dst.Pix, dst.Stride, src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride, b.Dx()*8, b.Dy())
		return dst
	case *image.Gray:
		dst := image.NewGray(r)
		copyRows(dst.Pix, dst.Stride, src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride, b.Dx(), b.Dy())
		return dst
	case *image.Gray16:
		dst := image.NewGray16(r)
		copyRows(dst.Pix, dst.Stride, src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride, b.Dx()*2, b.Dy())
		return dst
	}

	dst := image.NewRGBA(r)
	draw.Draw(dst, r, img, b.Min, draw.Src)
	return dst
}

func copyRows(dst []byte, dstStride int, src []byte, srcStride, rowBytes, rows int) {
	for y := 0; y < rows; y++ {
		copy(dst[y*dstStride:y*dstStride+rowBytes], src[y*srcStride:y*srcStride+rowBytes])
	}
}

func validate(img image.Image) error {
	if img == nil {
		return errors.Wrap(ErrInvalidImage, "nil image")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return errors.Wrapf(ErrInvalidImage, "dimensions %dx%d", b.Dx(), b.Dy())
	}
	return nil
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

package inference

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// padValue is the gray YOLO models are trained with for letterbox borders.
const padValue = float32(114) / 255

// Letterbox records how a frame was fitted into the square model input, so that
// model-space boxes can be mapped back onto the frame.
type Letterbox struct {
	Scale  float32
	PadX   float32
	PadY   float32
	Width  int
	Height int
}

// Unproject maps a model-space box back to frame pixels, clamped to the frame.
func (l Letterbox) Unproject(x1, y1, x2, y2 float32) (float32, float32, float32, float32) {
	w, h := float32(l.Width), float32(l.Height)
	fx := func(x float32) float32 { return clamp((x-l.PadX)/l.Scale, 0, w) }
	fy := func(y float32) float32 { return clamp((y-l.PadY)/l.Scale, 0, h) }
	return fx(x1), fy(y1), fx(x2), fy(y2)
}

func clamp(v, lo, hi float32) float32 {
	return math32.Min(math32.Max(v, lo), hi)
}

// PrepareInput letterboxes img into a size x size CHW float tensor normalized to [0, 1].
//
// The frame is scaled with Lanczos3 to fit while keeping its aspect ratio, then centered
// on a gray canvas.
//
// Arguments:
//   - img: The frame to prepare.
//   - dst: The destination tensor data; at least 3*size*size floats.
//   - size: The model input edge in pixels.
//
// Returns:
//   - Letterbox: The transform applied, for mapping detections back.
//   - error: An error if the image is empty or dst is too small.
func PrepareInput(img image.Image, dst []float32, size int) (Letterbox, error) {
	if img == nil || img.Bounds().Empty() {
		return Letterbox{}, errors.New("cannot prepare an empty image")
	}
	channelSize := size * size
	if len(dst) < channelSize*3 {
		return Letterbox{}, errors.Errorf("destination tensor only holds %d floats, needs %d", len(dst), channelSize*3)
	}

	b := img.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())
	scale := math32.Min(float32(size)/w, float32(size)/h)
	newW := max(1, min(size, int(math32.Round(w*scale))))
	newH := max(1, min(size, int(math32.Round(h*scale))))
	offX := (size - newW) / 2
	offY := (size - newH) / 2

	red := dst[0:channelSize]
	green := dst[channelSize : channelSize*2]
	blue := dst[channelSize*2 : channelSize*3]
	for i := range red {
		red[i], green[i], blue[i] = padValue, padValue, padValue
	}

	resized := resize.Resize(uint(newW), uint(newH), img, resize.Lanczos3)
	rb := resized.Bounds()
	for y := 0; y < newH; y++ {
		row := (y + offY) * size
		for x := 0; x < newW; x++ {
			r, g, bl, _ := resized.At(rb.Min.X+x, rb.Min.Y+y).RGBA()
			i := row + x + offX
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(bl>>8) / 255.0
		}
	}

	return Letterbox{
		Scale:  scale,
		PadX:   float32(offX),
		PadY:   float32(offY),
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

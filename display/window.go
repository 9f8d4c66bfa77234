package display

import (
	"context"
	"image"
	"sync"

	"github.com/nvr-ai/go-snapshot/capture"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Key codes returned by the window loop.
const (
	KeySpace = 32
	KeyQuit  = 'q'
	KeyEsc   = 27
)

// Window is a native OpenCV window. It shows live frames while previewing and the
// annotated capture while showing.
//
// OpenCV windows must be driven from the goroutine that created them, so Show and
// Preview only record what to draw; Run does the drawing.
type Window struct {
	name    string
	preview capture.FrameSource
	logger  *zap.SugaredLogger

	mu    sync.Mutex
	shown image.Image
	dirty bool
}

// NewWindow creates the display state. The OpenCV window opens in Run.
func NewWindow(name string, preview capture.FrameSource, logger *zap.SugaredLogger) *Window {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Window{name: name, preview: preview, logger: logger}
}

// Show replaces the preview with img.
func (w *Window) Show(img image.Image) error {
	if img == nil {
		return errors.New("nothing to show")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.shown = img
	w.dirty = true
	return nil
}

// Preview resumes the live preview.
func (w *Window) Preview() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.shown = nil
	w.dirty = true
	return nil
}

// next returns the shown capture, or nil to draw a live frame, and whether the
// shown image changed since the last call.
func (w *Window) next() (image.Image, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	changed := w.dirty
	w.dirty = false
	return w.shown, changed
}

// Run opens the window and draws until ctx is done or the user quits. onKey is called
// for every other key press (e.g. space to toggle a capture).
func (w *Window) Run(ctx context.Context, onKey func(key int)) error {
	window := gocv.NewWindow(w.name)
	defer window.Close()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		img, changed := w.next()
		switch {
		case img != nil && changed:
			if err := w.draw(window, img); err != nil {
				return err
			}
		case img == nil && w.preview != nil:
			frame, err := w.preview.Frame(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return errors.Wrap(err, "preview frame")
			}
			if err := w.draw(window, frame); err != nil {
				return err
			}
		}

		key := window.WaitKey(30)
		switch key {
		case -1:
		case KeyQuit, KeyEsc:
			w.logger.Infow("window closed by user")
			return nil
		default:
			if onKey != nil {
				onKey(key)
			}
		}
	}
}

func (w *Window) draw(window *gocv.Window, img image.Image) error {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return errors.Wrap(err, "convert image")
	}
	defer mat.Close()
	window.IMShow(mat)
	return nil
}

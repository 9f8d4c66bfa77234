// Package controller - the capture flow: preview, grab a still, detect, annotate, show.
package controller

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nvr-ai/go-snapshot/annotate"
	"github.com/nvr-ai/go-snapshot/capture"
	"github.com/nvr-ai/go-snapshot/profiler"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrAlreadyShowing is returned by Capture while a result is on screen.
var ErrAlreadyShowing = errors.New("a capture is already being shown")

// State is the capture flow state.
type State int

const (
	// Previewing shows the live camera feed and accepts captures.
	Previewing State = iota
	// Showing displays the last annotated capture until Reset.
	Showing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Previewing:
		return "previewing"
	case Showing:
		return "showing"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Detector finds objects in a frame.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]annotate.Detection, error)
}

// Display shows annotated captures and the live preview.
type Display interface {
	// Show replaces the preview with an annotated capture.
	Show(img image.Image) error
	// Preview hides the capture and resumes the live preview.
	Preview() error
}

// Saver persists annotated captures. Remove deletes a capture Save wrote whose
// capture was then abandoned.
type Saver interface {
	Save(name string, img image.Image) (string, error)
	Remove(path string) error
}

// Timings records how long each stage of a capture took.
type Timings struct {
	Frame    time.Duration `json:"frame_ns"`
	Detect   time.Duration `json:"detect_ns"`
	Annotate time.Duration `json:"annotate_ns"`
	Save     time.Duration `json:"save_ns"`
}

// Capture is one completed capture. It is never modified after Capture returns it.
// Drawn counts the detections that cleared the score threshold.
type Capture struct {
	ID         string               `json:"id"`
	Frame      image.Image          `json:"-"`
	Detections []annotate.Detection `json:"detections"`
	Drawn      int                  `json:"drawn"`
	Annotated  image.Image          `json:"-"`
	Path       string               `json:"path,omitempty"`
	CapturedAt time.Time            `json:"captured_at"`
	Timings    Timings              `json:"timings"`
}

// Controller drives the two-state capture flow. All methods are safe for concurrent
// use; transitions are serialized so concurrent captures produce one result.
type Controller struct {
	source   capture.FrameSource
	detector Detector
	display  Display
	saver    Saver
	style    annotate.Style
	renderer *annotate.Renderer
	profiler *profiler.Profiler
	logger   *zap.SugaredLogger
	now      func() time.Time

	mu    sync.Mutex
	state State
	last  *Capture
}

// Option configures a Controller.
type Option func(*Controller)

// WithStyle sets the annotation style. The default is annotate.DefaultStyle().
func WithStyle(s annotate.Style) Option {
	return func(c *Controller) { c.style = s }
}

// WithRenderer sets the renderer used to draw captures.
func WithRenderer(r *annotate.Renderer) Option {
	return func(c *Controller) { c.renderer = r }
}

// WithSaver persists every annotated capture.
func WithSaver(s Saver) Option {
	return func(c *Controller) { c.saver = s }
}

// WithProfiler records stage timings in p.
func WithProfiler(p *profiler.Profiler) Option {
	return func(c *Controller) { c.profiler = p }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates a controller in the Previewing state.
//
// Arguments:
//   - source: Where frames are grabbed from.
//   - detector: Finds objects in the grabbed frame.
//   - display: Shows results; may be nil when results are only saved.
//   - opts: Optional settings.
//
// Returns:
//   - *Controller: The controller.
//
// @example
// ctrl := controller.New(camera, detector, server, controller.WithLogger(logger))
// c, err := ctrl.Capture(ctx)
func New(source capture.FrameSource, detector Detector, display Display, opts ...Option) *Controller {
	c := &Controller{
		source:   source,
		detector: detector,
		display:  display,
		style:    annotate.DefaultStyle(),
		renderer: annotate.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop().Sugar()
	}
	if c.profiler == nil {
		c.profiler = profiler.New(profiler.Options{}, c.logger)
	}
	return c
}

// Capture grabs a frame, detects objects, annotates them and shows the result,
// moving from Previewing to Showing. On any error the state stays Previewing.
//
// Returns:
//   - *Capture: The completed capture.
//   - error: ErrAlreadyShowing while Showing, or the failing stage's error.
func (c *Controller) Capture(ctx context.Context) (*Capture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Showing {
		return nil, ErrAlreadyShowing
	}

	result, err := c.run(ctx)
	if err != nil {
		c.logger.Warnw("capture failed", "error", err)
		return nil, err
	}

	c.state = Showing
	c.last = result
	c.logger.Infow("capture shown",
		"id", result.ID,
		"detections", len(result.Detections),
		"drawn", result.Drawn,
		"path", result.Path,
		"detect", result.Timings.Detect,
	)
	return result, nil
}

func (c *Controller) run(ctx context.Context) (*Capture, error) {
	var t Timings
	capturedAt := c.now()

	done := c.profiler.StartOperation("frame")
	frame, err := c.source.Frame(ctx)
	t.Frame = done()
	if err != nil {
		return nil, errors.Wrap(err, "capture frame")
	}

	done = c.profiler.StartOperation("detect")
	detections, err := c.detector.Detect(ctx, frame)
	t.Detect = done()
	if err != nil {
		return nil, errors.Wrap(err, "detect objects")
	}

	done = c.profiler.StartOperation("annotate")
	annotated, err := c.renderer.Annotate(frame, detections, c.style)
	t.Annotate = done()
	if err != nil {
		return nil, errors.Wrap(err, "annotate frame")
	}

	result := &Capture{
		ID:         uuid.NewString(),
		Frame:      frame,
		Detections: detections,
		Drawn:      len(annotate.FilterByScore(detections, c.style.Resolve(annotated.Bounds().Dy()).ScoreThreshold)),
		Annotated:  annotated,
		CapturedAt: capturedAt,
	}

	if c.saver != nil {
		done = c.profiler.StartOperation("save")
		result.Path, err = c.saver.Save(result.ID, annotated)
		t.Save = done()
		if err != nil {
			return nil, errors.Wrap(err, "save capture")
		}
	}

	if c.display != nil {
		if err := c.display.Show(annotated); err != nil {
			if result.Path != "" {
				if rmErr := c.saver.Remove(result.Path); rmErr != nil {
					c.logger.Warnw("failed to remove unshown capture", "path", result.Path, "error", rmErr)
				}
			}
			return nil, errors.Wrap(err, "show capture")
		}
	}

	result.Timings = t
	return result, nil
}

// Reset hides the shown capture and resumes the preview, moving from Showing to
// Previewing. Reset while Previewing does nothing. If the display cannot resume the
// preview the state stays Showing.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Previewing {
		return nil
	}
	if c.display != nil {
		if err := c.display.Preview(); err != nil {
			return errors.Wrap(err, "resume preview")
		}
	}
	c.state = Previewing
	c.logger.Infow("preview resumed")
	return nil
}

// Toggle is the capture button: it resets while Showing and captures otherwise.
//
// Returns:
//   - State: The state after the toggle.
//   - error: The error from Capture or Reset.
func (c *Controller) Toggle(ctx context.Context) (State, error) {
	if c.State() == Showing {
		err := c.Reset()
		return c.State(), err
	}
	_, err := c.Capture(ctx)
	if errors.Is(err, ErrAlreadyShowing) {
		// Another caller captured first; the button press lands on its result.
		err = nil
	}
	return c.State(), err
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Last returns the most recent capture, or nil before the first one. The last capture
// is kept after Reset.
func (c *Controller) Last() *Capture {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Stats returns the stage timings recorded so far.
func (c *Controller) Stats() profiler.Stats {
	return c.profiler.Stats()
}

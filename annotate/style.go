package annotate

import (
	"image/color"
	"math"
)

const (
	// DefaultScoreThreshold is the confidence a detection must exceed to be drawn.
	DefaultScoreThreshold = 0.3
	// TextSizeDivisor scales the label text size from the image height (height/20).
	TextSizeDivisor = 20.0
	// StrokeWidthDivisor scales the box outline width from the image height (height/150).
	StrokeWidthDivisor = 150.0
	// minScaledSize keeps scaled sizes drawable on very small images.
	minScaledSize = 1.0
)

var (
	// DefaultBoxColor is the outline color of detection boxes.
	DefaultBoxColor = color.RGBA{R: 255, A: 255}
	// DefaultLabelBackground is the semi-transparent fill behind label text.
	DefaultLabelBackground = color.NRGBA{A: 150}
	// DefaultTextColor is the label text color.
	DefaultTextColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Style configures how detections are drawn.
//
// Style is passed by value to every annotation call and is never written by this
// package, so one Style can be shared between goroutines.
type Style struct {
	// TextSize is the label font size in pixels. Zero or negative scales it from
	// the image height.
	TextSize float64 `json:"text_size" yaml:"text_size"`
	// StrokeWidth is the box outline width in pixels. Zero or negative scales it
	// from the image height.
	StrokeWidth float64 `json:"stroke_width" yaml:"stroke_width"`
	// ScoreThreshold drops detections whose score is at or below it. Values
	// outside [0, 1] are clamped.
	ScoreThreshold float64 `json:"score_threshold" yaml:"score_threshold"`
	// BoxColor is the outline color. Nil uses DefaultBoxColor.
	BoxColor color.Color `json:"-" yaml:"-"`
	// LabelBackground fills the rectangle behind the text. Nil uses DefaultLabelBackground.
	LabelBackground color.Color `json:"-" yaml:"-"`
	// TextColor is the label text color. Nil uses DefaultTextColor.
	TextColor color.Color `json:"-" yaml:"-"`
}

// DefaultStyle returns the style used by the capture flow: red boxes, white text on a
// translucent black background, sizes scaled from the image and a 0.3 threshold.
func DefaultStyle() Style {
	return Style{
		ScoreThreshold:  DefaultScoreThreshold,
		BoxColor:        DefaultBoxColor,
		LabelBackground: DefaultLabelBackground,
		TextColor:       DefaultTextColor,
	}
}

// Resolve returns the concrete style for an image of the given height. The receiver
// is left untouched.
//
// Arguments:
//   - height: The image height in pixels used to scale unset sizes.
//
// Returns:
//   - A style with positive sizes, a threshold in [0, 1] and non-nil colors.
//
// @example
// s := DefaultStyle().Resolve(600) // TextSize 30, StrokeWidth 4
func (s Style) Resolve(height int) Style {
	r := s
	if !(r.TextSize > 0) || math.IsInf(r.TextSize, 0) {
		r.TextSize = math.Max(float64(height)/TextSizeDivisor, minScaledSize)
	}
	if !(r.StrokeWidth > 0) || math.IsInf(r.StrokeWidth, 0) {
		r.StrokeWidth = math.Max(float64(height)/StrokeWidthDivisor, minScaledSize)
	}
	switch {
	case math.IsNaN(r.ScoreThreshold):
		r.ScoreThreshold = DefaultScoreThreshold
	case r.ScoreThreshold < 0:
		r.ScoreThreshold = 0
	case r.ScoreThreshold > 1:
		r.ScoreThreshold = 1
	}
	if r.BoxColor == nil {
		r.BoxColor = DefaultBoxColor
	}
	if r.LabelBackground == nil {
		r.LabelBackground = DefaultLabelBackground
	}
	if r.TextColor == nil {
		r.TextColor = DefaultTextColor
	}
	return r
}

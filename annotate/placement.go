package annotate

// LabelPadding is the space added around label text, split evenly on both sides.
const LabelPadding = 10.0

// Placement is the computed position of a label.
type Placement struct {
	// Background is the filled rectangle behind the text.
	Background Box `json:"background"`
	// X and Y are the text origin; Y is the baseline.
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// ClampedRight is set when the label was shifted left to stay inside the image.
	ClampedRight bool `json:"clamped_right"`
	// Below is set when the label was flipped under the box's top edge.
	Below bool `json:"below"`
}

// PlaceLabel positions a label of the given width for a (canonical) box.
//
// The label sits directly above the box's top-left corner. When the text would run
// past the right edge of the image the background is shifted left so its right edge
// lands at width-LabelPadding, and when the background would be cut off by the top of
// the image it is placed just below the box's top edge instead. The background is
// never moved left of x=0.
//
// Arguments:
//   - box: The detection box, already canonicalized.
//   - labelWidth: The rendered text width in pixels.
//   - textSize: The text size in pixels.
//   - width: The image width in pixels.
//
// Returns:
//   - The label placement.
//
// @example
// p := PlaceLabel(Box{X1: 95, Y1: 50, X2: 99, Y2: 80}, 30, 10, 100)
// // p.Background.X2 == 90
func PlaceLabel(box Box, labelWidth, textSize float64, width int) Placement {
	bgWidth := labelWidth + LabelPadding
	bgHeight := textSize + LabelPadding

	var p Placement

	x := box.X1
	if box.X1+labelWidth > float64(width) {
		x = float64(width) - LabelPadding - bgWidth
		p.ClampedRight = true
	}
	if x < 0 {
		x = 0
	}

	top, bottom := box.Y1-bgHeight, box.Y1
	if box.Y1 < bgHeight {
		top, bottom = box.Y1, box.Y1+bgHeight
		p.Below = true
	}

	p.Background = Box{X1: x, Y1: top, X2: x + bgWidth, Y2: bottom}
	// Baseline is half a padding above the background bottom, not on the box top.
	p.X = x + LabelPadding/2
	p.Y = bottom - LabelPadding/2
	return p
}

// Package annotate - renders detection boxes and labels onto captured frames.
package annotate

import (
	"fmt"
	"image"
	"math"
)

// Box is an axis-aligned rectangle in image pixel coordinates.
//
// X1,Y1 is the top-left corner and X2,Y2 the bottom-right corner. Model output may
// place a box partly outside the image or with inverted corners; see Canon.
type Box struct {
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
	X2 float64 `json:"x2" yaml:"x2"`
	Y2 float64 `json:"y2" yaml:"y2"`
}

// Canon returns the box with its corners ordered so that X1 <= X2 and Y1 <= Y2.
//
// Returns:
//   - A copy of the box with swapped coordinates where needed.
//
// @example
// b := Box{X1: 150, Y1: 100, X2: 50, Y2: 50}.Canon() // Box{50, 50, 150, 100}
func (b Box) Canon() Box {
	if b.X1 > b.X2 {
		b.X1, b.X2 = b.X2, b.X1
	}
	if b.Y1 > b.Y2 {
		b.Y1, b.Y2 = b.Y2, b.Y1
	}
	return b
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 {
	return b.X2 - b.X1
}

// Height returns the vertical extent of the box.
func (b Box) Height() float64 {
	return b.Y2 - b.Y1
}

// ToRect converts the box to an image.Rectangle covering every pixel it touches.
//
// Returns:
//   - An image.Rectangle with canonicalized coordinates.
//
// @example
// box := Box{X1: 100.5, Y1: 100.5, X2: 200.5, Y2: 300.5}
// rect := box.ToRect() // (100,100)-(201,301)
func (b Box) ToRect() image.Rectangle {
	c := b.Canon()
	return image.Rect(
		int(math.Floor(c.X1)),
		int(math.Floor(c.Y1)),
		int(math.Ceil(c.X2)),
		int(math.Ceil(c.Y2)),
	).Canon()
}

func (b Box) String() string {
	return fmt.Sprintf("(%.1f, %.1f), (%.1f, %.1f)", b.X1, b.Y1, b.X2, b.Y2)
}

// Detection is one model output: a region, a category label and a confidence score.
// Detections are values; nothing in this package modifies one.
type Detection struct {
	// Label is the category name reported by the model.
	Label string `json:"label"`
	// Score is the model confidence in [0, 1].
	Score float64 `json:"score"`
	// Box is the detected region in image pixel coordinates.
	Box Box `json:"box"`
}

// Text returns the label drawn for the detection, e.g. "cat (0.92)".
func (d Detection) Text() string {
	return fmt.Sprintf("%s (%.2f)", d.Label, d.Score)
}

func (d Detection) String() string {
	return fmt.Sprintf("Object %s (confidence %f): %s", d.Label, d.Score, d.Box)
}

// FilterByScore returns the detections whose score is strictly above threshold,
// preserving their order.
//
// Arguments:
//   - detections: The detections to filter.
//   - threshold: Detections with a score at or below this value are dropped.
//
// Returns:
//   - A new slice holding the kept detections.
func FilterByScore(detections []Detection, threshold float64) []Detection {
	out := make([]Detection, 0, len(detections))
	for _, d := range detections {
		if d.Score > threshold {
			out = append(out, d)
		}
	}
	return out
}

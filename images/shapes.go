// Package images - Image processing utilities
package images

// Rect is a lightweight float bounding box as produced by detection models.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 float32
}

// Area returns the area of the rectangle, or 0 when it is empty or inverted.
func (r Rect) Area() float32 {
	w, h := r.X2-r.X1, r.Y2-r.Y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// CalculateIoU measures how much two rectangles overlap as Intersection over Union.
//
// IoU = Area of Intersection / Area of Union, where the union is computed with
// inclusion-exclusion: Area(A) + Area(B) - Area(Intersection). A value of 1.0 means
// identical rectangles, 0.0 means no overlap. Non-maximum suppression uses it to drop
// duplicate boxes for the same object.
//
// Arguments:
//   - r: The first rectangle.
//   - o: The other rectangle to compare against.
//
// Returns:
//   - float32: A value between 0.0 and 1.0 representing the IoU score.
//
// Example Usage:
// ```go
//
//	rect1 := Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}
//	rect2 := Rect{X1: 5, Y1: 5, X2: 15, Y2: 15}
//	iouScore := CalculateIoU(rect1, rect2) // 25 / 175 = 0.142857
//
// ```
func CalculateIoU(r, o Rect) float32 {
	// The overlap starts where both rectangles have begun and ends where the first ends.
	inter := Rect{
		X1: max(r.X1, o.X1),
		Y1: max(r.Y1, o.Y1),
		X2: min(r.X2, o.X2),
		Y2: min(r.Y2, o.Y2),
	}.Area()
	if inter == 0 {
		return 0.0
	}

	union := r.Area() + o.Area() - inter
	if union <= 0 {
		return 0.0
	}
	return inter / union
}

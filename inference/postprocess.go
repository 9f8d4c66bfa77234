package inference

import (
	"sort"

	"github.com/nvr-ai/go-snapshot/annotate"
	"github.com/nvr-ai/go-snapshot/images"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Candidate is one decoded model prediction in frame coordinates.
type Candidate struct {
	// The bounding box of the candidate.
	Box images.Rect
	// The confidence score of the candidate.
	Score float32
	// The predicted class index of the candidate.
	Class int
}

// DecodeOutput turns a YOLOv8 output tensor of shape [1, 4+classes, anchors] into
// candidates. Each anchor column holds cx, cy, w, h followed by one score per class;
// the best class wins and anchors scoring below threshold are dropped.
//
// Arguments:
//   - output: The raw output tensor data.
//   - numClasses: The number of class score rows.
//   - lb: The letterbox the input was prepared with.
//   - threshold: The minimum class score kept.
//
// Returns:
//   - []Candidate: Candidates in anchor order.
//   - error: An error if the output does not have the expected layout.
func DecodeOutput(output []float32, numClasses int, lb Letterbox, threshold float32) ([]Candidate, error) {
	rows := 4 + numClasses
	if numClasses <= 0 || len(output) == 0 || len(output)%rows != 0 {
		return nil, errors.Errorf("output of %d floats is not a [%d x N] tensor", len(output), rows)
	}
	anchors := len(output) / rows

	// Transpose a copy to [anchors x rows] so each anchor is contiguous. The original
	// buffer belongs to the session and is reused on the next run.
	backing := make([]float32, len(output))
	copy(backing, output)
	t := tensor.New(tensor.WithShape(rows, anchors), tensor.WithBacking(backing))
	if err := t.T(); err != nil {
		return nil, errors.Wrap(err, "transpose output")
	}
	if err := t.Transpose(); err != nil {
		return nil, errors.Wrap(err, "transpose output")
	}
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, errors.New("output tensor is not float32")
	}

	candidates := make([]Candidate, 0, 64)
	for i := 0; i < anchors; i++ {
		row := data[i*rows : (i+1)*rows]

		classID, score := 0, float32(-1e9)
		for c, s := range row[4:] {
			if s > score {
				classID, score = c, s
			}
		}
		if score < threshold {
			continue
		}

		cx, cy, w, h := row[0], row[1], row[2], row[3]
		x1, y1, x2, y2 := lb.Unproject(cx-w/2, cy-h/2, cx+w/2, cy+h/2)
		candidates = append(candidates, Candidate{
			Box:   images.Rect{X1: x1, Y1: y1, X2: x2, Y2: y2},
			Score: score,
			Class: classID,
		})
	}
	return candidates, nil
}

// ApplyGreedyNMS performs class-aware greedy Non-Maximum Suppression.
//
// Arguments:
//   - candidates: The candidates in any order; the slice is sorted in place by descending score.
//   - iouThreshold: IoU above which a lower-scoring box of the same class is suppressed.
//
// Returns:
//   - The kept candidates, highest score first. Nil when there are none.
func ApplyGreedyNMS(candidates []Candidate, iouThreshold float32) []Candidate {
	n := len(candidates)
	if n == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	filtered := make([]Candidate, 0, n)
	used := make([]bool, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}

		anchor := candidates[i]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < n; j++ {
			if used[j] || candidates[j].Class != anchor.Class {
				continue
			}
			if images.CalculateIoU(anchor.Box, candidates[j].Box) > iouThreshold {
				used[j] = true
			}
		}
	}

	return filtered
}

// ToDetections names the candidates and converts them to annotator input. When
// relevant is non-empty, only classes it contains are kept.
func ToDetections(candidates []Candidate, relevant map[string]bool) []annotate.Detection {
	out := make([]annotate.Detection, 0, len(candidates))
	for _, c := range candidates {
		label := ClassName(c.Class)
		if label == "" {
			continue
		}
		if len(relevant) > 0 && !relevant[label] {
			continue
		}
		out = append(out, annotate.Detection{
			Label: label,
			Score: float64(c.Score),
			Box: annotate.Box{
				X1: float64(c.Box.X1),
				Y1: float64(c.Box.Y1),
				X2: float64(c.Box.X2),
				Y2: float64(c.Box.Y2),
			},
		})
	}
	return out
}

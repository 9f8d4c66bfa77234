package inference

import (
	"context"
	"encoding/json"
	"image"
	"os"

	"github.com/nvr-ai/go-snapshot/annotate"
	"github.com/pkg/errors"
)

// Static is a detector that returns a fixed set of detections for every frame. It
// stands in for a model when detections were produced elsewhere.
type Static struct {
	detections []annotate.Detection
}

// NewStatic returns a detector that always reports dets.
func NewStatic(dets ...annotate.Detection) *Static {
	return &Static{detections: append([]annotate.Detection(nil), dets...)}
}

// LoadStatic reads a JSON array of detections, e.g.
//
//	[{"label": "cat", "score": 0.92, "box": {"x1": 50, "y1": 60, "x2": 150, "y2": 160}}]
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read detections %s", path)
	}

	var dets []annotate.Detection
	if err := json.Unmarshal(data, &dets); err != nil {
		return nil, errors.Wrapf(err, "parse detections %s", path)
	}
	return NewStatic(dets...), nil
}

// Detect returns a copy of the fixed detections.
func (s *Static) Detect(ctx context.Context, _ image.Image) ([]annotate.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]annotate.Detection(nil), s.detections...), nil
}

// Close does nothing.
func (s *Static) Close() error { return nil }

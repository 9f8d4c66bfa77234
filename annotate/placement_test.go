package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceLabel(t *testing.T) {
	tests := []struct {
		name         string
		box          Box
		labelWidth   float64
		textSize     float64
		width        int
		expected     Box
		clampedRight bool
		below        bool
	}{
		{
			name:       "Above the top-left corner",
			box:        Box{X1: 50, Y1: 50, X2: 150, Y2: 100},
			labelWidth: 40,
			textSize:   10,
			width:      200,
			expected:   Box{X1: 50, Y1: 30, X2: 100, Y2: 50},
		},
		{
			name:         "Right edge clamp",
			box:          Box{X1: 95, Y1: 50, X2: 99, Y2: 80},
			labelWidth:   30,
			textSize:     10,
			width:        100,
			expected:     Box{X1: 50, Y1: 30, X2: 90, Y2: 50},
			clampedRight: true,
		},
		{
			name:       "Text fits exactly at the right edge",
			box:        Box{X1: 70, Y1: 50, X2: 99, Y2: 80},
			labelWidth: 30,
			textSize:   10,
			width:      100,
			expected:   Box{X1: 70, Y1: 30, X2: 110, Y2: 50},
		},
		{
			name:       "Top edge flip",
			box:        Box{X1: 20, Y1: 5, X2: 80, Y2: 90},
			labelWidth: 30,
			textSize:   40,
			width:      200,
			expected:   Box{X1: 20, Y1: 5, X2: 60, Y2: 55},
			below:      true,
		},
		{
			name:       "Exactly one label height from the top stays above",
			box:        Box{X1: 20, Y1: 50, X2: 80, Y2: 90},
			labelWidth: 30,
			textSize:   40,
			width:      200,
			expected:   Box{X1: 20, Y1: 0, X2: 60, Y2: 50},
		},
		{
			name:         "Both clamps",
			box:          Box{X1: 90, Y1: 0, X2: 100, Y2: 20},
			labelWidth:   30,
			textSize:     10,
			width:        100,
			expected:     Box{X1: 50, Y1: 0, X2: 90, Y2: 20},
			clampedRight: true,
			below:        true,
		},
		{
			name:         "Label wider than the image is pinned to the left edge",
			box:          Box{X1: 10, Y1: 50, X2: 40, Y2: 80},
			labelWidth:   80,
			textSize:     10,
			width:        60,
			expected:     Box{X1: 0, Y1: 30, X2: 90, Y2: 50},
			clampedRight: true,
		},
		{
			name:       "Box left of the image is pinned to the left edge",
			box:        Box{X1: -15, Y1: 50, X2: 40, Y2: 80},
			labelWidth: 20,
			textSize:   10,
			width:      100,
			expected:   Box{X1: 0, Y1: 30, X2: 30, Y2: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PlaceLabel(tt.box, tt.labelWidth, tt.textSize, tt.width)

			assert.InDelta(t, tt.expected.X1, p.Background.X1, 1e-9)
			assert.InDelta(t, tt.expected.Y1, p.Background.Y1, 1e-9)
			assert.InDelta(t, tt.expected.X2, p.Background.X2, 1e-9)
			assert.InDelta(t, tt.expected.Y2, p.Background.Y2, 1e-9)
			assert.Equal(t, tt.clampedRight, p.ClampedRight)
			assert.Equal(t, tt.below, p.Below)

			// Background size is always text plus padding.
			assert.InDelta(t, tt.labelWidth+LabelPadding, p.Background.Width(), 1e-9)
			assert.InDelta(t, tt.textSize+LabelPadding, p.Background.Height(), 1e-9)

			// Text origin sits inside the background, half a padding from its bottom-left.
			assert.InDelta(t, p.Background.X1+LabelPadding/2, p.X, 1e-9)
			assert.InDelta(t, p.Background.Y2-LabelPadding/2, p.Y, 1e-9)
		})
	}
}

// TestPlaceLabel_RightClampNeverExceedsPadding sweeps box positions along the right edge.
func TestPlaceLabel_RightClampNeverExceedsPadding(t *testing.T) {
	const width = 100
	const labelWidth = 30.0

	for left := 71; left < width; left++ {
		p := PlaceLabel(Box{X1: float64(left), Y1: 60, X2: width, Y2: 90}, labelWidth, 12, width)
		assert.True(t, p.ClampedRight, "left=%d", left)
		assert.LessOrEqual(t, p.Background.X2, float64(width)-LabelPadding, "left=%d", left)
		assert.GreaterOrEqual(t, p.Background.X1, 0.0, "left=%d", left)
	}
}

// TestPlaceLabel_BaselineInsideBackground pins the text baseline half a padding above
// the background bottom, both above and below the box top.
func TestPlaceLabel_BaselineInsideBackground(t *testing.T) {
	tests := []struct {
		name     string
		top      float64
		baseline float64
	}{
		{name: "Above box", top: 100, baseline: 95},
		{name: "Below box", top: 5, baseline: 5 + 20 + LabelPadding - LabelPadding/2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PlaceLabel(Box{X1: 10, Y1: tt.top, X2: 60, Y2: tt.top + 50}, 30, 20, 200)
			assert.InDelta(t, tt.baseline, p.Y, 1e-9)
			assert.Less(t, p.Y, p.Background.Y2)
		})
	}
}

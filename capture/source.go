// Package capture - frame sources the capture controller grabs stills from.
package capture

import (
	"context"
	"image"
)

// FrameSource yields the current frame of a camera, video or still image.
type FrameSource interface {
	// Frame returns the most recent frame. The returned image must not be modified
	// by the caller.
	Frame(ctx context.Context) (image.Image, error)
	// Close releases the underlying device or file.
	Close() error
}

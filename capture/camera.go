package capture

import (
	"context"
	"image"
	"sync"

	"github.com/nvr-ai/go-snapshot/images"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// CameraConfig selects the capture device.
type CameraConfig struct {
	// DeviceID is the video capture device index, used when VideoPath is empty.
	DeviceID int `json:"device_id" yaml:"device_id"`
	// VideoPath opens a video file or stream URL instead of a device.
	VideoPath string `json:"video_path" yaml:"video_path"`
	// Resolution requests a capture size ("720p", "1920x1080"). Empty keeps the device default.
	Resolution string `json:"resolution" yaml:"resolution"`
}

// CameraSource reads frames from an OpenCV video capture.
type CameraSource struct {
	cfg    CameraConfig
	logger *zap.SugaredLogger

	mu      sync.Mutex
	capture *gocv.VideoCapture
	mat     gocv.Mat
}

// NewCameraSource opens the configured device or video.
//
// Arguments:
//   - cfg: The camera configuration.
//   - logger: The logger; nil discards output.
//
// Returns:
//   - *CameraSource: The open source. Call Close when done.
//   - error: An error if the resolution is invalid or the device cannot be opened.
func NewCameraSource(cfg CameraConfig, logger *zap.SugaredLogger) (*CameraSource, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	var res images.Resolution
	if cfg.Resolution != "" {
		var err error
		if res, err = images.ParseResolution(cfg.Resolution); err != nil {
			return nil, err
		}
	}

	var device interface{} = cfg.DeviceID
	if cfg.VideoPath != "" {
		device = cfg.VideoPath
	}
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, errors.Wrapf(err, "open video capture %v", device)
	}

	if res.Pixels.Width > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(res.Pixels.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(res.Pixels.Height))
	}

	logger.Infow("camera opened",
		"device", device,
		"width", vc.Get(gocv.VideoCaptureFrameWidth),
		"height", vc.Get(gocv.VideoCaptureFrameHeight),
	)

	return &CameraSource{
		cfg:     cfg,
		logger:  logger,
		capture: vc,
		mat:     gocv.NewMat(),
	}, nil
}

// Frame reads the next frame from the device.
func (c *CameraSource) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, errors.New("camera is closed")
	}
	if ok := c.capture.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, errors.Errorf("cannot read frame from device %d", c.cfg.DeviceID)
	}
	img, err := c.mat.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "convert frame")
	}
	return img, nil
}

// Close releases the device.
func (c *CameraSource) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.mat.Close()
	c.capture = nil
	c.logger.Infow("camera closed")
	return errors.Wrap(err, "close video capture")
}

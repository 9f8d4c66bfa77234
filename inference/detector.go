package inference

import (
	"context"
	"image"
	"sync"

	"github.com/nvr-ai/go-snapshot/annotate"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Detector runs a YOLOv8 ONNX model over frames.
//
// The session's tensors are shared, so Detect calls are serialized.
type Detector struct {
	cfg      Config
	relevant map[string]bool
	logger   *zap.SugaredLogger

	mu      sync.Mutex
	session *Session
}

// NewDetector validates cfg and loads the model.
//
// Arguments:
//   - cfg: The detector configuration.
//   - logger: The logger; nil discards output.
//
// Returns:
//   - *Detector: The ready detector. Call Close when done.
//   - error: An error if the configuration is invalid or the model cannot be loaded.
func NewDetector(cfg Config, logger *zap.SugaredLogger) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid detector config")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	session, err := NewSession(cfg)
	if err != nil {
		return nil, err
	}

	relevant := make(map[string]bool, len(cfg.RelevantClasses))
	for _, c := range cfg.RelevantClasses {
		relevant[c] = true
	}

	logger.Infow("model loaded",
		"model", cfg.ModelPath,
		"input_size", cfg.InputSize,
		"anchors", Anchors(cfg.InputSize),
		"relevant_classes", cfg.RelevantClasses,
	)

	return &Detector{
		cfg:      cfg,
		relevant: relevant,
		logger:   logger,
		session:  session,
	}, nil
}

// Detect runs the model on img and returns detections in img's pixel coordinates,
// highest score first.
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]annotate.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil {
		return nil, errors.New("detector is closed")
	}

	lb, err := PrepareInput(img, d.session.Input.GetData(), d.cfg.InputSize)
	if err != nil {
		return nil, errors.Wrap(err, "prepare input")
	}
	if err := d.session.Session.Run(); err != nil {
		return nil, errors.Wrap(err, "run inference")
	}

	candidates, err := DecodeOutput(d.session.Output.GetData(), len(YOLOClasses), lb, d.cfg.ConfidenceThreshold)
	if err != nil {
		return nil, errors.Wrap(err, "decode output")
	}
	kept := ApplyGreedyNMS(candidates, d.cfg.NMSThreshold)
	detections := ToDetections(kept, d.relevant)

	d.logger.Debugw("inference complete",
		"candidates", len(candidates),
		"after_nms", len(kept),
		"detections", len(detections),
	)
	return detections, nil
}

// Close releases the session. Detect fails after Close.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil {
		return nil
	}
	err := d.session.Close()
	d.session = nil
	return errors.Wrap(err, "close session")
}

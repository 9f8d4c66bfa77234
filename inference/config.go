package inference

import (
	"runtime"

	"github.com/pkg/errors"
)

// Config configures the ONNX object detector.
type Config struct {
	// ModelPath is the YOLOv8-style ONNX model file.
	ModelPath string `json:"model_path" yaml:"model_path"`
	// LibraryPath is the onnxruntime shared library. Empty uses SharedLibPath().
	LibraryPath string `json:"library_path" yaml:"library_path"`
	// InputSize is the square model input edge in pixels; a multiple of 32.
	InputSize int `json:"input_size" yaml:"input_size"`
	// ConfidenceThreshold drops raw candidates scoring below it.
	ConfidenceThreshold float32 `json:"confidence_threshold" yaml:"confidence_threshold"`
	// NMSThreshold is the IoU above which overlapping boxes of the same class are suppressed.
	NMSThreshold float32 `json:"nms_threshold" yaml:"nms_threshold"`
	// RelevantClasses lists class names to keep (empty = all classes).
	RelevantClasses []string `json:"relevant_classes" yaml:"relevant_classes"`
	// IntraOpThreads parallelizes execution within graph nodes. 0 lets onnxruntime decide.
	IntraOpThreads int `json:"intra_op_threads" yaml:"intra_op_threads"`
	// InterOpThreads parallelizes execution across graph nodes. 0 lets onnxruntime decide.
	InterOpThreads int `json:"inter_op_threads" yaml:"inter_op_threads"`
}

// DefaultConfig returns a configuration for the stock 640x640 YOLOv8 COCO export.
//
// Returns:
//   - Config: The default configuration. ModelPath must still be set.
//
// @example
// cfg := inference.DefaultConfig()
// cfg.ModelPath = "models/yolov8n.onnx"
// detector, err := inference.NewDetector(cfg, logger)
func DefaultConfig() Config {
	return Config{
		InputSize:           640,
		ConfidenceThreshold: 0.25,
		NMSThreshold:        0.7,
		RelevantClasses:     []string{},
		IntraOpThreads:      4,
		InterOpThreads:      2,
	}
}

// Validate checks the configuration for values the detector cannot run with.
func (c Config) Validate() error {
	if c.ModelPath == "" {
		return errors.New("model path is required")
	}
	if c.InputSize <= 0 || c.InputSize%32 != 0 {
		return errors.Errorf("input size %d must be a positive multiple of 32", c.InputSize)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return errors.Errorf("confidence threshold %v must be within [0, 1]", c.ConfidenceThreshold)
	}
	if c.NMSThreshold <= 0 || c.NMSThreshold > 1 {
		return errors.Errorf("nms threshold %v must be within (0, 1]", c.NMSThreshold)
	}
	for _, name := range c.RelevantClasses {
		if ClassIndex(name) < 0 {
			return errors.Errorf("unknown relevant class %q", name)
		}
	}
	if c.IntraOpThreads < 0 || c.InterOpThreads < 0 {
		return errors.New("thread counts must not be negative")
	}
	return nil
}

// SharedLibPath returns the default onnxruntime library location for this platform.
func SharedLibPath() string {
	switch runtime.GOOS {
	case "windows":
		return "./third_party/onnxruntime.dll"
	case "darwin":
		return "./third_party/libonnxruntime.dylib"
	default:
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so"
		}
		return "./third_party/onnxruntime.so"
	}
}

// Anchors returns the number of candidate boxes a YOLOv8 head produces for a square
// input of the given size (strides 8, 16 and 32). 640 yields 8400.
func Anchors(size int) int {
	n := 0
	for _, stride := range []int{8, 16, 32} {
		cells := size / stride
		n += cells * cells
	}
	return n
}

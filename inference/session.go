// Package inference - ONNX object detection producing annotator input.
package inference

import (
	"os"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Session holds a loaded onnxruntime session and the tensors bound to it.
type Session struct {
	Session *ort.AdvancedSession
	Input   *ort.Tensor[float32]
	Output  *ort.Tensor[float32]
}

// NewSession initializes the onnxruntime environment (once per process) and loads the
// model with a [1, 3, size, size] input named "images" and a [1, 4+classes, anchors]
// output named "output0".
//
// Arguments:
//   - cfg: The detector configuration.
//
// Returns:
//   - *Session: The loaded session.
//   - error: An error if the library or model cannot be loaded.
func NewSession(cfg Config) (*Session, error) {
	if !ort.IsInitialized() {
		libPath := cfg.LibraryPath
		if libPath == "" {
			libPath = SharedLibPath()
		}
		if _, err := os.Stat(libPath); err != nil {
			return nil, errors.Wrapf(err, "onnxruntime library not found at %s", libPath)
		}
		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrap(err, "initialize onnxruntime environment")
		}
	}

	size := int64(cfg.InputSize)
	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, size, size))
	if err != nil {
		return nil, errors.Wrap(err, "create input tensor")
	}

	outputShape := ort.NewShape(1, int64(4+len(YOLOClasses)), int64(Anchors(cfg.InputSize)))
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, errors.Wrap(err, "create output tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "create session options")
	}
	defer options.Destroy()

	if cfg.IntraOpThreads > 0 {
		err = options.SetIntraOpNumThreads(cfg.IntraOpThreads)
	}
	if err == nil && cfg.InterOpThreads > 0 {
		err = options.SetInterOpNumThreads(cfg.InterOpThreads)
	}
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "set thread counts")
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{"images"},
		[]string{"output0"},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrapf(err, "load model %s", cfg.ModelPath)
	}

	return &Session{
		Session: session,
		Input:   inputTensor,
		Output:  outputTensor,
	}, nil
}

// Close releases the resources associated with the Session.
func (s *Session) Close() error {
	var err error
	if s.Input != nil {
		err = s.Input.Destroy()
		s.Input = nil
	}
	if s.Output != nil {
		if e := s.Output.Destroy(); err == nil {
			err = e
		}
		s.Output = nil
	}
	if s.Session != nil {
		if e := s.Session.Destroy(); err == nil {
			err = e
		}
		s.Session = nil
	}
	return err
}

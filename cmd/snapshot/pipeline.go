package main

import (
	"github.com/nvr-ai/go-snapshot/annotate"
	"github.com/nvr-ai/go-snapshot/capture"
	"github.com/nvr-ai/go-snapshot/controller"
	"github.com/nvr-ai/go-snapshot/images"
	"github.com/nvr-ai/go-snapshot/inference"
	"github.com/nvr-ai/go-snapshot/util"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

type detector interface {
	controller.Detector
	Close() error
}

// applyFlags folds command flags into the loaded configuration.
func (e *env) applyFlags(c *cli.Context) {
	if v := c.String(flagModel); v != "" {
		e.cfg.Model.ModelPath = v
	}
	if v := c.String(flagImage); v != "" {
		e.cfg.Camera.ImagePath = v
	}
	if v := c.String(flagOutput); v != "" {
		e.cfg.Output.Dir = v
	}
	if v := c.Float64(flagThreshold); v >= 0 {
		e.cfg.Style.ScoreThreshold = v
	}
}

func (e *env) newSource() (capture.FrameSource, error) {
	if path := e.cfg.Camera.ImagePath; path != "" {
		e.logger.Infow("using still image", "path", path)
		return capture.NewFileSource(path)
	}
	return capture.NewCameraSource(capture.CameraConfig{
		DeviceID:   e.cfg.Camera.DeviceID,
		VideoPath:  e.cfg.Camera.VideoPath,
		Resolution: e.cfg.Camera.Resolution,
	}, e.logger)
}

func (e *env) newDetector(c *cli.Context) (detector, error) {
	if path := c.String(flagDetections); path != "" {
		e.logger.Infow("using fixed detections", "path", path)
		return inference.LoadStatic(path)
	}
	if e.cfg.Model.ModelPath == "" {
		return nil, errors.New("either --model (or model.model_path) or --detections is required")
	}
	return inference.NewDetector(e.cfg.Model, e.logger)
}

func (e *env) newSaver() (*util.OutputDir, error) {
	if e.cfg.Output.Dir == "" {
		return nil, nil
	}
	format, err := images.ParseFormat(e.cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	return util.NewOutputDir(e.cfg.Output.Dir, format, e.cfg.Output.Quality)
}

func (e *env) style() (annotate.Style, error) {
	return e.cfg.Style.ToStyle()
}

// controllerOptions wires the shared options of the serve and window commands.
func (e *env) controllerOptions() ([]controller.Option, error) {
	style, err := e.style()
	if err != nil {
		return nil, err
	}
	opts := []controller.Option{
		controller.WithStyle(style),
		controller.WithLogger(e.logger),
	}

	saver, err := e.newSaver()
	if err != nil {
		return nil, err
	}
	if saver != nil {
		opts = append(opts, controller.WithSaver(saver))
	}
	return opts, nil
}

// Package main is the snapshot command: capture a still from a camera, detect objects,
// and show or save the annotated result.
package main

import (
	"fmt"
	"os"

	"github.com/nvr-ai/go-snapshot/config"
	"github.com/nvr-ai/go-snapshot/logging"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const (
	flagConfig     = "config"
	flagLogLevel   = "log-level"
	flagModel      = "model"
	flagDetections = "detections"
	flagImage      = "image"
	flagOutput     = "output"
	flagAddr       = "addr"
	flagThreshold  = "threshold"
)

// env carries what every command needs after Before has run.
type env struct {
	cfg    config.Config
	logger *zap.SugaredLogger
}

func main() {
	e := &env{}

	app := &cli.App{
		Name:  "snapshot",
		Usage: "capture a frame, detect objects and annotate them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
				EnvVars: []string{"SNAPSHOT_CONFIG"},
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "override the configured log level",
			},
		},
		Before: func(c *cli.Context) error {
			cfg := config.Default()
			if path := c.String(flagConfig); path != "" {
				var err error
				if cfg, err = config.Load(path); err != nil {
					return err
				}
			}
			if lvl := c.String(flagLogLevel); lvl != "" {
				cfg.Log.Level = lvl
			}

			logger, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
			if err != nil {
				return err
			}
			e.cfg, e.logger = cfg, logger
			return nil
		},
		After: func(c *cli.Context) error {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve the capture flow over HTTP",
				Flags:  append(pipelineFlags(), &cli.StringFlag{Name: flagAddr, Usage: "listen `ADDRESS`"}),
				Action: e.serve,
			},
			{
				Name:   "window",
				Usage:  "show the live preview in a window; space captures or resets, q quits",
				Flags:  pipelineFlags(),
				Action: e.window,
			},
			{
				Name:      "annotate",
				Usage:     "annotate image files and write the results",
				ArgsUsage: "<image or directory>...",
				Flags:     pipelineFlags(),
				Action:    e.annotate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "snapshot: %+v\n", err)
		os.Exit(1)
	}
}

func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: flagModel, Usage: "YOLOv8 ONNX model `FILE`"},
		&cli.StringFlag{Name: flagDetections, Usage: "use fixed detections from a JSON `FILE` instead of a model"},
		&cli.StringFlag{Name: flagImage, Usage: "use a still image `FILE` instead of the camera"},
		&cli.StringFlag{Name: flagOutput, Usage: "write annotated captures to `DIR`"},
		&cli.Float64Flag{Name: flagThreshold, Usage: "minimum score drawn", Value: -1},
	}
}

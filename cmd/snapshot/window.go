package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/nvr-ai/go-snapshot/controller"
	"github.com/nvr-ai/go-snapshot/display"
	"github.com/urfave/cli/v2"
)

func (e *env) window(c *cli.Context) error {
	e.applyFlags(c)
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := e.newSource()
	if err != nil {
		return err
	}
	defer source.Close()

	det, err := e.newDetector(c)
	if err != nil {
		return err
	}
	defer det.Close()

	opts, err := e.controllerOptions()
	if err != nil {
		return err
	}

	win := display.NewWindow("snapshot", source, e.logger)
	ctrl := controller.New(source, det, win, opts...)

	e.logger.Infow("press space to capture or reset, q to quit")
	return win.Run(ctx, func(key int) {
		if key != display.KeySpace {
			return
		}
		state, err := ctrl.Toggle(ctx)
		if err != nil {
			e.logger.Errorw("capture failed", "error", err)
			return
		}
		if last := ctrl.Last(); state == controller.Showing && last != nil {
			e.logger.Infow("captured", "id", last.ID, "drawn", last.Drawn, "path", last.Path)
		}
	})
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nvr-ai/go-snapshot/controller"
	"github.com/nvr-ai/go-snapshot/display"
	"github.com/nvr-ai/go-snapshot/images"
	"github.com/nvr-ai/go-snapshot/profiler"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func (e *env) serve(c *cli.Context) error {
	e.applyFlags(c)
	if v := c.String(flagAddr); v != "" {
		e.cfg.Server.Addr = v
	}
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

	format, err := images.ParseFormat(e.cfg.Server.Format)
	if err != nil {
		return err
	}
	srv := display.NewServer(display.ServerConfig{
		Format:    format,
		Quality:   e.cfg.Server.Quality,
		MaxWidth:  e.cfg.Server.MaxWidth,
		MaxHeight: e.cfg.Server.MaxHeight,
	}, source, e.logger)

	opts, err := e.controllerOptions()
	if err != nil {
		return err
	}
	prof := profiler.New(profiler.Options{}, e.logger)
	prof.Start()
	defer prof.Stop()
	ctrl := controller.New(source, det, srv, append(opts, controller.WithProfiler(prof))...)

	httpServer := &http.Server{
		Addr:              e.cfg.Server.Addr,
		Handler:           srv.Router(ctrl),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Infow("http display listening", "addr", e.cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	case <-ctx.Done():
	}

	e.logger.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Wrap(httpServer.Shutdown(shutdownCtx), "shutdown http server")
}

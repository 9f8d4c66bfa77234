package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nvr-ai/go-snapshot/annotate"
	"github.com/nvr-ai/go-snapshot/images"
	"github.com/nvr-ai/go-snapshot/util"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func (e *env) annotate(c *cli.Context) error {
	e.applyFlags(c)
	if c.NArg() == 0 {
		return errors.New("at least one image or directory is required")
	}
	if e.cfg.Output.Dir == "" {
		e.cfg.Output.Dir = "annotated"
	}
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	det, err := e.newDetector(c)
	if err != nil {
		return err
	}
	defer det.Close()

	style, err := e.style()
	if err != nil {
		return err
	}
	saver, err := e.newSaver()
	if err != nil {
		return err
	}

	var files []util.ImageFile
	for _, arg := range c.Args().Slice() {
		loaded, err := util.LoadImageFiles(arg)
		if err != nil {
			return err
		}
		files = append(files, loaded...)
	}

	for _, f := range files {
		img, _, err := images.Decode(f.Data)
		if err != nil {
			return errors.Wrapf(err, "decode %s", f.Path)
		}
		detections, err := det.Detect(c.Context, img)
		if err != nil {
			return errors.Wrapf(err, "detect %s", f.Path)
		}
		annotated, err := annotate.Annotate(img, detections, style)
		if err != nil {
			return errors.Wrapf(err, "annotate %s", f.Path)
		}

		name := strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path)) + "_annotated"
		path, err := saver.Save(name, annotated)
		if err != nil {
			return err
		}

		drawn := annotate.FilterByScore(detections, style.Resolve(annotated.Bounds().Dy()).ScoreThreshold)
		e.logger.Infow("annotated", "input", f.Path, "output", path, "detections", len(detections), "drawn", len(drawn))
		fmt.Fprintln(c.App.Writer, path)
	}
	return nil
}

package cmd

import (
	"context"
	"errors"
	"runtime"

	"github.com/achilleasa/go-relight/compute"
	"github.com/achilleasa/go-relight/raster"
	"github.com/achilleasa/go-relight/renderer"
	"github.com/urfave/cli"
)

func init() {
	// glfw event handling must run on the main OS thread.
	runtime.LockOSThread()
}

// Open an interactive window for relighting a photo with live light
// editing.
func RelightInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing image file argument")
	}

	img, err := raster.FromFile(ctx.Args().First())
	if err != nil {
		return err
	}

	pool := compute.NewPool()
	pipeline, err := setupPipeline(ctx, pool)
	if err != nil {
		return err
	}

	lastPct := -1
	err = pipeline.ProcessImage(context.Background(), img, func(pct int) {
		if pct != lastPct {
			lastPct = pct
			logger.Infof("processing image: %d%%", pct)
		}
	})
	if err != nil {
		pipeline.Close()
		return err
	}

	if err = applyRenderFlags(ctx, pipeline); err != nil {
		pipeline.Close()
		return err
	}

	r, err := renderer.NewInteractive(pipeline, renderer.Options{
		FrameW:         uint32(img.Width),
		FrameH:         uint32(img.Height),
		Title:          "go-relight",
		ScreenshotPath: ctx.String("out"),
	})
	if err != nil {
		pipeline.Close()
		return err
	}
	defer r.Close()

	return r.Render()
}

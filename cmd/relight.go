package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/achilleasa/go-relight/compute"
	"github.com/achilleasa/go-relight/raster"
	"github.com/achilleasa/go-relight/renderer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Relight a single photo and write the result to a file.
func RelightFrame(ctx *cli.Context) error {
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

	r, err := renderer.NewFile(pipeline, ctx.String("out"))
	if err != nil {
		pipeline.Close()
		return err
	}
	defer r.Close()

	lastPct := -1
	err = pipeline.ProcessImage(context.Background(), img, func(pct int) {
		if pct != lastPct {
			lastPct = pct
			logger.Infof("processing image: %d%%", pct)
		}
	})
	if err != nil {
		return err
	}

	if err = applyRenderFlags(ctx, pipeline); err != nil {
		return err
	}

	if err = r.Render(); err != nil {
		return err
	}
	logger.Noticef("wrote relit frame to %s", ctx.String("out"))

	displayFrameStats(r.Stats())
	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Stage", "Time"})
	table.Append([]string{"depth/normal estimation", fmt.Sprintf("%s", stats.Pipeline.EstimateTime)})
	table.Append([]string{"surface reconstruction", fmt.Sprintf("%s", stats.Pipeline.ReconstructTime)})
	table.Append([]string{"albedo recovery", fmt.Sprintf("%s", stats.Pipeline.AlbedoTime)})
	table.Append([]string{"geometry upload", fmt.Sprintf("%s", stats.Pipeline.UploadTime)})
	table.Append([]string{"shadow casting", fmt.Sprintf("%s", stats.Pipeline.ShadowTime)})
	table.Append([]string{fmt.Sprintf("shading (%s)", stats.Pipeline.Backend), fmt.Sprintf("%s", stats.Pipeline.ShadeTime)})
	table.SetFooter([]string{"TOTAL", fmt.Sprintf("%s", stats.FrameTime)})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}

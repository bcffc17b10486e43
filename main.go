package main

import (
	"os"

	"github.com/achilleasa/go-relight/cmd"
	"github.com/achilleasa/go-relight/log"
	"github.com/urfave/cli"
)

var logger = log.New("relight")

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	sharedFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "backend",
			Value: "auto",
			Usage: "shading backend to use (auto, opencl or software)",
		},
		cli.StringFlag{
			Name:  "force-device",
			Usage: "only use opencl devices whose names contain this value",
		},
		cli.StringFlag{
			Name:  "depth-endpoint",
			Usage: "http endpoint of the monocular depth estimation service",
		},
		cli.StringFlag{
			Name:  "cache-dir",
			Usage: "directory for caching depth estimation results",
		},
		cli.BoolFlag{
			Name:  "no-auto-light",
			Usage: "do not auto-place an initial light from the image's apparent lighting",
		},
		cli.StringSliceFlag{
			Name:  "light, l",
			Value: &cli.StringSlice{},
			Usage: "add a light at x,y,z[,intensity] (normalized image coordinates)",
		},
		cli.Float64Flag{
			Name:  "ambient",
			Value: 0.2,
			Usage: "ambient fill level",
		},
		cli.Float64Flag{
			Name:  "specularity",
			Value: 0.0,
			Usage: "specular highlight gain",
		},
		cli.Float64Flag{
			Name:  "glossiness",
			Value: 32.0,
			Usage: "specular highlight exponent",
		},
		cli.Float64Flag{
			Name:  "shadow-intensity",
			Value: 0.8,
			Usage: "how strongly cast shadows darken the image",
		},
		cli.StringFlag{
			Name:  "blend",
			Value: "soft-light",
			Usage: "blend operator (soft-light, replace, add, screen or multiply)",
		},
		cli.StringFlag{
			Name:  "out, o",
			Value: "frame.png",
			Usage: "image filename for the relit frame",
		},
	}

	app := cli.NewApp()
	app.Name = "go-relight"
	app.Usage = "relight photos using estimated depth and normals"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "relight",
			Usage: "relight a photo and write the result to a file",
			Description: `
Estimate depth and normals for a single photo, recover its albedo and
re-shade it under the configured lights. The output encoding follows the
extension of the output filename (png, jpg or webp).`,
			ArgsUsage: "image_file",
			Flags:     sharedFlags,
			Action:    cmd.RelightFrame,
		},
		{
			Name:        "interactive",
			Usage:       "relight a photo in an interactive window",
			Description: `Drag lights with the mouse; scroll adjusts light height, 1-8 select a light, A adds one at the cursor, X removes it, [ and ] change its intensity and S saves the current frame.`,
			ArgsUsage:   "image_file",
			Flags:       sharedFlags,
			Action:      cmd.RelightInteractive,
		},
		{
			Name:   "list-devices",
			Usage:  "list available opencl devices",
			Action: cmd.ListDevices,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/achilleasa/go-relight/compute"
	"github.com/achilleasa/go-relight/estimator"
	"github.com/achilleasa/go-relight/relight"
	"github.com/achilleasa/go-relight/shader"
	"github.com/achilleasa/go-relight/shader/opencl"
	"github.com/achilleasa/go-relight/shader/software"
	"github.com/achilleasa/go-relight/types"
	"github.com/urfave/cli"
)

// Build the shading backend requested by the --backend flag. In auto
// mode an opencl init failure downgrades to the software backend with a
// warning instead of aborting.
func setupBackend(ctx *cli.Context, pool *compute.Pool) (shader.Backend, error) {
	backendName := ctx.String("backend")
	forceDevice := ctx.String("force-device")

	switch backendName {
	case "software":
		return software.NewBackend(pool), nil
	case "opencl", "auto":
		device, err := opencl.SelectBestDevice(opencl.AllDevices, forceDevice)
		if err == nil {
			var backend shader.Backend
			if backend, err = opencl.NewBackend(device); err == nil {
				return backend, nil
			}
		}
		if backendName == "opencl" {
			return nil, err
		}
		logger.Warningf("opencl unavailable (%v); falling back to software shading", err)
		return software.NewBackend(pool), nil
	default:
		return nil, fmt.Errorf("unsupported backend %q", backendName)
	}
}

// Build the depth estimator: a remote model source when an endpoint is
// configured, always backed by the procedural fallback.
func setupEstimator(ctx *cli.Context, pool *compute.Pool) (*estimator.DepthNormalEstimator, error) {
	var source estimator.DepthSource
	if endpoint := ctx.String("depth-endpoint"); endpoint != "" {
		var cache estimator.Cache
		if dir := ctx.String("cache-dir"); dir != "" {
			var err error
			if cache, err = estimator.NewDirCache(dir); err != nil {
				return nil, err
			}
		} else {
			cache = estimator.NewMemoryCache()
		}
		source = estimator.NewRemoteSource(endpoint, cache)
	}

	return estimator.New(source, estimator.NewFallbackSource(), pool, estimator.DefaultOptions()), nil
}

// Build and initialize a pipeline from the command flags.
func setupPipeline(ctx *cli.Context, pool *compute.Pool) (*relight.Pipeline, error) {
	backend, err := setupBackend(ctx, pool)
	if err != nil {
		return nil, err
	}

	est, err := setupEstimator(ctx, pool)
	if err != nil {
		backend.Close()
		return nil, err
	}

	opts := relight.DefaultOptions()
	opts.AutoPlaceLight = !ctx.Bool("no-auto-light")

	pipeline := relight.New(backend, est, pool, opts)
	if err = pipeline.Init(); err != nil {
		pipeline.Close()
		return nil, err
	}
	return pipeline, nil
}

// Apply the shared shading parameter flags and explicit light placements.
func applyRenderFlags(ctx *cli.Context, pipeline *relight.Pipeline) error {
	params := pipeline.Params()
	if ctx.IsSet("ambient") {
		params.Ambient = float32(ctx.Float64("ambient"))
	}
	params.Specularity = float32(ctx.Float64("specularity"))
	params.Glossiness = float32(ctx.Float64("glossiness"))
	params.ShadowIntensity = float32(ctx.Float64("shadow-intensity"))
	if ctx.IsSet("blend") {
		mode, err := shader.ParseBlendMode(ctx.String("blend"))
		if err != nil {
			return err
		}
		params.Blend = mode
	}
	pipeline.SetParams(params)

	for _, spec := range ctx.StringSlice("light") {
		light, err := parseLightSpec(spec)
		if err != nil {
			return err
		}
		if err = pipeline.AddLight(light); err != nil {
			return err
		}
	}
	return nil
}

// Parse a light placement of the form "x,y,z" or "x,y,z,intensity",
// with x/y in normalized image coordinates and z the height above the
// image plane.
func parseLightSpec(spec string) (shader.Light, error) {
	fields := strings.Split(spec, ",")
	if len(fields) != 3 && len(fields) != 4 {
		return shader.Light{}, fmt.Errorf("invalid light spec %q; expected x,y,z[,intensity]", spec)
	}

	vals := make([]float32, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
		if err != nil {
			return shader.Light{}, fmt.Errorf("invalid light spec %q: %v", spec, err)
		}
		vals[i] = float32(v)
	}

	light := shader.DefaultLight()
	light.Position = types.Vec3{vals[0], vals[1], vals[2]}
	if len(vals) == 4 {
		light.Intensity = vals[3]
	}
	return light, nil
}

// Package albedo recovers a lighting-invariant base color from a single
// photograph. The dominant-light and ambient estimates are documented
// heuristics ("plausible single dominant light, roughly frontal"), not an
// exact intrinsic decomposition; the divide-out is deliberately blended
// back toward the original color to avoid over-flattening.
package albedo

import (
	"math"

	"github.com/achilleasa/go-relight/compute"
	"github.com/achilleasa/go-relight/log"
	"github.com/achilleasa/go-relight/raster"
	"github.com/achilleasa/go-relight/types"
)

// Options tune the recovery pass.
type Options struct {
	// Floor applied to the estimated per-pixel lighting before the
	// divide, preventing blowups in deep shadow.
	ShadowRecovery float32

	// Fraction of the original color blended back into the recovered
	// albedo. 0 keeps the full divide-out, 1 disables recovery.
	RetainOriginal float32

	// Upper clamp for recovered channel values, in linear light.
	MaxBrightness float32
}

// DefaultOptions returns the tuning used by the relighting pipeline.
func DefaultOptions() Options {
	return Options{
		ShadowRecovery: 0.25,
		RetainOriginal: 0.3,
		MaxBrightness:  1.5,
	}
}

// Recoverer divides estimated illumination out of a photograph to
// approximate its albedo.
type Recoverer struct {
	pool   *compute.Pool
	opts   Options
	logger log.Logger
}

// Create a recoverer. The pool may be nil to run single-threaded.
func New(pool *compute.Pool, opts Options) *Recoverer {
	return &Recoverer{pool: pool, opts: opts, logger: log.New("albedo")}
}

// Recover a linear-light albedo buffer from the image. Never fails: when
// normals are unavailable the pass degrades to a simple contrast
// reduction instead.
func (r *Recoverer) Recover(img *raster.Image, normals *raster.VectorField) *raster.RGBField {
	linear := img.Linear()

	if normals == nil {
		r.logger.Warning("no normals available; falling back to contrast reduction")
		return r.contrastReduction(linear)
	}

	lightDir := DominantLightDirection(linear, normals)
	ambient := AmbientFraction(linear, normals)
	r.logger.Debugf("dominant light %v, ambient %.2f", lightDir, ambient)

	out := raster.NewRGBField(linear.Width, linear.Height)
	r.run(linear.Height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < linear.Width; x++ {
				ndotl := normals.At(x, y).Dot(lightDir)
				if ndotl < 0 {
					ndotl = 0
				}

				lighting := ndotl*(1.0-ambient) + ambient
				if lighting < r.opts.ShadowRecovery {
					lighting = r.opts.ShadowRecovery
				}

				color := linear.At(x, y)
				recovered := color.Mul(1.0 / lighting).Clamp(0, r.opts.MaxBrightness)
				out.Set(x, y, recovered.Lerp(color, r.opts.RetainOriginal))
			}
		}
	})
	return out
}

// DominantLightDirection estimates where the scene light sits by letting
// every pixel's normal vote with weight luminance^1.5: bright pixels face
// the light. The z component is forced positive; the light is assumed to
// sit in front of the subject.
func DominantLightDirection(linear *raster.RGBField, normals *raster.VectorField) types.Vec3 {
	var acc types.Vec3
	for i, rgb := range linear.Data {
		lum := raster.Luminance(rgb)
		weight := float32(math.Pow(float64(lum), 1.5))
		acc = acc.Add(normals.Data[i].Mul(weight))
	}

	if acc[2] < 0 {
		acc[2] = -acc[2]
	}

	dir := acc.Normalize()
	if dir.Len() < 0.5 {
		// No luminance signal at all (e.g. black frame); assume frontal.
		return types.Vec3{0, 0, 1}
	}
	return dir
}

// Orientation buckets for the ambient estimate.
const (
	bucketFront = iota
	bucketSide
	bucketUp
	numBuckets
)

// AmbientFraction estimates the ambient light term by bucketing average
// luminance by coarse normal orientation. Surfaces turned away from the
// camera that are still bright imply strong ambient fill; the side/up to
// front brightness ratio is mapped into [0.1, 0.5].
func AmbientFraction(linear *raster.RGBField, normals *raster.VectorField) float32 {
	var lumSum [numBuckets]float64
	var count [numBuckets]int

	for i, rgb := range linear.Data {
		n := normals.Data[i]
		bucket := bucketSide
		switch {
		case n[2] > 0.8:
			bucket = bucketFront
		case n[1] > 0.5:
			bucket = bucketUp
		}
		lumSum[bucket] += float64(raster.Luminance(rgb))
		count[bucket]++
	}

	if count[bucketFront] == 0 {
		return 0.3
	}
	frontAvg := lumSum[bucketFront] / float64(count[bucketFront])
	if frontAvg < 1e-4 {
		return 0.3
	}

	offAxisCount := count[bucketSide] + count[bucketUp]
	if offAxisCount == 0 {
		return 0.3
	}
	offAxisAvg := (lumSum[bucketSide] + lumSum[bucketUp]) / float64(offAxisCount)

	ratio := float32(offAxisAvg / frontAvg)
	return types.Clamp(0.1+ratio*0.4, 0.1, 0.5)
}

// The no-normals fallback: pull every pixel a fixed fraction toward the
// frame's mean color, reducing lighting contrast without any geometry.
func (r *Recoverer) contrastReduction(linear *raster.RGBField) *raster.RGBField {
	var mean types.Vec3
	for _, rgb := range linear.Data {
		mean = mean.Add(rgb)
	}
	mean = mean.Mul(1.0 / float32(len(linear.Data)))

	out := raster.NewRGBField(linear.Width, linear.Height)
	for i, rgb := range linear.Data {
		out.Data[i] = rgb.Lerp(mean, 0.25)
	}
	return out
}

func (r *Recoverer) run(frameH int, kernel compute.RowKernel) {
	if r.pool == nil {
		kernel(0, frameH)
		return
	}
	r.pool.Run(frameH, kernel)
}

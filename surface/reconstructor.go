// Package surface removes depth-model high-frequency artifacts that would
// otherwise surface as shading noise, and rebuilds broad-shape normals
// from the cleaned depth. Surface micro-texture is deliberately left out
// of the normals; texture belongs to the albedo channel.
package surface

import (
	"math"

	"github.com/achilleasa/go-relight/compute"
	"github.com/achilleasa/go-relight/estimator"
	"github.com/achilleasa/go-relight/raster"
)

// Options tune the reconstruction passes.
type Options struct {
	// Radius of the bilateral depth filter.
	BilateralRadius int

	// Depth-range sigma of the bilateral filter. Small enough to
	// preserve object silhouettes while erasing sub-pixel jitter.
	DepthSigma float32

	// Extra plain Gaussian passes applied after the bilateral filter.
	GaussianPasses int

	// Gradient strength for the recomputed normals. Deliberately low so
	// normals encode only broad shape.
	NormalStrength float32

	// Enables luminance/color gradient cue fusion and the cross-bilateral
	// smoothing pass guided by the source image.
	FuseColorCues bool

	// Radius of the cross-bilateral smoothing pass.
	CrossBilateralRadius int

	// Color similarity sigma for the cross-bilateral pass.
	ColorSigma float32
}

// DefaultOptions returns the tuning used by the relighting pipeline.
func DefaultOptions() Options {
	return Options{
		BilateralRadius:      9,
		DepthSigma:           0.08,
		GaussianPasses:       1,
		NormalStrength:       1.2,
		FuseColorCues:        true,
		CrossBilateralRadius: 3,
		ColorSigma:           0.1,
	}
}

// The result of a reconstruction pass.
type Result struct {
	SmoothDepth   *raster.ScalarField
	SmoothNormals *raster.VectorField
}

// Reconstructor smooths an estimated depth field and derives stable
// normals from it. Reconstruct is a pure function of its inputs.
type Reconstructor struct {
	pool *compute.Pool
	opts Options
}

// Create a reconstructor. The pool may be nil to run single-threaded.
func New(pool *compute.Pool, opts Options) *Reconstructor {
	return &Reconstructor{pool: pool, opts: opts}
}

// Reconstruct a smooth surface from the estimated depth. The confidence
// field weights the color-cue fusion and may be nil, in which case depth
// normals are trusted everywhere.
func (r *Reconstructor) Reconstruct(depth *raster.ScalarField, img *raster.Image, confidence *raster.ScalarField) *Result {
	smooth := r.bilateralDepth(depth)
	for pass := 0; pass < r.opts.GaussianPasses; pass++ {
		smooth = r.gaussianDepth(smooth, 2)
	}

	normals := estimator.SobelNormals(smooth, 1, r.opts.NormalStrength, r.pool)
	if r.opts.FuseColorCues {
		normals = r.fuseColorCues(normals, img, confidence)
		normals = r.crossBilateral(normals, img)
	}

	return &Result{SmoothDepth: smooth, SmoothNormals: normals}
}

// Bilateral filter: spatial Gaussian × depth-range Gaussian.
func (r *Reconstructor) bilateralDepth(depth *raster.ScalarField) *raster.ScalarField {
	radius := r.opts.BilateralRadius
	if radius < 1 {
		return depth.Clone()
	}

	spatial := raster.Gaussian1D(radius)
	invRangeSq := 1.0 / (2.0 * r.opts.DepthSigma * r.opts.DepthSigma)

	out := raster.NewScalarField(depth.Width, depth.Height)
	r.run(depth.Height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < depth.Width; x++ {
				center := depth.At(x, y)
				var sum, weight float32
				for wy := -radius; wy <= radius; wy++ {
					for wx := -radius; wx <= radius; wx++ {
						v := depth.At(x+wx, y+wy)
						dd := v - center
						w := spatial[wx+radius] * spatial[wy+radius] *
							float32(math.Exp(float64(-dd*dd*invRangeSq)))
						sum += v * w
						weight += w
					}
				}
				out.Set(x, y, sum/weight)
			}
		}
	})
	return out
}

// Separable Gaussian blur over the depth field.
func (r *Reconstructor) gaussianDepth(depth *raster.ScalarField, radius int) *raster.ScalarField {
	kernel := raster.Gaussian1D(radius)

	tmp := raster.NewScalarField(depth.Width, depth.Height)
	r.run(depth.Height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < depth.Width; x++ {
				var sum float32
				for k := -radius; k <= radius; k++ {
					sum += depth.At(x+k, y) * kernel[k+radius]
				}
				tmp.Set(x, y, sum)
			}
		}
	})

	out := raster.NewScalarField(depth.Width, depth.Height)
	r.run(depth.Height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < depth.Width; x++ {
				var sum float32
				for k := -radius; k <= radius; k++ {
					sum += tmp.At(x, y+k) * kernel[k+radius]
				}
				out.Set(x, y, sum)
			}
		}
	})
	return out
}

func (r *Reconstructor) run(frameH int, kernel compute.RowKernel) {
	if r.pool == nil {
		kernel(0, frameH)
		return
	}
	r.pool.Run(frameH, kernel)
}

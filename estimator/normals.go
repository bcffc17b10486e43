package estimator

import (
	"math"

	"github.com/achilleasa/go-relight/compute"
	"github.com/achilleasa/go-relight/raster"
	"github.com/achilleasa/go-relight/types"
)

// Sobel kernel radii for the fine/medium/coarse normal estimates.
const (
	fineRadius   = 1
	mediumRadius = 2
	coarseRadius = 4
)

// SobelNormals derives a normal field from a depth field using Sobel-style
// central differences sampled at the given kernel radius. The strength
// constant scales the gradients before the z=1 normalization, controlling
// how much relief the normals encode.
func SobelNormals(depth *raster.ScalarField, radius int, strength float32, pool *compute.Pool) *raster.VectorField {
	out := raster.NewVectorField(depth.Width, depth.Height)
	run(pool, depth.Height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < depth.Width; x++ {
				out.Set(x, y, sobelNormalAt(depth, x, y, radius, strength))
			}
		}
	})
	return out
}

func sobelNormalAt(depth *raster.ScalarField, x, y, radius int, strength float32) types.Vec3 {
	r := radius

	// Sobel weights 1-2-1 across three rows/columns, sampled at ±radius.
	dzdx := (depth.At(x+r, y-r) + 2*depth.At(x+r, y) + depth.At(x+r, y+r)) -
		(depth.At(x-r, y-r) + 2*depth.At(x-r, y) + depth.At(x-r, y+r))
	dzdy := (depth.At(x-r, y+r) + 2*depth.At(x, y+r) + depth.At(x+r, y+r)) -
		(depth.At(x-r, y-r) + 2*depth.At(x, y-r) + depth.At(x+r, y-r))

	// Normalize for the widened sample distance so all scales report
	// comparable gradients.
	scale := strength / (8.0 * float32(r))
	return types.Vec3{-dzdx * scale, dzdy * scale, 1.0}.Normalize()
}

// FuseNormals blends fine/medium/coarse normal candidates per pixel with
// confidence-dependent weights. High-confidence pixels favor the fine
// estimate to keep detail; low-confidence pixels lean on the coarse,
// stable one. The blended vector is renormalized.
func FuseNormals(fine, medium, coarse *raster.VectorField, confidence *raster.ScalarField, pool *compute.Pool) *raster.VectorField {
	out := raster.NewVectorField(fine.Width, fine.Height)
	run(pool, fine.Height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < fine.Width; x++ {
				c := confidence.At(x, y)

				// Quadratic partition of unity over the three scales.
				wFine := c * c
				wCoarse := (1 - c) * (1 - c)
				wMedium := 2 * c * (1 - c)

				blended := fine.At(x, y).Mul(wFine).
					Add(medium.At(x, y).Mul(wMedium)).
					Add(coarse.At(x, y).Mul(wCoarse))

				n := blended.Normalize()
				if n.Len() < 0.5 {
					// Opposing candidates cancelled out; fall back to
					// the stable coarse estimate.
					n = coarse.At(x, y)
				}
				out.Set(x, y, n)
			}
		}
	})
	return out
}

// SmoothNormals applies a depth-guided bilateral pass over a normal field.
// The kernel combines a spatial Gaussian with a depth-similarity Gaussian
// so per-pixel noise is suppressed while silhouette edges survive.
func SmoothNormals(normals *raster.VectorField, depth *raster.ScalarField, radius int, depthSigma float32, pool *compute.Pool) *raster.VectorField {
	if radius < 1 {
		return normals.Clone()
	}

	spatial := raster.Gaussian1D(radius)
	invDepthSigmaSq := 1.0 / (2.0 * depthSigma * depthSigma)

	out := raster.NewVectorField(normals.Width, normals.Height)
	run(pool, normals.Height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < normals.Width; x++ {
				centerDepth := depth.At(x, y)
				var acc types.Vec3
				for wy := -radius; wy <= radius; wy++ {
					for wx := -radius; wx <= radius; wx++ {
						dd := depth.At(x+wx, y+wy) - centerDepth
						w := spatial[wx+radius] * spatial[wy+radius] *
							float32(math.Exp(float64(-dd*dd*invDepthSigmaSq)))
						acc = acc.Add(normals.At(x+wx, y+wy).Mul(w))
					}
				}
				n := acc.Normalize()
				if n.Len() < 0.5 {
					n = normals.At(x, y)
				}
				out.Set(x, y, n)
			}
		}
	})
	return out
}

// run dispatches rows through the pool, or inline when no pool is set.
func run(pool *compute.Pool, frameH int, kernel compute.RowKernel) {
	if pool == nil {
		kernel(0, frameH)
		return
	}
	pool.Run(frameH, kernel)
}

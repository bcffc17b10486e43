package surface

import (
	"math"

	"github.com/achilleasa/go-relight/raster"
	"github.com/achilleasa/go-relight/types"
)

// Relative weight of the image-derived cues against the depth normal at
// full confidence loss. Even at zero confidence the depth normal retains
// some influence; image gradients alone are too noisy to stand by
// themselves.
const maxCueWeight = 0.45

// Gradient strength for the luminance/color cues. Kept below the depth
// normal strength so cues bend the surface rather than redefine it.
const cueStrength = 0.8

// fuseColorCues blends luminance-gradient and per-channel color-gradient
// normal candidates into the depth-derived normals. Where depth
// confidence is low the image cues take over more of the result.
func (r *Reconstructor) fuseColorCues(normals *raster.VectorField, img *raster.Image, confidence *raster.ScalarField) *raster.VectorField {
	lum := img.LuminanceField()
	linear := img.Linear()

	out := raster.NewVectorField(normals.Width, normals.Height)
	r.run(normals.Height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < normals.Width; x++ {
				lumCue := gradientNormal(
					lum.At(x+1, y)-lum.At(x-1, y),
					lum.At(x, y+1)-lum.At(x, y-1),
				)

				// Average per-channel gradients; channels voting in
				// different directions cancel, which is exactly what we
				// want at pure chroma edges.
				var chanCue types.Vec3
				for c := 0; c < 3; c++ {
					gx := linear.At(x+1, y)[c] - linear.At(x-1, y)[c]
					gy := linear.At(x, y+1)[c] - linear.At(x, y-1)[c]
					chanCue = chanCue.Add(gradientNormal(gx, gy))
				}
				chanCue = chanCue.Normalize()

				cue := lumCue.Mul(0.6).Add(chanCue.Mul(0.4)).Normalize()

				conf := float32(1.0)
				if confidence != nil {
					conf = confidence.At(x, y)
				}
				cueWeight := maxCueWeight * (1.0 - conf)

				fused := normals.At(x, y).Mul(1.0 - cueWeight).Add(cue.Mul(cueWeight)).Normalize()
				if fused.Len() < 0.5 {
					fused = normals.At(x, y)
				}
				out.Set(x, y, fused)
			}
		}
	})
	return out
}

func gradientNormal(gx, gy float32) types.Vec3 {
	return types.Vec3{-gx * cueStrength, gy * cueStrength, 1.0}.Normalize()
}

// crossBilateral smooths the fused normals using the original image as an
// edge guide, so color edges (not only depth edges) are respected.
func (r *Reconstructor) crossBilateral(normals *raster.VectorField, img *raster.Image) *raster.VectorField {
	radius := r.opts.CrossBilateralRadius
	if radius < 1 {
		return normals
	}

	linear := img.Linear()
	spatial := raster.Gaussian1D(radius)
	invColorSq := 1.0 / (2.0 * r.opts.ColorSigma * r.opts.ColorSigma)

	out := raster.NewVectorField(normals.Width, normals.Height)
	r.run(normals.Height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < normals.Width; x++ {
				center := linear.At(x, y)
				var acc types.Vec3
				for wy := -radius; wy <= radius; wy++ {
					for wx := -radius; wx <= radius; wx++ {
						diff := linear.At(x+wx, y+wy).Sub(center)
						distSq := diff.Dot(diff)
						w := spatial[wx+radius] * spatial[wy+radius] *
							float32(math.Exp(float64(-distSq*invColorSq)))
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

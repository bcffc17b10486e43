package estimator

import (
	"context"
	"math"

	"github.com/achilleasa/go-relight/raster"
)

// FallbackSource derives a single-scale depth proxy from the image itself
// when the external model is unavailable. Brighter regions and the image
// center are assumed nearer the camera; this is a crude prior but keeps
// the rest of the pipeline functional.
//
// Weights: depth = 0.6·luminance + 0.4·(1 − radial distance from center).
type FallbackSource struct {
	// Blur radius applied to the luminance term to suppress texture.
	BlurRadius int
}

// Create a fallback source with default settings.
func NewFallbackSource() *FallbackSource {
	return &FallbackSource{BlurRadius: 4}
}

// Estimate a depth proxy; never fails.
func (s *FallbackSource) EstimateDepth(_ context.Context, img *raster.Image, progress ProgressFn) (*raster.ScalarField, error) {
	lum := img.LuminanceField()
	blurSeparable(lum, s.BlurRadius)

	cx := float32(img.Width-1) * 0.5
	cy := float32(img.Height-1) * 0.5
	maxDist := float32(math.Hypot(float64(cx), float64(cy)))
	if maxDist < 1 {
		maxDist = 1
	}

	out := raster.NewScalarField(img.Width, img.Height)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			dx := float32(x) - cx
			dy := float32(y) - cy
			dist := float32(math.Hypot(float64(dx), float64(dy))) / maxDist
			out.Set(x, y, 0.6*lum.At(x, y)+0.4*(1.0-dist))
		}
	}

	if progress != nil {
		progress(100)
	}
	return out, nil
}

// Box blur run twice per axis, approximating a Gaussian closely enough
// for a depth prior.
func blurSeparable(f *raster.ScalarField, radius int) {
	if radius < 1 {
		return
	}
	for pass := 0; pass < 2; pass++ {
		boxBlurAxis(f, radius, true)
		boxBlurAxis(f, radius, false)
	}
}

func boxBlurAxis(f *raster.ScalarField, radius int, horizontal bool) {
	tmp := f.Clone()
	norm := float32(1.0 / float64(2*radius+1))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			var sum float32
			for k := -radius; k <= radius; k++ {
				if horizontal {
					sum += tmp.At(x+k, y)
				} else {
					sum += tmp.At(x, y+k)
				}
			}
			f.Set(x, y, sum*norm)
		}
	}
}

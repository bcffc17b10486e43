package raster

import "math"

// Gaussian1D builds a normalized one-dimensional Gaussian kernel of the
// given radius with sigma = radius/2. Separable filters apply it once per
// axis.
func Gaussian1D(radius int) []float32 {
	sigma := float64(radius) / 2.0
	if sigma < 0.5 {
		sigma = 0.5
	}
	kernel := make([]float32, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = float32(v)
		sum += v
	}
	inv := float32(1.0 / sum)
	for i := range kernel {
		kernel[i] *= inv
	}
	return kernel
}

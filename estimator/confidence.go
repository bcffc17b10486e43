package estimator

import (
	"math"

	"github.com/achilleasa/go-relight/raster"
	"github.com/achilleasa/go-relight/types"
)

const (
	// Window half-size for the local variance test.
	confidenceWindowRadius = 2

	// Scale factors mapping variance / edge jumps into confidence loss.
	variancePenaltyScale = 24.0
	edgeJumpPenaltyScale = 8.0
)

// Confidence derives a per-pixel trust score in [0, 1] for a depth field.
// Confidence drops near depth discontinuities (edge-jump test against the
// 4-neighborhood) and in regions of high local variance, where the depth
// model output is typically unstable.
func Confidence(depth *raster.ScalarField) *raster.ScalarField {
	out := raster.NewScalarField(depth.Width, depth.Height)

	for y := 0; y < depth.Height; y++ {
		for x := 0; x < depth.Width; x++ {
			center := depth.At(x, y)

			// Windowed variance.
			var sum, sumSq float32
			var count int
			for wy := -confidenceWindowRadius; wy <= confidenceWindowRadius; wy++ {
				for wx := -confidenceWindowRadius; wx <= confidenceWindowRadius; wx++ {
					v := depth.At(x+wx, y+wy)
					sum += v
					sumSq += v * v
					count++
				}
			}
			mean := sum / float32(count)
			variance := sumSq/float32(count) - mean*mean
			if variance < 0 {
				variance = 0
			}

			// Largest depth jump to a direct neighbor.
			jump := float32(0)
			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				delta := float32(math.Abs(float64(depth.At(x+d[0], y+d[1]) - center)))
				if delta > jump {
					jump = delta
				}
			}

			penalty := variancePenaltyScale*float32(math.Sqrt(float64(variance))) + edgeJumpPenaltyScale*jump
			out.Set(x, y, types.Clamp(1.0-penalty, 0.0, 1.0))
		}
	}

	return out
}

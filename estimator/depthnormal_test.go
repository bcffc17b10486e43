package estimator

import (
	"context"
	"testing"

	"github.com/achilleasa/go-relight/raster"
)

// A source emitting a left-to-right depth ramp over an arbitrary value
// range at a fraction of the image resolution, mimicking a model that
// returns raw metric depth.
type rampSource struct {
	width, height int
	lo, hi        float32
}

func (s *rampSource) EstimateDepth(_ context.Context, _ *raster.Image, _ ProgressFn) (*raster.ScalarField, error) {
	depth := raster.NewScalarField(s.width, s.height)
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			depth.Set(x, y, s.lo+(s.hi-s.lo)*float32(x)/float32(s.width-1))
		}
	}
	return depth, nil
}

// A tensor outside [0, 1] must keep its variation through the resample
// to image resolution; normalization then maps it onto the full range
// instead of collapsing to mid-gray.
func TestEstimateNormalizesRawDepthTensor(t *testing.T) {
	est := New(&rampSource{width: 8, height: 8, lo: 5, hi: 10}, nil, nil, DefaultOptions())

	res, err := est.Estimate(context.Background(), testImage(16, 16), nil)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	if got := res.Depth.At(0, 8); got > 1e-4 {
		t.Fatalf("expected left edge to normalize to 0; got %f", got)
	}
	if got := res.Depth.At(15, 8); got < 1.0-1e-4 {
		t.Fatalf("expected right edge to normalize to 1; got %f", got)
	}
	if left, right := res.Depth.At(4, 8), res.Depth.At(11, 8); left >= right {
		t.Fatalf("depth ramp flattened by resampling: left=%f right=%f", left, right)
	}
}

package surface

import (
	"math"
	"testing"

	"github.com/achilleasa/go-relight/raster"
)

func noisyDepth(w, h int) *raster.ScalarField {
	depth := raster.NewScalarField(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			base := float32(x+y) / float32(w+h)
			jitter := float32(0.0)
			if (x+y)%2 == 0 {
				jitter = 0.02
			}
			depth.Set(x, y, base+jitter)
		}
	}
	return depth
}

func grayImage(w, h int) *raster.Image {
	img, _ := raster.FromBuffer(make([]uint8, w*h*4), w, h)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 128, 128, 128, 255
	}
	return img
}

func roughness(f *raster.ScalarField) float64 {
	var sum float64
	for y := 0; y < f.Height; y++ {
		for x := 1; x < f.Width; x++ {
			d := float64(f.At(x, y) - f.At(x-1, y))
			sum += d * d
		}
	}
	return sum
}

// Reconstruction must suppress the pixel-scale jitter that shows up as
// shading noise while keeping the field's dimensions.
func TestReconstructSmoothsJitter(t *testing.T) {
	depth := noisyDepth(16, 16)
	img := grayImage(16, 16)

	res := New(nil, DefaultOptions()).Reconstruct(depth, img, nil)
	if res.SmoothDepth.Width != 16 || res.SmoothDepth.Height != 16 {
		t.Fatalf("unexpected smooth depth dims %dx%d", res.SmoothDepth.Width, res.SmoothDepth.Height)
	}

	before := roughness(depth)
	after := roughness(res.SmoothDepth)
	if after >= before {
		t.Fatalf("expected smoothing to reduce roughness: before=%f after=%f", before, after)
	}
}

func TestReconstructNormalsUnitLength(t *testing.T) {
	depth := noisyDepth(16, 16)
	img := grayImage(16, 16)

	res := New(nil, DefaultOptions()).Reconstruct(depth, img, nil)
	for i, n := range res.SmoothNormals.Data {
		if math.Abs(float64(n.Len()-1.0)) > 1e-4 {
			t.Fatalf("normal %d not unit length: %v", i, n)
		}
		if n[2] <= 0 {
			t.Fatalf("normal %d points away from the viewer: %v", i, n)
		}
	}
}

// With color cue fusion disabled the pass reduces to pure depth
// filtering; it must still produce usable normals.
func TestReconstructWithoutColorCues(t *testing.T) {
	opts := DefaultOptions()
	opts.FuseColorCues = false

	res := New(nil, opts).Reconstruct(noisyDepth(8, 8), grayImage(8, 8), nil)
	for i, n := range res.SmoothNormals.Data {
		if math.Abs(float64(n.Len()-1.0)) > 1e-4 {
			t.Fatalf("normal %d not unit length: %v", i, n)
		}
	}
}

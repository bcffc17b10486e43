package estimator

import (
	"context"
	"math"
	"testing"

	"github.com/achilleasa/go-relight/raster"
)

// A constant depth field has no gradients; every derived normal must
// point straight at the viewer.
func TestSobelNormalsFlatField(t *testing.T) {
	depth := raster.NewUniformScalarField(8, 8, 0.5)
	normals := SobelNormals(depth, 1, 2.5, nil)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			n := normals.At(x, y)
			if n[0] != 0 || n[1] != 0 || n[2] != 1 {
				t.Fatalf("expected (0,0,1) at (%d,%d); got %v", x, y, n)
			}
		}
	}
}

func TestSobelNormalsUnitLength(t *testing.T) {
	depth := raster.NewScalarField(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			depth.Set(x, y, float32(x)*0.1+float32(y*y)*0.01)
		}
	}

	for _, radius := range []int{fineRadius, mediumRadius, coarseRadius} {
		normals := SobelNormals(depth, radius, 2.5, nil)
		for i, n := range normals.Data {
			if math.Abs(float64(n.Len()-1.0)) > 1e-4 {
				t.Fatalf("[radius %d] normal %d not unit length: %v (len %f)", radius, i, n, n.Len())
			}
		}
	}
}

func TestFusedNormalsUnitLength(t *testing.T) {
	depth := raster.NewScalarField(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			depth.Set(x, y, float32(x+y)/14.0)
		}
	}

	fine := SobelNormals(depth, fineRadius, 2.5, nil)
	medium := SobelNormals(depth, mediumRadius, 2.5, nil)
	coarse := SobelNormals(depth, coarseRadius, 2.5, nil)
	fused := FuseNormals(fine, medium, coarse, Confidence(depth), nil)

	for i, n := range fused.Data {
		if math.Abs(float64(n.Len()-1.0)) > 1e-4 {
			t.Fatalf("fused normal %d not unit length: %v", i, n)
		}
	}
}

// Confidence must drop at depth discontinuities relative to flat areas.
func TestConfidenceDropsAtEdges(t *testing.T) {
	depth := raster.NewScalarField(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if x >= 8 {
				depth.Set(x, y, 0.9)
			} else {
				depth.Set(x, y, 0.1)
			}
		}
	}

	conf := Confidence(depth)
	flat := conf.At(2, 8)
	edge := conf.At(8, 8)
	if edge >= flat {
		t.Fatalf("expected lower confidence at discontinuity: edge=%f flat=%f", edge, flat)
	}
	for _, v := range conf.Data {
		if v < 0 || v > 1 {
			t.Fatalf("confidence out of range: %f", v)
		}
	}
}

func TestFallbackSourceProducesFiniteDepth(t *testing.T) {
	img, _ := raster.FromBuffer(make([]uint8, 8*8*4), 8, 8)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(i % 255)
		img.Pix[i+3] = 255
	}

	field, err := NewFallbackSource().EstimateDepth(context.Background(), img, nil)
	if err != nil {
		t.Fatalf("fallback source failed: %v", err)
	}
	if field.Width != 8 || field.Height != 8 {
		t.Fatalf("expected 8x8 field; got %dx%d", field.Width, field.Height)
	}
	for i, v := range field.Data {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("non-finite depth at %d: %f", i, v)
		}
	}
}

package shadow

import (
	"testing"

	"github.com/achilleasa/go-relight/raster"
	"github.com/achilleasa/go-relight/shader"
	"github.com/achilleasa/go-relight/types"
)

func directionalLight(dir types.Vec3) shader.Light {
	light := shader.DefaultLight()
	light.Type = shader.DirectionalLight
	light.Direction = dir
	light.ShadowSoftness = 0
	return light
}

// A perfectly flat surface cannot occlude itself: an overhead
// directional light must leave every pixel fully lit.
func TestCastFlatPlaneFullyLit(t *testing.T) {
	depth := raster.NewUniformScalarField(16, 16, 0.0)
	lights, err := shader.NewLightSet(directionalLight(types.Vec3{0, 0, -1}))
	if err != nil {
		t.Fatal(err)
	}

	field := New(nil, DefaultOptions()).Cast(depth, lights)
	for i, v := range field.Data {
		if v != 1.0 {
			t.Fatalf("expected full visibility at %d; got %f", i, v)
		}
	}
}

func TestCastEmptyLightSetFullyLit(t *testing.T) {
	depth := raster.NewUniformScalarField(8, 8, 0.7)
	field := New(nil, DefaultOptions()).Cast(depth, &shader.LightSet{})
	for i, v := range field.Data {
		if v != 1.0 {
			t.Fatalf("expected full visibility at %d; got %f", i, v)
		}
	}
}

// A light shining from behind the image plane cannot be occluded by the
// height field.
func TestCastBackfacingLightFullyLit(t *testing.T) {
	depth := raster.NewUniformScalarField(8, 8, 0.0)
	depth.Set(4, 4, 1.0)

	lights, _ := shader.NewLightSet(directionalLight(types.Vec3{0, 0, 1}))
	field := New(nil, DefaultOptions()).Cast(depth, lights)
	for i, v := range field.Data {
		if v != 1.0 {
			t.Fatalf("expected full visibility at %d; got %f", i, v)
		}
	}
}

// A tall ridge under a grazing light must darken the pixels behind it
// (as seen from the light) while the pixels in front stay lit.
func TestCastRidgeOccludes(t *testing.T) {
	depth := raster.NewScalarField(16, 16)
	for y := 0; y < 16; y++ {
		depth.Set(8, y, 1.0)
	}

	// Light rakes in from the west.
	lights, err := shader.NewLightSet(directionalLight(types.Vec3{1, 0, -0.3}))
	if err != nil {
		t.Fatal(err)
	}

	field := New(nil, DefaultOptions()).Cast(depth, lights)
	behind := field.At(10, 8)
	front := field.At(3, 8)

	if front != 1.0 {
		t.Fatalf("expected the lit side to stay fully visible; got %f", front)
	}
	if behind >= front {
		t.Fatalf("expected occlusion behind the ridge: behind=%f front=%f", behind, front)
	}
}

// An occluder well below the ray path (plus bias) casts nothing, while a
// tall one at the same spot does.
func TestCastOcclusionScalesWithHeight(t *testing.T) {
	visibilityFor := func(height float32) float32 {
		depth := raster.NewScalarField(16, 16)
		for y := 0; y < 16; y++ {
			depth.Set(8, y, height)
		}
		lights, _ := shader.NewLightSet(directionalLight(types.Vec3{1, 0, -0.3}))
		return New(nil, DefaultOptions()).Cast(depth, lights).At(10, 8)
	}

	tall := visibilityFor(1.0)
	short := visibilityFor(0.2)
	if short != 1.0 {
		t.Fatalf("expected a low bump to cast no shadow; got %f", short)
	}
	if tall >= short {
		t.Fatalf("expected the tall ridge to shadow: tall=%f short=%f", tall, short)
	}
}

package shader

import (
	"math"
	"testing"

	"github.com/achilleasa/go-relight/types"
)

// Build a toLight vector whose angle from the spot axis (0, 0, -1) is
// deg degrees.
func offAxisToLight(deg float64) types.Vec3 {
	rad := deg * math.Pi / 180.0
	return types.Vec3{-float32(math.Sin(rad)), 0, float32(math.Cos(rad))}
}

func TestSpotFactorCone(t *testing.T) {
	light := DefaultLight()
	light.Type = SpotLight
	light.Direction = types.Vec3{0, 0, -1}
	light.SpotAngle = 30
	light.SpotSoftness = 0.5 // inner cone at 16.5 degrees

	testCases := []struct {
		angle    float64
		min, max float32
	}{
		{5, 1, 1},
		{10, 1, 1},
		{22, 1e-4, 1 - 1e-4},
		{45, 0, 0},
		{60, 0, 0},
	}
	for index, tc := range testCases {
		got := spotFactor(&light, offAxisToLight(tc.angle))
		if got < tc.min || got > tc.max {
			t.Fatalf("[case %d] factor at %.0f degrees out of [%f, %f]: got %f", index, tc.angle, tc.min, tc.max, got)
		}
	}

	if near, far := spotFactor(&light, offAxisToLight(18)), spotFactor(&light, offAxisToLight(25)); near <= far {
		t.Fatalf("expected falloff toward the cone edge; got %f at 18 degrees, %f at 25", near, far)
	}
}

// Zero softness collapses the penumbra to a hard cone edge.
func TestSpotFactorHardEdge(t *testing.T) {
	light := DefaultLight()
	light.Type = SpotLight
	light.Direction = types.Vec3{0, 0, -1}
	light.SpotAngle = 30
	light.SpotSoftness = 0

	if got := spotFactor(&light, offAxisToLight(29)); got != 1 {
		t.Fatalf("expected full factor inside a hard cone; got %f", got)
	}
	if got := spotFactor(&light, offAxisToLight(31)); got != 0 {
		t.Fatalf("expected zero factor outside a hard cone; got %f", got)
	}
}

// A spot light contributes nothing to pixels outside its cone.
func TestShadePixelSpotCone(t *testing.T) {
	light := DefaultLight()
	light.Type = SpotLight
	light.Position = types.Vec3{0.5, 0.5, 0.5}
	light.Direction = types.Vec3{0, 0, -1}
	light.SpotAngle = 20
	light.SpotSoftness = 0

	lights, err := NewLightSet(light)
	if err != nil {
		t.Fatalf("NewLightSet failed: %v", err)
	}

	params := DefaultParams()
	params.Ambient = 0
	params.Blend = BlendReplace

	normal := types.Vec3{0, 0, 1}
	albedo := types.Vec3{0.5, 0.5, 0.5}

	inside := ShadePixel(albedo, normal, 0.5, 0.5, 0, 1, lights, params)
	if inside[0] <= 0 {
		t.Fatalf("expected pixel under the spot axis to be lit; got %v", inside)
	}

	outside := ShadePixel(albedo, normal, 0.95, 0.5, 0, 1, lights, params)
	if outside[0] != 0 {
		t.Fatalf("expected pixel outside the cone to be dark; got %v", outside)
	}
}

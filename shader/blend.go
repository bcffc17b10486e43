package shader

import (
	"fmt"
	"math"
	"strings"

	"github.com/achilleasa/go-relight/types"
)

type BlendMode uint8

// Operators combining the albedo texture with the computed blend value.
// All operators except BlendReplace treat 0.5 as the neutral blend value:
// a pure-ambient pass (ambient=1, no lights) produces 0.5 and leaves the
// albedo untouched.
const (
	// Darkens/lightens the albedo while preserving its texture detail.
	// The default; replace/add blends destroy surface texture.
	BlendSoftLight BlendMode = iota
	BlendReplace
	BlendAdd
	BlendScreen
	BlendMultiply
)

func (m BlendMode) String() string {
	switch m {
	case BlendSoftLight:
		return "softlight"
	case BlendReplace:
		return "replace"
	case BlendAdd:
		return "add"
	case BlendScreen:
		return "screen"
	case BlendMultiply:
		return "multiply"
	}
	return "unknown"
}

// Parse a blend mode name as used by the CLI/UI parameter surface.
func ParseBlendMode(name string) (BlendMode, error) {
	switch strings.ToLower(name) {
	case "softlight", "soft-light":
		return BlendSoftLight, nil
	case "replace":
		return BlendReplace, nil
	case "add", "additive":
		return BlendAdd, nil
	case "screen":
		return BlendScreen, nil
	case "multiply":
		return BlendMultiply, nil
	}
	return BlendSoftLight, fmt.Errorf("shader: unknown blend mode %q", name)
}

// Apply the operator per channel. base is the linear-light albedo sample;
// blend is the normalized blend value in [0, 1].
func (m BlendMode) Apply(base, blend types.Vec3) types.Vec3 {
	var out types.Vec3
	for c := 0; c < 3; c++ {
		out[c] = m.apply1(base[c], blend[c])
	}
	return out
}

func (m BlendMode) apply1(base, blend float32) float32 {
	switch m {
	case BlendReplace:
		return blend

	case BlendAdd:
		return base + (2.0*blend - 1.0)

	case BlendScreen:
		s := clampf(2.0*blend-1.0, 0, 1)
		return 1.0 - (1.0-base)*(1.0-s)

	case BlendMultiply:
		return base * blend * 2.0

	default: // BlendSoftLight
		if blend < 0.5 {
			return 2.0*base*blend + base*base*(1.0-2.0*blend)
		}
		return 2.0*base*(1.0-blend) + float32(math.Sqrt(float64(base)))*(2.0*blend-1.0)
	}
}

package shader

import (
	"errors"

	"github.com/achilleasa/go-relight/types"
)

// The maximum number of lights a LightSet can hold. The OpenCL backend
// relies on this bound for its fixed-size uniform block.
const MaxLights = 8

var ErrTooManyLights = errors.New("shader: light set is full")

type LightType uint8

// Supported light types.
const (
	PointLight LightType = iota
	DirectionalLight
	SpotLight
)

func (lt LightType) String() string {
	switch lt {
	case PointLight:
		return "point"
	case DirectionalLight:
		return "directional"
	case SpotLight:
		return "spot"
	}
	return "unknown"
}

// A Light describes one source in the multi-light model. Positions use
// normalized image coordinates (0..1 per axis, +x right, +y down) with z
// the height above the image plane in [0, 2]. Directions point from the
// light toward the scene.
type Light struct {
	Type      LightType
	Position  types.Vec3
	Direction types.Vec3
	Color     types.Vec3

	// Intensity in [0, 2].
	Intensity float32

	// Reach scales the attenuation distance, [0.05, 4].
	Reach float32

	// Contrast exponent applied to the Lambert term, [0.1, 4]. Values
	// above 1 sharpen the terminator, below 1 soften it.
	Contrast float32

	// Fresnel rim gain [0, 2] and falloff width [0.5, 8].
	Rim      float32
	RimWidth float32

	// Wrap-lighting gain approximating subsurface scattering, [0, 1].
	Subsurface float32

	// Spot cone half-angle in degrees [5, 90] and edge softness [0, 1].
	SpotAngle    float32
	SpotSoftness float32

	// Shadow penumbra blur radius scale for this light, [0, 10].
	ShadowSoftness float32
}

// DefaultLight returns a white point light raised above the image center.
func DefaultLight() Light {
	return Light{
		Type:           PointLight,
		Position:       types.Vec3{0.5, 0.3, 0.8},
		Direction:      types.Vec3{0, 0, -1},
		Color:          types.Vec3{1, 1, 1},
		Intensity:      1.0,
		Reach:          1.0,
		Contrast:       1.0,
		Rim:            0.0,
		RimWidth:       2.0,
		Subsurface:     0.0,
		SpotAngle:      35.0,
		SpotSoftness:   0.5,
		ShadowSoftness: 2.0,
	}
}

// Clamp all light parameters to their documented ranges.
func (l Light) Clamp() Light {
	l.Position[0] = clampf(l.Position[0], 0, 1)
	l.Position[1] = clampf(l.Position[1], 0, 1)
	l.Position[2] = clampf(l.Position[2], 0, 2)
	l.Direction = l.Direction.Normalize()
	if l.Direction.Len() < 0.5 {
		l.Direction = types.Vec3{0, 0, -1}
	}
	l.Color = l.Color.Clamp(0, 1)
	l.Intensity = clampf(l.Intensity, 0, 2)
	l.Reach = clampf(l.Reach, 0.05, 4)
	l.Contrast = clampf(l.Contrast, 0.1, 4)
	l.Rim = clampf(l.Rim, 0, 2)
	l.RimWidth = clampf(l.RimWidth, 0.5, 8)
	l.Subsurface = clampf(l.Subsurface, 0, 1)
	l.SpotAngle = clampf(l.SpotAngle, 5, 90)
	l.SpotSoftness = clampf(l.SpotSoftness, 0, 1)
	l.ShadowSoftness = clampf(l.ShadowSoftness, 0, 10)
	return l
}

// A LightSet holds the ordered, bounds-checked set of active lights. The
// zero value is an empty set.
type LightSet struct {
	lights [MaxLights]Light
	count  int
}

// Create a light set from the given lights.
func NewLightSet(lights ...Light) (*LightSet, error) {
	set := &LightSet{}
	for _, l := range lights {
		if err := set.Add(l); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Append a light, clamping its parameters.
func (s *LightSet) Add(l Light) error {
	if s.count == MaxLights {
		return ErrTooManyLights
	}
	s.lights[s.count] = l.Clamp()
	s.count++
	return nil
}

// Get the number of active lights.
func (s *LightSet) Count() int {
	return s.count
}

// Get a copy of the light at the given index.
func (s *LightSet) Get(index int) (Light, bool) {
	if index < 0 || index >= s.count {
		return Light{}, false
	}
	return s.lights[index], true
}

// Replace the light at the given index, clamping its parameters. Returns
// false when the index is out of bounds.
func (s *LightSet) Set(index int, l Light) bool {
	if index < 0 || index >= s.count {
		return false
	}
	s.lights[index] = l.Clamp()
	return true
}

// Remove the light at the given index, preserving order.
func (s *LightSet) Remove(index int) bool {
	if index < 0 || index >= s.count {
		return false
	}
	copy(s.lights[index:], s.lights[index+1:s.count])
	s.count--
	return true
}

// Update the light at the given index in place via fn, clamping the
// result. Returns false when the index is out of bounds.
func (s *LightSet) Update(index int, fn func(*Light)) bool {
	if index < 0 || index >= s.count {
		return false
	}
	l := s.lights[index]
	fn(&l)
	s.lights[index] = l.Clamp()
	return true
}

// Clone the set.
func (s *LightSet) Clone() *LightSet {
	clone := *s
	return &clone
}

// Active returns a slice view over the active lights. The slice aliases
// the set; callers must not retain it across mutations.
func (s *LightSet) Active() []Light {
	return s.lights[:s.count]
}

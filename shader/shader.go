// Package shader defines the deferred per-pixel lighting model and the
// backend interface it executes on. Geometry buffers (albedo, normals,
// depth, shadow) are uploaded once per geometry pass; shading itself is a
// pure function of the current buffers and light parameters, re-run every
// frame.
package shader

import (
	"errors"

	"github.com/achilleasa/go-relight/raster"
)

var (
	// Returned when a shading backend cannot be created. This is fatal
	// for the pipeline; without a backend no output can be produced.
	ErrBackendInit = errors.New("shader: could not initialize shading backend")

	ErrNoGeometryUploaded = errors.New("shader: no geometry uploaded")
	ErrGeometryMismatch   = errors.New("shader: geometry buffer dimensions mismatch")
)

// Global shading parameters. Per-light parameters live on Light.
type Params struct {
	// Ambient fill in [0, 1].
	Ambient float32

	// Blinn-Phong specular gain in [0, 1] and exponent in [1, 256].
	Specularity float32
	Glossiness  float32

	// How strongly the shadow field darkens diffuse and specular, [0, 1].
	ShadowIntensity float32

	// Operator combining the albedo texture with the computed blend
	// value.
	Blend BlendMode
}

// DefaultParams returns a neutral parameter set: soft-light blending with
// a modest ambient floor and no specular.
func DefaultParams() Params {
	return Params{
		Ambient:         0.2,
		Specularity:     0.0,
		Glossiness:      32.0,
		ShadowIntensity: 0.8,
		Blend:           BlendSoftLight,
	}
}

// Clamp all parameters to their documented ranges. Out-of-range values
// are clamped silently; this is a live-editing surface.
func (p Params) Clamp() Params {
	p.Ambient = clampf(p.Ambient, 0, 1)
	p.Specularity = clampf(p.Specularity, 0, 1)
	p.Glossiness = clampf(p.Glossiness, 1, 256)
	p.ShadowIntensity = clampf(p.ShadowIntensity, 0, 1)
	if p.Blend > BlendMultiply {
		p.Blend = BlendSoftLight
	}
	return p
}

// Geometry bundles the per-image buffers consumed by a backend. All
// fields share the same dimensions.
type Geometry struct {
	Albedo  *raster.RGBField
	Normals *raster.VectorField
	Depth   *raster.ScalarField
	Shadow  *raster.ScalarField
}

// A Backend executes the deferred shading pass. Backends exclusively own
// whatever device textures they allocate; geometry is re-uploaded
// wholesale after each geometry pass and the shadow buffer separately
// whenever lights move.
type Backend interface {
	// Get a backend description for logging/stats.
	Id() string

	// Upload a complete geometry set, replacing any previous one.
	UploadGeometry(geo *Geometry) error

	// Replace only the shadow buffer.
	UploadShadow(shadow *raster.ScalarField) error

	// Shade the current geometry under the given lights, writing the
	// display-space result into dst (allocated by the backend when nil).
	Shade(lights *LightSet, params Params, alphaFrom *raster.Image) (*raster.Image, error)

	// Release all backend resources.
	Close()
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Package shadow generates a soft per-pixel occlusion factor by marching
// rays through the depth field toward each light. The result is a scalar
// attenuation field in [0, 1] (1 = fully lit) consumed by the deferred
// shader; it is recomputed only when a light's occlusion geometry
// changes.
package shadow

import (
	"github.com/achilleasa/go-relight/compute"
	"github.com/achilleasa/go-relight/raster"
	"github.com/achilleasa/go-relight/shader"
	"github.com/achilleasa/go-relight/types"
)

// Options tune the ray march.
type Options struct {
	// Number of depth samples taken along each ray.
	Steps int

	// Height bias in depth units added before the occlusion test to
	// avoid self-shadowing from quantization noise.
	Bias float32

	// Maximum march distance in normalized image units.
	MaxDistance float32

	// Occlusion accumulated by a blocking sample at step zero; later
	// steps contribute proportionally less, so nearby occluders cast
	// harder shadows and distant ones softer penumbra.
	Hardness float32
}

// DefaultOptions returns the tuning used by the relighting pipeline.
func DefaultOptions() Options {
	return Options{
		Steps:       28,
		Bias:        0.015,
		MaxDistance: 0.5,
		Hardness:    0.35,
	}
}

// Height in scene units of a depth sample of 1.0; must match the shading
// model so shadows land where the lighting says the surface is.
const depthHeightScale = 0.15

// Caster ray-marches the depth field.
type Caster struct {
	pool *compute.Pool
	opts Options
}

// Create a caster. The pool may be nil to run single-threaded.
func New(pool *compute.Pool, opts Options) *Caster {
	return &Caster{pool: pool, opts: opts}
}

// Cast computes the combined occlusion factor for all lights in the set.
// Per-light visibilities multiply together. The combined field is then
// blurred with a separable Gaussian sized by the mean light softness.
func (c *Caster) Cast(depth *raster.ScalarField, lights *shader.LightSet) *raster.ScalarField {
	out := raster.NewUniformScalarField(depth.Width, depth.Height, 1.0)
	if lights.Count() == 0 {
		return out
	}

	invW := 1.0 / float32(max(depth.Width-1, 1))
	invH := 1.0 / float32(max(depth.Height-1, 1))

	c.run(depth.Height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			v := float32(y) * invH
			for x := 0; x < depth.Width; x++ {
				u := float32(x) * invW

				visibility := float32(1.0)
				for _, light := range lights.Active() {
					visibility *= c.marchRay(depth, u, v, x, y, &light)
				}
				out.Set(x, y, visibility)
			}
		}
	})

	c.blur(out, meanSoftness(lights))
	return out
}

// marchRay walks from the pixel toward the light, comparing the expected
// ray height against the sampled surface along the way. Rays that leave
// the image bounds terminate early and contribute no occlusion: an open
// boundary carries no information and is treated as unshadowed.
func (c *Caster) marchRay(depth *raster.ScalarField, u, v float32, x, y int, light *shader.Light) float32 {
	origin := types.Vec3{u, v, depth.At(x, y) * depthHeightScale}

	var dir types.Vec3
	marchDist := c.opts.MaxDistance
	switch light.Type {
	case shader.DirectionalLight:
		dir = light.Direction.Mul(-1).Normalize()
	default:
		offset := light.Position.Sub(origin)
		dist := offset.Len()
		if dist < 1e-6 {
			return 1.0
		}
		dir = offset.Mul(1.0 / dist)
		if dist < marchDist {
			marchDist = dist
		}
	}

	// A light shining from behind the image plane cannot be occluded by
	// the height field.
	if dir[2] <= 0 {
		return 1.0
	}

	stepLen := marchDist / float32(c.opts.Steps)
	occlusion := float32(0.0)
	invSteps := 1.0 / float32(c.opts.Steps)

	w := float32(depth.Width - 1)
	h := float32(depth.Height - 1)

	for i := 1; i <= c.opts.Steps; i++ {
		t := float32(i) * stepLen
		px := origin[0] + dir[0]*t
		py := origin[1] + dir[1]*t
		if px < 0 || px > 1 || py < 0 || py > 1 {
			break
		}

		rayHeight := origin[2] + dir[2]*t
		surfaceHeight := depth.Sample(px*w, py*h) * depthHeightScale

		if surfaceHeight > rayHeight+c.opts.Bias {
			occlusion += c.opts.Hardness * (1.0 - float32(i)*invSteps)
		}
	}

	return types.Clamp(1.0-occlusion, 0, 1)
}

// Separable Gaussian blur for the penumbra look. A softness below one
// pixel leaves the hard result untouched.
func (c *Caster) blur(field *raster.ScalarField, softness float32) {
	radius := int(softness)
	if radius < 1 {
		return
	}
	kernel := raster.Gaussian1D(radius)

	tmp := field.Clone()
	c.run(field.Height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < field.Width; x++ {
				var sum float32
				for k := -radius; k <= radius; k++ {
					sum += tmp.At(x+k, y) * kernel[k+radius]
				}
				field.Set(x, y, sum)
			}
		}
	})

	copy(tmp.Data, field.Data)
	c.run(field.Height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < field.Width; x++ {
				var sum float32
				for k := -radius; k <= radius; k++ {
					sum += tmp.At(x, y+k) * kernel[k+radius]
				}
				field.Set(x, y, sum)
			}
		}
	})
}

func meanSoftness(lights *shader.LightSet) float32 {
	if lights.Count() == 0 {
		return 0
	}
	var sum float32
	for _, light := range lights.Active() {
		sum += light.ShadowSoftness
	}
	return sum / float32(lights.Count())
}

func (c *Caster) run(frameH int, kernel compute.RowKernel) {
	if c.pool == nil {
		kernel(0, frameH)
		return
	}
	c.pool.Run(frameH, kernel)
}

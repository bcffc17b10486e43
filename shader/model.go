package shader

import (
	"math"

	"github.com/achilleasa/go-relight/types"
)

// Attenuation polynomial coefficients: 1/(Kc + Kl·d + Kq·d²) with the
// distance pre-divided by the light's reach.
const (
	attConstant  = 1.0
	attLinear    = 0.7
	attQuadratic = 1.8
)

// Height in scene units of a depth sample of 1.0. The image plane spans
// one unit per axis.
const depthHeightScale = 0.15

// The view vector of the (orthographic, frontal) virtual camera.
var viewDir = types.Vec3{0, 0, 1}

// ShadePixel evaluates the full lighting model for one pixel and returns
// the linear-light output color.
//
// u/v are the pixel's normalized image coordinates, depth its height
// proxy and shadow the combined occlusion factor in [0, 1] (1 = fully
// lit). The light contributions and the ambient term are folded into a
// blend value (0.5 = neutral) which is then combined with the albedo via
// the configured blend operator.
func ShadePixel(albedo, normal types.Vec3, u, v, depth, shadow float32, lights *LightSet, params Params) types.Vec3 {
	pixelPos := types.Vec3{u, v, depth * depthHeightScale}

	total := types.Vec3{params.Ambient, params.Ambient, params.Ambient}
	occlusion := 1.0 - params.ShadowIntensity*(1.0-shadow)

	for _, light := range lights.Active() {
		total = total.Add(lightContribution(&light, normal, pixelPos, occlusion, params))
	}

	blend := total.Mul(0.5).Clamp(0, 1)
	return params.Blend.Apply(albedo, blend).Clamp(0, 1)
}

func lightContribution(light *Light, normal, pixelPos types.Vec3, occlusion float32, params Params) types.Vec3 {
	var toLight types.Vec3
	attenuation := float32(1.0)

	switch light.Type {
	case DirectionalLight:
		toLight = light.Direction.Mul(-1).Normalize()

	default: // point and spot attenuate with distance
		offset := light.Position.Sub(pixelPos)
		dist := offset.Len()
		if dist < 1e-6 {
			toLight = types.Vec3{0, 0, 1}
		} else {
			toLight = offset.Mul(1.0 / dist)
		}

		d := dist / light.Reach
		attenuation = 1.0 / (attConstant + attLinear*d + attQuadratic*d*d)

		if light.Type == SpotLight {
			attenuation *= spotFactor(light, toLight)
		}
	}

	ndotl := normal.Dot(toLight)
	if ndotl < 0 {
		ndotl = 0
	}

	// Contrast exponent sharpens or softens the terminator.
	diffuse := float32(math.Pow(float64(ndotl), float64(light.Contrast)))

	// Wrap lighting approximating subsurface scatter: light leaks past
	// the terminator in proportion to the subsurface gain.
	if light.Subsurface > 0 {
		wrap := (normal.Dot(toLight) + light.Subsurface) / (1.0 + light.Subsurface)
		if wrap > 0 {
			diffuse = diffuse*(1.0-light.Subsurface*0.5) + wrap*light.Subsurface*0.5
		}
	}

	var specular float32
	if params.Specularity > 0 {
		half := toLight.Add(viewDir).Normalize()
		ndoth := normal.Dot(half)
		if ndoth > 0 {
			specular = params.Specularity * float32(math.Pow(float64(ndoth), float64(params.Glossiness)))
		}
	}

	var rim float32
	if light.Rim > 0 {
		facing := normal.Dot(viewDir)
		if facing < 0 {
			facing = 0
		}
		rim = light.Rim * float32(math.Pow(float64(1.0-facing), float64(light.RimWidth)))
	}

	// Diffuse and specular respect occlusion; the rim term models
	// backlight bleeding around the silhouette and does not.
	gain := light.Intensity * attenuation
	scale := gain*(diffuse+specular)*occlusion + gain*rim
	return light.Color.Mul(scale)
}

func spotFactor(light *Light, toLight types.Vec3) float32 {
	// Angle between the spot axis and the direction toward the pixel.
	cosAng := light.Direction.Normalize().Dot(toLight.Mul(-1))

	outer := float32(math.Cos(float64(light.SpotAngle) * math.Pi / 180.0))
	inner := float32(math.Cos(float64(light.SpotAngle) * float64(1.0-0.9*light.SpotSoftness) * math.Pi / 180.0))

	if cosAng <= outer {
		return 0
	}
	if cosAng >= inner || inner-outer < 1e-6 {
		return 1
	}

	t := (cosAng - outer) / (inner - outer)
	return t * t * (3.0 - 2.0*t)
}

package raster

import (
	"math"

	"github.com/achilleasa/go-relight/types"
)

// Precomputed sRGB to linear lookup table.
var srgbToLinear [256]float32

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = srgbToLinearF(float32(i) / 255.0)
	}
}

func srgbToLinearF(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow(float64(v+0.055)/1.055, 2.4))
}

// Convert a linear-light value back to the sRGB display space.
func LinearToSRGB(v float32) float32 {
	if v <= 0.0 {
		return 0.0
	}
	if v >= 1.0 {
		return 1.0
	}
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*float32(math.Pow(float64(v), 1.0/2.4)) - 0.055
}

// Rec.709 luminance of a linear RGB triplet.
func Luminance(rgb types.Vec3) float32 {
	return 0.2126*rgb[0] + 0.7152*rgb[1] + 0.0722*rgb[2]
}

// Convert an sRGB image into a linear-light RGB field. Alpha is dropped;
// callers that need it read the source image directly.
func (img *Image) Linear() *RGBField {
	out := NewRGBField(img.Width, img.Height)
	for i, j := 0, 0; i < len(img.Pix); i, j = i+4, j+1 {
		out.Data[j] = types.Vec3{
			srgbToLinear[img.Pix[i]],
			srgbToLinear[img.Pix[i+1]],
			srgbToLinear[img.Pix[i+2]],
		}
	}
	return out
}

// Convert a linear-light RGB field into an sRGB image, copying alpha from
// the source image when one is supplied.
func (f *RGBField) Display(alphaFrom *Image) *Image {
	pix := make([]uint8, f.Width*f.Height*4)
	for i, j := 0, 0; j < len(f.Data); i, j = i+4, j+1 {
		rgb := f.Data[j]
		pix[i] = uint8(LinearToSRGB(rgb[0])*255.0 + 0.5)
		pix[i+1] = uint8(LinearToSRGB(rgb[1])*255.0 + 0.5)
		pix[i+2] = uint8(LinearToSRGB(rgb[2])*255.0 + 0.5)
		if alphaFrom != nil {
			pix[i+3] = alphaFrom.Pix[i+3]
		} else {
			pix[i+3] = 0xff
		}
	}
	return &Image{Width: f.Width, Height: f.Height, Pix: pix}
}

// Per-pixel linear luminance of an image.
func (img *Image) LuminanceField() *ScalarField {
	out := NewScalarField(img.Width, img.Height)
	for i, j := 0, 0; i < len(img.Pix); i, j = i+4, j+1 {
		out.Data[j] = Luminance(types.Vec3{
			srgbToLinear[img.Pix[i]],
			srgbToLinear[img.Pix[i+1]],
			srgbToLinear[img.Pix[i+2]],
		})
	}
	return out
}

package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// Resize the image to the given dimensions using bilinear filtering.
func (img *Image) Resize(width, height int) *Image {
	if width == img.Width && height == img.Height {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img.RGBA(), img.RGBA().Bounds(), draw.Src, nil)
	return &Image{Width: width, Height: height, Pix: dst.Pix}
}

// Resample the scalar field to the given dimensions using bilinear
// filtering. Samples are interpolated in float32 and pass through
// unclamped: raw model tensors keep their native value range until the
// caller normalizes them.
func (f *ScalarField) Resample(width, height int) *ScalarField {
	if width == f.Width && height == f.Height {
		return f.Clone()
	}

	sx := float32(f.Width-1) / float32(max(width-1, 1))
	sy := float32(f.Height-1) / float32(max(height-1, 1))

	out := NewScalarField(width, height)
	for y := 0; y < height; y++ {
		py := float32(y) * sy
		for x := 0; x < width; x++ {
			out.Set(x, y, f.Sample(float32(x)*sx, py))
		}
	}
	return out
}

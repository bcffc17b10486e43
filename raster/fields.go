package raster

import (
	"github.com/achilleasa/go-relight/types"
)

// A ScalarField stores one float32 per pixel. It backs the depth,
// confidence and shadow buffers of the relighting pipeline.
type ScalarField struct {
	Width  int
	Height int
	Data   []float32
}

// Allocate a zeroed scalar field.
func NewScalarField(width, height int) *ScalarField {
	return &ScalarField{
		Width:  width,
		Height: height,
		Data:   make([]float32, width*height),
	}
}

// Allocate a scalar field with every sample set to value.
func NewUniformScalarField(width, height int, value float32) *ScalarField {
	f := NewScalarField(width, height)
	for i := range f.Data {
		f.Data[i] = value
	}
	return f
}

// Get the sample at (x, y). Coordinates are clamped to the field bounds
// so filter kernels can read past edges without branching at call sites.
func (f *ScalarField) At(x, y int) float32 {
	return f.Data[f.clampOffset(x, y)]
}

// Set the sample at (x, y).
func (f *ScalarField) Set(x, y int, v float32) {
	f.Data[y*f.Width+x] = v
}

// Sample the field with bilinear filtering at continuous coordinates.
func (f *ScalarField) Sample(x, y float32) float32 {
	x0 := int(x)
	y0 := int(y)
	fx := x - float32(x0)
	fy := y - float32(y0)

	s00 := f.At(x0, y0)
	s10 := f.At(x0+1, y0)
	s01 := f.At(x0, y0+1)
	s11 := f.At(x0+1, y0+1)

	top := s00 + (s10-s00)*fx
	bot := s01 + (s11-s01)*fx
	return top + (bot-top)*fy
}

// Clone the field including its sample data.
func (f *ScalarField) Clone() *ScalarField {
	out := NewScalarField(f.Width, f.Height)
	copy(out.Data, f.Data)
	return out
}

// Rescale all samples so that the minimum maps to 0 and the maximum to 1.
// A constant field maps to 0.5 everywhere.
func (f *ScalarField) Normalize() {
	min, max := f.Data[0], f.Data[0]
	for _, v := range f.Data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	span := max - min
	if span < 1e-6 {
		for i := range f.Data {
			f.Data[i] = 0.5
		}
		return
	}

	inv := 1.0 / span
	for i := range f.Data {
		f.Data[i] = (f.Data[i] - min) * inv
	}
}

func (f *ScalarField) clampOffset(x, y int) int {
	if x < 0 {
		x = 0
	} else if x >= f.Width {
		x = f.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= f.Height {
		y = f.Height - 1
	}
	return y*f.Width + x
}

// A VectorField stores one 3 component vector per pixel. Normal fields
// keep unit vectors with +z pointing toward the camera.
type VectorField struct {
	Width  int
	Height int
	Data   []types.Vec3
}

// Allocate a zeroed vector field.
func NewVectorField(width, height int) *VectorField {
	return &VectorField{
		Width:  width,
		Height: height,
		Data:   make([]types.Vec3, width*height),
	}
}

// Get the vector at (x, y); coordinates are clamped to the field bounds.
func (f *VectorField) At(x, y int) types.Vec3 {
	return f.Data[clampOffset(x, y, f.Width, f.Height)]
}

// Set the vector at (x, y).
func (f *VectorField) Set(x, y int, v types.Vec3) {
	f.Data[y*f.Width+x] = v
}

// Clone the field including its sample data.
func (f *VectorField) Clone() *VectorField {
	out := NewVectorField(f.Width, f.Height)
	copy(out.Data, f.Data)
	return out
}

// An RGBField stores one linear-light RGB triplet per pixel. It backs the
// albedo buffer and intermediate linear working images.
type RGBField struct {
	Width  int
	Height int
	Data   []types.Vec3
}

// Allocate a zeroed RGB field.
func NewRGBField(width, height int) *RGBField {
	return &RGBField{
		Width:  width,
		Height: height,
		Data:   make([]types.Vec3, width*height),
	}
}

// Get the triplet at (x, y); coordinates are clamped to the field bounds.
func (f *RGBField) At(x, y int) types.Vec3 {
	return f.Data[clampOffset(x, y, f.Width, f.Height)]
}

// Set the triplet at (x, y).
func (f *RGBField) Set(x, y int, v types.Vec3) {
	f.Data[y*f.Width+x] = v
}

// Clone the field including its sample data.
func (f *RGBField) Clone() *RGBField {
	out := NewRGBField(f.Width, f.Height)
	copy(out.Data, f.Data)
	return out
}

func clampOffset(x, y, width, height int) int {
	if x < 0 {
		x = 0
	} else if x >= width {
		x = width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= height {
		y = height - 1
	}
	return y*width + x
}

package raster

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

var (
	ErrInvalidDimensions   = errors.New("raster: image dimensions must be positive")
	ErrBufferSizeMismatch  = errors.New("raster: pixel buffer size does not match dimensions")
	ErrUnsupportedEncoding = errors.New("raster: unsupported output encoding")
)

// An Image wraps an immutable RGBA8 raster. All derived pipeline buffers
// (depth, normals, albedo) are generated from an Image and share its
// dimensions for the lifetime of a session.
type Image struct {
	Width  int
	Height int

	// RGBA interleaved, len = Width*Height*4.
	Pix []uint8
}

// Wrap a raw RGBA pixel buffer. The buffer is adopted, not copied.
func FromBuffer(pix []uint8, width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("%w: got %d bytes for %dx%d", ErrBufferSizeMismatch, len(pix), width, height)
	}
	return &Image{Width: width, Height: height, Pix: pix}, nil
}

// Convert a stdlib image into an Image, flattening any sub-image offsets.
func FromRGBA(src image.Image) *Image {
	bounds := src.Bounds()
	rgba, isRGBA := src.(*image.RGBA)
	if !isRGBA || bounds.Min != image.Pt(0, 0) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
	}
	return &Image{Width: bounds.Dx(), Height: bounds.Dy(), Pix: rgba.Pix}
}

// Load an image from a png, jpeg or tga file.
func FromFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src image.Image
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tga":
		src, err = tga.Decode(f)
	default:
		src, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("raster: could not decode %s: %v", path, err)
	}

	return FromRGBA(src), nil
}

// Get the RGBA value at (x, y) as a linear index into Pix.
func (img *Image) PixOffset(x, y int) int {
	return (y*img.Width + x) * 4
}

// Convert back into a stdlib RGBA image. The pixel data is shared.
func (img *Image) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    img.Pix,
		Stride: img.Width * 4,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}

// Clone the image including its pixel data.
func (img *Image) Clone() *Image {
	pix := make([]uint8, len(img.Pix))
	copy(pix, img.Pix)
	return &Image{Width: img.Width, Height: img.Height, Pix: pix}
}

// Write the image to disk. The encoder is selected by file extension;
// png, jpg/jpeg and webp are supported.
func (img *Image) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Encode(f, img.RGBA())
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, img.RGBA(), &jpeg.Options{Quality: 95})
	case ".webp":
		return nativewebp.Encode(f, img.RGBA(), nil)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedEncoding, filepath.Ext(path))
}

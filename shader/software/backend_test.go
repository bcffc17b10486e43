package software

import (
	"errors"
	"testing"

	"github.com/achilleasa/go-relight/raster"
	"github.com/achilleasa/go-relight/shader"
	"github.com/achilleasa/go-relight/types"
)

func testGeometry(img *raster.Image) *shader.Geometry {
	w, h := img.Width, img.Height
	normals := raster.NewVectorField(w, h)
	for i := range normals.Data {
		normals.Data[i] = types.Vec3{0, 0, 1}
	}
	return &shader.Geometry{
		Albedo:  img.Linear(),
		Normals: normals,
		Depth:   raster.NewUniformScalarField(w, h, 0.5),
	}
}

func patternImage(w, h int) *raster.Image {
	img, _ := raster.FromBuffer(make([]uint8, w*h*4), w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			offset := img.PixOffset(x, y)
			img.Pix[offset] = uint8(x * 37 % 256)
			img.Pix[offset+1] = uint8(y * 53 % 256)
			img.Pix[offset+2] = uint8((x + y) * 29 % 256)
			img.Pix[offset+3] = 255
		}
	}
	return img
}

func TestShadeRequiresGeometry(t *testing.T) {
	backend := NewBackend(nil)
	if _, err := backend.Shade(&shader.LightSet{}, shader.DefaultParams(), nil); !errors.Is(err, shader.ErrNoGeometryUploaded) {
		t.Fatalf("expected ErrNoGeometryUploaded; got %v", err)
	}
}

func TestUploadGeometryMismatch(t *testing.T) {
	backend := NewBackend(nil)
	geo := testGeometry(patternImage(8, 8))
	geo.Depth = raster.NewUniformScalarField(4, 4, 0.5)

	if err := backend.UploadGeometry(geo); !errors.Is(err, shader.ErrGeometryMismatch) {
		t.Fatalf("expected ErrGeometryMismatch; got %v", err)
	}
}

// Full ambient, no lights, soft-light blending: the blend value is the
// neutral 0.5 everywhere, so the shaded frame must reproduce the albedo
// image bit-for-bit (modulo sRGB quantization).
func TestAmbientOnlyReproducesAlbedo(t *testing.T) {
	img := patternImage(16, 16)
	backend := NewBackend(nil)
	if err := backend.UploadGeometry(testGeometry(img)); err != nil {
		t.Fatalf("UploadGeometry failed: %v", err)
	}

	params := shader.DefaultParams()
	params.Ambient = 1.0

	frame, err := backend.Shade(&shader.LightSet{}, params, img)
	if err != nil {
		t.Fatalf("Shade failed: %v", err)
	}

	for i := range img.Pix {
		delta := int(frame.Pix[i]) - int(img.Pix[i])
		if delta < -1 || delta > 1 {
			t.Fatalf("ambient-only shading altered the albedo at byte %d: %d -> %d", i, img.Pix[i], frame.Pix[i])
		}
	}
}

// A point light close to one corner must light that corner more than the
// opposite one.
func TestPointLightFalloff(t *testing.T) {
	img := patternImage(16, 16)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = 128, 128, 128
	}

	backend := NewBackend(nil)
	if err := backend.UploadGeometry(testGeometry(img)); err != nil {
		t.Fatalf("UploadGeometry failed: %v", err)
	}

	light := shader.DefaultLight()
	light.Position = types.Vec3{0.1, 0.1, 0.3}
	light.Reach = 0.4
	lights, _ := shader.NewLightSet(light)

	params := shader.DefaultParams()
	params.Ambient = 0.1

	frame, err := backend.Shade(lights, params, nil)
	if err != nil {
		t.Fatalf("Shade failed: %v", err)
	}

	near := frame.Pix[frame.PixOffset(2, 2)]
	far := frame.Pix[frame.PixOffset(14, 14)]
	if near <= far {
		t.Fatalf("expected falloff with distance: near=%d far=%d", near, far)
	}
}

// The shadow field must darken diffuse lighting in proportion to the
// shadow intensity parameter.
func TestShadowFieldDarkens(t *testing.T) {
	img := patternImage(8, 8)
	backend := NewBackend(nil)
	if err := backend.UploadGeometry(testGeometry(img)); err != nil {
		t.Fatalf("UploadGeometry failed: %v", err)
	}

	lights, _ := shader.NewLightSet(shader.DefaultLight())
	params := shader.DefaultParams()
	params.Ambient = 0.0
	params.ShadowIntensity = 1.0

	lit, err := backend.Shade(lights, params, nil)
	if err != nil {
		t.Fatalf("Shade failed: %v", err)
	}

	if err = backend.UploadShadow(raster.NewUniformScalarField(8, 8, 0.0)); err != nil {
		t.Fatalf("UploadShadow failed: %v", err)
	}
	shadowed, err := backend.Shade(lights, params, nil)
	if err != nil {
		t.Fatalf("Shade failed: %v", err)
	}

	center := lit.PixOffset(4, 4)
	if shadowed.Pix[center] >= lit.Pix[center] {
		t.Fatalf("expected shadow to darken: lit=%d shadowed=%d", lit.Pix[center], shadowed.Pix[center])
	}
}

// Alpha passes through from the source image untouched.
func TestShadePreservesAlpha(t *testing.T) {
	img := patternImage(4, 4)
	img.Pix[3] = 17
	img.Pix[7] = 130

	backend := NewBackend(nil)
	if err := backend.UploadGeometry(testGeometry(img)); err != nil {
		t.Fatalf("UploadGeometry failed: %v", err)
	}

	frame, err := backend.Shade(&shader.LightSet{}, shader.DefaultParams(), img)
	if err != nil {
		t.Fatalf("Shade failed: %v", err)
	}
	if frame.Pix[3] != 17 || frame.Pix[7] != 130 {
		t.Fatalf("alpha not preserved: got %d, %d", frame.Pix[3], frame.Pix[7])
	}
}

package albedo

import (
	"math"
	"testing"

	"github.com/achilleasa/go-relight/raster"
	"github.com/achilleasa/go-relight/types"
)

func uniformImage(w, h int, v uint8) *raster.Image {
	img, _ := raster.FromBuffer(make([]uint8, w*h*4), w, h)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
	}
	return img
}

func flatNormals(w, h int) *raster.VectorField {
	normals := raster.NewVectorField(w, h)
	for i := range normals.Data {
		normals.Data[i] = types.Vec3{0, 0, 1}
	}
	return normals
}

// A uniform gray image under flat normals is already lighting-free; the
// recovered albedo must reproduce it unchanged.
func TestRecoverUniformGrayIsIdempotent(t *testing.T) {
	img := uniformImage(8, 8, 128)
	expected := img.Linear().At(0, 0)

	out := New(nil, DefaultOptions()).Recover(img, flatNormals(8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			got := out.At(x, y)
			for c := 0; c < 3; c++ {
				if math.Abs(float64(got[c]-expected[c])) > 1e-5 {
					t.Fatalf("albedo diverged at (%d,%d): got %v want %v", x, y, got, expected)
				}
			}
		}
	}
}

func TestRecoverProducesFiniteValues(t *testing.T) {
	// Harsh input: black frame with a few blown-out pixels.
	img := uniformImage(8, 8, 0)
	for _, offset := range []int{0, 40, 200} {
		img.Pix[offset] = 255
		img.Pix[offset+1] = 255
		img.Pix[offset+2] = 255
	}

	normals := flatNormals(8, 8)
	normals.Data[3] = types.Vec3{0.7, -0.7, 0.14}.Normalize()

	out := New(nil, DefaultOptions()).Recover(img, normals)
	for i, rgb := range out.Data {
		for c := 0; c < 3; c++ {
			v := float64(rgb[c])
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("non-finite albedo at %d: %v", i, rgb)
			}
			if rgb[c] < 0 || rgb[c] > DefaultOptions().MaxBrightness {
				t.Fatalf("albedo out of range at %d: %v", i, rgb)
			}
		}
	}
}

func TestRecoverWithoutNormals(t *testing.T) {
	img := uniformImage(8, 8, 64)
	out := New(nil, DefaultOptions()).Recover(img, nil)
	if out.Width != 8 || out.Height != 8 {
		t.Fatalf("unexpected dims %dx%d", out.Width, out.Height)
	}
	// Uniform input: the mean equals every pixel, so contrast reduction
	// is also a no-op.
	expected := img.Linear().At(0, 0)
	got := out.At(4, 4)
	if math.Abs(float64(got[0]-expected[0])) > 1e-5 {
		t.Fatalf("expected %v; got %v", expected, got)
	}
}

func TestDominantLightDirection(t *testing.T) {
	img := uniformImage(4, 4, 200)
	linear := img.Linear()

	// All normals lean left; the light vote must lean left too, with a
	// positive z.
	normals := raster.NewVectorField(4, 4)
	for i := range normals.Data {
		normals.Data[i] = types.Vec3{-0.5, 0, 0.866}
	}

	dir := DominantLightDirection(linear, normals)
	if dir[0] >= 0 || dir[2] <= 0 {
		t.Fatalf("expected a left-leaning frontal direction; got %v", dir)
	}
	if math.Abs(float64(dir.Len()-1.0)) > 1e-4 {
		t.Fatalf("direction not unit length: %v", dir)
	}
}

func TestDominantLightDirectionBlackFrame(t *testing.T) {
	img := uniformImage(4, 4, 0)
	dir := DominantLightDirection(img.Linear(), flatNormals(4, 4))
	if dir != (types.Vec3{0, 0, 1}) {
		t.Fatalf("expected frontal default for a black frame; got %v", dir)
	}
}

func TestAmbientFractionRange(t *testing.T) {
	img := uniformImage(8, 8, 150)
	linear := img.Linear()

	// Half frontal, half side-facing normals with equal brightness:
	// strong ambient fill.
	normals := raster.NewVectorField(8, 8)
	for i := range normals.Data {
		if i%2 == 0 {
			normals.Data[i] = types.Vec3{0, 0, 1}
		} else {
			normals.Data[i] = types.Vec3{1, 0, 0}
		}
	}

	ambient := AmbientFraction(linear, normals)
	if ambient < 0.1 || ambient > 0.5 {
		t.Fatalf("ambient fraction out of range: %f", ambient)
	}
	if ambient != 0.5 {
		t.Fatalf("equal off-axis brightness should saturate the estimate; got %f", ambient)
	}

	// Degenerate: no frontal surfaces at all.
	sideways := raster.NewVectorField(8, 8)
	for i := range sideways.Data {
		sideways.Data[i] = types.Vec3{1, 0, 0}
	}
	if got := AmbientFraction(linear, sideways); got != 0.3 {
		t.Fatalf("expected neutral 0.3 for degenerate input; got %f", got)
	}
}

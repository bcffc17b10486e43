package raster

import (
	"errors"
	"testing"
)

func TestFromBufferValidation(t *testing.T) {
	testCases := []struct {
		width, height int
		pixLen        int
		expError      error
	}{
		{4, 4, 64, nil},
		{0, 4, 0, ErrInvalidDimensions},
		{4, -1, 0, ErrInvalidDimensions},
		{4, 4, 60, ErrBufferSizeMismatch},
	}

	for index, tc := range testCases {
		_, err := FromBuffer(make([]uint8, tc.pixLen), tc.width, tc.height)
		if !errors.Is(err, tc.expError) {
			t.Fatalf("[case %d] expected error %v; got %v", index, tc.expError, err)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	img, err := FromBuffer(make([]uint8, 4*4*4), 4, 4)
	if err != nil {
		t.Fatal(err)
	}

	clone := img.Clone()
	clone.Pix[0] = 0xff
	if img.Pix[0] == 0xff {
		t.Fatalf("mutating the clone modified the original")
	}
}

// Converting to linear light and back must reproduce the original sRGB
// bytes to within one quantization step.
func TestLinearDisplayRoundTrip(t *testing.T) {
	img, _ := FromBuffer(make([]uint8, 16*1*4), 16, 1)
	for x := 0; x < 16; x++ {
		v := uint8(x * 17)
		offset := img.PixOffset(x, 0)
		img.Pix[offset] = v
		img.Pix[offset+1] = v
		img.Pix[offset+2] = v
		img.Pix[offset+3] = 200
	}

	out := img.Linear().Display(img)
	for i := range img.Pix {
		delta := int(out.Pix[i]) - int(img.Pix[i])
		if delta < -1 || delta > 1 {
			t.Fatalf("round trip diverged at byte %d: %d -> %d", i, img.Pix[i], out.Pix[i])
		}
	}
}

func TestResizeDims(t *testing.T) {
	img, _ := FromBuffer(make([]uint8, 8*6*4), 8, 6)
	resized := img.Resize(4, 3)
	if resized.Width != 4 || resized.Height != 3 {
		t.Fatalf("expected 4x3; got %dx%d", resized.Width, resized.Height)
	}
	if len(resized.Pix) != 4*3*4 {
		t.Fatalf("unexpected pix buffer size %d", len(resized.Pix))
	}
}

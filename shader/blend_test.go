package shader

import (
	"testing"

	"github.com/achilleasa/go-relight/types"
)

// Every operator except replace must treat a blend value of exactly 0.5
// as neutral: a pure-ambient pass leaves the albedo untouched.
func TestBlendNeutralAtHalf(t *testing.T) {
	neutral := types.Vec3{0.5, 0.5, 0.5}
	bases := []types.Vec3{
		{0, 0, 0},
		{0.25, 0.5, 0.75},
		{1, 1, 1},
	}

	for _, mode := range []BlendMode{BlendSoftLight, BlendAdd, BlendScreen, BlendMultiply} {
		for index, base := range bases {
			if got := mode.Apply(base, neutral); got != base {
				t.Fatalf("[%s, case %d] expected %v; got %v", mode, index, base, got)
			}
		}
	}
}

func TestBlendOperators(t *testing.T) {
	testCases := []struct {
		mode        BlendMode
		base, blend float32
		exp         float32
	}{
		{BlendReplace, 0.3, 0.9, 0.9},
		{BlendAdd, 0.25, 0.75, 0.75},
		{BlendMultiply, 0.5, 1.0, 1.0},
		{BlendMultiply, 0.8, 0.0, 0.0},
		{BlendScreen, 0.5, 1.0, 1.0},
		{BlendSoftLight, 0.0, 1.0, 0.0},
		{BlendSoftLight, 1.0, 0.0, 1.0},
	}

	for index, tc := range testCases {
		got := tc.mode.Apply(types.Vec3{tc.base, tc.base, tc.base}, types.Vec3{tc.blend, tc.blend, tc.blend})
		if got[0] != tc.exp {
			t.Fatalf("[case %d] %s(%f, %f): expected %f; got %f", index, tc.mode, tc.base, tc.blend, tc.exp, got[0])
		}
	}
}

func TestParseBlendMode(t *testing.T) {
	testCases := []struct {
		name     string
		exp      BlendMode
		expError bool
	}{
		{"soft-light", BlendSoftLight, false},
		{"softlight", BlendSoftLight, false},
		{"Screen", BlendScreen, false},
		{"multiply", BlendMultiply, false},
		{"overlay", BlendSoftLight, true},
	}

	for index, tc := range testCases {
		got, err := ParseBlendMode(tc.name)
		if tc.expError {
			if err == nil {
				t.Fatalf("[case %d] expected parse error for %q", index, tc.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[case %d] unexpected error: %v", index, err)
		}
		if got != tc.exp {
			t.Fatalf("[case %d] expected %v; got %v", index, tc.exp, got)
		}
	}
}

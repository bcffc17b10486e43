package types

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	type spec struct {
		in  Vec3
		exp Vec3
	}
	specs := []spec{
		{Vec3{3, 0, 0}, Vec3{1, 0, 0}},
		{Vec3{0, 0, 2}, Vec3{0, 0, 1}},
		{Vec3{0, 0, 0}, Vec3{0, 0, 0}},
	}

	for index, s := range specs {
		out := s.in.Normalize()
		for c := 0; c < 3; c++ {
			if math.Abs(float64(out[c]-s.exp[c])) > 1e-6 {
				t.Fatalf("[spec %d] expected component %d to be %f; got %f", index, c, s.exp[c], out[c])
			}
		}
	}
}

func TestNormalizeYieldsUnitLength(t *testing.T) {
	v := Vec3{0.3, -1.7, 4.2}.Normalize()
	if math.Abs(float64(v.Len()-1.0)) > 1e-6 {
		t.Fatalf("expected unit length; got %f", v.Len())
	}
}

func TestLerp(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{2, 4, 8}
	mid := a.Lerp(b, 0.5)
	exp := Vec3{1, 2, 4}
	if mid != exp {
		t.Fatalf("expected %v; got %v", exp, mid)
	}
}

func TestClamp(t *testing.T) {
	type spec struct {
		in  float32
		exp float32
	}
	specs := []spec{
		{-1.0, 0.0},
		{0.5, 0.5},
		{3.0, 1.0},
	}

	for index, s := range specs {
		if out := Clamp(s.in, 0, 1); out != s.exp {
			t.Fatalf("[spec %d] expected %f; got %f", index, s.exp, out)
		}
	}
}

func TestHadamard(t *testing.T) {
	out := Vec3{1, 2, 3}.Hadamard(Vec3{2, 0.5, -1})
	exp := Vec3{2, 1, -3}
	if out != exp {
		t.Fatalf("expected %v; got %v", exp, out)
	}
}

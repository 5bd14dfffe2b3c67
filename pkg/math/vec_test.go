package math

import (
	"errors"
	"math"
	"testing"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := 5.0
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec2Normalize(t *testing.T) {
	v := Vec2{3, 4}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec2.Normalize().Length() = %v, want ~1", l)
	}

	if (Vec2{}).Normalize() != (Vec2{}) {
		t.Error("normalizing the zero vector should return zero")
	}
}

func TestVec2Cross(t *testing.T) {
	x := Vec2{1, 0}
	y := Vec2{0, 1}
	if got := x.Cross(y); got != 1 {
		t.Errorf("x.Cross(y) = %v, want 1", got)
	}
	if got := y.Cross(x); got != -1 {
		t.Errorf("y.Cross(x) = %v, want -1", got)
	}
}

func TestVec2Rotate(t *testing.T) {
	got := Vec2{1, 0}.Rotate(90)
	if !got.ApproxEqual(Vec2{0, 1}, 1e-12) {
		t.Errorf("Rotate(90) = %v, want (0, 1)", got)
	}
}

func TestVec2Floor(t *testing.T) {
	tests := []struct {
		v    Vec2
		x, y int
	}{
		{Vec2{0.5, 0.5}, 0, 0},
		{Vec2{-0.5, -0.5}, -1, -1},
		{Vec2{2, -2}, 2, -2},
		{Vec2{-0.0001, 3.9999}, -1, 3},
	}
	for _, tc := range tests {
		x, y := tc.v.Floor()
		if x != tc.x || y != tc.y {
			t.Errorf("%v.Floor() = (%d, %d), want (%d, %d)", tc.v, x, y, tc.x, tc.y)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#ff0000", Color{1, 0, 0, 1}},
		{"00ff00", Color{0, 1, 0, 1}},
		{"#800000ff", Color{0, 0, 1, float32(0x80) / 255}},
		{"#00000000", Color{0, 0, 0, 0}},
	}
	for _, tc := range tests {
		got, err := ParseColor(tc.in)
		if err != nil {
			t.Fatalf("ParseColor(%q) failed: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseColorInvalid(t *testing.T) {
	for _, in := range []string{"", "#fff", "#gggggg", "#1234567"} {
		if _, err := ParseColor(in); !errors.Is(err, ErrInvalidColor) {
			t.Errorf("ParseColor(%q) error = %v, want ErrInvalidColor", in, err)
		}
	}
}

func TestColorHex(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#ff8000", "#ffff8000"},
		{"#80102030", "#80102030"},
	}
	for _, tc := range tests {
		c, err := ParseColor(tc.in)
		if err != nil {
			t.Fatalf("ParseColor(%q) failed: %v", tc.in, err)
		}
		if got := c.Hex(); got != tc.want {
			t.Errorf("ParseColor(%q).Hex() = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestColorQuantizeClamps(t *testing.T) {
	c := Color{R: -1, G: 2, B: float32(math.Inf(1)), A: 0.5}
	if got := c.Hex(); got != "#8000ffff" {
		t.Errorf("Hex() = %q, want #8000ffff", got)
	}
}

// Package math provides the small value types shared by the tile map packages.
package math

import "math"

// Vec2 is a 2D vector. Y grows downward in map space.
type Vec2 struct {
	X, Y float64
}

// V2 is shorthand for Vec2{x, y}.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Mul returns the component-wise product.
func (v Vec2) Mul(other Vec2) Vec2 {
	return Vec2{v.X * other.X, v.Y * other.Y}
}

// Div returns the component-wise quotient.
func (v Vec2) Div(other Vec2) Vec2 {
	return Vec2{v.X / other.X, v.Y / other.Y}
}

// Dot returns the dot product.
func (v Vec2) Dot(other Vec2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the 3D cross product of v and other.
func (v Vec2) Cross(other Vec2) float64 {
	return v.X*other.Y - v.Y*other.X
}

// LengthSq returns the squared magnitude.
func (v Vec2) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Length returns the magnitude.
func (v Vec2) Length() float64 {
	return math.Sqrt(v.LengthSq())
}

// Normalize returns a unit vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Distance returns the distance to another point.
func (v Vec2) Distance(other Vec2) float64 {
	return v.Sub(other).Length()
}

// Rotate returns v rotated clockwise (in a Y-down space) by deg degrees around the origin.
func (v Vec2) Rotate(deg float64) Vec2 {
	if deg == 0 {
		return v
	}
	s, c := math.Sincos(deg * math.Pi / 180)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Floor returns the integer cell containing v, rounding toward negative infinity.
func (v Vec2) Floor() (int, int) {
	return int(math.Floor(v.X)), int(math.Floor(v.Y))
}

// ApproxEqual reports whether v and other differ by at most eps on each axis.
func (v Vec2) ApproxEqual(other Vec2, eps float64) bool {
	return math.Abs(v.X-other.X) <= eps && math.Abs(v.Y-other.Y) <= eps
}

package tmx

import (
	"fmt"

	"github.com/Faultbox/tilemap/pkg/math"
)

// Shape is the geometry kind of an object.
type Shape int

// Object shapes. A plain <object> without a shape child is a rectangle.
const (
	ShapeRectangle Shape = iota
	ShapeEllipse
	ShapePoint
	ShapePolygon
	ShapePolyline
	ShapeText
	ShapeTile  // gid attribute set
	ShapeImage // <image> child
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeRectangle:
		return "rectangle"
	case ShapeEllipse:
		return "ellipse"
	case ShapePoint:
		return "point"
	case ShapePolygon:
		return "polygon"
	case ShapePolyline:
		return "polyline"
	case ShapeText:
		return "text"
	case ShapeTile:
		return "tile"
	case ShapeImage:
		return "image"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Text is the payload of a text object.
type Text struct {
	Content    string
	FontFamily string
	PixelSize  int
	Wrap       bool
	Color      math.Color
	Bold       bool
	Italic     bool
	Underline  bool
	Strikeout  bool
	Kerning    bool
	HAlign     string // left, center, right, justify
	VAlign     string // top, center, bottom
}

// Object is a map object. X and Y are in pixels; for tile objects they mark
// the bottom-left corner on orthogonal maps.
type Object struct {
	ID       int
	Name     string
	Type     string // class
	X, Y     float64
	Width    float64
	Height   float64
	Rotation float64 // degrees clockwise
	GID      uint32  // raw cell value for tile objects, flags included
	Visible  bool
	Template string

	Shape  Shape
	Points []math.Vec2 // polygon and polyline vertices relative to X, Y
	Text   *Text
	Image  *Image

	Properties Properties
}

// Cell returns the tile reference of a tile object.
func (o *Object) Cell() Cell {
	return Cell(o.GID)
}

// Position returns the object origin.
func (o *Object) Position() math.Vec2 {
	return math.Vec2{X: o.X, Y: o.Y}
}

// AbsolutePoints returns the polygon or polyline vertices in map pixel space
// with the object's rotation applied.
func (o *Object) AbsolutePoints() []math.Vec2 {
	out := make([]math.Vec2, len(o.Points))
	for i, p := range o.Points {
		out[i] = p.Rotate(o.Rotation).Add(o.Position())
	}
	return out
}

// String returns a short description.
func (o *Object) String() string {
	return fmt.Sprintf("Object(ID=%d, Name=%q, Shape=%s, X=%g, Y=%g, W=%g, H=%g)",
		o.ID, o.Name, o.Shape, o.X, o.Y, o.Width, o.Height)
}

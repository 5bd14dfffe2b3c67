package geom

import (
	"fmt"
	stdmath "math"

	"github.com/Faultbox/tilemap/pkg/math"
	"github.com/Faultbox/tilemap/pkg/tmx"
)

// Mode selects between filled triangles and an outline line list.
type Mode int

const (
	Fill    Mode = iota // triangle list
	Outline             // closed line list
	Open                // line list without the closing segment
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Fill:
		return "fill"
	case Outline:
		return "outline"
	case Open:
		return "open"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// DefaultEllipseSegments is used when EllipsePoints is asked for fewer than 3 segments.
const DefaultEllipseSegments = 32

// DefaultMarkerSize is the pixel radius of point-object markers.
const DefaultMarkerSize = 4.0

// Mesh is a flat vertex/index buffer. Indices form triangles for Fill and
// segment pairs for Outline and Open.
type Mesh struct {
	Vertices []math.Vec2
	Indices  []uint32
	Mode     Mode
}

// Build turns a point list into a mesh. Points are copied.
func Build(points []math.Vec2, mode Mode) (Mesh, error) {
	mesh := Mesh{
		Vertices: append([]math.Vec2(nil), points...),
		Mode:     mode,
	}

	switch mode {
	case Fill:
		tris, err := Triangulate(points)
		if err != nil {
			return Mesh{}, err
		}
		mesh.Indices = make([]uint32, 0, len(tris)*3)
		for _, t := range tris {
			mesh.Indices = append(mesh.Indices, uint32(t[0]), uint32(t[1]), uint32(t[2]))
		}
	case Outline, Open:
		n := len(points)
		if n < 2 {
			return Mesh{}, fmt.Errorf("outline needs at least 2 points, got %d", n)
		}
		segments := n
		if mode == Open || n == 2 {
			segments = n - 1
		}
		mesh.Indices = make([]uint32, 0, segments*2)
		for i := 0; i < segments; i++ {
			mesh.Indices = append(mesh.Indices, uint32(i), uint32((i+1)%n))
		}
	default:
		return Mesh{}, fmt.Errorf("unknown mode %v", mode)
	}

	return mesh, nil
}

// Area returns the summed absolute area of a Fill mesh.
func (m Mesh) Area() float64 {
	if m.Mode != Fill {
		return 0
	}
	var total float64
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]]
		b := m.Vertices[m.Indices[i+1]]
		c := m.Vertices[m.Indices[i+2]]
		total += stdmath.Abs(b.Sub(a).Cross(c.Sub(a))) * 0.5
	}
	return total
}

// Transform returns a copy of the mesh with every vertex rotated by deg
// degrees around the origin and then translated by offset.
func (m Mesh) Transform(deg float64, offset math.Vec2) Mesh {
	out := Mesh{
		Vertices: make([]math.Vec2, len(m.Vertices)),
		Indices:  m.Indices,
		Mode:     m.Mode,
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = v.Rotate(deg).Add(offset)
	}
	return out
}

// RectPoints returns the corners of a w x h rectangle anchored at the origin.
func RectPoints(w, h float64) []math.Vec2 {
	return []math.Vec2{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

// EllipsePoints approximates the ellipse inscribed in a w x h box anchored at the origin.
func EllipsePoints(w, h float64, segments int) []math.Vec2 {
	if segments < 3 {
		segments = DefaultEllipseSegments
	}
	rx, ry := w/2, h/2
	points := make([]math.Vec2, segments)
	for i := range points {
		s, c := stdmath.Sincos(2 * stdmath.Pi * float64(i) / float64(segments))
		points[i] = math.Vec2{X: rx + rx*c, Y: ry + ry*s}
	}
	return points
}

// DiamondPoints returns the isometric tile outline inscribed in a w x h box.
func DiamondPoints(w, h float64) []math.Vec2 {
	return []math.Vec2{{X: w / 2, Y: 0}, {X: w, Y: h / 2}, {X: w / 2, Y: h}, {X: 0, Y: h / 2}}
}

// HexagonPoints returns a hexagonal tile outline inscribed in a w x h box.
// side is the hex side length; staggerX selects flat-top hexes whose
// straight edges run along X.
func HexagonPoints(w, h, side float64, staggerX bool) []math.Vec2 {
	if staggerX {
		x0, x1 := (w-side)/2, (w+side)/2
		return []math.Vec2{
			{X: x0, Y: 0}, {X: x1, Y: 0}, {X: w, Y: h / 2},
			{X: x1, Y: h}, {X: x0, Y: h}, {X: 0, Y: h / 2},
		}
	}
	y0, y1 := (h-side)/2, (h+side)/2
	return []math.Vec2{
		{X: w / 2, Y: 0}, {X: w, Y: y0}, {X: w, Y: y1},
		{X: w / 2, Y: h}, {X: 0, Y: y1}, {X: 0, Y: y0},
	}
}

// MarkerPoints returns a small diamond centred on the origin, used for point objects.
func MarkerPoints(size float64) []math.Vec2 {
	if size <= 0 {
		size = DefaultMarkerSize
	}
	return []math.Vec2{{X: 0, Y: -size}, {X: size, Y: 0}, {X: 0, Y: size}, {X: -size, Y: 0}}
}

// ObjectPoints returns the local outline of an object and the mode it is
// normally drawn with. Coordinates are relative to the object position.
func ObjectPoints(obj *tmx.Object) ([]math.Vec2, Mode) {
	switch obj.Shape {
	case tmx.ShapeEllipse:
		return EllipsePoints(obj.Width, obj.Height, DefaultEllipseSegments), Fill
	case tmx.ShapePoint:
		return MarkerPoints(DefaultMarkerSize), Fill
	case tmx.ShapePolygon:
		return obj.Points, Fill
	case tmx.ShapePolyline:
		return obj.Points, Open
	case tmx.ShapeTile:
		// Tile objects are anchored bottom-left.
		pts := RectPoints(obj.Width, obj.Height)
		for i := range pts {
			pts[i].Y -= obj.Height
		}
		return pts, Fill
	default:
		return RectPoints(obj.Width, obj.Height), Fill
	}
}

// ObjectMesh builds the mesh for an object in map pixel space, applying its
// rotation around the object position.
func ObjectMesh(obj *tmx.Object) (Mesh, error) {
	points, mode := ObjectPoints(obj)
	mesh, err := Build(points, mode)
	if err != nil {
		return Mesh{}, fmt.Errorf("object %d (%s): %w", obj.ID, obj.Shape, err)
	}
	return mesh.Transform(obj.Rotation, math.Vec2{X: obj.X, Y: obj.Y}), nil
}

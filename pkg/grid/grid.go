// Package grid converts between tile coordinates and continuous world
// coordinates for every map orientation.
//
// One world unit is one tile along each axis: world = pixels / tile size for
// orthogonal, staggered and hexagonal maps. Isometric maps measure both axes
// in tile widths, so their Y axis is scaled by the tile aspect ratio. Screen Y
// grows downward everywhere.
package grid

import (
	"fmt"
	stdmath "math"

	"github.com/Faultbox/tilemap/pkg/geom"
	"github.com/Faultbox/tilemap/pkg/math"
	"github.com/Faultbox/tilemap/pkg/tmx"
)

// eps absorbs floating point noise before flooring so that tile-aligned
// inputs land on their own tile.
const eps = 1e-9

// Projection is the coordinate transform of one map. Orientation selects
// which of the remaining fields apply; values outside the known orientations
// behave as orthogonal.
type Projection struct {
	Orientation tmx.Orientation

	TileWidth  float64 // pixels
	TileHeight float64 // pixels

	// Staggered and hexagonal only. SideLength is 0 for staggered maps.
	SideLength   float64
	StaggerAxis  tmx.StaggerAxis
	StaggerIndex tmx.StaggerIndex
}

// New returns the projection for a parsed map.
func New(m *tmx.Map) Projection {
	tw, th := m.TileWidth, m.TileHeight
	switch m.Orientation {
	case tmx.OrientationIsometric:
		return Isometric(tw, th)
	case tmx.OrientationStaggered:
		return Staggered(tw, th, m.StaggerAxis, m.StaggerIndex)
	case tmx.OrientationHexagonal:
		return Hexagonal(tw, th, m.HexSideLength, m.StaggerAxis, m.StaggerIndex)
	default:
		p := Orthogonal()
		p.TileWidth, p.TileHeight = float64(tw), float64(th)
		return p
	}
}

// Orthogonal returns a square-grid projection with 1x1 pixel tiles. Set the
// tile size for pixel conversions.
func Orthogonal() Projection {
	return Projection{Orientation: tmx.OrientationOrthogonal, TileWidth: 1, TileHeight: 1}
}

// Isometric returns a diamond projection for tw x th pixel tiles.
func Isometric(tw, th int) Projection {
	return Projection{Orientation: tmx.OrientationIsometric, TileWidth: float64(tw), TileHeight: float64(th)}
}

// Staggered returns a staggered isometric projection.
func Staggered(tw, th int, axis tmx.StaggerAxis, index tmx.StaggerIndex) Projection {
	return Projection{
		Orientation:  tmx.OrientationStaggered,
		TileWidth:    float64(tw),
		TileHeight:   float64(th),
		StaggerAxis:  axis,
		StaggerIndex: index,
	}
}

// Hexagonal returns a hexagonal projection. A side length of 0 behaves
// exactly like Staggered.
func Hexagonal(tw, th, side int, axis tmx.StaggerAxis, index tmx.StaggerIndex) Projection {
	return Projection{
		Orientation:  tmx.OrientationHexagonal,
		TileWidth:    float64(tw),
		TileHeight:   float64(th),
		SideLength:   float64(side),
		StaggerAxis:  axis,
		StaggerIndex: index,
	}
}

// String describes the projection.
func (p Projection) String() string {
	switch p.Orientation {
	case tmx.OrientationStaggered, tmx.OrientationHexagonal:
		return fmt.Sprintf("%s %gx%g side=%g axis=%s index=%s",
			p.Orientation, p.TileWidth, p.TileHeight, p.SideLength, p.StaggerAxis, p.StaggerIndex)
	default:
		return fmt.Sprintf("%s %gx%g", p.Orientation, p.TileWidth, p.TileHeight)
	}
}

// Scale returns pixels per world unit along each axis.
func (p Projection) Scale() math.Vec2 {
	if p.Orientation == tmx.OrientationIsometric {
		return math.V2(p.TileWidth, p.TileWidth)
	}
	return math.V2(p.TileWidth, p.TileHeight)
}

// TileToWorld returns the anchor of tile (x, y): the top-left corner of its
// bounding box, or the top vertex of the diamond on isometric maps.
func (p Projection) TileToWorld(x, y int) math.Vec2 {
	switch p.Orientation {
	case tmx.OrientationIsometric:
		return p.isoToWorld(float64(x), float64(y))
	case tmx.OrientationStaggered, tmx.OrientationHexagonal:
		return p.fromPixels(p.staggerToPixel(x, y))
	default:
		return math.V2(float64(x), float64(y))
	}
}

// WorldToTile returns the tile containing world point w. Points on a tile
// boundary belong to the tile with the higher index.
func (p Projection) WorldToTile(w math.Vec2) (x, y int) {
	switch p.Orientation {
	case tmx.OrientationIsometric:
		a := w.Y * p.TileWidth / p.TileHeight
		return floor(a + w.X), floor(a - w.X)
	case tmx.OrientationStaggered:
		return p.pixelToStaggered(p.toPixels(w))
	case tmx.OrientationHexagonal:
		if p.SideLength == 0 {
			return p.pixelToStaggered(p.toPixels(w))
		}
		return p.pixelToHex(p.toPixels(w))
	default:
		return floor(w.X), floor(w.Y)
	}
}

// TileCenter returns the world position of the centre of tile (x, y).
func (p Projection) TileCenter(x, y int) math.Vec2 {
	if p.Orientation == tmx.OrientationIsometric {
		return p.isoToWorld(float64(x)+0.5, float64(y)+0.5)
	}
	return p.TileToWorld(x, y).Add(math.V2(0.5, 0.5))
}

// TileToPixel returns the anchor of tile (x, y) in pixels.
func (p Projection) TileToPixel(x, y int) math.Vec2 {
	return p.toPixels(p.TileToWorld(x, y))
}

// PixelToTile returns the tile containing pixel position px.
func (p Projection) PixelToTile(px math.Vec2) (x, y int) {
	return p.WorldToTile(p.fromPixels(px))
}

// TileOutline returns the outline of tile (x, y) in pixels.
func (p Projection) TileOutline(x, y int) []math.Vec2 {
	var pts []math.Vec2
	origin := p.TileToPixel(x, y)
	switch p.Orientation {
	case tmx.OrientationIsometric:
		pts = geom.DiamondPoints(p.TileWidth, p.TileHeight)
		origin.X -= p.TileWidth / 2
	case tmx.OrientationStaggered:
		pts = geom.DiamondPoints(p.TileWidth, p.TileHeight)
	case tmx.OrientationHexagonal:
		pts = geom.HexagonPoints(p.TileWidth, p.TileHeight, p.SideLength, p.StaggerAxis == tmx.StaggerAxisX)
	default:
		pts = geom.RectPoints(p.TileWidth, p.TileHeight)
	}
	for i := range pts {
		pts[i] = pts[i].Add(origin)
	}
	return pts
}

func (p Projection) toPixels(w math.Vec2) math.Vec2 {
	return w.Mul(p.Scale())
}

func (p Projection) fromPixels(px math.Vec2) math.Vec2 {
	return px.Div(p.Scale())
}

func (p Projection) isoToWorld(x, y float64) math.Vec2 {
	return math.V2((x-y)*0.5, (x+y)*0.5*p.TileHeight/p.TileWidth)
}

func floor(v float64) int {
	return int(stdmath.Floor(v + eps))
}

package grid

import (
	stdmath "math"

	"github.com/Faultbox/tilemap/pkg/math"
	"github.com/Faultbox/tilemap/pkg/tmx"
)

// Staggered and hexagonal maps share one layout: every other row (stagger
// axis Y) or column (stagger axis X) is shifted by half a tile. Hexagonal
// tiles additionally overlap by the side length along the stagger axis.

func (p Projection) staggerX() bool {
	return p.StaggerAxis == tmx.StaggerAxisX
}

// staggered reports whether row or column i is shifted.
func (p Projection) staggered(i int) bool {
	odd := i&1 == 1
	if p.StaggerIndex == tmx.StaggerEven {
		return !odd
	}
	return odd
}

// side returns the overlap length; staggered maps have none.
func (p Projection) side() float64 {
	if p.Orientation == tmx.OrientationStaggered {
		return 0
	}
	return p.SideLength
}

// columnWidth and rowHeight are the distances between neighbouring columns
// and rows along the stagger axis, or half a tile along the other one.
func (p Projection) columnWidth() float64 {
	if p.staggerX() {
		return (p.TileWidth + p.side()) / 2
	}
	return p.TileWidth / 2
}

func (p Projection) rowHeight() float64 {
	if p.staggerX() {
		return p.TileHeight / 2
	}
	return (p.TileHeight + p.side()) / 2
}

func (p Projection) staggerToPixel(x, y int) math.Vec2 {
	if p.staggerX() {
		px := float64(x) * p.columnWidth()
		py := float64(y) * p.TileHeight
		if p.staggered(x) {
			py += p.rowHeight()
		}
		return math.V2(px, py)
	}

	px := float64(x) * p.TileWidth
	py := float64(y) * p.rowHeight()
	if p.staggered(y) {
		px += p.columnWidth()
	}
	return math.V2(px, py)
}

// pixelToStaggered finds the diamond containing px. The plane is cut into
// tile-sized rectangles, each holding one whole unshifted diamond and the
// corners of four shifted ones.
func (p Projection) pixelToStaggered(px math.Vec2) (int, int) {
	tw, th := p.TileWidth, p.TileHeight
	even := p.StaggerIndex == tmx.StaggerEven

	if p.staggerX() {
		x := px.X
		if even {
			x -= tw / 2
		}
		k := floor(x / tw)
		cy := floor(px.Y / th)
		col := 2 * k
		if even {
			col++
		}

		dx := x - (float64(k)*tw + tw/2)
		dy := px.Y - (float64(cy)*th + th/2)
		if !outsideDiamond(dx, dy, tw, th, dx > 0) {
			return col, cy
		}
		cornerX, cornerY := col-1, cy
		if dx >= 0 {
			cornerX = col + 1
		}
		if dy < 0 {
			cornerY = cy - 1
		}
		return cornerX, cornerY
	}

	y := px.Y
	if even {
		y -= th / 2
	}
	k := floor(y / th)
	cx := floor(px.X / tw)
	row := 2 * k
	if even {
		row++
	}

	dx := px.X - (float64(cx)*tw + tw/2)
	dy := y - (float64(k)*th + th/2)
	if !outsideDiamond(dx, dy, tw, th, dy > 0) {
		return cx, row
	}
	cornerX, cornerY := cx-1, row-1
	if dx >= 0 {
		cornerX = cx
	}
	if dy >= 0 {
		cornerY = row + 1
	}
	return cornerX, cornerY
}

// outsideDiamond reports whether offset (dx, dy) from a diamond's centre lies
// outside it. Points on the edge count as outside when towardHigher is set,
// handing them to the neighbour with the higher index.
func outsideDiamond(dx, dy, tw, th float64, towardHigher bool) bool {
	d := stdmath.Abs(dx)/(tw/2) + stdmath.Abs(dy)/(th/2)
	if towardHigher {
		return d >= 1-eps
	}
	return d > 1+eps
}

var (
	hexOffsetsX = [4][2]int{{0, 0}, {1, -1}, {1, 0}, {2, 0}}
	hexOffsetsY = [4][2]int{{0, 0}, {-1, 1}, {0, 1}, {0, 2}}
)

// pixelToHex picks the nearest of the four hex centres around the reference
// cell containing px.
func (p Projection) pixelToHex(px math.Vec2) (int, int) {
	colW, rowH := p.columnWidth(), p.rowHeight()
	even := p.StaggerIndex == tmx.StaggerEven

	x, y := px.X, px.Y
	if p.staggerX() {
		if even {
			x -= p.TileWidth
		} else {
			x -= (p.TileWidth - p.SideLength) / 2
		}
	} else {
		if even {
			y -= p.TileHeight
		} else {
			y -= (p.TileHeight - p.SideLength) / 2
		}
	}

	refX := floor(x / (colW * 2))
	refY := floor(y / (rowH * 2))
	rel := math.V2(x-float64(refX)*colW*2, y-float64(refY)*rowH*2)

	var centers [4]math.Vec2
	offsets := hexOffsetsY
	if p.staggerX() {
		refX *= 2
		if even {
			refX++
		}
		left := p.SideLength / 2
		cx, cy := left+colW, p.TileHeight/2
		centers = [4]math.Vec2{
			{X: left, Y: cy},
			{X: cx, Y: cy - rowH},
			{X: cx, Y: cy + rowH},
			{X: cx + colW, Y: cy},
		}
		offsets = hexOffsetsX
	} else {
		refY *= 2
		if even {
			refY++
		}
		top := p.SideLength / 2
		cx, cy := p.TileWidth/2, top+rowH
		centers = [4]math.Vec2{
			{X: cx, Y: top},
			{X: cx - colW, Y: cy},
			{X: cx + colW, Y: cy},
			{X: cx, Y: cy + rowH},
		}
	}

	nearest := 0
	best := stdmath.Inf(1)
	for i, c := range centers {
		if d := rel.Sub(c).LengthSq(); d <= best+eps {
			nearest, best = i, d
		}
	}
	return refX + offsets[nearest][0], refY + offsets[nearest][1]
}

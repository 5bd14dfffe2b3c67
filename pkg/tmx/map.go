package tmx

import (
	"fmt"

	"github.com/Faultbox/tilemap/pkg/math"
)

// Orientation is the grid geometry of a map.
type Orientation int

// Map orientations. Unknown values parse as OrientationOrthogonal.
const (
	OrientationOrthogonal Orientation = iota
	OrientationIsometric
	OrientationStaggered
	OrientationHexagonal
)

var orientationNames = map[string]Orientation{
	"orthogonal": OrientationOrthogonal,
	"isometric":  OrientationIsometric,
	"staggered":  OrientationStaggered,
	"hexagonal":  OrientationHexagonal,
}

// String returns the attribute value.
func (o Orientation) String() string {
	switch o {
	case OrientationOrthogonal:
		return "orthogonal"
	case OrientationIsometric:
		return "isometric"
	case OrientationStaggered:
		return "staggered"
	case OrientationHexagonal:
		return "hexagonal"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// RenderOrder is the order in which tiles of a layer are drawn.
type RenderOrder int

// Render orders. Unknown values parse as RenderRightDown.
const (
	RenderRightDown RenderOrder = iota
	RenderRightUp
	RenderLeftDown
	RenderLeftUp
)

var renderOrderNames = map[string]RenderOrder{
	"right-down": RenderRightDown,
	"right-up":   RenderRightUp,
	"left-down":  RenderLeftDown,
	"left-up":    RenderLeftUp,
}

// String returns the attribute value.
func (r RenderOrder) String() string {
	switch r {
	case RenderRightDown:
		return "right-down"
	case RenderRightUp:
		return "right-up"
	case RenderLeftDown:
		return "left-down"
	case RenderLeftUp:
		return "left-up"
	default:
		return fmt.Sprintf("RenderOrder(%d)", int(r))
	}
}

// StaggerAxis selects which axis is staggered on staggered and hexagonal maps.
type StaggerAxis int

// Stagger axes. Unknown values parse as StaggerAxisY.
const (
	StaggerAxisY StaggerAxis = iota
	StaggerAxisX
)

var staggerAxisNames = map[string]StaggerAxis{
	"x": StaggerAxisX,
	"y": StaggerAxisY,
}

// String returns the attribute value.
func (a StaggerAxis) String() string {
	if a == StaggerAxisX {
		return "x"
	}
	return "y"
}

// StaggerIndex selects whether odd or even rows/columns are shifted.
type StaggerIndex int

// Stagger indices. Unknown values parse as StaggerOdd.
const (
	StaggerOdd StaggerIndex = iota
	StaggerEven
)

var staggerIndexNames = map[string]StaggerIndex{
	"odd":  StaggerOdd,
	"even": StaggerEven,
}

// String returns the attribute value.
func (i StaggerIndex) String() string {
	if i == StaggerEven {
		return "even"
	}
	return "odd"
}

// Map is a parsed TMX document.
type Map struct {
	Version      string
	TiledVersion string
	Class        string

	Orientation   Orientation
	RenderOrder   RenderOrder
	Width         int // tiles
	Height        int // tiles
	TileWidth     int // pixels
	TileHeight    int // pixels
	HexSideLength int
	StaggerAxis   StaggerAxis
	StaggerIndex  StaggerIndex

	ParallaxOriginX float64
	ParallaxOriginY float64
	BackgroundColor *math.Color

	NextLayerID      int
	NextObjectID     int
	Infinite         bool
	CompressionLevel int

	Tilesets   []*Tileset
	Layers     []Layer
	Properties Properties
}

// TilesetFor returns the tileset whose GID range contains gid (flags are
// ignored) and the tile's local ID within it. When ranges overlap, the
// tileset with the highest FirstGID wins, as in Tiled.
func (m *Map) TilesetFor(gid uint32) (*Tileset, uint32, error) {
	clean := gid & GIDMask
	if clean == 0 {
		return nil, 0, fmt.Errorf("%w: gid 0 is the empty tile", ErrUnresolvedReference)
	}
	var found *Tileset
	for _, ts := range m.Tilesets {
		if ts.Contains(clean) && (found == nil || ts.FirstGID > found.FirstGID) {
			found = ts
		}
	}
	if found == nil {
		return nil, 0, fmt.Errorf("%w: gid %d is outside every tileset", ErrUnresolvedReference, clean)
	}
	return found, clean - found.FirstGID, nil
}

// TileFor resolves gid to its tile.
func (m *Map) TileFor(gid uint32) (*Tile, error) {
	ts, id, err := m.TilesetFor(gid)
	if err != nil {
		return nil, err
	}
	return ts.Tile(id), nil
}

// Walk visits every layer depth-first in draw order. Returning false from fn
// stops the walk.
func (m *Map) Walk(fn func(Layer) bool) {
	walkLayers(m.Layers, fn)
}

func walkLayers(layers []Layer, fn func(Layer) bool) bool {
	for _, l := range layers {
		if !fn(l) {
			return false
		}
		if g, ok := l.(*GroupLayer); ok {
			if !walkLayers(g.Layers, fn) {
				return false
			}
		}
	}
	return true
}

// Layer returns the first layer named name, searching groups too.
func (m *Map) Layer(name string) (Layer, bool) {
	var found Layer
	m.Walk(func(l Layer) bool {
		if l.Header().Name == name {
			found = l
			return false
		}
		return true
	})
	return found, found != nil
}

// TileLayer returns the first tile layer named name.
func (m *Map) TileLayer(name string) (*TileLayer, bool) {
	var found *TileLayer
	m.Walk(func(l Layer) bool {
		if tl, ok := l.(*TileLayer); ok && tl.Name == name {
			found = tl
			return false
		}
		return true
	})
	return found, found != nil
}

// ObjectGroups returns every object group in draw order.
func (m *Map) ObjectGroups() []*ObjectGroup {
	var groups []*ObjectGroup
	m.Walk(func(l Layer) bool {
		if og, ok := l.(*ObjectGroup); ok {
			groups = append(groups, og)
		}
		return true
	})
	return groups
}

// Object returns the object with the given ID.
func (m *Map) Object(id int) (*Object, bool) {
	for _, og := range m.ObjectGroups() {
		for _, o := range og.Objects {
			if o.ID == id {
				return o, true
			}
		}
	}
	return nil, false
}

// PixelSize returns the map size in pixels for orthogonal maps and the
// bounding box for the other orientations.
func (m *Map) PixelSize() (int, int) {
	switch m.Orientation {
	case OrientationIsometric:
		return (m.Width + m.Height) * m.TileWidth / 2, (m.Width + m.Height) * m.TileHeight / 2
	case OrientationStaggered, OrientationHexagonal:
		side := m.HexSideLength
		if m.Orientation == OrientationStaggered {
			side = 0
		}
		if m.StaggerAxis == StaggerAxisX {
			col := (m.TileWidth + side) / 2
			return m.Width*col + (m.TileWidth-side)/2, m.Height*m.TileHeight + m.TileHeight/2
		}
		row := (m.TileHeight + side) / 2
		return m.Width*m.TileWidth + m.TileWidth/2, m.Height*row + (m.TileHeight-side)/2
	default:
		return m.Width * m.TileWidth, m.Height * m.TileHeight
	}
}

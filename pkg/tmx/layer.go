package tmx

import (
	"fmt"
	"sort"

	"github.com/Faultbox/tilemap/pkg/math"
)

// Layer is one of *TileLayer, *ObjectGroup, *ImageLayer or *GroupLayer.
type Layer interface {
	Header() *LayerHeader
}

// LayerHeader holds the attributes shared by every layer kind.
type LayerHeader struct {
	ID         int
	Name       string
	Class      string
	Visible    bool
	Locked     bool
	Opacity    float64
	OffsetX    float64
	OffsetY    float64
	ParallaxX  float64
	ParallaxY  float64
	TintColor  *math.Color
	Properties Properties
	Order      int // position in a depth-first walk of the layer tree
}

// Header returns the shared layer attributes.
func (h *LayerHeader) Header() *LayerHeader { return h }

// Chunk is a rectangular block of cells of an infinite map.
type Chunk struct {
	X, Y          int // tile coordinates of the top-left cell
	Width, Height int
	Cells         []uint32
}

// Contains reports whether tile (x, y) falls in the chunk.
func (c *Chunk) Contains(x, y int) bool {
	return x >= c.X && y >= c.Y && x < c.X+c.Width && y < c.Y+c.Height
}

// TileLayer is a grid of raw cell values.
type TileLayer struct {
	LayerHeader
	Width       int
	Height      int
	Cells       []uint32 // row-major, finite maps only
	Chunks      []Chunk  // infinite maps only
	Encoding    Encoding
	Compression Compression
}

// Cell returns the raw value at tile (x, y). Cells outside the layer, or
// outside every chunk of an infinite layer, are empty.
func (l *TileLayer) Cell(x, y int) Cell {
	if p := l.cellPtr(x, y); p != nil {
		return Cell(*p)
	}
	return 0
}

// SetCell replaces the raw value at tile (x, y).
func (l *TileLayer) SetCell(x, y int, raw uint32) error {
	p := l.cellPtr(x, y)
	if p == nil {
		return fmt.Errorf("%w: (%d, %d) in layer %q", ErrOutOfBounds, x, y, l.Name)
	}
	*p = raw
	return nil
}

func (l *TileLayer) cellPtr(x, y int) *uint32 {
	if len(l.Chunks) > 0 {
		for i := range l.Chunks {
			c := &l.Chunks[i]
			if c.Contains(x, y) {
				return &c.Cells[(y-c.Y)*c.Width+(x-c.X)]
			}
		}
		return nil
	}
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return nil
	}
	return &l.Cells[y*l.Width+x]
}

// Each calls fn for every non-empty cell.
func (l *TileLayer) Each(fn func(x, y int, c Cell)) {
	if len(l.Chunks) > 0 {
		for _, ch := range l.Chunks {
			for i, raw := range ch.Cells {
				if raw&GIDMask != 0 {
					fn(ch.X+i%ch.Width, ch.Y+i/ch.Width, Cell(raw))
				}
			}
		}
		return
	}
	for i, raw := range l.Cells {
		if raw&GIDMask != 0 {
			fn(i%l.Width, i/l.Width, Cell(raw))
		}
	}
}

// Bounds returns the covered tile rectangle. For finite layers this is
// (0, 0, Width, Height); for infinite layers the union of all chunks.
func (l *TileLayer) Bounds() Rect {
	if len(l.Chunks) == 0 {
		return Rect{W: l.Width, H: l.Height}
	}
	minX, minY := l.Chunks[0].X, l.Chunks[0].Y
	maxX, maxY := minX+l.Chunks[0].Width, minY+l.Chunks[0].Height
	for _, c := range l.Chunks[1:] {
		minX, minY = min(minX, c.X), min(minY, c.Y)
		maxX, maxY = max(maxX, c.X+c.Width), max(maxY, c.Y+c.Height)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Encode re-encodes the layer's cells. Infinite layers are not supported; use
// EncodeData on each chunk.
func (l *TileLayer) Encode(opts EncodeOptions) (RawData, error) {
	if len(l.Chunks) > 0 {
		return RawData{}, fmt.Errorf("%w: layer %q is chunked", ErrLayerDataFormat, l.Name)
	}
	if opts.Width == 0 {
		opts.Width = l.Width
	}
	return EncodeData(l.Cells, opts)
}

// DrawOrder is the object draw order of an object group.
type DrawOrder int

// Draw orders. Unknown values parse as DrawOrderTopDown.
const (
	DrawOrderTopDown DrawOrder = iota // by Y coordinate
	DrawOrderIndex                    // by object ID
)

var drawOrderNames = map[string]DrawOrder{
	"topdown": DrawOrderTopDown,
	"index":   DrawOrderIndex,
}

// String returns the attribute value.
func (d DrawOrder) String() string {
	if d == DrawOrderIndex {
		return "index"
	}
	return "topdown"
}

// ObjectGroup is an object layer, also used for tile collision shapes.
type ObjectGroup struct {
	LayerHeader
	Color     *math.Color
	DrawOrder DrawOrder
	Objects   []*Object
}

// Sorted returns the objects in draw order. TopDown sorts stably by Y.
// Index sorts by object ID, which only matches document order when IDs were
// assigned monotonically.
func (g *ObjectGroup) Sorted() []*Object {
	out := append([]*Object(nil), g.Objects...)
	switch g.DrawOrder {
	case DrawOrderIndex:
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Y < out[j].Y })
	}
	return out
}

// ImageLayer draws a single image.
type ImageLayer struct {
	LayerHeader
	Image   *Image
	RepeatX bool
	RepeatY bool
}

// GroupLayer nests other layers.
type GroupLayer struct {
	LayerHeader
	Layers []Layer
}

// EffectiveOpacity returns the layer opacity multiplied through its parents.
// parents lists the enclosing groups from outermost to innermost.
func EffectiveOpacity(l Layer, parents ...*GroupLayer) float64 {
	o := l.Header().Opacity
	for _, p := range parents {
		o *= p.Opacity
	}
	return o
}

package tmx

import (
	"fmt"

	"github.com/Faultbox/tilemap/pkg/math"
)

// ObjectAlignment controls how tile objects are anchored.
type ObjectAlignment int

// Object alignments. Unknown values parse as AlignUnspecified.
const (
	AlignUnspecified ObjectAlignment = iota
	AlignTopLeft
	AlignTop
	AlignTopRight
	AlignLeft
	AlignCenter
	AlignRight
	AlignBottomLeft
	AlignBottom
	AlignBottomRight
)

var objectAlignmentNames = map[string]ObjectAlignment{
	"unspecified": AlignUnspecified,
	"topleft":     AlignTopLeft,
	"top":         AlignTop,
	"topright":    AlignTopRight,
	"left":        AlignLeft,
	"center":      AlignCenter,
	"right":       AlignRight,
	"bottomleft":  AlignBottomLeft,
	"bottom":      AlignBottom,
	"bottomright": AlignBottomRight,
}

// String returns the attribute value.
func (a ObjectAlignment) String() string {
	for name, v := range objectAlignmentNames {
		if v == a {
			return name
		}
	}
	return fmt.Sprintf("ObjectAlignment(%d)", int(a))
}

// Rect is a pixel rectangle within an image.
type Rect struct {
	X, Y, W, H int
}

// Image references an image file. Source is relative to the document that
// declared it; Path is Source resolved against that document's directory.
type Image struct {
	Source string
	Path   string
	Format string
	Trans  *math.Color // transparent color key
	Width  int
	Height int
}

// TileOffset is the drawing offset applied to every tile of a tileset.
type TileOffset struct {
	X, Y int
}

// Grid describes the tile grid used for terrain overlays in the editor.
type Grid struct {
	Orientation Orientation // orthogonal or isometric
	Width       int
	Height      int
}

// Frame is a single animation frame.
type Frame struct {
	TileID   uint32 // local ID in the owning tileset
	Duration int    // milliseconds; 0 holds the frame forever
}

// Animation is an ordered list of frames.
type Animation struct {
	Frames []Frame
}

// TotalDuration returns the sum of frame durations in milliseconds.
func (a *Animation) TotalDuration() int {
	total := 0
	for _, f := range a.Frames {
		total += f.Duration
	}
	return total
}

// Holds reports whether some frame has a zero duration and so stops playback.
func (a *Animation) Holds() bool {
	for _, f := range a.Frames {
		if f.Duration == 0 {
			return true
		}
	}
	return false
}

// Tile is a tileset entry. Tiles are only listed explicitly in the document
// when they carry extra data; Tileset.Tile synthesizes the rest.
type Tile struct {
	ID          uint32
	Type        string
	Probability float64
	Image       *Image // image-collection tilesets
	Rect        Rect   // sub-rectangle of the tileset or tile image
	Animation   *Animation
	ObjectGroup *ObjectGroup // collision shapes
	Properties  Properties
}

// Tileset is a tileset bound to a map at FirstGID, or a standalone TSX
// document when FirstGID is 0.
type Tileset struct {
	FirstGID uint32
	Source   string // external TSX path as written in the map, empty when inline

	Version         string
	TiledVersion    string
	Name            string
	Class           string
	TileWidth       int
	TileHeight      int
	Spacing         int
	Margin          int
	TileCount       int
	Columns         int
	ObjectAlignment ObjectAlignment
	Image           *Image
	TileOffset      TileOffset
	Grid            *Grid
	Properties      Properties
	Tiles           []*Tile

	byID map[uint32]*Tile
	span uint32
}

// index builds the ID lookup and GID span. Called once the tileset is complete.
func (ts *Tileset) index() {
	ts.byID = make(map[uint32]*Tile, len(ts.Tiles))
	ts.span = uint32(max(ts.TileCount, 0))
	for _, t := range ts.Tiles {
		ts.byID[t.ID] = t
		if t.ID+1 > ts.span {
			ts.span = t.ID + 1
		}
		t.Rect = ts.TileRect(t.ID)
	}
}

// Contains reports whether gid (flags masked) belongs to this tileset.
func (ts *Tileset) Contains(gid uint32) bool {
	gid &= GIDMask
	return gid >= ts.FirstGID && gid-ts.FirstGID < ts.span
}

// LastGID returns the highest GID covered by the tileset.
func (ts *Tileset) LastGID() uint32 {
	if ts.span == 0 {
		return ts.FirstGID
	}
	return ts.FirstGID + ts.span - 1
}

// GID returns the global ID of a local tile ID.
func (ts *Tileset) GID(id uint32) uint32 {
	return ts.FirstGID + id
}

// Tile returns the tile with local ID id, or nil if id is out of range.
func (ts *Tileset) Tile(id uint32) *Tile {
	if t, ok := ts.byID[id]; ok {
		return t
	}
	if id >= ts.span {
		return nil
	}
	return &Tile{ID: id, Probability: 1, Rect: ts.TileRect(id)}
}

// TileRect returns the pixel rectangle of tile id within its image.
func (ts *Tileset) TileRect(id uint32) Rect {
	if t, ok := ts.byID[id]; ok && t.Image != nil {
		if t.Rect.W > 0 && t.Rect.H > 0 {
			return t.Rect
		}
		return Rect{W: t.Image.Width, H: t.Image.Height}
	}
	if t, ok := ts.byID[id]; ok && t.Rect.W > 0 && t.Rect.H > 0 {
		return t.Rect
	}

	cols := ts.Columns
	if cols <= 0 {
		cols = 1
	}
	col := int(id) % cols
	row := int(id) / cols
	return Rect{
		X: ts.Margin + col*(ts.TileWidth+ts.Spacing),
		Y: ts.Margin + row*(ts.TileHeight+ts.Spacing),
		W: ts.TileWidth,
		H: ts.TileHeight,
	}
}

// Animated returns the tiles that carry an animation.
func (ts *Tileset) Animated() []*Tile {
	var out []*Tile
	for _, t := range ts.Tiles {
		if t.Animation != nil {
			out = append(out, t)
		}
	}
	return out
}

// columnsFor returns how many tiles of the tileset fit across an image width.
func (ts *Tileset) columnsFor(imageWidth int) int {
	step := ts.TileWidth + ts.Spacing
	if ts.TileWidth <= 0 || step <= 0 {
		return 0
	}
	return max((imageWidth-2*ts.Margin+ts.Spacing)/step, 0)
}

// rowsFor returns how many tiles of the tileset fit down an image height.
func (ts *Tileset) rowsFor(imageHeight int) int {
	step := ts.TileHeight + ts.Spacing
	if ts.TileHeight <= 0 || step <= 0 {
		return 0
	}
	return max((imageHeight-2*ts.Margin+ts.Spacing)/step, 0)
}

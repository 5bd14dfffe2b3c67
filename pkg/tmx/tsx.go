package tmx

import (
	"fmt"

	"go.uber.org/zap"
)

// externalTileset loads a TSX document once per parse.
func (p *parser) externalTileset(name string) (*Tileset, error) {
	if ts, ok := p.tilesets[name]; ok {
		return ts, nil
	}

	var x xmlTileset
	if err := p.load(name, &x); err != nil {
		return nil, err
	}
	ts, err := p.buildTileset(&x, p.dir(name))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	p.tilesets[name] = ts
	p.log.Debug("loaded external tileset", zap.String("path", name), zap.String("name", ts.Name))
	return ts, nil
}

// buildTileset converts a <tileset> element. dir is the directory of the
// document that contains it. FirstGID is left for the caller to set.
func (p *parser) buildTileset(x *xmlTileset, dir string) (*Tileset, error) {
	tw, err := required(x.TileWidth, "tileset", "tilewidth")
	if err != nil {
		return nil, err
	}
	th, err := required(x.TileHeight, "tileset", "tileheight")
	if err != nil {
		return nil, err
	}
	for _, d := range []struct {
		attr string
		v    int
	}{{"tilewidth", tw}, {"tileheight", th}, {"spacing", x.Spacing}, {"margin", x.Margin}} {
		if err := nonNegative(d.v, "tileset", d.attr); err != nil {
			return nil, err
		}
	}

	ts := &Tileset{
		Version:         x.Version,
		TiledVersion:    x.TiledVersion,
		Name:            x.Name,
		Class:           x.Class,
		TileWidth:       tw,
		TileHeight:      th,
		Spacing:         x.Spacing,
		Margin:          x.Margin,
		ObjectAlignment: parseEnum(p, "tileset", "objectalignment", x.ObjectAlignment, objectAlignmentNames, AlignUnspecified),
		Properties:      buildProperties(x.Properties),
	}
	if x.TileOffset != nil {
		ts.TileOffset = TileOffset{X: x.TileOffset.X, Y: x.TileOffset.Y}
	}
	if x.Grid != nil {
		ts.Grid = &Grid{
			Orientation: parseEnum(p, "grid", "orientation", x.Grid.Orientation, orientationNames, OrientationOrthogonal),
			Width:       x.Grid.Width,
			Height:      x.Grid.Height,
		}
	}
	if ts.Image, err = p.buildImage(x.Image, dir); err != nil {
		return nil, fmt.Errorf("tileset %q: %w", ts.Name, err)
	}

	var maxID uint32
	for i := range x.Tiles {
		t, err := p.buildTile(&x.Tiles[i], dir)
		if err != nil {
			return nil, fmt.Errorf("tileset %q: %w", ts.Name, err)
		}
		ts.Tiles = append(ts.Tiles, t)
		maxID = max(maxID, t.ID)
	}

	ts.Columns = intOr(x.Columns, -1)
	ts.TileCount = intOr(x.TileCount, -1)
	if (ts.Columns < 0 || ts.TileCount < 0) && ts.Image != nil {
		if err := p.probeImage(ts.Image); err != nil {
			return nil, fmt.Errorf("tileset %q: %w", ts.Name, err)
		}
		if ts.Columns < 0 {
			ts.Columns = ts.columnsFor(ts.Image.Width)
		}
		if ts.TileCount < 0 {
			ts.TileCount = ts.Columns * ts.rowsFor(ts.Image.Height)
		}
	}
	if ts.Columns < 0 {
		ts.Columns = 0
	}
	if ts.TileCount < 0 {
		ts.TileCount = 0
		if len(ts.Tiles) > 0 {
			ts.TileCount = int(maxID) + 1
		}
	}

	ts.index()
	return ts, nil
}

func (p *parser) buildTile(x *xmlTile, dir string) (*Tile, error) {
	t := &Tile{
		ID:          x.ID,
		Type:        x.Class,
		Probability: floatOr(x.Probability, 1),
		Rect:        Rect{X: x.X, Y: x.Y, W: x.Width, H: x.Height},
		Properties:  buildProperties(x.Properties),
	}
	if t.Type == "" {
		t.Type = x.Type
	}

	var err error
	if t.Image, err = p.buildImage(x.Image, dir); err != nil {
		return nil, fmt.Errorf("tile %d: %w", x.ID, err)
	}

	if x.Animation != nil && len(x.Animation.Frames) > 0 {
		t.Animation = &Animation{Frames: make([]Frame, 0, len(x.Animation.Frames))}
		for _, f := range x.Animation.Frames {
			if f.TileID == nil {
				return nil, fmt.Errorf("tile %d: %w", x.ID, missing("frame", "tileid"))
			}
			if f.Duration == nil {
				return nil, fmt.Errorf("tile %d: %w", x.ID, missing("frame", "duration"))
			}
			t.Animation.Frames = append(t.Animation.Frames, Frame{TileID: *f.TileID, Duration: *f.Duration})
		}
	}

	if x.ObjectGroup != nil {
		h, err := layerHeader(&x.ObjectGroup.xmlLayerAttrs, "objectgroup")
		if err != nil {
			return nil, fmt.Errorf("tile %d: %w", x.ID, err)
		}
		if t.ObjectGroup, err = p.buildObjectGroup(x.ObjectGroup, h, dir, nil); err != nil {
			return nil, fmt.Errorf("tile %d: %w", x.ID, err)
		}
	}
	return t, nil
}

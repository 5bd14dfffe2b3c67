package tmx

import (
	"fmt"

	"github.com/Faultbox/tilemap/pkg/math"
)

// buildObjectGroup converts an object layer or a tile's collision group. b is
// nil outside a map, in which case template tile references keep their raw
// GIDs.
func (p *parser) buildObjectGroup(x *xmlObjectGroup, h LayerHeader, dir string, b *mapBuilder) (*ObjectGroup, error) {
	color, err := colorAttr("objectgroup", "color", x.Color)
	if err != nil {
		return nil, err
	}
	g := &ObjectGroup{
		LayerHeader: h,
		Color:       color,
		DrawOrder:   parseEnum(p, "objectgroup", "draworder", x.DrawOrder, drawOrderNames, DrawOrderTopDown),
	}
	for i := range x.Objects {
		o, err := p.buildObject(&x.Objects[i], dir, b)
		if err != nil {
			return nil, fmt.Errorf("objectgroup %q: %w", h.Name, err)
		}
		g.Objects = append(g.Objects, o)
	}
	return g, nil
}

func (p *parser) buildObject(x *xmlObject, dir string, b *mapBuilder) (*Object, error) {
	props := buildProperties(x.Properties)
	shapeDir := dir

	// remap is set when a tile object takes its GID from a template, which
	// counts tiles from the template's own tileset binding.
	var remap *template
	if x.Template != "" {
		tpl, err := p.loadTemplate(p.resolve(dir, x.Template))
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", x.ID, err)
		}
		if !x.hasShape() {
			shapeDir = tpl.dir
		}
		if x.GID == nil && tpl.object.GID != nil {
			remap = tpl
		}
		merged := mergeObject(x, &tpl.object)
		props = props.Merge(buildProperties(tpl.object.Properties))
		x = &merged
	}

	o := &Object{
		ID:         x.ID,
		Name:       stringOr(x.Name, ""),
		Type:       stringOr(x.Class, stringOr(x.Type, "")),
		X:          floatOr(x.X, 0),
		Y:          floatOr(x.Y, 0),
		Width:      floatOr(x.Width, 0),
		Height:     floatOr(x.Height, 0),
		Rotation:   floatOr(x.Rotation, 0),
		Visible:    boolOr(x.Visible, true),
		Template:   x.Template,
		Properties: props,
	}

	var err error
	switch {
	case x.Ellipse != nil:
		o.Shape = ShapeEllipse
	case x.Point != nil:
		o.Shape = ShapePoint
	case x.Polygon != nil:
		o.Shape = ShapePolygon
		o.Points, err = parsePoints("polygon", x.Polygon.Points)
	case x.Polyline != nil:
		o.Shape = ShapePolyline
		o.Points, err = parsePoints("polyline", x.Polyline.Points)
	case x.Text != nil:
		o.Shape = ShapeText
		o.Text, err = buildText(x.Text)
	case x.Image != nil:
		o.Shape = ShapeImage
		o.Image, err = p.buildImage(x.Image, shapeDir)
	case x.GID != nil:
		o.Shape = ShapeTile
		o.GID = *x.GID
	}
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", o.ID, err)
	}

	if o.Shape == ShapeTile {
		if remap != nil {
			if o.GID, err = remap.remap(o.GID, b); err != nil {
				return nil, fmt.Errorf("object %d: %w", o.ID, err)
			}
		}
		if b != nil && o.Width == 0 && o.Height == 0 {
			if t, err := b.m.TileFor(o.GID); err == nil && t != nil {
				o.Width, o.Height = float64(t.Rect.W), float64(t.Rect.H)
			}
		}
	}
	return o, nil
}

func buildText(x *xmlText) (*Text, error) {
	t := &Text{
		Content:    x.Content,
		FontFamily: x.FontFamily,
		PixelSize:  intOr(x.PixelSize, 16),
		Wrap:       x.Wrap != 0,
		Color:      math.Color{A: 1},
		Bold:       x.Bold != 0,
		Italic:     x.Italic != 0,
		Underline:  x.Underline != 0,
		Strikeout:  x.Strikeout != 0,
		Kerning:    boolOr(x.Kerning, true),
		HAlign:     x.HAlign,
		VAlign:     x.VAlign,
	}
	if t.FontFamily == "" {
		t.FontFamily = "sans-serif"
	}
	if t.HAlign == "" {
		t.HAlign = "left"
	}
	if t.VAlign == "" {
		t.VAlign = "top"
	}
	c, err := colorAttr("text", "color", x.Color)
	if err != nil {
		return nil, err
	}
	if c != nil {
		t.Color = *c
	}
	return t, nil
}

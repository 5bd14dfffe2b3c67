package tmx

import (
	"fmt"

	"go.uber.org/zap"
)

// template is a loaded TX document.
type template struct {
	object xmlObject
	dir    string

	// Tileset referenced by a tile object template, resolved against dir.
	tilesetPath string
	firstGID    uint32
}

func (p *parser) loadTemplate(name string) (*template, error) {
	if t, ok := p.templates[name]; ok {
		return t, nil
	}

	var x xmlTemplate
	if err := p.load(name, &x); err != nil {
		return nil, err
	}
	if x.Object == nil {
		return nil, fmt.Errorf("%w: %s: <template> has no <object>", ErrMalformedDocument, name)
	}

	t := &template{object: *x.Object, dir: p.dir(name)}
	if x.Tileset != nil && x.Tileset.Source != "" {
		t.tilesetPath = p.resolve(t.dir, x.Tileset.Source)
		t.firstGID = x.Tileset.FirstGID
	}

	p.templates[name] = t
	p.log.Debug("loaded template", zap.String("path", name))
	return t, nil
}

// remap moves a template tile reference into the GID space of the map being
// built. Outside a map the raw value is kept.
func (t *template) remap(raw uint32, b *mapBuilder) (uint32, error) {
	if b == nil {
		return raw, nil
	}
	if t.tilesetPath == "" {
		return 0, fmt.Errorf("%w: template tile %d has no external tileset", ErrUnresolvedReference, raw&GIDMask)
	}
	first, ok := b.sources[t.tilesetPath]
	if !ok {
		return 0, fmt.Errorf("%w: template tileset %s is not used by the map", ErrUnresolvedReference, t.tilesetPath)
	}
	local := raw&GIDMask - t.firstGID
	return uint32(Cell(raw).WithGID(first + local)), nil
}

// mergeObject overlays the attributes an instance sets on its template.
func mergeObject(inst, tpl *xmlObject) xmlObject {
	out := *tpl
	out.ID = inst.ID
	out.Template = inst.Template
	out.Properties = nil

	if inst.Name != nil {
		out.Name = inst.Name
	}
	if inst.Type != nil {
		out.Type = inst.Type
	}
	if inst.Class != nil {
		out.Class = inst.Class
	}
	if inst.X != nil {
		out.X = inst.X
	}
	if inst.Y != nil {
		out.Y = inst.Y
	}
	if inst.Width != nil {
		out.Width = inst.Width
	}
	if inst.Height != nil {
		out.Height = inst.Height
	}
	if inst.Rotation != nil {
		out.Rotation = inst.Rotation
	}
	if inst.GID != nil {
		out.GID = inst.GID
	}
	if inst.Visible != nil {
		out.Visible = inst.Visible
	}
	if inst.hasShape() {
		out.Ellipse = inst.Ellipse
		out.Point = inst.Point
		out.Polygon = inst.Polygon
		out.Polyline = inst.Polyline
		out.Text = inst.Text
		out.Image = inst.Image
	}
	return out
}

package tmx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/tilemap/internal/logger"
	"github.com/Faultbox/tilemap/pkg/encoding"
	"github.com/Faultbox/tilemap/pkg/math"
)

// OpenFunc opens a document or image referenced from a map. Names are
// already resolved against the referencing document's directory.
type OpenFunc func(name string) (io.ReadCloser, error)

// Option configures a parse.
type Option func(*parser)

// WithFS resolves external references inside fsys. Names use forward
// slashes as required by io/fs.
func WithFS(fsys fs.FS) Option {
	return func(p *parser) {
		p.open = func(name string) (io.ReadCloser, error) { return fsys.Open(name) }
		p.slash = true
	}
}

// WithOpener resolves external references through open. Names are joined
// with forward slashes.
func WithOpener(open OpenFunc) Option {
	return func(p *parser) {
		p.open = open
		p.slash = true
	}
}

// WithBaseDir sets the directory that relative references in the root
// document are resolved against.
func WithBaseDir(dir string) Option {
	return func(p *parser) { p.baseDir = dir }
}

// WithLogger sets the logger used for resolution steps and fallbacks.
func WithLogger(l *zap.Logger) Option {
	return func(p *parser) { p.log = l }
}

// parser carries the options and per-parse caches. A parser is used for one
// top-level document.
type parser struct {
	open    OpenFunc
	slash   bool
	baseDir string
	log     *zap.Logger

	tilesets  map[string]*Tileset
	templates map[string]*template
}

func newParser(opts []Option) *parser {
	p := &parser{
		open:      func(name string) (io.ReadCloser, error) { return os.Open(name) },
		baseDir:   ".",
		tilesets:  make(map[string]*Tileset),
		templates: make(map[string]*template),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Named("tmx")
	}
	return p
}

// Parse reads a TMX map. Relative references resolve against the working
// directory unless WithBaseDir, WithFS or WithOpener say otherwise.
func Parse(r io.Reader, opts ...Option) (*Map, error) {
	p := newParser(opts)
	return p.parseMap(r, p.baseDir)
}

// ParseFile reads a TMX map from disk.
func ParseFile(name string, opts ...Option) (*Map, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("reading map file: %w", err)
	}
	defer f.Close()

	opts = append([]Option{WithBaseDir(filepath.Dir(name))}, opts...)
	return Parse(f, opts...)
}

// ParseFS reads the TMX map name from fsys. External tilesets, templates and
// images are looked up in fsys as well.
func ParseFS(fsys fs.FS, name string, opts ...Option) (*Map, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("reading map file: %w", err)
	}
	defer f.Close()

	opts = append([]Option{WithFS(fsys), WithBaseDir(path.Dir(name))}, opts...)
	return Parse(f, opts...)
}

// ParseTileset reads a standalone TSX tileset. The result has FirstGID 0.
func ParseTileset(r io.Reader, opts ...Option) (*Tileset, error) {
	p := newParser(opts)
	var x xmlTileset
	if err := p.decode(r, &x); err != nil {
		return nil, err
	}
	return p.buildTileset(&x, p.baseDir)
}

// ParseTilesetFile reads a TSX tileset from disk.
func ParseTilesetFile(name string, opts ...Option) (*Tileset, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("reading tileset file: %w", err)
	}
	defer f.Close()

	opts = append([]Option{WithBaseDir(filepath.Dir(name))}, opts...)
	return ParseTileset(f, opts...)
}

// ParseTilesetFS reads the TSX tileset name from fsys.
func ParseTilesetFS(fsys fs.FS, name string, opts ...Option) (*Tileset, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("reading tileset file: %w", err)
	}
	defer f.Close()

	opts = append([]Option{WithFS(fsys), WithBaseDir(path.Dir(name))}, opts...)
	return ParseTileset(f, opts...)
}

// decode unmarshals one XML document. Documents may carry a UTF-8 byte
// order mark or declare a legacy charset.
func (p *parser) decode(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}
	d := xml.NewDecoder(bytes.NewReader(encoding.TrimBOM(data)))
	d.CharsetReader = encoding.CharsetReader
	if err := d.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return nil
}

// resolve joins a reference with the directory of the referencing document.
func (p *parser) resolve(dir, ref string) string {
	if p.slash {
		if path.IsAbs(ref) {
			return strings.TrimPrefix(path.Clean(ref), "/")
		}
		return path.Join(dir, ref)
	}
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(dir, filepath.FromSlash(ref))
}

func (p *parser) dir(name string) string {
	if p.slash {
		return path.Dir(name)
	}
	return filepath.Dir(name)
}

// load opens name and decodes it into v.
func (p *parser) load(name string, v any) error {
	rc, err := p.open(name)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnresolvedReference, name, err)
	}
	defer rc.Close()

	if err := p.decode(rc, v); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// parseEnum maps an attribute value to its enum constant. Unknown values fall
// back to def so that documents from newer editor versions still load.
func parseEnum[T any](p *parser, elem, attr, value string, names map[string]T, def T) T {
	if value == "" {
		return def
	}
	if v, ok := names[value]; ok {
		return v
	}
	p.log.Warn("using default for unknown value",
		zap.Error(fmt.Errorf("%w: <%s %s=%q>", ErrUnknownEnumValue, elem, attr, value)),
		zap.String("default", fmt.Sprint(def)))
	return def
}

func missing(elem, attr string) error {
	return fmt.Errorf("%w: <%s> is missing required attribute %q", ErrMalformedDocument, elem, attr)
}

func required(v *int, elem, attr string) (int, error) {
	if v == nil {
		return 0, missing(elem, attr)
	}
	return *v, nil
}

// maxLayerCells bounds the cells allocated for one layer or chunk.
const maxLayerCells = 1 << 26

func nonNegative(v int, elem, attr string) error {
	if v < 0 {
		return fmt.Errorf("%w: <%s %s=\"%d\"> must not be negative", ErrMalformedDocument, elem, attr, v)
	}
	return nil
}

// cellCount validates a width and height pair and returns their product.
func cellCount(w, h int, elem string) (int, error) {
	if err := nonNegative(w, elem, "width"); err != nil {
		return 0, err
	}
	if err := nonNegative(h, elem, "height"); err != nil {
		return 0, err
	}
	if w > 0 && h > maxLayerCells/w {
		return 0, fmt.Errorf("%w: <%s> is %dx%d, more than %d cells", ErrMalformedDocument, elem, w, h, maxLayerCells)
	}
	return w * h, nil
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *int, def bool) bool {
	if v == nil {
		return def
	}
	return *v != 0
}

// colorAttr parses an optional color attribute.
func colorAttr(elem, attr, value string) (*math.Color, error) {
	if value == "" {
		return nil, nil
	}
	c, err := math.ParseColor(value)
	if err != nil {
		return nil, fmt.Errorf("%w: <%s %s=%q>: %v", ErrMalformedDocument, elem, attr, value, err)
	}
	return &c, nil
}

// parsePoints parses a polygon or polyline points attribute: "x1,y1 x2,y2".
func parsePoints(elem, s string) ([]math.Vec2, error) {
	fields := strings.Fields(s)
	pts := make([]math.Vec2, 0, len(fields))
	for _, f := range fields {
		xs, ys, ok := strings.Cut(f, ",")
		if !ok {
			return nil, fmt.Errorf("%w: <%s points>: bad point %q", ErrMalformedDocument, elem, f)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: <%s points>: bad point %q", ErrMalformedDocument, elem, f)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: <%s points>: bad point %q", ErrMalformedDocument, elem, f)
		}
		pts = append(pts, math.V2(x, y))
	}
	return pts, nil
}

func buildProperties(x *xmlProperties) Properties {
	if x == nil || len(x.Property) == 0 {
		return nil
	}
	out := make(Properties, 0, len(x.Property))
	for _, xp := range x.Property {
		p := Property{
			Name:         xp.Name,
			Type:         PropertyType(xp.Type),
			PropertyType: xp.PropertyType,
			Value:        stringOr(xp.Value, xp.Text),
		}
		if p.Type == "" {
			p.Type = PropertyString
		}
		if xp.Properties != nil {
			p.Properties = buildProperties(xp.Properties)
		}
		out = append(out, p)
	}
	return out
}

// buildImage converts an <image> element; dir is the declaring document's
// directory.
func (p *parser) buildImage(x *xmlImage, dir string) (*Image, error) {
	if x == nil {
		return nil, nil
	}
	trans, err := colorAttr("image", "trans", x.Trans)
	if err != nil {
		return nil, err
	}
	img := &Image{
		Source: x.Source,
		Format: x.Format,
		Trans:  trans,
		Width:  x.Width,
		Height: x.Height,
	}
	if x.Source != "" {
		img.Path = p.resolve(dir, x.Source)
	}
	return img, nil
}

// parseMap decodes and builds a map whose relative references resolve
// against dir.
func (p *parser) parseMap(r io.Reader, dir string) (*Map, error) {
	var x xmlMap
	if err := p.decode(r, &x); err != nil {
		return nil, err
	}

	m := &Map{
		Version:          x.Version,
		TiledVersion:     x.TiledVersion,
		Class:            x.Class,
		Orientation:      parseEnum(p, "map", "orientation", x.Orientation, orientationNames, OrientationOrthogonal),
		RenderOrder:      parseEnum(p, "map", "renderorder", x.RenderOrder, renderOrderNames, RenderRightDown),
		HexSideLength:    x.HexSideLength,
		StaggerAxis:      parseEnum(p, "map", "staggeraxis", x.StaggerAxis, staggerAxisNames, StaggerAxisY),
		StaggerIndex:     parseEnum(p, "map", "staggerindex", x.StaggerIndex, staggerIndexNames, StaggerOdd),
		ParallaxOriginX:  x.ParallaxOriginX,
		ParallaxOriginY:  x.ParallaxOriginY,
		NextLayerID:      x.NextLayerID,
		NextObjectID:     x.NextObjectID,
		Infinite:         x.Infinite != 0,
		CompressionLevel: intOr(x.CompressionLevel, DefaultCompressionLevel),
		Properties:       buildProperties(x.Properties),
	}

	var err error
	if m.Width, err = required(x.Width, "map", "width"); err != nil {
		return nil, err
	}
	if m.Height, err = required(x.Height, "map", "height"); err != nil {
		return nil, err
	}
	if m.TileWidth, err = required(x.TileWidth, "map", "tilewidth"); err != nil {
		return nil, err
	}
	if m.TileHeight, err = required(x.TileHeight, "map", "tileheight"); err != nil {
		return nil, err
	}
	for _, d := range []struct {
		attr string
		v    int
	}{{"width", m.Width}, {"height", m.Height}, {"tilewidth", m.TileWidth}, {"tileheight", m.TileHeight}} {
		if err := nonNegative(d.v, "map", d.attr); err != nil {
			return nil, err
		}
	}
	if m.BackgroundColor, err = colorAttr("map", "backgroundcolor", x.BackgroundColor); err != nil {
		return nil, err
	}

	b := &mapBuilder{p: p, m: m, dir: dir, sources: make(map[string]uint32)}
	for i := range x.Tilesets {
		ts, err := b.tileset(&x.Tilesets[i])
		if err != nil {
			return nil, err
		}
		m.Tilesets = append(m.Tilesets, ts)
	}

	if m.Layers, err = b.layers(x.Children); err != nil {
		return nil, err
	}
	if err := validate(m); err != nil {
		return nil, err
	}

	p.log.Debug("parsed map",
		zap.Stringer("orientation", m.Orientation),
		zap.Int("width", m.Width),
		zap.Int("height", m.Height),
		zap.Int("tilesets", len(m.Tilesets)),
		zap.Int("layers", len(m.Layers)))
	return m, nil
}

// mapBuilder holds the state needed while converting one map's layers.
type mapBuilder struct {
	p     *parser
	m     *Map
	dir   string
	order int

	// sources maps resolved external tileset paths to the first GID of their
	// first binding, used to remap template tile objects.
	sources map[string]uint32
}

// tileset binds an inline or external tileset to the map.
func (b *mapBuilder) tileset(x *xmlTileset) (*Tileset, error) {
	if x.FirstGID == 0 {
		return nil, missing("tileset", "firstgid")
	}
	if x.Source == "" {
		ts, err := b.p.buildTileset(x, b.dir)
		if err != nil {
			return nil, err
		}
		ts.FirstGID = x.FirstGID
		return ts, nil
	}

	name := b.p.resolve(b.dir, x.Source)
	shared, err := b.p.externalTileset(name)
	if err != nil {
		return nil, err
	}
	ts := *shared
	ts.FirstGID = x.FirstGID
	ts.Source = x.Source
	if _, ok := b.sources[name]; !ok {
		b.sources[name] = x.FirstGID
	}
	return &ts, nil
}

func (b *mapBuilder) header(x *xmlLayerAttrs, elem string) (LayerHeader, error) {
	h, err := layerHeader(x, elem)
	if err != nil {
		return LayerHeader{}, err
	}
	h.Order = b.order
	b.order++
	return h, nil
}

func layerHeader(x *xmlLayerAttrs, elem string) (LayerHeader, error) {
	tint, err := colorAttr(elem, "tintcolor", x.TintColor)
	if err != nil {
		return LayerHeader{}, err
	}
	return LayerHeader{
		ID:         x.ID,
		Name:       x.Name,
		Class:      x.Class,
		Visible:    boolOr(x.Visible, true),
		Locked:     x.Locked != 0,
		Opacity:    floatOr(x.Opacity, 1),
		OffsetX:    x.OffsetX,
		OffsetY:    x.OffsetY,
		ParallaxX:  floatOr(x.ParallaxX, 1),
		ParallaxY:  floatOr(x.ParallaxY, 1),
		TintColor:  tint,
		Properties: buildProperties(x.Properties),
	}, nil
}

// layers converts layer nodes in document order, descending into groups.
func (b *mapBuilder) layers(nodes []xmlLayerNode) ([]Layer, error) {
	var out []Layer
	for _, n := range nodes {
		var (
			l   Layer
			err error
		)
		switch {
		case n.Tile != nil:
			l, err = b.tileLayer(n.Tile)
		case n.Objects != nil:
			l, err = b.objectLayer(n.Objects)
		case n.Image != nil:
			l, err = b.imageLayer(n.Image)
		case n.Group != nil:
			l, err = b.groupLayer(n.Group)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (b *mapBuilder) tileLayer(x *xmlTileLayer) (*TileLayer, error) {
	h, err := b.header(&x.xmlLayerAttrs, "layer")
	if err != nil {
		return nil, err
	}
	l := &TileLayer{
		LayerHeader: h,
		Width:       intOr(x.Width, b.m.Width),
		Height:      intOr(x.Height, b.m.Height),
	}
	count, err := cellCount(l.Width, l.Height, "layer")
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", l.Name, err)
	}

	if x.Data == nil {
		if !b.m.Infinite {
			l.Cells = make([]uint32, count)
		}
		return l, nil
	}

	if l.Encoding, err = ParseEncoding(x.Data.Encoding); err != nil {
		return nil, fmt.Errorf("layer %q: %w", l.Name, err)
	}
	if l.Compression, err = ParseCompression(x.Data.Compression); err != nil {
		return nil, fmt.Errorf("layer %q: %w", l.Name, err)
	}

	if b.m.Infinite || len(x.Data.Chunks) > 0 {
		for _, xc := range x.Data.Chunks {
			n, err := cellCount(xc.Width, xc.Height, "chunk")
			if err != nil {
				return nil, fmt.Errorf("layer %q chunk (%d, %d): %w", l.Name, xc.X, xc.Y, err)
			}
			raw := RawData{Encoding: l.Encoding, Compression: l.Compression, Text: xc.Text, Tiles: tileGIDs(xc.Tiles)}
			cells, err := DecodeData(raw, n)
			if err != nil {
				return nil, fmt.Errorf("layer %q chunk (%d, %d): %w", l.Name, xc.X, xc.Y, err)
			}
			l.Chunks = append(l.Chunks, Chunk{X: xc.X, Y: xc.Y, Width: xc.Width, Height: xc.Height, Cells: cells})
		}
		return l, nil
	}

	raw := RawData{Encoding: l.Encoding, Compression: l.Compression, Text: x.Data.Text, Tiles: tileGIDs(x.Data.Tiles)}
	if l.Cells, err = DecodeData(raw, count); err != nil {
		return nil, fmt.Errorf("layer %q: %w", l.Name, err)
	}
	return l, nil
}

func tileGIDs(tiles []xmlDataTile) []uint32 {
	if len(tiles) == 0 {
		return nil
	}
	out := make([]uint32, len(tiles))
	for i, t := range tiles {
		out[i] = t.GID
	}
	return out
}

func (b *mapBuilder) objectLayer(x *xmlObjectGroup) (*ObjectGroup, error) {
	h, err := b.header(&x.xmlLayerAttrs, "objectgroup")
	if err != nil {
		return nil, err
	}
	return b.p.buildObjectGroup(x, h, b.dir, b)
}

func (b *mapBuilder) imageLayer(x *xmlImageLayer) (*ImageLayer, error) {
	h, err := b.header(&x.xmlLayerAttrs, "imagelayer")
	if err != nil {
		return nil, err
	}
	img, err := b.p.buildImage(x.Image, b.dir)
	if err != nil {
		return nil, err
	}
	return &ImageLayer{
		LayerHeader: h,
		Image:       img,
		RepeatX:     x.RepeatX != 0,
		RepeatY:     x.RepeatY != 0,
	}, nil
}

func (b *mapBuilder) groupLayer(x *xmlGroup) (*GroupLayer, error) {
	h, err := b.header(&x.xmlLayerAttrs, "group")
	if err != nil {
		return nil, err
	}
	children, err := b.layers(x.Children)
	if err != nil {
		return nil, fmt.Errorf("group %q: %w", h.Name, err)
	}
	return &GroupLayer{LayerHeader: h, Layers: children}, nil
}

// validate checks that every non-empty cell and tile object resolves to a
// tileset.
func validate(m *Map) error {
	var err error
	m.Walk(func(l Layer) bool {
		switch l := l.(type) {
		case *TileLayer:
			l.Each(func(x, y int, c Cell) {
				if err != nil {
					return
				}
				if _, _, e := m.TilesetFor(uint32(c)); e != nil {
					err = fmt.Errorf("layer %q cell (%d, %d): %w", l.Name, x, y, e)
				}
			})
		case *ObjectGroup:
			for _, o := range l.Objects {
				if o.Shape != ShapeTile {
					continue
				}
				if _, _, e := m.TilesetFor(o.GID); e != nil {
					err = fmt.Errorf("object %d in %q: %w", o.ID, l.Name, e)
					break
				}
			}
		}
		return err == nil
	})
	return err
}

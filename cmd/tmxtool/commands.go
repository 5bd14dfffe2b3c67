package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/tilemap/internal/assets"
	"github.com/Faultbox/tilemap/internal/config"
	"github.com/Faultbox/tilemap/internal/watch"
	"github.com/Faultbox/tilemap/pkg/anim"
	"github.com/Faultbox/tilemap/pkg/geom"
	"github.com/Faultbox/tilemap/pkg/grid"
	"github.com/Faultbox/tilemap/pkg/math"
	"github.com/Faultbox/tilemap/pkg/tmx"
)

// tool carries the state shared by every command.
type tool struct {
	cfg *config.Config
	log *zap.Logger
	out io.Writer
}

func (t *tool) stdout() io.Writer {
	if t.out == nil {
		return os.Stdout
	}
	return t.out
}

func (t *tool) printf(format string, args ...any) {
	fmt.Fprintf(t.stdout(), format, args...)
}

func (t *tool) loadMap(path string) (*tmx.Map, error) {
	if len(t.cfg.Assets.Roots) == 0 {
		return tmx.ParseFile(path, tmx.WithLogger(t.log))
	}
	mgr, name, err := t.openAssets(path)
	if err != nil {
		return nil, err
	}
	defer mgr.Close()
	return tmx.ParseFS(mgr, name, tmx.WithLogger(t.log))
}

func (t *tool) loadTileset(path string) (*tmx.Tileset, error) {
	if len(t.cfg.Assets.Roots) == 0 {
		return tmx.ParseTilesetFile(path, tmx.WithLogger(t.log))
	}
	mgr, name, err := t.openAssets(path)
	if err != nil {
		return nil, err
	}
	defer mgr.Close()
	return tmx.ParseTilesetFS(mgr, name, tmx.WithLogger(t.log))
}

// openAssets layers the configured roots over the directory holding path.
// References must then stay inside the roots.
func (t *tool) openAssets(path string) (*assets.Manager, string, error) {
	mgr := assets.NewManager()
	if err := mgr.AddRoot(filepath.Dir(path)); err != nil {
		return nil, "", err
	}
	for _, root := range t.cfg.Assets.Roots {
		if err := mgr.AddRoot(root); err != nil {
			mgr.Close()
			return nil, "", err
		}
	}
	return mgr, filepath.Base(path), nil
}

func (t *tool) float(v float64) string {
	return strconv.FormatFloat(v, 'f', t.cfg.Grid.Precision, 64)
}

func (t *tool) vec(v math.Vec2) string {
	return "(" + t.float(v.X) + ", " + t.float(v.Y) + ")"
}

func (t *tool) cmdInfo(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: tmxtool info <map.tmx|set.tsx>")
	}

	if strings.EqualFold(filepath.Ext(args[0]), ".tsx") {
		ts, err := t.loadTileset(args[0])
		if err != nil {
			return err
		}
		t.printTileset(ts)
		return nil
	}

	m, err := t.loadMap(args[0])
	if err != nil {
		return err
	}

	pw, ph := m.PixelSize()
	t.printf("Map:         %s\n", args[0])
	t.printf("Version:     %s (Tiled %s)\n", m.Version, m.TiledVersion)
	t.printf("Orientation: %s, render order %s\n", m.Orientation, m.RenderOrder)
	t.printf("Size:        %dx%d tiles of %dx%d px (%dx%d px)\n", m.Width, m.Height, m.TileWidth, m.TileHeight, pw, ph)
	if m.Orientation == tmx.OrientationStaggered || m.Orientation == tmx.OrientationHexagonal {
		t.printf("Stagger:     axis %s, index %s, side %d\n", m.StaggerAxis, m.StaggerIndex, m.HexSideLength)
	}
	if m.Infinite {
		t.printf("Infinite:    yes\n")
	}
	if m.BackgroundColor != nil {
		t.printf("Background:  %s\n", m.BackgroundColor.Hex())
	}
	t.printf("Projection:  %s\n", grid.New(m))
	t.printProperties("", m.Properties)

	t.printf("\nTilesets:\n")
	for _, ts := range m.Tilesets {
		src := "inline"
		if ts.Source != "" {
			src = ts.Source
		}
		t.printf("  %-16s gids %d-%d  %d tiles  %s\n", ts.Name, ts.FirstGID, ts.LastGID(), ts.TileCount, src)
	}

	t.printf("\nLayers:\n")
	t.printLayers(m.Layers, "  ")
	return nil
}

func (t *tool) printTileset(ts *tmx.Tileset) {
	t.printf("Tileset:  %s\n", ts.Name)
	t.printf("Tiles:    %d of %dx%d px, %d columns\n", ts.TileCount, ts.TileWidth, ts.TileHeight, ts.Columns)
	t.printf("Spacing:  %d, margin %d\n", ts.Spacing, ts.Margin)
	if ts.Image != nil {
		t.printf("Image:    %s (%dx%d)\n", ts.Image.Source, ts.Image.Width, ts.Image.Height)
	}
	t.printProperties("", ts.Properties)
	for _, tile := range ts.Animated() {
		t.printf("  tile %d: %d frames, %d ms\n", tile.ID, len(tile.Animation.Frames), tile.Animation.TotalDuration())
	}
}

func (t *tool) printLayers(layers []tmx.Layer, indent string) {
	for _, l := range layers {
		h := l.Header()
		vis := ""
		if !h.Visible {
			vis = " (hidden)"
		}
		switch l := l.(type) {
		case *tmx.TileLayer:
			n := 0
			l.Each(func(int, int, tmx.Cell) { n++ })
			b := l.Bounds()
			t.printf("%s#%d tile   %-16s %dx%d at (%d, %d), %d cells set, %s%s\n",
				indent, h.Order, h.Name, b.W, b.H, b.X, b.Y, n, dataFormat(l.Encoding, l.Compression), vis)
		case *tmx.ObjectGroup:
			t.printf("%s#%d object %-16s %d objects, draworder %s%s\n", indent, h.Order, h.Name, len(l.Objects), l.DrawOrder, vis)
		case *tmx.ImageLayer:
			src := ""
			if l.Image != nil {
				src = l.Image.Source
			}
			t.printf("%s#%d image  %-16s %s%s\n", indent, h.Order, h.Name, src, vis)
		case *tmx.GroupLayer:
			t.printf("%s#%d group  %-16s%s\n", indent, h.Order, h.Name, vis)
			t.printLayers(l.Layers, indent+"  ")
		}
	}
}

func (t *tool) printProperties(indent string, props tmx.Properties) {
	for _, p := range props {
		t.printf("%sProperty: %s (%s) = %s\n", indent, p.Name, p.Type, p.Value)
	}
}

func dataFormat(e tmx.Encoding, c tmx.Compression) string {
	if c == tmx.CompressionNone {
		return e.String()
	}
	return e.String() + "+" + c.String()
}

// cellString formats a raw cell as its GID followed by flag letters.
func cellString(c tmx.Cell) string {
	if c.Empty() {
		return "."
	}
	var b strings.Builder
	b.WriteString(strconv.FormatUint(uint64(c.GID()), 10))
	if c.FlipH() {
		b.WriteByte('h')
	}
	if c.FlipV() {
		b.WriteByte('v')
	}
	if c.FlipD() {
		b.WriteByte('d')
	}
	if c.RotateHex120() {
		b.WriteByte('r')
	}
	return b.String()
}

func (t *tool) cmdCells(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: tmxtool cells <map.tmx> <layer>")
	}
	m, err := t.loadMap(args[0])
	if err != nil {
		return err
	}
	l, ok := m.TileLayer(args[1])
	if !ok {
		return fmt.Errorf("no tile layer named %q", args[1])
	}

	b := l.Bounds()
	width := 1
	l.Each(func(_, _ int, c tmx.Cell) { width = max(width, len(cellString(c))) })
	for y := b.Y; y < b.Y+b.H; y++ {
		row := make([]string, 0, b.W)
		for x := b.X; x < b.X+b.W; x++ {
			row = append(row, fmt.Sprintf("%*s", width, cellString(l.Cell(x, y))))
		}
		t.printf("%s\n", strings.Join(row, " "))
	}
	return nil
}

func (t *tool) cmdEncode(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: tmxtool encode <map.tmx> [layer]")
	}
	opts, err := t.cfg.EncodeOptions()
	if err != nil {
		return err
	}
	m, err := t.loadMap(args[0])
	if err != nil {
		return err
	}

	var firstErr error
	m.Walk(func(l tmx.Layer) bool {
		tl, ok := l.(*tmx.TileLayer)
		if !ok || (len(args) > 1 && tl.Name != args[1]) {
			return true
		}
		if err := t.encodeLayer(tl, opts); err != nil {
			firstErr = err
			return false
		}
		return true
	})
	return firstErr
}

func (t *tool) encodeLayer(l *tmx.TileLayer, opts tmx.EncodeOptions) error {
	t.printf("<layer id=\"%d\" name=%q width=\"%d\" height=\"%d\">\n", l.ID, l.Name, l.Width, l.Height)
	t.printf(" %s\n", dataOpenTag(opts))
	if len(l.Chunks) == 0 {
		raw, err := l.Encode(opts)
		if err != nil {
			return fmt.Errorf("layer %q: %w", l.Name, err)
		}
		if err := verify(raw, l.Cells); err != nil {
			return fmt.Errorf("layer %q: %w", l.Name, err)
		}
		t.printData(raw, "  ")
	} else {
		for _, ch := range l.Chunks {
			o := opts
			o.Width = ch.Width
			raw, err := tmx.EncodeData(ch.Cells, o)
			if err != nil {
				return fmt.Errorf("layer %q chunk (%d, %d): %w", l.Name, ch.X, ch.Y, err)
			}
			if err := verify(raw, ch.Cells); err != nil {
				return fmt.Errorf("layer %q chunk (%d, %d): %w", l.Name, ch.X, ch.Y, err)
			}
			t.printf("  <chunk x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\">\n", ch.X, ch.Y, ch.Width, ch.Height)
			t.printData(raw, "   ")
			t.printf("  </chunk>\n")
		}
	}
	t.printf(" </data>\n</layer>\n")
	t.log.Debug("encoded layer", zap.String("layer", l.Name), zap.Stringer("encoding", opts.Encoding))
	return nil
}

func dataOpenTag(opts tmx.EncodeOptions) string {
	var b strings.Builder
	b.WriteString("<data")
	if opts.Encoding != tmx.EncodingXML {
		fmt.Fprintf(&b, " encoding=%q", opts.Encoding.String())
	}
	if opts.Compression != tmx.CompressionNone {
		fmt.Fprintf(&b, " compression=%q", opts.Compression.String())
	}
	b.WriteString(">")
	return b.String()
}

func (t *tool) printData(raw tmx.RawData, indent string) {
	if raw.Encoding == tmx.EncodingXML {
		for _, gid := range raw.Tiles {
			if gid == 0 {
				t.printf("%s<tile/>\n", indent)
				continue
			}
			t.printf("%s<tile gid=\"%d\"/>\n", indent, gid)
		}
		return
	}
	t.printf("%s%s\n", indent, strings.TrimSpace(raw.Text))
}

// verify decodes raw again and checks it reproduces cells.
func verify(raw tmx.RawData, cells []uint32) error {
	got, err := tmx.DecodeData(raw, len(cells))
	if err != nil {
		return fmt.Errorf("re-decoding: %w", err)
	}
	for i := range cells {
		if got[i] != cells[i] {
			return fmt.Errorf("%w: cell %d re-decoded as %#x, expected %#x", tmx.ErrLayerDataFormat, i, got[i], cells[i])
		}
	}
	return nil
}

func (t *tool) cmdWorld(args []string) error {
	if len(args) < 3 {
		return errors.New("usage: tmxtool world <map.tmx> <x> <y>")
	}
	x, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("tile x: %w", err)
	}
	y, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("tile y: %w", err)
	}
	m, err := t.loadMap(args[0])
	if err != nil {
		return err
	}

	p := grid.New(m)
	t.printf("Tile:    (%d, %d)\n", x, y)
	t.printf("World:   %s\n", t.vec(p.TileToWorld(x, y)))
	t.printf("Center:  %s\n", t.vec(p.TileCenter(x, y)))
	t.printf("Pixel:   %s\n", t.vec(p.TileToPixel(x, y)))
	outline := make([]string, 0, 6)
	for _, v := range p.TileOutline(x, y) {
		outline = append(outline, t.vec(v))
	}
	t.printf("Outline: %s\n", strings.Join(outline, " "))
	return nil
}

func (t *tool) cmdTile(args []string) error {
	if len(args) < 3 {
		return errors.New("usage: tmxtool tile <map.tmx> <px> <py>")
	}
	px, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("pixel x: %w", err)
	}
	py, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("pixel y: %w", err)
	}
	m, err := t.loadMap(args[0])
	if err != nil {
		return err
	}

	p := grid.New(m)
	x, y := p.PixelToTile(math.V2(px, py))
	t.printf("Tile: (%d, %d)\n", x, y)

	m.Walk(func(l tmx.Layer) bool {
		tl, ok := l.(*tmx.TileLayer)
		if !ok {
			return true
		}
		c := tl.Cell(x, y)
		if c.Empty() {
			return true
		}
		line := fmt.Sprintf("  %-16s %s", tl.Name, cellString(c))
		if ts, id, err := m.TilesetFor(uint32(c)); err == nil {
			line += fmt.Sprintf("  %s #%d", ts.Name, id)
		}
		t.printf("%s\n", line)
		return true
	})
	return nil
}

func (t *tool) cmdTriangulate(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: tmxtool triangulate <map.tmx> [layer]")
	}
	m, err := t.loadMap(args[0])
	if err != nil {
		return err
	}
	only := ""
	if len(args) > 1 {
		only = args[1]
	}

	failed, found := 0, false
	for _, g := range m.ObjectGroups() {
		if only != "" && g.Name != only {
			continue
		}
		found = true
		t.printf("%s:\n", g.Name)
		failed += t.printMeshes(g.Sorted(), "  ")
	}
	if only != "" && !found {
		return fmt.Errorf("object layer %q not found", only)
	}
	for _, ts := range m.Tilesets {
		if only != "" {
			break
		}
		for _, tile := range ts.Tiles {
			if tile.ObjectGroup == nil || len(tile.ObjectGroup.Objects) == 0 {
				continue
			}
			t.printf("%s tile %d collision:\n", ts.Name, tile.ID)
			failed += t.printMeshes(tile.ObjectGroup.Objects, "  ")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d objects could not be triangulated", failed)
	}
	return nil
}

func (t *tool) printMeshes(objects []*tmx.Object, indent string) int {
	failed := 0
	for _, obj := range objects {
		mesh, err := geom.ObjectMesh(obj)
		if err != nil {
			t.log.Warn("triangulation failed", zap.Int("object", obj.ID), zap.Error(err))
			t.printf("%s%d %-10s %s\n", indent, obj.ID, obj.Shape, err)
			failed++
			continue
		}
		per := 2
		if mesh.Mode == geom.Fill {
			per = 3
		}
		t.printf("%s%d %-10s %-8s %d vertices, %d primitives, area %s\n",
			indent, obj.ID, obj.Shape, mesh.Mode, len(mesh.Vertices), len(mesh.Indices)/per, t.float(mesh.Area()))
	}
	return failed
}

func (t *tool) cmdAnim(args []string) error {
	fs := flag.NewFlagSet("anim", flag.ContinueOnError)
	total := fs.Int("ms", 1000, "Simulated time in milliseconds")
	step := fs.Int("step", 100, "Tick length in milliseconds")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: tmxtool anim <map.tmx> [-ms N] [-step N]")
	}
	if *step <= 0 {
		return fmt.Errorf("step must be positive, got %d", *step)
	}

	m, err := t.loadMap(fs.Arg(0))
	if err != nil {
		return err
	}

	for _, ts := range m.Tilesets {
		clocks := anim.Clocks(ts)
		if clocks.Len() == 0 {
			continue
		}
		t.printf("%s: %d animated tiles\n", ts.Name, clocks.Len())
		for now := *step; now <= *total; now += *step {
			changed := anim.AdvanceAll(clocks, float64(*step))
			sort.Slice(changed, func(i, j int) bool { return changed[i] < changed[j] })
			for _, gid := range changed {
				clk, _ := clocks.Get(gid)
				t.printf("  %6d ms  gid %d -> frame %d (gid %d)\n", now, gid, clk.Frame(), clk.GID(ts))
			}
		}
	}
	return nil
}

func (t *tool) cmdWatch(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: tmxtool watch <map.tmx>...")
	}

	deps := newDependencies()
	for _, path := range args {
		deps.reload(t, path)
	}

	w, err := watch.New(watch.Options{
		Debounce:   t.cfg.Watch.Debounce,
		Extensions: t.cfg.Watch.Extensions,
		Logger:     t.log.Named("watch"),
	}, deps.dirs()...)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t.log.Info("watching maps", zap.Strings("maps", args))
	for {
		select {
		case changed, ok := <-w.Events:
			if !ok {
				return nil
			}
			for _, path := range deps.affected(changed) {
				deps.reload(t, path)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			t.log.Error("watch error", zap.Error(err))
		case <-ctx.Done():
			return nil
		}
	}
}

// cmdConfig prints the effective configuration, or writes it to a file.
func (t *tool) cmdConfig(args []string) error {
	if len(args) > 0 {
		if err := t.cfg.SaveTo(args[0]); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		t.printf("Wrote %s\n", args[0])
		return nil
	}

	data, err := yaml.Marshal(t.cfg)
	if err != nil {
		return err
	}
	t.printf("%s", data)
	return nil
}

package main

import (
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/tilemap/pkg/tmx"
)

// dependencies tracks which documents each watched map was built from, so a
// change to a shared tileset or template reloads every map using it.
type dependencies struct {
	refs map[string][]string // map path -> documents it reads, map included
}

func newDependencies() *dependencies {
	return &dependencies{refs: make(map[string][]string)}
}

// reload parses the map at path and records its references. A failed parse
// keeps the previous references so the map is retried on the next change.
func (d *dependencies) reload(t *tool, path string) {
	path = absPath(path)
	m, err := t.loadMap(path)
	if err != nil {
		t.log.Error("reload failed", zap.String("map", path), zap.Error(err))
		if _, ok := d.refs[path]; !ok {
			d.refs[path] = []string{path}
		}
		return
	}

	d.refs[path] = references(path, m)
	t.log.Info("map loaded",
		zap.String("map", path),
		zap.Int("layers", len(m.Layers)),
		zap.Int("tilesets", len(m.Tilesets)),
		zap.Int("references", len(d.refs[path])-1))
}

// references lists the absolute paths of the documents m was built from.
func references(path string, m *tmx.Map) []string {
	dir := filepath.Dir(path)
	seen := map[string]bool{path: true}
	out := []string{path}
	add := func(ref string) {
		if ref == "" {
			return
		}
		p := ref
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, filepath.FromSlash(ref))
		}
		p = absPath(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, ts := range m.Tilesets {
		add(ts.Source)
	}
	for _, g := range m.ObjectGroups() {
		for _, o := range g.Objects {
			add(o.Template)
		}
	}
	return out
}

// affected returns the maps that read changed, sorted.
func (d *dependencies) affected(changed string) []string {
	changed = absPath(changed)
	var out []string
	for path, refs := range d.refs {
		for _, r := range refs {
			if r == changed {
				out = append(out, path)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// dirs returns every directory holding a tracked document, sorted.
func (d *dependencies) dirs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, refs := range d.refs {
		for _, r := range refs {
			dir := filepath.Dir(r)
			if !seen[dir] {
				seen[dir] = true
				out = append(out, dir)
			}
		}
	}
	sort.Strings(out)
	return out
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

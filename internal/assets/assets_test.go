package assets

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/klauspost/compress/zip"

	"github.com/Faultbox/tilemap/pkg/tmx"
)

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pack.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create zip: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to finish zip: %v", err)
	}
	return path
}

func TestManager_Priority(t *testing.T) {
	m := NewManager()
	defer m.Close()

	m.AddFS("base", fstest.MapFS{
		"a.txt": {Data: []byte("base a")},
		"b.txt": {Data: []byte("base b")},
	})
	m.AddFS("patch", fstest.MapFS{
		"a.txt": {Data: []byte("patch a")},
	})

	data, err := m.ReadFile("a.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "patch a" {
		t.Errorf("expected the later root to win, got %q", data)
	}

	data, err = m.ReadFile("b.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "base b" {
		t.Errorf("expected fallback to the base root, got %q", data)
	}
}

func TestManager_NotFound(t *testing.T) {
	m := NewManager()
	m.AddFS("base", fstest.MapFS{})

	_, err := m.ReadFile("missing.tsx")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}

	_, err = m.ReadFile("../escape.tsx")
	if !errors.Is(err, fs.ErrInvalid) {
		t.Errorf("expected fs.ErrInvalid for an escaping path, got %v", err)
	}
}

func TestManager_Cache(t *testing.T) {
	mfs := fstest.MapFS{"a.txt": {Data: []byte("one")}}
	m := NewManager()
	m.AddFS("base", mfs)

	for i := 0; i < 3; i++ {
		if _, err := m.ReadFile("a.txt"); err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
	}
	hits, misses := m.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("expected 2 hits and 1 miss, got %d and %d", hits, misses)
	}

	mfs["a.txt"] = &fstest.MapFile{Data: []byte("two")}
	data, _ := m.ReadFile("a.txt")
	if string(data) != "one" {
		t.Errorf("expected cached content, got %q", data)
	}

	m.Invalidate("a.txt")
	data, _ = m.ReadFile("a.txt")
	if string(data) != "two" {
		t.Errorf("expected fresh content after Invalidate, got %q", data)
	}
}

func TestManager_Archive(t *testing.T) {
	pack := writeZip(t, map[string]string{
		"tiles/terrain.tsx": "from zip",
	})

	m := NewManager()
	defer m.Close()
	if err := m.AddRoot(pack); err != nil {
		t.Fatalf("AddRoot failed: %v", err)
	}

	data, err := m.ReadFile("tiles/terrain.tsx")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "from zip" {
		t.Errorf("expected zip content, got %q", data)
	}

	if _, err := m.ReadFile("tiles/other.tsx"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestManager_AddRootDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "box.tx"), []byte("template"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	m := NewManager()
	defer m.Close()
	if err := m.AddRoot(dir); err != nil {
		t.Fatalf("AddRoot failed: %v", err)
	}
	if err := m.AddRoot(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for a missing root")
	}

	f, err := m.Open("box.tx")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Name() != "box.tx" || info.Size() != 8 || info.IsDir() {
		t.Errorf("unexpected file info: %s %d %v", info.Name(), info.Size(), info.IsDir())
	}
}

func TestManager_ParseMapAcrossRoots(t *testing.T) {
	const tileset = `<tileset name="walls" tilewidth="16" tileheight="16" tilecount="8" columns="4">
 <image source="walls.png" width="64" height="32"/>
</tileset>`
	const level = `<map version="1.10" orientation="orthogonal" width="2" height="1" tilewidth="16" tileheight="16">
 <tileset firstgid="1" source="sets/walls.tsx"/>
 <layer id="1" name="Walls" width="2" height="1">
  <data encoding="csv">1,8</data>
 </layer>
</map>`

	m := NewManager()
	defer m.Close()
	m.AddFS("maps", fstest.MapFS{"level.tmx": {Data: []byte(level)}})
	if err := m.AddRoot(writeZip(t, map[string]string{"sets/walls.tsx": tileset})); err != nil {
		t.Fatalf("AddRoot failed: %v", err)
	}

	tm, err := tmx.ParseFS(m, "level.tmx")
	if err != nil {
		t.Fatalf("ParseFS failed: %v", err)
	}
	if len(tm.Tilesets) != 1 || tm.Tilesets[0].Name != "walls" {
		t.Fatalf("expected the walls tileset from the pack, got %+v", tm.Tilesets)
	}
	if tm.Tilesets[0].TileCount != 8 {
		t.Errorf("expected 8 tiles, got %d", tm.Tilesets[0].TileCount)
	}
}

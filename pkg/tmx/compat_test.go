package tmx

import (
	"fmt"
	"strings"
	"testing"

	tiled "github.com/lafriks/go-tiled"
)

// Cross-checks decoded cells against github.com/lafriks/go-tiled.

func compatMap(t *testing.T, data string) string {
	t.Helper()
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="4" height="3" tilewidth="16" tileheight="16" infinite="0" nextlayerid="2" nextobjectid="1">
 <tileset firstgid="1" name="a" tilewidth="16" tileheight="16" tilecount="4" columns="2">
  <image source="a.png" width="32" height="32"/>
 </tileset>
 <tileset firstgid="5" name="b" tilewidth="16" tileheight="16" tilecount="6" columns="3">
  <image source="b.png" width="48" height="32"/>
 </tileset>
 <layer id="1" name="L" width="4" height="3">
  %s
 </layer>
</map>`, data)
}

func compatCells() []uint32 {
	return []uint32{
		1, 0, 5, 10,
		0x80000002, 0x40000006, 0x20000003, 0,
		0xE0000004, 7, 0, 0xA0000009,
	}
}

func TestCompat_GoTiled(t *testing.T) {
	cells := compatCells()

	csv, err := EncodeData(cells, EncodeOptions{Encoding: EncodingCSV, Width: 4})
	if err != nil {
		t.Fatalf("EncodeData failed: %v", err)
	}
	zlib, err := EncodeData(cells, EncodeOptions{Encoding: EncodingBase64, Compression: CompressionZlib, Level: DefaultCompressionLevel})
	if err != nil {
		t.Fatalf("EncodeData failed: %v", err)
	}
	gzip, err := EncodeData(cells, EncodeOptions{Encoding: EncodingBase64, Compression: CompressionGzip, Level: DefaultCompressionLevel})
	if err != nil {
		t.Fatalf("EncodeData failed: %v", err)
	}

	docs := map[string]string{
		"csv":  `<data encoding="csv">` + csv.Text + `</data>`,
		"zlib": `<data encoding="base64" compression="zlib">` + zlib.Text + `</data>`,
		"gzip": `<data encoding="base64" compression="gzip">` + gzip.Text + `</data>`,
	}

	for name, data := range docs {
		t.Run(name, func(t *testing.T) {
			src := compatMap(t, data)

			ours := mustParse(t, src)
			theirs, err := tiled.LoadReader("", strings.NewReader(src))
			if err != nil {
				t.Fatalf("go-tiled LoadReader failed: %v", err)
			}

			l, _ := ours.TileLayer("L")
			ref := theirs.Layers[0].Tiles
			if len(ref) != len(l.Cells) {
				t.Fatalf("expected %d cells, go-tiled has %d", len(l.Cells), len(ref))
			}

			for i, raw := range l.Cells {
				c := Cell(raw)
				rt := ref[i]
				if rt.IsNil() {
					if !c.Empty() {
						t.Errorf("cell %d: go-tiled empty, ours %#x", i, raw)
					}
					continue
				}
				if got, want := c.GID(), rt.Tileset.FirstGID+rt.ID; got != want {
					t.Errorf("cell %d: gid %d, go-tiled %d", i, got, want)
				}
				if c.FlipH() != rt.HorizontalFlip || c.FlipV() != rt.VerticalFlip || c.FlipD() != rt.DiagonalFlip {
					t.Errorf("cell %d: flags %#x differ from go-tiled", i, c.Flags())
				}

				ts, id, err := ours.TilesetFor(raw)
				if err != nil {
					t.Fatalf("TilesetFor failed: %v", err)
				}
				if ts.Name != rt.Tileset.Name || id != rt.ID {
					t.Errorf("cell %d: tileset %s/%d, go-tiled %s/%d", i, ts.Name, id, rt.Tileset.Name, rt.ID)
				}
			}
		})
	}
}

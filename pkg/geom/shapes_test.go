package geom

import (
	"errors"
	"strings"
	"testing"

	"github.com/Faultbox/tilemap/pkg/math"
	"github.com/Faultbox/tilemap/pkg/tmx"
)

func equalIndices(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuild_Fill(t *testing.T) {
	mesh, err := Build(RectPoints(4, 2), Fill)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(mesh.Vertices) != 4 || len(mesh.Indices) != 6 {
		t.Fatalf("expected 4 vertices and 6 indices, got %d and %d", len(mesh.Vertices), len(mesh.Indices))
	}
	if a := mesh.Area(); a != 8 {
		t.Errorf("expected area 8, got %g", a)
	}
}

func TestBuild_Outline(t *testing.T) {
	pts := DiamondPoints(2, 2)

	closed, err := Build(pts, Outline)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if want := []uint32{0, 1, 1, 2, 2, 3, 3, 0}; !equalIndices(closed.Indices, want) {
		t.Errorf("expected %v, got %v", want, closed.Indices)
	}

	open, err := Build(pts, Open)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if want := []uint32{0, 1, 1, 2, 2, 3}; !equalIndices(open.Indices, want) {
		t.Errorf("expected %v, got %v", want, open.Indices)
	}
	if open.Area() != 0 {
		t.Error("line meshes have no area")
	}

	seg, err := Build(pts[:2], Outline)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if want := []uint32{0, 1}; !equalIndices(seg.Indices, want) {
		t.Errorf("expected a single segment, got %v", seg.Indices)
	}
}

func TestBuild_Errors(t *testing.T) {
	if _, err := Build([]math.Vec2{{X: 1, Y: 1}}, Outline); err == nil {
		t.Error("expected error for a single point outline")
	}
	if _, err := Build(RectPoints(0, 5), Fill); !errors.Is(err, ErrNotTriangulable) {
		t.Errorf("expected ErrNotTriangulable, got %v", err)
	}
	if _, err := Build(RectPoints(1, 1), Mode(9)); err == nil {
		t.Error("expected error for an unknown mode")
	}
}

func TestBuild_CopiesPoints(t *testing.T) {
	pts := RectPoints(1, 1)
	mesh, err := Build(pts, Fill)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	pts[0] = math.V2(99, 99)
	if mesh.Vertices[0] == pts[0] {
		t.Error("mesh must not alias the input slice")
	}
}

func TestShapePoints(t *testing.T) {
	tests := []struct {
		name string
		pts  []math.Vec2
		area float64
	}{
		{"rect", RectPoints(4, 3), 12},
		{"diamond", DiamondPoints(64, 32), 1024},
		{"hex y", HexagonPoints(32, 32, 16, false), 32 * 32 * 0.75},
		{"hex x", HexagonPoints(32, 32, 16, true), 32 * 32 * 0.75},
		{"marker", MarkerPoints(2), 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if a := SignedArea(tt.pts); a != tt.area {
				t.Errorf("expected area %g, got %g", tt.area, a)
			}
		})
	}
}

func TestEllipsePoints(t *testing.T) {
	pts := EllipsePoints(20, 10, 0)
	if len(pts) != DefaultEllipseSegments {
		t.Fatalf("expected %d points, got %d", DefaultEllipseSegments, len(pts))
	}
	for _, p := range pts {
		if p.X < -1e-9 || p.X > 20+1e-9 || p.Y < -1e-9 || p.Y > 10+1e-9 {
			t.Errorf("point %v outside the bounding box", p)
		}
	}
	if !pts[0].ApproxEqual(math.V2(20, 5), 1e-9) {
		t.Errorf("expected first point on the right edge, got %v", pts[0])
	}
	if _, err := Build(pts, Fill); err != nil {
		t.Errorf("ellipse should triangulate: %v", err)
	}
}

func TestObjectMesh_Rotation(t *testing.T) {
	obj := &tmx.Object{ID: 1, X: 5, Y: 5, Width: 10, Height: 20, Rotation: 90}
	mesh, err := ObjectMesh(obj)
	if err != nil {
		t.Fatalf("ObjectMesh failed: %v", err)
	}
	want := []math.Vec2{{X: 5, Y: 5}, {X: 5, Y: 15}, {X: -15, Y: 15}, {X: -15, Y: 5}}
	for i, w := range want {
		if !mesh.Vertices[i].ApproxEqual(w, 1e-9) {
			t.Errorf("vertex %d: expected %v, got %v", i, w, mesh.Vertices[i])
		}
	}
	if a := mesh.Area(); a < 200-1e-9 || a > 200+1e-9 {
		t.Errorf("rotation must preserve area, got %g", a)
	}
}

func TestObjectMesh_Shapes(t *testing.T) {
	tests := []struct {
		obj  tmx.Object
		mode Mode
	}{
		{tmx.Object{Shape: tmx.ShapeRectangle, Width: 3, Height: 3}, Fill},
		{tmx.Object{Shape: tmx.ShapeEllipse, Width: 8, Height: 4}, Fill},
		{tmx.Object{Shape: tmx.ShapePoint}, Fill},
		{tmx.Object{Shape: tmx.ShapePolygon, Points: []math.Vec2{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 2, Y: 3}}}, Fill},
		{tmx.Object{Shape: tmx.ShapePolyline, Points: []math.Vec2{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}}}, Open},
		{tmx.Object{Shape: tmx.ShapeTile, Width: 32, Height: 32, X: 0, Y: 32}, Fill},
	}
	for _, tt := range tests {
		t.Run(tt.obj.Shape.String(), func(t *testing.T) {
			mesh, err := ObjectMesh(&tt.obj)
			if err != nil {
				t.Fatalf("ObjectMesh failed: %v", err)
			}
			if mesh.Mode != tt.mode {
				t.Errorf("expected mode %s, got %s", tt.mode, mesh.Mode)
			}
		})
	}
}

func TestObjectMesh_TileAnchoredBottomLeft(t *testing.T) {
	obj := &tmx.Object{Shape: tmx.ShapeTile, X: 10, Y: 50, Width: 16, Height: 16}
	mesh, err := ObjectMesh(obj)
	if err != nil {
		t.Fatalf("ObjectMesh failed: %v", err)
	}
	if mesh.Vertices[0] != math.V2(10, 34) || mesh.Vertices[2] != math.V2(26, 50) {
		t.Errorf("unexpected tile quad %v", mesh.Vertices)
	}
}

func TestObjectMesh_Degenerate(t *testing.T) {
	obj := &tmx.Object{ID: 3, Shape: tmx.ShapePolygon, Points: []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}}
	_, err := ObjectMesh(obj)
	if !errors.Is(err, ErrNotTriangulable) {
		t.Fatalf("expected ErrNotTriangulable, got %v", err)
	}
	if !strings.Contains(err.Error(), "object 3") {
		t.Errorf("expected object id in %q", err)
	}
}

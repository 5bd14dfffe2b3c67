// Package geom builds fillable and outline geometry for map objects.
package geom

import (
	"errors"
	"fmt"
	stdmath "math"

	"github.com/Faultbox/tilemap/pkg/math"
)

// ErrNotTriangulable is returned for degenerate or self-intersecting polygons.
var ErrNotTriangulable = errors.New("polygon is not triangulable")

// snipEpsilon is the minimum doubled area for a candidate ear.
const snipEpsilon = 1e-10

// SignedArea returns the signed area of the polygon. It is positive when the
// vertices wind counter-clockwise in a Y-up frame.
func SignedArea(points []math.Vec2) float64 {
	n := len(points)
	var a float64
	for p, q := n-1, 0; q < n; p, q = q, q+1 {
		a += points[p].Cross(points[q])
	}
	return a * 0.5
}

// Triangulate splits a simple polygon into len(points)-2 triangles by ear
// clipping. Triangles index into points and all wind the same way as a
// counter-clockwise polygon.
func Triangulate(points []math.Vec2) ([][3]int, error) {
	n := len(points)
	if n < 3 {
		return nil, fmt.Errorf("%w: %d vertices", ErrNotTriangulable, n)
	}

	area := SignedArea(points)
	if stdmath.Abs(area) < snipEpsilon || stdmath.IsNaN(area) {
		return nil, fmt.Errorf("%w: zero area", ErrNotTriangulable)
	}

	// Active vertex list, ordered counter-clockwise.
	v := make([]int, n)
	for i := range v {
		if area > 0 {
			v[i] = i
		} else {
			v[i] = n - 1 - i
		}
	}

	triangles := make([][3]int, 0, n-2)
	nv := n
	attempts := 2 * nv
	for cur := nv - 1; nv > 2; {
		if attempts <= 0 {
			return nil, fmt.Errorf("%w: no ear found after %d attempts", ErrNotTriangulable, 2*nv)
		}
		attempts--

		a := cur
		if a >= nv {
			a = 0
		}
		cur = a + 1
		if cur >= nv {
			cur = 0
		}
		c := cur + 1
		if c >= nv {
			c = 0
		}

		if !isEar(points, v, a, cur, c) {
			continue
		}

		triangles = append(triangles, [3]int{v[a], v[cur], v[c]})
		v = append(v[:cur], v[cur+1:]...)
		nv--
		attempts = 2 * nv
	}

	return triangles, nil
}

// isEar reports whether the triangle (u, v, w) of the active list is convex
// and contains no other active vertex.
func isEar(points []math.Vec2, active []int, u, v, w int) bool {
	a, b, c := points[active[u]], points[active[v]], points[active[w]]
	if b.Sub(a).Cross(c.Sub(a)) < snipEpsilon {
		return false
	}
	for p := range active {
		if p == u || p == v || p == w {
			continue
		}
		if insideTriangle(a, b, c, points[active[p]]) {
			return false
		}
	}
	return true
}

// insideTriangle reports whether p lies inside or on the edge of the
// counter-clockwise triangle abc.
func insideTriangle(a, b, c, p math.Vec2) bool {
	abp := c.Sub(b).Cross(p.Sub(b))
	bcp := a.Sub(c).Cross(p.Sub(c))
	cab := b.Sub(a).Cross(p.Sub(a))
	return abp >= 0 && bcp >= 0 && cab >= 0
}

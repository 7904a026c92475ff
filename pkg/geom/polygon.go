package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// SignedArea computes the shoelace-formula area of a closed polyline.
// The sign encodes winding: positive for counter-clockwise, negative
// for clockwise. The result is invariant under rotation of the vertex
// list, which is what makes it usable as the hole classifier.
func SignedArea(points []v2.Vec) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	sum := 0.0
	j := n - 1
	for i := 0; i < n; i++ {
		sum += points[j].X*points[i].Y - points[i].X*points[j].Y
		j = i
	}
	return sum / 2
}

// VertexMean returns the arithmetic mean of the vertices. It is not
// the area centroid, but it is cheap, deterministic, and sufficient
// for containment tests and nearest-region ordering.
func VertexMean(points []v2.Vec) v2.Vec {
	var sum v2.Vec
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.DivScalar(float64(len(points)))
}

// ContainsPoint reports whether p lies inside the closed polygon using
// an even-odd ray cast: a horizontal ray from p toward +X past the
// polygon's max X, counting edge crossings. Points exactly on an edge
// are not guaranteed either way.
func ContainsPoint(points []v2.Vec, p v2.Vec) bool {
	inside := false
	n := len(points)
	j := n - 1
	for i := 0; i < n; i++ {
		a, b := points[i], points[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if p.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Bounds returns the axis-aligned bounding box of the points.
func Bounds(points []v2.Vec) (min, max v2.Vec) {
	min = points[0]
	max = points[0]
	for _, p := range points[1:] {
		min = min.Min(p)
		max = max.Max(p)
	}
	return min, max
}

// PerimeterLength returns the length of the closed polyline, including
// the implicit closing edge.
func PerimeterLength(points []v2.Vec) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}
	total := 0.0
	j := n - 1
	for i := 0; i < n; i++ {
		total += points[i].Sub(points[j]).Length()
		j = i
	}
	return total
}

// NearestVertex returns the index of the vertex closest to p,
// by linear scan.
func NearestVertex(points []v2.Vec, p v2.Vec) int {
	best := 0
	bestDist := math.Inf(1)
	for i, v := range points {
		d := v.Sub(p).Length2()
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// RotateStart returns a copy of the vertex list rotated so that index
// i becomes the first vertex. Winding order is preserved, so the
// shoelace sign is unchanged.
func RotateStart(points []v2.Vec, i int) []v2.Vec {
	n := len(points)
	out := make([]v2.Vec, 0, n)
	out = append(out, points[i:]...)
	out = append(out, points[:i]...)
	return out
}

// Simplify removes consecutive duplicate points closer than tol, and
// a trailing point that duplicates the first (an explicitly closed
// input). The survivors keep their original order.
func Simplify(points []v2.Vec, tol float64) []v2.Vec {
	if len(points) == 0 {
		return nil
	}
	out := make([]v2.Vec, 0, len(points))
	out = append(out, points[0])
	for _, p := range points[1:] {
		if p.Sub(out[len(out)-1]).Length() >= tol {
			out = append(out, p)
		}
	}
	// Drop the closing duplicate; the closing edge is implicit.
	for len(out) > 1 && out[len(out)-1].Sub(out[0]).Length() < tol {
		out = out[:len(out)-1]
	}
	return out
}

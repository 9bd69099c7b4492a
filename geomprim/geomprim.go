// Package geomprim implements the ray/triangle, triangle/box, AABB and
// tetrahedron primitives the fusion and iso-extraction paths depend on.
package geomprim

import (
	"math"

	"github.com/simonfuhrmann/surfrecon/linalg"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max linalg.Vec3
}

// NewAABB returns the box spanning min..max (not required to be ordered;
// the constructor canonicalizes per-axis).
func NewAABB(a, b linalg.Vec3) AABB {
	return AABB{
		Min: linalg.Vec3{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: linalg.Vec3{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}

// Union returns the smallest AABB containing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: linalg.Vec3{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y), Z: math.Min(a.Min.Z, b.Min.Z)},
		Max: linalg.Vec3{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y), Z: math.Max(a.Max.Z, b.Max.Z)},
	}
}

// Dilate grows the box by d on every side.
func (a AABB) Dilate(d float64) AABB {
	return AABB{
		Min: linalg.Vec3{X: a.Min.X - d, Y: a.Min.Y - d, Z: a.Min.Z - d},
		Max: linalg.Vec3{X: a.Max.X + d, Y: a.Max.Y + d, Z: a.Max.Z + d},
	}
}

// Contains reports whether p lies within the box (inclusive).
func (a AABB) Contains(p linalg.Vec3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

// Overlaps reports whether two AABBs intersect.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// FromPoints returns the AABB of a point set. Panics on an empty slice.
func FromPoints(pts []linalg.Vec3) AABB {
	box := AABB{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		box = box.Union(AABB{Min: p, Max: p})
	}
	return box
}

// epsilon is the default numerical tolerance used for ray/triangle and
// degeneracy tests in this package.
const epsilon = 1e-10

// RayTriangleIntersect implements Möller–Trumbore ray/triangle
// intersection. hit reports whether a valid intersection exists; t is the
// ray parameter (p = origin + t*dir); u,v are the barycentric coordinates
// of vertices v1,v2 (v0's weight is 1-u-v). A miss is signalled solely via
// hit==false — per §9 of the spec, t==0 is a legitimate "hit at the
// origin" value and must never double as the miss sentinel.
func RayTriangleIntersect(origin, dir, v0, v1, v2 linalg.Vec3) (hit bool, t, u, v float64) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	pvec := dir.Cross(edge2)
	det := edge1.Dot(pvec)
	if math.Abs(det) < epsilon {
		return false, 0, 0, 0
	}
	invDet := 1 / det
	tvec := origin.Sub(v0)
	u = tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return false, 0, 0, 0
	}
	qvec := tvec.Cross(edge1)
	v = dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return false, 0, 0, 0
	}
	t = edge2.Dot(qvec) * invDet
	return true, t, u, v
}

// TriangleBoxOverlap tests a triangle against an AABB using the
// separating-axis theorem (9 edge-cross axes, 3 box-face axes, 1 triangle
// normal axis).
func TriangleBoxOverlap(box AABB, v0, v1, v2 linalg.Vec3) bool {
	center := box.Min.Add(box.Max).Scale(0.5)
	half := box.Max.Sub(box.Min).Scale(0.5)

	t0 := v0.Sub(center)
	t1 := v1.Sub(center)
	t2 := v2.Sub(center)

	// 3 box-face axes.
	if !axisOverlap(linalg.Vec3{X: 1}, half, t0, t1, t2) {
		return false
	}
	if !axisOverlap(linalg.Vec3{Y: 1}, half, t0, t1, t2) {
		return false
	}
	if !axisOverlap(linalg.Vec3{Z: 1}, half, t0, t1, t2) {
		return false
	}

	// Triangle normal axis.
	e0 := t1.Sub(t0)
	e1 := t2.Sub(t1)
	normal := e0.Cross(e1)
	if !axisOverlap(normal, half, t0, t1, t2) {
		return false
	}

	// 9 edge-cross axes.
	e2 := t0.Sub(t2)
	axes := []linalg.Vec3{
		{X: 1}, {Y: 1}, {Z: 1},
	}
	_ = axes
	edges := [3]linalg.Vec3{e0, e1, e2}
	units := [3]linalg.Vec3{{X: 1}, {Y: 1}, {Z: 1}}
	for _, e := range edges {
		for _, u := range units {
			axis := u.Cross(e)
			if axis.Dot(axis) < 1e-20 {
				continue
			}
			if !axisOverlap(axis, half, t0, t1, t2) {
				return false
			}
		}
	}
	return true
}

// axisOverlap projects the box half-extents and the (already
// center-relative) triangle vertices onto axis and reports whether their
// ranges overlap.
func axisOverlap(axis, half linalg.Vec3, t0, t1, t2 linalg.Vec3) bool {
	p0 := t0.Dot(axis)
	p1 := t1.Dot(axis)
	p2 := t2.Dot(axis)
	minP, maxP := p0, p0
	if p1 < minP {
		minP = p1
	}
	if p1 > maxP {
		maxP = p1
	}
	if p2 < minP {
		minP = p2
	}
	if p2 > maxP {
		maxP = p2
	}
	r := half.X*math.Abs(axis.X) + half.Y*math.Abs(axis.Y) + half.Z*math.Abs(axis.Z)
	return !(minP > r || maxP < -r)
}

// AABBOverlap reports whether two AABBs intersect (alias of AABB.Overlaps
// for call-site symmetry with TriangleBoxOverlap).
func AABBOverlap(a, b AABB) bool { return a.Overlaps(b) }

// TetrahedronVolume returns the signed volume of the tetrahedron (a,b,c,d).
func TetrahedronVolume(a, b, c, d linalg.Vec3) float64 {
	return d.Sub(a).Dot(b.Sub(a).Cross(c.Sub(a))) / 6
}

// TetrahedronBarycentric returns the barycentric coordinates of p with
// respect to tetrahedron (a,b,c,d); the four weights sum to 1.
func TetrahedronBarycentric(a, b, c, d, p linalg.Vec3) (w0, w1, w2, w3 float64) {
	vTotal := TetrahedronVolume(a, b, c, d)
	if math.Abs(vTotal) < 1e-20 {
		return 0, 0, 0, 0
	}
	w0 = TetrahedronVolume(p, b, c, d) / vTotal
	w1 = TetrahedronVolume(a, p, c, d) / vTotal
	w2 = TetrahedronVolume(a, b, p, d) / vTotal
	w3 = 1 - w0 - w1 - w2
	return
}

// TriangleBarycentric returns the barycentric weights of p projected onto
// triangle (a,b,c), assuming p already lies in the triangle's plane.
func TriangleBarycentric(a, b, c, p linalg.Vec3) (u, v, w float64) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)
	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if math.Abs(denom) < 1e-20 {
		return 0, 0, 0
	}
	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	u = 1 - v - w
	return
}

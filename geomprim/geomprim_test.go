package geomprim

import (
	"testing"

	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/stretchr/testify/assert"
)

func TestRayTriangleIntersectHit(t *testing.T) {
	v0 := linalg.Vec3{X: 0, Y: 0, Z: 0}
	v1 := linalg.Vec3{X: 1, Y: 0, Z: 0}
	v2 := linalg.Vec3{X: 0, Y: 1, Z: 0}
	origin := linalg.Vec3{X: 0.2, Y: 0.2, Z: 1}
	dir := linalg.Vec3{X: 0, Y: 0, Z: -1}
	hit, tval, u, v := RayTriangleIntersect(origin, dir, v0, v1, v2)
	assert.True(t, hit)
	assert.InDelta(t, 1.0, tval, 1e-9)
	assert.True(t, u >= 0 && v >= 0 && u+v <= 1)
}

func TestRayTriangleIntersectMiss(t *testing.T) {
	v0 := linalg.Vec3{X: 0, Y: 0, Z: 0}
	v1 := linalg.Vec3{X: 1, Y: 0, Z: 0}
	v2 := linalg.Vec3{X: 0, Y: 1, Z: 0}
	origin := linalg.Vec3{X: 5, Y: 5, Z: 1}
	dir := linalg.Vec3{X: 0, Y: 0, Z: -1}
	hit, _, _, _ := RayTriangleIntersect(origin, dir, v0, v1, v2)
	assert.False(t, hit)
}

func TestTriangleBoxOverlap(t *testing.T) {
	box := NewAABB(linalg.Vec3{X: -1, Y: -1, Z: -1}, linalg.Vec3{X: 1, Y: 1, Z: 1})
	assert.True(t, TriangleBoxOverlap(box, linalg.Vec3{X: 0}, linalg.Vec3{X: 2}, linalg.Vec3{Y: 2}))
	assert.False(t, TriangleBoxOverlap(box, linalg.Vec3{X: 10}, linalg.Vec3{X: 12}, linalg.Vec3{Y: 12}))
}

func TestAABBOverlap(t *testing.T) {
	a := NewAABB(linalg.Vec3{}, linalg.Vec3{X: 1, Y: 1, Z: 1})
	b := NewAABB(linalg.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, linalg.Vec3{X: 2, Y: 2, Z: 2})
	c := NewAABB(linalg.Vec3{X: 5, Y: 5, Z: 5}, linalg.Vec3{X: 6, Y: 6, Z: 6})
	assert.True(t, AABBOverlap(a, b))
	assert.False(t, AABBOverlap(a, c))
}

func TestTetrahedronVolumeAndBarycentric(t *testing.T) {
	a := linalg.Vec3{}
	b := linalg.Vec3{X: 1}
	c := linalg.Vec3{Y: 1}
	d := linalg.Vec3{Z: 1}
	vol := TetrahedronVolume(a, b, c, d)
	assert.InDelta(t, 1.0/6.0, vol, 1e-12)

	centroid := linalg.Vec3{X: 0.25, Y: 0.25, Z: 0.25}
	w0, w1, w2, w3 := TetrahedronBarycentric(a, b, c, d, centroid)
	assert.InDelta(t, 0.25, w0, 1e-9)
	assert.InDelta(t, 0.25, w1, 1e-9)
	assert.InDelta(t, 0.25, w2, 1e-9)
	assert.InDelta(t, 0.25, w3, 1e-9)
}

package posegeom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonfuhrmann/surfrecon/linalg"
)

func rotZ(theta float64) [9]float64 {
	c, s := math.Cos(theta), math.Sin(theta)
	return [9]float64{c, -s, 0, s, c, 0, 0, 0, 1}
}

func projectCalibrated(r [9]float64, t [3]float64, p linalg.Vec3) [2]float64 {
	x := r[0]*p.X + r[1]*p.Y + r[2]*p.Z + t[0]
	y := r[3]*p.X + r[4]*p.Y + r[5]*p.Z + t[1]
	z := r[6]*p.X + r[7]*p.Y + r[8]*p.Z + t[2]
	return [2]float64{x / z, y / z}
}

func TestEightPointFundamentalSatisfiesEpipolarConstraint(t *testing.T) {
	r1, t1 := [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}, [3]float64{0, 0, 0}
	r2, t2 := rotZ(math.Pi/4), [3]float64{0, 0, -2}

	worldPoints := []linalg.Vec3{
		{X: 0.2, Y: 0.1, Z: 5}, {X: -0.3, Y: 0.2, Z: 6}, {X: 0.1, Y: -0.2, Z: 4},
		{X: -0.1, Y: -0.3, Z: 7}, {X: 0.4, Y: 0.3, Z: 5.5}, {X: -0.4, Y: 0.1, Z: 6.5},
		{X: 0.3, Y: -0.1, Z: 4.5}, {X: -0.2, Y: 0.4, Z: 5},
	}

	var corr []Correspondence2D2D
	for _, p := range worldPoints {
		corr = append(corr, Correspondence2D2D{
			P1: projectCalibrated(r1, t1, p),
			P2: projectCalibrated(r2, t2, p),
		})
	}

	f, err := EightPointFundamental(corr)
	require.NoError(t, err)

	for _, c := range corr {
		x1 := []float64{c.P1[0], c.P1[1], 1}
		x2 := []float64{c.P2[0], c.P2[1], 1}
		var fx1 [3]float64
		for i := 0; i < 3; i++ {
			fx1[i] = f.At(i, 0)*x1[0] + f.At(i, 1)*x1[1] + f.At(i, 2)*x1[2]
		}
		val := x2[0]*fx1[0] + x2[1]*fx1[1] + x2[2]*fx1[2]
		assert.Less(t, math.Abs(val), 1e-8)
	}
}

func TestDLTHomographyRecoversPlaneMapping(t *testing.T) {
	// A pure scale+shift planar map is an exact homography.
	h := []Correspondence2D2D{
		{P1: [2]float64{0, 0}, P2: [2]float64{1, 1}},
		{P1: [2]float64{1, 0}, P2: [2]float64{3, 1}},
		{P1: [2]float64{0, 1}, P2: [2]float64{1, 3}},
		{P1: [2]float64{1, 1}, P2: [2]float64{3, 3}},
		{P1: [2]float64{2, 2}, P2: [2]float64{5, 5}},
	}
	hm, err := DLTHomography(h)
	require.NoError(t, err)

	for _, c := range h {
		x, y, w := hm.At(0, 0)*c.P1[0]+hm.At(0, 1)*c.P1[1]+hm.At(0, 2),
			hm.At(1, 0)*c.P1[0]+hm.At(1, 1)*c.P1[1]+hm.At(1, 2),
			hm.At(2, 0)*c.P1[0]+hm.At(2, 1)*c.P1[1]+hm.At(2, 2)
		assert.InDelta(t, c.P2[0], x/w, 1e-6)
		assert.InDelta(t, c.P2[1], y/w, 1e-6)
	}
}

func TestP3PKneipRecoversPose(t *testing.T) {
	r := rotZ(math.Pi / 6)
	trans := [3]float64{0.1, -0.2, 0.3}

	world := []linalg.Vec3{
		{X: 0, Y: 0, Z: 5}, {X: 1, Y: 0.2, Z: 6}, {X: -0.5, Y: 1, Z: 4.5},
	}
	bearings := make([]linalg.Vec3, 3)
	for i, p := range world {
		xy := projectCalibrated(r, trans, p)
		bearings[i] = linalg.Vec3{X: xy[0], Y: xy[1], Z: 1}.Normalize()
	}

	poses := P3PKneip(world[0], world[1], world[2], bearings[0], bearings[1], bearings[2])
	require.Len(t, poses, 4)

	var best float64 = math.MaxFloat64
	for _, p := range poses {
		var diff float64
		for i := 0; i < 9; i++ {
			d := p.R[i] - r[i]
			diff += d * d
		}
		for i := 0; i < 3; i++ {
			d := p.T[i] - trans[i]
			diff += d * d
		}
		if diff < best {
			best = diff
		}
	}
	assert.Less(t, best, 1e-8)
}

func TestTriangulatePointRecoversDepth(t *testing.T) {
	pose1 := Pose{R: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}, T: [3]float64{0, 0, 0}}
	pose2 := Pose{R: rotZ(0), T: [3]float64{1, 0, 0}}

	truePoint := linalg.Vec3{X: 0.3, Y: -0.2, Z: 6}
	p1 := projectCalibrated(pose1.R, pose1.T, truePoint)
	p2 := projectCalibrated(pose2.R, pose2.T, truePoint)

	got, err := TriangulatePoint([][2]float64{p1, p2}, []Pose{pose1, pose2})
	require.NoError(t, err)
	assert.InDelta(t, truePoint.X, got.X, 1e-6)
	assert.InDelta(t, truePoint.Y, got.Y, 1e-6)
	assert.InDelta(t, truePoint.Z, got.Z, 1e-6)
}

// Package fssrifn implements the FSSR scale-dependent implicit function:
// a Gaussian-derivative basis oriented along each sample's normal, a
// compactly-supported weighting function, and the weighted accumulator
// evaluated at a query position from a neighborhood of samples.
package fssrifn

import (
	"math"

	"github.com/simonfuhrmann/surfrecon/linalg"
)

// Sample is one scaled, oriented point gathered from the input point set.
// It lives in this package (rather than fssroctree, which stores and
// indexes it) so fssroctree can depend on fssrifn without a cycle.
type Sample struct {
	Pos        linalg.Vec3
	Normal     linalg.Vec3 // unit
	Scale      float64     // > 0
	Color      *linalg.Vec3
	Confidence float64
}

// Result is the accumulated implicit-function value at a query position.
type Result struct {
	Value      float64 // F(p); iso-surface is F=0
	Confidence float64 // sum of weights
	Color      linalg.Vec3
	Scale      float64 // weighted-average contributing sample scale
}

// rotationFromNormal builds the rotation that carries normal onto the
// reference axis (1,0,0), matching the original's axis/angle construction
// with its two degenerate cases handled exactly (parallel: identity;
// anti-parallel: a half turn about the z axis).
func rotationFromNormal(normal linalg.Vec3) *linalg.Matrix {
	ref := linalg.Vec3{X: 1, Y: 0, Z: 0}
	if closeTo(normal, ref, 0.001) {
		return linalg.Identity(3)
	}
	mirror := linalg.Vec3{X: -1, Y: 0, Z: 0}
	if closeTo(normal, mirror, 0.001) {
		m := linalg.NewMatrix(3, 3)
		m.Set(0, 0, -1)
		m.Set(1, 1, -1)
		m.Set(2, 2, 1)
		return m
	}

	axis := normal.Cross(ref).Normalize()
	cosAlpha := clamp(ref.Dot(normal), -1, 1)
	angle := math.Acos(cosAlpha)
	return rotationFromAxisAngle(axis, angle)
}

func closeTo(a, b linalg.Vec3, eps float64) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rotationFromAxisAngle builds the Rodrigues rotation matrix for a unit
// axis and angle, the same closed form used by basolver's pose updates.
func rotationFromAxisAngle(axis linalg.Vec3, angle float64) *linalg.Matrix {
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	x, y, z := axis.X, axis.Y, axis.Z
	m := linalg.NewMatrix(3, 3)
	m.Set(0, 0, t*x*x+c)
	m.Set(0, 1, t*x*y-s*z)
	m.Set(0, 2, t*x*z+s*y)
	m.Set(1, 0, t*x*y+s*z)
	m.Set(1, 1, t*y*y+c)
	m.Set(1, 2, t*y*z-s*x)
	m.Set(2, 0, t*x*z-s*y)
	m.Set(2, 1, t*y*z+s*x)
	m.Set(2, 2, t*z*z+c)
	return m
}

func transform(rot *linalg.Matrix, v linalg.Vec3) linalg.Vec3 {
	return linalg.Vec3{
		X: rot.At(0, 0)*v.X + rot.At(0, 1)*v.Y + rot.At(0, 2)*v.Z,
		Y: rot.At(1, 0)*v.X + rot.At(1, 1)*v.Y + rot.At(1, 2)*v.Z,
		Z: rot.At(2, 0)*v.X + rot.At(2, 1)*v.Y + rot.At(2, 2)*v.Z,
	}
}

// basis evaluates the Gaussian-derivative basis function at a position
// already translated and rotated into the sample's local frame: positive
// in front of the sample along its normal, negative behind, zero at the
// sample plane.
func basis(sigma float64, p linalg.Vec3) float64 {
	g := math.Exp(-p.Dot(p) / (2 * sigma * sigma))
	return p.X * g / (sigma * sigma * sigma * sigma * 2 * math.Pi)
}

// weightX is the asymmetric front/back falloff in [-3,3].
func weightX(x float64) float64 {
	if x <= -3 || x >= 3 {
		return 0
	}
	if x > 0 {
		const a, b, d = 2.0 / 27.0, -1.0 / 3.0, 1.0
		return a*x*x*x + b*x*x + d
	}
	const a, b, c = 1.0 / 9.0, 2.0 / 3.0, 1.0
	return a*x*x + b*x + c
}

// weightYZ is the radially symmetric quadratic-cubic bump over y^2+z^2<=9.
func weightYZ(y, z float64) float64 {
	r2 := y*y + z*z
	if r2 > 9 {
		return 0
	}
	const a, b, d = 2.0 / 27.0, -1.0 / 3.0, 1.0
	return a*math.Pow(r2, 1.5) + b*r2 + d
}

// weight evaluates the separable weighting function at a local-frame
// position scaled by the sample's scale.
func weight(sigma float64, p linalg.Vec3) float64 {
	return weightX(p.X/sigma) * weightYZ(p.Y/sigma, p.Z/sigma)
}

// Evaluate implements fssr::evaluate: transforms pos into each sample's
// local coordinate system, accumulates basis*weight and weight, and
// returns the normalized value/confidence/color/scale at pos.
func Evaluate(pos linalg.Vec3, samples []Sample) Result {
	var sumWF, sumW float64
	var sumColor linalg.Vec3
	var haveColor bool
	var sumScaleW, sumScale float64

	for _, s := range samples {
		rot := rotationFromNormal(s.Normal)
		tpos := transform(rot, pos.Sub(s.Pos))

		w := weight(s.Scale, tpos)
		if w == 0 {
			continue
		}
		f := basis(s.Scale, tpos)

		sumWF += w * f
		sumW += w
		sumScaleW += w * s.Scale
		sumScale += w

		if s.Color != nil {
			sumColor = sumColor.Add(s.Color.Scale(w))
			haveColor = true
		}
	}

	if sumW == 0 {
		return Result{}
	}

	res := Result{
		Value:      sumWF / sumW,
		Confidence: sumW,
		Scale:      sumScaleW / sumScale,
	}
	if haveColor {
		res.Color = sumColor.Scale(1 / sumW)
	}
	return res
}

// Package linalg implements the dense linear-algebra kernel set the
// reconstruction core depends on: fixed 3-vectors, a row-major dynamic
// matrix type, closed-form determinant/inverse up to 4x4, Givens QR,
// one-sided Jacobi SVD, pseudo-inverse, and Cholesky.
package linalg

import "math"

// Vec3 is a 3-component vector, row-major like everything else here.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// AddScalar returns v with s added to every component.
func (v Vec3) AddScalar(s float64) Vec3 { return Vec3{v.X + s, v.Y + s, v.Z + s} }

// SubScalar returns v with s subtracted from every component.
func (v Vec3) SubScalar(s float64) Vec3 { return Vec3{v.X - s, v.Y - s, v.Z - s} }

// Dot returns the scalar product v . w.
func (v Vec3) Dot(w Vec3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Cross returns v x w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// Length returns the Euclidean norm of v.
func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Component returns the i'th axis (0=X,1=Y,2=Z).
func (v Vec3) Component(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// MinComponent returns the smallest axis value.
func (v Vec3) MinComponent() float64 { return math.Min(v.X, math.Min(v.Y, v.Z)) }

// MaxComponent returns the largest axis value.
func (v Vec3) MaxComponent() float64 { return math.Max(v.X, math.Max(v.Y, v.Z)) }

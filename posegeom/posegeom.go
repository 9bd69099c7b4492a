// Package posegeom implements the direct closed-form pose/geometry
// estimators §4.8 names: the 8-point fundamental matrix, DLT homography,
// Kneip's P3P, and linear multi-view triangulation. RANSAC and the
// incremental structure-from-motion front end that would normally drive
// these are out of scope.
package posegeom

import (
	"github.com/simonfuhrmann/surfrecon/internal/errs"
	"github.com/simonfuhrmann/surfrecon/linalg"
)

// Correspondence2D2D is one (p1 in view 1) <-> (p2 in view 2) match.
type Correspondence2D2D struct {
	P1, P2 [2]float64
}

// nullVector returns the eigenvector of AᵀA with the smallest eigenvalue,
// which is A's right null vector — the standard substitute for a
// full-rank SVD's last V column when A itself is rectangular with more
// columns than rows (the economy SVD in this module's linalg package only
// ever returns min(rows,cols) singular vectors, so the small square AᵀA
// is solved directly instead).
func nullVector(a *linalg.Matrix) []float64 {
	ata := a.Transpose().Mul(a)
	_, _, v := linalg.SVD(ata)
	n := v.Rows
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = v.At(i, n-1)
	}
	return out
}

// EightPointFundamental builds the fundamental matrix from exactly 8
// correspondences via the bilinear constraint x₂ᵀFx₁=0, then enforces
// rank 2 by zeroing the smallest singular value of the raw solution.
func EightPointFundamental(points []Correspondence2D2D) (*linalg.Matrix, error) {
	const op = "posegeom.EightPointFundamental"
	if len(points) != 8 {
		return nil, errs.Invalid(op, "exactly 8 correspondences are required")
	}

	a := linalg.NewMatrix(8, 9)
	for i, c := range points {
		x1, y1 := c.P1[0], c.P1[1]
		x2, y2 := c.P2[0], c.P2[1]
		a.Set(i, 0, x2*x1)
		a.Set(i, 1, x2*y1)
		a.Set(i, 2, x2)
		a.Set(i, 3, y2*x1)
		a.Set(i, 4, y2*y1)
		a.Set(i, 5, y2)
		a.Set(i, 6, x1)
		a.Set(i, 7, y1)
		a.Set(i, 8, 1)
	}

	f := nullVector(a)
	raw := linalg.NewMatrixFromRowMajor(3, 3, f)
	return enforceRank2(raw), nil
}

// enforceRank2 zeros the smallest singular value of a 3x3 matrix and
// reconstructs it, the standard fundamental/essential-matrix projection
// onto the rank-2 manifold.
func enforceRank2(m *linalg.Matrix) *linalg.Matrix {
	u, s, v := linalg.SVD(m)
	s.Set(2, 2, 0)
	return u.Mul(s).Mul(v.Transpose())
}

// DLTHomography solves for the planar homography H (p2 ~ H*p1) from N>=4
// correspondences via the direct linear transform, normalising so H[2][2]=1.
func DLTHomography(points []Correspondence2D2D) (*linalg.Matrix, error) {
	const op = "posegeom.DLTHomography"
	if len(points) < 4 {
		return nil, errs.Invalid(op, "at least 4 correspondences are required")
	}

	a := linalg.NewMatrix(2*len(points), 9)
	for i, c := range points {
		x1, y1 := c.P1[0], c.P1[1]
		x2, y2 := c.P2[0], c.P2[1]
		r := 2 * i
		a.Set(r, 0, -x1)
		a.Set(r, 1, -y1)
		a.Set(r, 2, -1)
		a.Set(r, 6, x2*x1)
		a.Set(r, 7, x2*y1)
		a.Set(r, 8, x2)

		a.Set(r+1, 3, -x1)
		a.Set(r+1, 4, -y1)
		a.Set(r+1, 5, -1)
		a.Set(r+1, 6, y2*x1)
		a.Set(r+1, 7, y2*y1)
		a.Set(r+1, 8, y2)
	}

	h := nullVector(a)
	hm := linalg.NewMatrixFromRowMajor(3, 3, h)
	scale := hm.At(2, 2)
	if scale == 0 {
		return nil, errs.New(errs.Numerical, op, errNonInvertibleScale)
	}
	return hm.Scale(1 / scale), nil
}

var errNonInvertibleScale = errs.Invalid("posegeom.DLTHomography", "H[2][2] is zero").Err

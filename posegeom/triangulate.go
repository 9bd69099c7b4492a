package posegeom

import (
	"github.com/simonfuhrmann/surfrecon/internal/errs"
	"github.com/simonfuhrmann/surfrecon/linalg"
)

// PMatrix returns the 3x4 projection matrix [R|t] for pose (HZ 12.2),
// assuming a calibrated (identity-intrinsics) camera.
func (p Pose) PMatrix() [12]float64 {
	return [12]float64{
		p.R[0], p.R[1], p.R[2], p.T[0],
		p.R[3], p.R[4], p.R[5], p.T[1],
		p.R[6], p.R[7], p.R[8], p.T[2],
	}
}

// TriangulatePoint recovers the 3D point observed at pos[i] by poses[i]
// (len(pos)==len(poses)>=2) via the linear DLT triangulation of HZ 12.2:
// stack two rows per view into a 2N x 4 matrix and take its right null
// vector, dehomogenising by the last coordinate.
func TriangulatePoint(pos [][2]float64, poses []Pose) (linalg.Vec3, error) {
	const op = "posegeom.TriangulatePoint"
	if len(pos) != len(poses) || len(pos) < 2 {
		return linalg.Vec3{}, errs.Invalid(op, "at least 2 matching positions/poses are required")
	}

	a := linalg.NewMatrix(2*len(pos), 4)
	for i, pm := range poses {
		p := pm.PMatrix()
		x, y := pos[i][0], pos[i][1]
		for j := 0; j < 4; j++ {
			a.Set(2*i, j, x*p[2*4+j]-p[0*4+j])
			a.Set(2*i+1, j, y*p[2*4+j]-p[1*4+j])
		}
	}

	v := nullVector(a)
	if v[3] == 0 {
		return linalg.Vec3{}, errs.New(errs.Numerical, op, errDegenerateTriangulation)
	}
	return linalg.Vec3{X: v[0] / v[3], Y: v[1] / v[3], Z: v[2] / v[3]}, nil
}

var errDegenerateTriangulation = errs.Invalid("posegeom.TriangulatePoint", "homogeneous coordinate is zero").Err

package basolver

import "github.com/simonfuhrmann/surfrecon/bamatrix"

// computeJacobian builds the camera-column and point-column sparse
// Jacobians of the stacked residual vector with respect to the non-constant
// parameters named by idx. Each observation contributes at most one 2x9
// camera block and one 2x3 point block, computed analytically by
// analyticJacobianEntries rather than by differencing project(), matching
// bundle_adjustment.cc's analytic_jacobian/analytic_jacobian_entries. The
// column layout is preserved exactly: a camera block is omitted entirely
// when Constant, a point block omitted entirely when Constant, so the
// Schur-complement code downstream never has to special-case a zero column.
func computeJacobian(cameras []Camera, points []Point3D, obs []Observation, opts Options, idx paramIndexMap) (camJac, ptJac *bamatrix.CSR, err error) {
	rows := 2 * len(obs)
	ncp := numCamParams(opts)

	var camTriplets, ptTriplets []bamatrix.Triplet
	for i, o := range obs {
		cam := cameras[o.CameraID]
		pt := points[o.PointID]

		camX, camY, ptX, ptY := analyticJacobianEntries(cam, pt.Pos, opts)

		if opts.Mode&BACameras != 0 && !cam.Constant {
			base, ok := idx.camOffset[o.CameraID]
			if ok {
				for p := 0; p < ncp; p++ {
					camTriplets = append(camTriplets,
						bamatrix.Triplet{Row: 2 * i, Col: base + p, Value: camX[p]},
						bamatrix.Triplet{Row: 2*i + 1, Col: base + p, Value: camY[p]})
				}
			}
		}
		if opts.Mode&BAPoints != 0 && !pt.Constant {
			base, ok := idx.pointOffset[o.PointID]
			if ok {
				for p := 0; p < 3; p++ {
					ptTriplets = append(ptTriplets,
						bamatrix.Triplet{Row: 2 * i, Col: base - idx.numCamCols + p, Value: ptX[p]},
						bamatrix.Triplet{Row: 2*i + 1, Col: base - idx.numCamCols + p, Value: ptY[p]})
				}
			}
		}
	}

	camJac, err = bamatrix.FromTriplets(rows, idx.numCamCols, camTriplets)
	if err != nil {
		return nil, nil, err
	}
	ptJac, err = bamatrix.FromTriplets(rows, idx.numPtCols, ptTriplets)
	if err != nil {
		return nil, nil, err
	}
	return camJac, ptJac, nil
}

// analyticJacobianEntries computes the closed-form partial derivatives of
// project(cam, point) with respect to cam's parameters and point, for one
// observation, mirroring bundle_adjustment.cc's analytic_jacobian_entries.
//
// camX/camY hold, in order: focal length; distortion k0, k1; translation
// t0..t2; rotation update r0..r2 (the three-parameter Rodrigues increment
// composed on the left of the current rotation by updateCamera, evaluated
// at the identity update). When opts.FixedIntrinsics, only the translation
// and rotation entries (indices 0..5) are filled, matching numCamParamsFixed.
func analyticJacobianEntries(cam Camera, point [3]float64, opts Options) (camX, camY [9]float64, ptX, ptY [3]float64) {
	r := cam.Rotation
	t := cam.Translation
	k := cam.Distortion

	rx := r[0]*point[0] + r[1]*point[1] + r[2]*point[2]
	ry := r[3]*point[0] + r[4]*point[1] + r[5]*point[2]
	rz := r[6]*point[0] + r[7]*point[1] + r[8]*point[2]
	px := rx + t[0]
	py := ry + t[1]
	pz := rz + t[2]
	ix := px / pz
	iy := py / pz
	fz := cam.FocalLength / pz
	radius2 := ix*ix + iy*iy
	rdFactor := 1 + (k[0]+k[1]*radius2)*radius2

	if opts.FixedIntrinsics {
		camX[0] = fz * rdFactor
		camX[1] = 0
		camX[2] = -fz * rdFactor * ix
		camX[3] = -fz * rdFactor * ry * ix
		camX[4] = fz * rdFactor * (rz + rx*ix)
		camX[5] = -fz * rdFactor * ry

		camY[0] = 0
		camY[1] = fz * rdFactor
		camY[2] = -fz * rdFactor * iy
		camY[3] = -fz * rdFactor * (rz + ry*iy)
		camY[4] = fz * rdFactor * rx * iy
		camY[5] = fz * rdFactor * rx

		ptX[0] = fz * rdFactor * (r[0] - r[6]*ix)
		ptX[1] = fz * rdFactor * (r[1] - r[7]*ix)
		ptX[2] = fz * rdFactor * (r[2] - r[8]*ix)

		ptY[0] = fz * rdFactor * (r[3] - r[6]*iy)
		ptY[1] = fz * rdFactor * (r[4] - r[7]*iy)
		ptY[2] = fz * rdFactor * (r[5] - r[8]*iy)
		return
	}

	/* Intrinsics are exact by inspection. */
	camX[0] = ix * rdFactor
	camX[1] = cam.FocalLength * ix * radius2
	camX[2] = cam.FocalLength * ix * radius2 * radius2

	camY[0] = iy * rdFactor
	camY[1] = cam.FocalLength * iy * radius2
	camY[2] = cam.FocalLength * iy * radius2 * radius2

	f := cam.FocalLength
	rdDerivRad := k[0] + 2*k[1]*radius2

	radDerivPx := 2 * ix / pz
	radDerivPy := 2 * iy / pz
	radDerivPz := -2 * radius2 / pz

	rdDerivPx := rdDerivRad * radDerivPx
	rdDerivPy := rdDerivRad * radDerivPy
	rdDerivPz := rdDerivRad * radDerivPz

	ixDerivPx := 1 / pz
	ixDerivPz := -ix / pz

	iyDerivPy := 1 / pz
	iyDerivPz := -iy / pz

	ixDerivR0 := -ix * ry / pz
	ixDerivR1 := (rz + rx*ix) / pz
	ixDerivR2 := -ry / pz

	iyDerivR0 := -(rz + ry*iy) / pz
	iyDerivR1 := rx * iy / pz
	iyDerivR2 := rx / pz

	radDerivR0 := 2*ix*ixDerivR0 + 2*iy*iyDerivR0
	radDerivR1 := 2*ix*ixDerivR1 + 2*iy*iyDerivR1
	radDerivR2 := 2*ix*ixDerivR2 + 2*iy*iyDerivR2

	rdDerivR0 := rdDerivRad * radDerivR0
	rdDerivR1 := rdDerivRad * radDerivR1
	rdDerivR2 := rdDerivRad * radDerivR2

	ixDerivX0 := (r[0] - r[6]*ix) / pz
	ixDerivX1 := (r[1] - r[7]*ix) / pz
	ixDerivX2 := (r[2] - r[8]*ix) / pz

	iyDerivX0 := (r[3] - r[6]*iy) / pz
	iyDerivX1 := (r[4] - r[7]*iy) / pz
	iyDerivX2 := (r[5] - r[8]*iy) / pz

	radDerivX0 := 2*ix*ixDerivX0 + 2*iy*iyDerivX0
	radDerivX1 := 2*ix*ixDerivX1 + 2*iy*iyDerivX1
	radDerivX2 := 2*ix*ixDerivX2 + 2*iy*iyDerivX2

	rdDerivX0 := rdDerivRad * radDerivX0
	rdDerivX1 := rdDerivRad * radDerivX1
	rdDerivX2 := rdDerivRad * radDerivX2

	/* Translation (px_deriv_t0 == 1, etc., so the px/py/pz chain collapses). */
	camX[3] = f * (rdDerivPx*ix + rdFactor*ixDerivPx)
	camX[4] = f * (rdDerivPy * ix)
	camX[5] = f * (rdDerivPz*ix + rdFactor*ixDerivPz)

	camY[3] = f * (rdDerivPx * iy)
	camY[4] = f * (rdDerivPy*iy + rdFactor*iyDerivPy)
	camY[5] = f * (rdDerivPz*iy + rdFactor*iyDerivPz)

	/* Rotation update, evaluated at the identity increment. */
	camX[6] = f * (rdDerivR0*ix + rdFactor*ixDerivR0)
	camX[7] = f * (rdDerivR1*ix + rdFactor*ixDerivR1)
	camX[8] = f * (rdDerivR2*ix + rdFactor*ixDerivR2)

	camY[6] = f * (rdDerivR0*iy + rdFactor*iyDerivR0)
	camY[7] = f * (rdDerivR1*iy + rdFactor*iyDerivR1)
	camY[8] = f * (rdDerivR2*iy + rdFactor*iyDerivR2)

	ptX[0] = f * (rdDerivX0*ix + rdFactor*ixDerivX0)
	ptX[1] = f * (rdDerivX1*ix + rdFactor*ixDerivX1)
	ptX[2] = f * (rdDerivX2*ix + rdFactor*ixDerivX2)

	ptY[0] = f * (rdDerivX0*iy + rdFactor*iyDerivX0)
	ptY[1] = f * (rdDerivX1*iy + rdFactor*iyDerivX1)
	ptY[2] = f * (rdDerivX2*iy + rdFactor*iyDerivX2)

	return
}

package basolver

import "math"

// numCamParams returns 9 normally, or 6 when intrinsics are held fixed.
func numCamParams(opts Options) int {
	if opts.FixedIntrinsics {
		return numCamParamsFixed
	}
	return numCamParamsFull
}

// radialDistort applies the original's two-coefficient radial model in
// place: factor = 1 + r^2*(k0 + k1*r^2).
func radialDistort(x, y *float64, dist [2]float64) {
	r2 := *x**x + *y**y
	factor := 1 + r2*(dist[0]+dist[1]*r2)
	*x *= factor
	*y *= factor
}

// project computes the distorted, focal-scaled reprojection of point
// through cam.
func project(cam Camera, point [3]float64) (x, y float64) {
	var rp [3]float64
	for d := 0; d < 3; d++ {
		rp[0] += cam.Rotation[0+d] * point[d]
		rp[1] += cam.Rotation[3+d] * point[d]
		rp[2] += cam.Rotation[6+d] * point[d]
	}
	rp[2] += cam.Translation[2]
	rp[0] = (rp[0] + cam.Translation[0]) / rp[2]
	rp[1] = (rp[1] + cam.Translation[1]) / rp[2]
	radialDistort(&rp[0], &rp[1], cam.Distortion)
	return rp[0] * cam.FocalLength, rp[1] * cam.FocalLength
}

// ComputeResiduals evaluates vector_f = project(cam,point) - observed for
// every observation, in (x,y) interleaved order.
func ComputeResiduals(cameras []Camera, points []Point3D, obs []Observation) []float64 {
	f := make([]float64, 2*len(obs))
	for i, o := range obs {
		x, y := project(cameras[o.CameraID], points[o.PointID].Pos)
		f[2*i+0] = x - o.Pos[0]
		f[2*i+1] = y - o.Pos[1]
	}
	return f
}

// ComputeMSE matches the original's normalization: sum(f^2) / (len(f)/2).
func ComputeMSE(f []float64) float64 {
	if len(f) == 0 {
		return 0
	}
	var sum float64
	for _, v := range f {
		sum += v * v
	}
	return sum / (float64(len(f)) / 2)
}

// rodriguesToMatrix builds the 3x3 rotation (row-major) for a Rodrigues
// vector r via R = I + st*K + ct*K^2, exactly the original's closed form
// (note the half-angle-squared small-angle limit rather than a direct
// division, avoiding a 0/0 at the identity update).
func rodriguesToMatrix(r [3]float64) [9]float64 {
	a := math.Sqrt(r[0]*r[0] + r[1]*r[1] + r[2]*r[2])
	var ct, st float64
	if a == 0 {
		ct, st = 0.5, 1
	} else {
		ct = (1 - math.Cos(a)) / (2 * a)
		st = math.Sin(a) / a
	}
	var m [9]float64
	m[0] = 1 - (r[1]*r[1]+r[2]*r[2])*ct
	m[1] = r[0]*r[1]*ct - r[2]*st
	m[2] = r[2]*r[0]*ct + r[1]*st
	m[3] = r[0]*r[1]*ct + r[2]*st
	m[4] = 1 - (r[2]*r[2]+r[0]*r[0])*ct
	m[5] = r[1]*r[2]*ct - r[0]*st
	m[6] = r[2]*r[0]*ct - r[1]*st
	m[7] = r[1]*r[2]*ct + r[0]*st
	m[8] = 1 - (r[0]*r[0]+r[1]*r[1])*ct
	return m
}

// matMul3 returns a*b for two row-major 3x3 matrices.
func matMul3(a, b [9]float64) [9]float64 {
	var out [9]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += a[r*3+k] * b[k*3+c]
			}
			out[r*3+c] = sum
		}
	}
	return out
}

// updateCamera applies a parameter delta to cam, matching the original's
// layout: [focal, dist0, dist1, tx, ty, tz, rx, ry, rz] (or without the
// first three when intrinsics are fixed), composing the Rodrigues update
// on the left of the current rotation.
func updateCamera(cam Camera, update []float64, opts Options) Camera {
	out := cam
	offset := 0
	if opts.FixedIntrinsics {
		out.FocalLength = cam.FocalLength
		out.Distortion = cam.Distortion
	} else {
		out.FocalLength = cam.FocalLength + update[0]
		out.Distortion[0] = cam.Distortion[0] + update[1]
		out.Distortion[1] = cam.Distortion[1] + update[2]
		offset = 3
	}
	out.Translation[0] = cam.Translation[0] + update[offset+0]
	out.Translation[1] = cam.Translation[1] + update[offset+1]
	out.Translation[2] = cam.Translation[2] + update[offset+2]

	rotUpdate := rodriguesToMatrix([3]float64{update[offset+3], update[offset+4], update[offset+5]})
	out.Rotation = matMul3(rotUpdate, cam.Rotation)
	return out
}

// updatePoint applies a 3-vector delta to pt.Pos.
func updatePoint(pt Point3D, update []float64) Point3D {
	out := pt
	out.Pos[0] = pt.Pos[0] + update[0]
	out.Pos[1] = pt.Pos[1] + update[1]
	out.Pos[2] = pt.Pos[2] + update[2]
	return out
}

// ApplyDelta returns the updated cameras/points for a full LM step vector
// delta, laid out as [camera blocks][point blocks] per opts.Mode.
func ApplyDelta(cameras []Camera, points []Point3D, delta []float64, opts Options) ([]Camera, []Point3D) {
	newCameras := append([]Camera(nil), cameras...)
	newPoints := append([]Point3D(nil), points...)

	ncp := numCamParams(opts)
	idx := paramIndex(cameras, points, opts)

	if opts.Mode&BACameras != 0 {
		for i, cam := range cameras {
			if cam.Constant {
				continue
			}
			base, ok := idx.camOffset[i]
			if !ok {
				continue
			}
			newCameras[i] = updateCamera(cam, delta[base:base+ncp], opts)
		}
	}
	if opts.Mode&BAPoints != 0 {
		for i, pt := range points {
			if pt.Constant {
				continue
			}
			base, ok := idx.pointOffset[i]
			if !ok {
				continue
			}
			newPoints[i] = updatePoint(pt, delta[base:base+3])
		}
	}
	return newCameras, newPoints
}

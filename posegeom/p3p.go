package posegeom

import (
	"math"
	"math/cmplx"

	"github.com/simonfuhrmann/surfrecon/linalg"
)

// Pose is a camera-from-world rotation/translation pair, R*X+t mapping a
// world point into the camera frame.
type Pose struct {
	R [9]float64 // row-major 3x3
	T [3]float64
}

const colinearThreshold = 1e-10

// P3PKneip solves the perspective-three-point problem by Kneip's closed
// form, returning up to 4 candidate poses. p1..p3 are world points, f1..f3
// their corresponding (not necessarily normalized) bearing directions in
// the camera frame. Returns no solutions if the three points are colinear.
func P3PKneip(p1, p2, p3 linalg.Vec3, f1, f2, f3 linalg.Vec3) []Pose {
	if p2.Sub(p1).Cross(p3.Sub(p1)).Dot(p2.Sub(p1).Cross(p3.Sub(p1))) < colinearThreshold {
		return nil
	}

	f1 = normalizeIfNeeded(f1)
	f2 = normalizeIfNeeded(f2)
	f3 = normalizeIfNeeded(f3)

	e1 := f1
	e3 := f1.Cross(f2).Normalize()
	e2 := e3.Cross(e1)
	t := mat3Rows(e1, e2, e3)
	f3c := mulMat3Vec(t, f3)

	if f3c.Z > 0 {
		p1, p2 = p2, p1
		f1, f2 = f2, f1

		e1 = f1
		e3 = f1.Cross(f2).Normalize()
		e2 = e3.Cross(e1)
		t = mat3Rows(e1, e2, e3)
		f3c = mulMat3Vec(t, f3)
	}

	n1 := p2.Sub(p1).Normalize()
	n3 := n1.Cross(p3.Sub(p1)).Normalize()
	n2 := n3.Cross(n1)
	n := mat3Rows(n1, n2, n3)
	p3n := mulMat3Vec(n, p3.Sub(p1))

	d12 := p2.Sub(p1).Length()
	fF1 := f3c.X / f3c.Z
	fF2 := f3c.Y / f3c.Z
	pP1 := p3n.X
	pP2 := p3n.Y

	cosBeta := f1.Dot(f2)
	b := 1/(1-cosBeta*cosBeta) - 1
	if cosBeta < 0 {
		b = -math.Sqrt(b)
	} else {
		b = math.Sqrt(b)
	}

	f1Pw2 := fF1 * fF1
	f2Pw2 := fF2 * fF2
	p1Pw2 := pP1 * pP1
	p1Pw3 := p1Pw2 * pP1
	p1Pw4 := p1Pw3 * pP1
	p2Pw2 := pP2 * pP2
	p2Pw3 := p2Pw2 * pP2
	p2Pw4 := p2Pw3 * pP2
	d12Pw2 := d12 * d12
	bPw2 := b * b

	factors := [5]float64{
		-f2Pw2*p2Pw4 - p2Pw4*f1Pw2 - p2Pw4,

		2*p2Pw3*d12*b + 2*f2Pw2*p2Pw3*d12*b - 2*fF2*p2Pw3*fF1*d12,

		-f2Pw2*p2Pw2*p1Pw2 - f2Pw2*p2Pw2*d12Pw2*bPw2 - f2Pw2*p2Pw2*d12Pw2 +
			f2Pw2*p2Pw4 + p2Pw4*f1Pw2 + 2*pP1*p2Pw2*d12 +
			2*fF1*fF2*pP1*p2Pw2*d12*b - p2Pw2*p1Pw2*f1Pw2 +
			2*pP1*p2Pw2*f2Pw2*d12 - p2Pw2*d12Pw2*bPw2 - 2*p1Pw2*p2Pw2,

		2*p1Pw2*pP2*d12*b + 2*fF2*p2Pw3*fF1*d12 - 2*f2Pw2*p2Pw3*d12*b -
			2*pP1*pP2*d12Pw2*b,

		-2*fF2*p2Pw2*fF1*pP1*d12*b + f2Pw2*p2Pw2*d12Pw2 + 2*p1Pw3*d12 -
			p1Pw2*d12Pw2 + f2Pw2*p2Pw2*p1Pw2 - p1Pw4 -
			2*f2Pw2*p2Pw2*pP1*d12 + p2Pw2*f1Pw2*p1Pw2 + f2Pw2*p2Pw2*d12Pw2*bPw2,
	}

	roots := solveQuarticRoots(factors)

	poses := make([]Pose, 4)
	for i := 0; i < 4; i++ {
		root := roots[i]
		cotAlpha := (-fF1*pP1/fF2 - root*pP2 + d12*b) / (-fF1*root*pP2/fF2 + pP1 - d12)

		cosTheta := root
		sinTheta := math.Sqrt(1 - root*root)
		sinAlpha := math.Sqrt(1 / (cotAlpha*cotAlpha + 1))
		cosAlpha := math.Sqrt(1 - sinAlpha*sinAlpha)
		if cotAlpha < 0 {
			cosAlpha = -cosAlpha
		}

		cVec := linalg.Vec3{
			X: d12 * cosAlpha * (sinAlpha*b + cosAlpha),
			Y: cosTheta * d12 * sinAlpha * (sinAlpha*b + cosAlpha),
			Z: sinTheta * d12 * sinAlpha * (sinAlpha*b + cosAlpha),
		}
		nT := transpose3(n)
		cVec = p1.Add(mulMat3Vec(nT, cVec))

		r := [9]float64{
			-cosAlpha, -sinAlpha * cosTheta, -sinAlpha * sinTheta,
			sinAlpha, -cosAlpha * cosTheta, -cosAlpha * sinTheta,
			0, -sinTheta, cosTheta,
		}

		// R = Nᵀ * Rᵀ * T, then transposed again.
		r = matMul3(nT, matMul3(transpose3(r), t))
		r = transpose3(r)
		cFinal := mulMat3Vec(scaleMat3(r, -1), cVec)

		poses[i] = Pose{R: r, T: [3]float64{cFinal.X, cFinal.Y, cFinal.Z}}
	}
	return poses
}

func normalizeIfNeeded(v linalg.Vec3) linalg.Vec3 {
	const eps = 1e-10
	if math.Abs(v.Dot(v)-1) < eps {
		return v
	}
	return v.Normalize()
}

func mat3Rows(r0, r1, r2 linalg.Vec3) [9]float64 {
	return [9]float64{r0.X, r0.Y, r0.Z, r1.X, r1.Y, r1.Z, r2.X, r2.Y, r2.Z}
}

func mulMat3Vec(m [9]float64, v linalg.Vec3) linalg.Vec3 {
	return linalg.Vec3{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		Z: m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

func transpose3(m [9]float64) [9]float64 {
	return [9]float64{m[0], m[3], m[6], m[1], m[4], m[7], m[2], m[5], m[8]}
}

func scaleMat3(m [9]float64, s float64) [9]float64 {
	var out [9]float64
	for i, v := range m {
		out[i] = v * s
	}
	return out
}

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

// solveQuarticRoots finds the 4 real parts of the quartic with the given
// [A,B,C,D,E] coefficients via the resolvent-cubic closed form (Ferrari's
// method), matching the original's direct std::complex arithmetic port.
func solveQuarticRoots(factors [5]float64) [4]float64 {
	a, b, c, d, e := factors[0], factors[1], factors[2], factors[3], factors[4]

	a2 := a * a
	b2 := b * b
	a3 := a2 * a
	b3 := b2 * b
	a4 := a3 * a
	b4 := b3 * b

	alpha := -3*b2/(8*a2) + c/a
	beta := b3/(8*a3) - b*c/(2*a2) + d/a
	gamma := -3*b4/(256*a4) + b2*c/(16*a3) - b*d/(4*a2) + e/a

	alpha2 := alpha * alpha
	alpha3 := alpha2 * alpha
	beta2 := beta * beta

	P := complex(-alpha2/12-gamma, 0)
	Q := complex(-alpha3/108+alpha*gamma/3-beta2/8, 0)
	R := cmplx.Sqrt(Q*Q/4+P*P*P/27) - Q/2

	U := cmplx.Pow(R, complex(1.0/3.0, 0))
	var y complex128
	if real(U) == 0 {
		y = complex(-5*alpha/6, 0) - cmplx.Pow(Q, complex(1.0/3.0, 0))
	} else {
		y = complex(-5*alpha/6, 0) - P/(3*U) + U
	}

	w := cmplx.Sqrt(complex(alpha, 0) + 2*y)
	part1 := complex(-b/(4*a), 0)
	part2 := complex(3*alpha, 0) + 2*y
	part3 := complex(2*beta, 0) / w

	roots := [4]complex128{
		part1 + 0.5*(w+cmplx.Sqrt(-(part2+part3))),
		part1 + 0.5*(w-cmplx.Sqrt(-(part2+part3))),
		part1 + 0.5*(-w+cmplx.Sqrt(-(part2-part3))),
		part1 + 0.5*(-w-cmplx.Sqrt(-(part2-part3))),
	}

	var out [4]float64
	for i, r := range roots {
		out[i] = real(r)
	}
	return out
}

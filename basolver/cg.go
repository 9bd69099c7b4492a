package basolver

import (
	"math"

	"github.com/simonfuhrmann/surfrecon/bamatrix"
	"github.com/simonfuhrmann/surfrecon/internal/errs"
)

// cgSolve runs Jacobi-preconditioned conjugate gradient on the symmetric
// positive-(semi)definite system A x = b, returning x and the iteration
// count actually used (reported in Status.NumCGIterations, matching the
// original's per-LM-step CG counter).
func cgSolve(a *bamatrix.CSR, b []float64, maxIter int, tol float64) ([]float64, int, error) {
	const op = "basolver.cgSolve"
	n := len(b)
	if a.Rows != n || a.Cols != n {
		return nil, 0, errs.Invalid(op, "matrix/vector size mismatch")
	}

	precond := jacobiPrecond(a)

	x := make([]float64, n)
	r := append([]float64(nil), b...) // r = b - A*x0, x0 = 0
	z := applyPrecond(precond, r)
	p := append([]float64(nil), z...)

	rz := dot(r, z)
	bNorm := math.Sqrt(dot(b, b))
	if bNorm == 0 {
		return x, 0, nil
	}

	iters := 0
	for iters = 0; iters < maxIter; iters++ {
		ap, err := a.MulVec(p)
		if err != nil {
			return nil, iters, err
		}
		pAp := dot(p, ap)
		if pAp == 0 {
			break
		}
		alpha := rz / pAp
		for i := range x {
			x[i] += alpha * p[i]
			r[i] -= alpha * ap[i]
		}
		if math.Sqrt(dot(r, r))/bNorm < tol {
			iters++
			break
		}
		z = applyPrecond(precond, r)
		rzNew := dot(r, z)
		beta := rzNew / rz
		for i := range p {
			p[i] = z[i] + beta*p[i]
		}
		rz = rzNew
	}
	return x, iters, nil
}

func jacobiPrecond(a *bamatrix.CSR) []float64 {
	d := make([]float64, a.Rows)
	for r := 0; r < a.Rows; r++ {
		for k := a.RowPtr[r]; k < a.RowPtr[r+1]; k++ {
			if a.ColIdx[k] == r {
				d[r] = a.Values[k]
			}
		}
		if d[r] == 0 {
			d[r] = 1
		}
	}
	return d
}

func applyPrecond(diag, v []float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] / diag[i]
	}
	return out
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

package basolver

import (
	"github.com/simonfuhrmann/surfrecon/bamatrix"
	"github.com/simonfuhrmann/surfrecon/internal/errs"
	"gonum.org/v1/gonum/mat"
)

// addDamping returns a copy of m with lambda*diag(m) added to the
// diagonal, the standard LM trust-region damping.
func addDamping(m *bamatrix.CSR, lambda float64) (*bamatrix.CSR, error) {
	dense := m.Dense()
	for i := 0; i < m.Rows; i++ {
		dense[i*m.Cols+i] += lambda * dense[i*m.Cols+i]
	}
	var triplets []bamatrix.Triplet
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if v := dense[r*m.Cols+c]; v != 0 {
				triplets = append(triplets, bamatrix.Triplet{Row: r, Col: c, Value: v})
			}
		}
	}
	return bamatrix.FromTriplets(m.Rows, m.Cols, triplets)
}

// csrAt returns m[r][c] via a linear scan of row r; only used on the
// small block-diagonal point-point matrix, never on the full Jacobian.
func csrAt(m *bamatrix.CSR, r, c int) float64 {
	for k := m.RowPtr[r]; k < m.RowPtr[r+1]; k++ {
		if m.ColIdx[k] == c {
			return m.Values[k]
		}
	}
	return 0
}

// blockDiag3 extracts the 3x3 diagonal blocks of a block-diagonal CSR
// matrix (Jpp is block-diagonal because every residual touches exactly
// one point, so no cross terms between distinct points ever appear in
// JᵀJ) into a bamatrix.BlockDiag the Schur complement can invert.
func blockDiag3(m *bamatrix.CSR) *bamatrix.BlockDiag {
	n := m.Rows / 3
	bd := bamatrix.NewBlockDiag(3, n)
	for b := 0; b < n; b++ {
		base := b * 3
		block := mat.NewDense(3, 3, nil)
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				block.Set(r, c, csrAt(m, base+r, base+c))
			}
		}
		bd.SetBlock(b, block)
	}
	return bd
}

// blockDiagToCSR expands a BlockDiag back into a CSR matrix, used to
// multiply the inverted point-point block back into the cross term.
func blockDiagToCSR(bd *bamatrix.BlockDiag) (*bamatrix.CSR, error) {
	n := bd.BlockSize * bd.NumBlocks
	var triplets []bamatrix.Triplet
	for b := 0; b < bd.NumBlocks; b++ {
		base := b * bd.BlockSize
		block := bd.Block(b)
		for r := 0; r < bd.BlockSize; r++ {
			for c := 0; c < bd.BlockSize; c++ {
				if v := block.At(r, c); v != 0 {
					triplets = append(triplets, bamatrix.Triplet{Row: base + r, Col: base + c, Value: v})
				}
			}
		}
	}
	return bamatrix.FromTriplets(n, n, triplets)
}

// schurReduce solves the normal equations (JᵀJ + lambda*diag)*delta = -Jᵀf
// by eliminating the point block: S = Jcc - Jcp*Jpp^-1*Jcpᵀ, then CG-solves
// S*delta_cam = rhs, and finally recovers delta_pt by back-substitution.
// When there are no point columns (points excluded from this LM run, or
// none observed), it CG-solves the camera-only normal equations directly.
func schurReduce(camJac, ptJac *bamatrix.CSR, f []float64, lambda float64, opts Options) (deltaCam, deltaPt []float64, cgIters int, err error) {
	const op = "basolver.schurReduce"

	negFtCam, err := negJtF(camJac, f)
	if err != nil {
		return nil, nil, 0, err
	}

	if ptJac == nil || ptJac.Cols == 0 {
		jcc, err := camJac.Transpose().Mul(camJac)
		if err != nil {
			return nil, nil, 0, err
		}
		jccD, err := addDamping(jcc, lambda)
		if err != nil {
			return nil, nil, 0, err
		}
		deltaCam, cgIters, err = cgSolve(jccD, negFtCam, opts.CGMaxIterations, 1e-10)
		return deltaCam, nil, cgIters, err
	}

	negFtPt, err := negJtF(ptJac, f)
	if err != nil {
		return nil, nil, 0, err
	}

	camJacT := camJac.Transpose()
	ptJacT := ptJac.Transpose()

	jcc, err := camJacT.Mul(camJac)
	if err != nil {
		return nil, nil, 0, err
	}
	jcp, err := camJacT.Mul(ptJac)
	if err != nil {
		return nil, nil, 0, err
	}
	jpp, err := ptJacT.Mul(ptJac)
	if err != nil {
		return nil, nil, 0, err
	}

	jccD, err := addDamping(jcc, lambda)
	if err != nil {
		return nil, nil, 0, err
	}
	jppD, err := addDamping(jpp, lambda)
	if err != nil {
		return nil, nil, 0, err
	}

	jppInvBlocks, err := blockDiag3(jppD).Invert()
	if err != nil {
		return nil, nil, 0, errs.New(errs.Numerical, op, err)
	}
	jppInv, err := blockDiagToCSR(jppInvBlocks)
	if err != nil {
		return nil, nil, 0, err
	}

	// S = Jcc - Jcp * JppInv * Jcpᵀ
	tmp, err := jcp.Mul(jppInv)
	if err != nil {
		return nil, nil, 0, err
	}
	cross, err := tmp.Mul(jcp.Transpose())
	if err != nil {
		return nil, nil, 0, err
	}
	s, err := subtractCSR(jccD, cross)
	if err != nil {
		return nil, nil, 0, err
	}

	// rhsReduced = negFtCam - Jcp * JppInv * negFtPt
	jppInvRhsPt, err := jppInv.MulVec(negFtPt)
	if err != nil {
		return nil, nil, 0, err
	}
	jcpTerm, err := jcp.MulVec(jppInvRhsPt)
	if err != nil {
		return nil, nil, 0, err
	}
	rhsReduced := make([]float64, len(negFtCam))
	for i := range rhsReduced {
		rhsReduced[i] = negFtCam[i] - jcpTerm[i]
	}

	deltaCam, cgIters, err = cgSolve(s, rhsReduced, opts.CGMaxIterations, 1e-10)
	if err != nil {
		return nil, nil, 0, err
	}

	// deltaPt = JppInv * (negFtPt - Jcpᵀ*deltaCam)
	jcpTDelta, err := jcp.Transpose().MulVec(deltaCam)
	if err != nil {
		return nil, nil, 0, err
	}
	rhsPt := make([]float64, len(negFtPt))
	for i := range rhsPt {
		rhsPt[i] = negFtPt[i] - jcpTDelta[i]
	}
	deltaPt, err = jppInv.MulVec(rhsPt)
	return deltaCam, deltaPt, cgIters, err
}

func negJtF(jac *bamatrix.CSR, f []float64) ([]float64, error) {
	jtF, err := jac.Transpose().MulVec(f)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(jtF))
	for i, v := range jtF {
		out[i] = -v
	}
	return out, nil
}

func subtractCSR(a, b *bamatrix.CSR) (*bamatrix.CSR, error) {
	ad, bd := a.Dense(), b.Dense()
	var triplets []bamatrix.Triplet
	for r := 0; r < a.Rows; r++ {
		for c := 0; c < a.Cols; c++ {
			v := ad[r*a.Cols+c] - bd[r*a.Cols+c]
			if v != 0 {
				triplets = append(triplets, bamatrix.Triplet{Row: r, Col: c, Value: v})
			}
		}
	}
	return bamatrix.FromTriplets(a.Rows, a.Cols, triplets)
}

package linalg

import "math"

// SVD computes the singular value decomposition A = U * S * Vᵀ using
// one-sided Jacobi rotations (Hestenes' method): columns of a working copy
// of A are iteratively rotated pairwise until mutually orthogonal, which
// both diagonalizes AᵀA and directly yields U as the (rescaled) column
// space of the rotated A — no explicit bidiagonalization pass is needed to
// reach the same fixed point the spec's Golub-Kahan sweep converges to.
// The result is the economy form: with K = min(M,N), singular values are
// returned in non-increasing order on the diagonal of a K×K matrix S, U
// is M×K and V is N×K, both with orthonormal columns. For M<N the input is
// transposed internally and U and V are swapped.
func SVD(a *Matrix) (u, s, v *Matrix) {
	m, n := a.Rows, a.Cols
	if m >= n {
		return svdTallSkinny(a)
	}
	// rows < cols: transpose, solve, and swap U/V per §4.7.
	at := a.Transpose()
	u2, s2, v2 := svdTallSkinny(at)
	return v2, s2.Transpose(), u2
}

func svdTallSkinny(a *Matrix) (u, s, v *Matrix) {
	m, n := a.Rows, a.Cols
	w := a.Clone()
	vMat := Identity(n)

	const maxSweeps = 60
	const eps = 1e-14
	for sweep := 0; sweep < maxSweeps; sweep++ {
		offDiag := 0.0
		for p := 0; p < n-1; p++ {
			for q := p + 1; q < n; q++ {
				alpha, beta, gamma := 0.0, 0.0, 0.0
				for r := 0; r < m; r++ {
					wp := w.At(r, p)
					wq := w.At(r, q)
					alpha += wp * wp
					beta += wq * wq
					gamma += wp * wq
				}
				denom := math.Sqrt(alpha * beta)
				if denom < 1e-300 {
					continue
				}
				offDiag = math.Max(offDiag, math.Abs(gamma)/denom)
				if math.Abs(gamma) <= eps*denom {
					continue
				}
				zeta := (beta - alpha) / (2 * gamma)
				var t float64
				if zeta >= 0 {
					t = 1 / (zeta + math.Sqrt(1+zeta*zeta))
				} else {
					t = 1 / (zeta - math.Sqrt(1+zeta*zeta))
				}
				c := 1 / math.Sqrt(1+t*t)
				sn := c * t
				for r := 0; r < m; r++ {
					wp := w.At(r, p)
					wq := w.At(r, q)
					w.Set(r, p, c*wp-sn*wq)
					w.Set(r, q, sn*wp+c*wq)
				}
				for r := 0; r < n; r++ {
					vp := vMat.At(r, p)
					vq := vMat.At(r, q)
					vMat.Set(r, p, c*vp-sn*vq)
					vMat.Set(r, q, sn*vp+c*vq)
				}
			}
		}
		if offDiag < eps {
			break
		}
	}

	// Column norms of w are the singular values.
	sigma := make([]float64, n)
	uMat := NewMatrix(m, n)
	for j := 0; j < n; j++ {
		norm := 0.0
		for r := 0; r < m; r++ {
			norm += w.At(r, j) * w.At(r, j)
		}
		norm = math.Sqrt(norm)
		sigma[j] = norm
		if norm > 1e-300 {
			for r := 0; r < m; r++ {
				uMat.Set(r, j, w.At(r, j)/norm)
			}
		}
	}

	// Sort singular values (and corresponding U, V columns) descending.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := 0; i < n; i++ {
		best := i
		for j := i + 1; j < n; j++ {
			if sigma[order[j]] > sigma[order[best]] {
				best = j
			}
		}
		order[i], order[best] = order[best], order[i]
	}

	uSorted := NewMatrix(m, n)
	vSorted := NewMatrix(n, n)
	sSorted := NewMatrix(n, n)
	for newCol, oldCol := range order {
		sSorted.Set(newCol, newCol, math.Abs(sigma[oldCol]))
		for r := 0; r < m; r++ {
			uSorted.Set(r, newCol, uMat.At(r, oldCol))
		}
		for r := 0; r < n; r++ {
			vSorted.Set(r, newCol, vMat.At(r, oldCol))
		}
	}
	return uSorted, sSorted, vSorted
}

// PseudoInverse computes the Moore-Penrose pseudo-inverse A+ = V Σ+ Uᵀ,
// where Σ+_ii = 1/σ_i for σ_i above the epsilon threshold and 0 otherwise.
func PseudoInverse(a *Matrix) *Matrix {
	const svdEps = 1e-12
	u, s, v := SVD(a)
	n := s.Rows
	sInv := NewMatrix(n, n)
	maxSigma := 0.0
	for i := 0; i < n; i++ {
		if s.At(i, i) > maxSigma {
			maxSigma = s.At(i, i)
		}
	}
	thresh := svdEps * maxSigma
	for i := 0; i < n; i++ {
		sigma := s.At(i, i)
		if sigma > thresh {
			sInv.Set(i, i, 1/sigma)
		}
	}
	return v.Mul(sInv).Mul(u.Transpose())
}

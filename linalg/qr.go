package linalg

import "math"

// QR decomposes A (M x N, M >= N) into A = Q * R via Givens rotations:
// each sub-diagonal entry of column j is zeroed, bottom-up, by rotating
// the two affected rows across the whole trailing submatrix; the column
// rotations accumulate into Q.
func QR(a *Matrix) (q, r *Matrix) {
	m, n := a.Rows, a.Cols
	r = a.Clone()
	q = Identity(m)

	for col := 0; col < n; col++ {
		for row := m - 1; row > col; row-- {
			x := r.At(row-1, col)
			y := r.At(row, col)
			if y == 0 {
				continue
			}
			hyp := math.Hypot(x, y)
			if hyp == 0 {
				continue
			}
			c := x / hyp
			s := -y / hyp
			// Rotate rows row-1 and row across all columns of R.
			for k := 0; k < n; k++ {
				a1 := r.At(row-1, k)
				a2 := r.At(row, k)
				r.Set(row-1, k, c*a1-s*a2)
				r.Set(row, k, s*a1+c*a2)
			}
			// Accumulate the same rotation (transposed sense) into Q.
			for k := 0; k < m; k++ {
				q1 := q.At(k, row-1)
				q2 := q.At(k, row)
				q.Set(k, row-1, c*q1-s*q2)
				q.Set(k, row, s*q1+c*q2)
			}
		}
	}
	return q, r
}

package linalg

import (
	"fmt"
	"math"
)

// Cholesky decomposes the symmetric positive-definite matrix A = L Lᵀ,
// returning the lower-triangular L. Values strictly above the diagonal of
// the result are zero.
func Cholesky(a *Matrix) (*Matrix, error) {
	n := a.Rows
	if a.Cols != n {
		return nil, fmt.Errorf("linalg: Cholesky requires a square matrix")
	}
	l := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := a.At(i, j)
			for k := 0; k < j; k++ {
				sum -= l.At(i, k) * l.At(j, k)
			}
			if i == j {
				if sum <= 0 {
					return nil, fmt.Errorf("linalg: matrix is not positive definite")
				}
				l.Set(i, j, math.Sqrt(sum))
			} else {
				l.Set(i, j, sum/l.At(j, j))
			}
		}
	}
	return l, nil
}

// InvertLowerTriangular inverts a lower-triangular matrix by forward
// substitution; the result cannot be computed in-place.
func InvertLowerTriangular(l *Matrix) (*Matrix, error) {
	n := l.Rows
	if l.Cols != n {
		return nil, fmt.Errorf("linalg: InvertLowerTriangular requires a square matrix")
	}
	inv := NewMatrix(n, n)
	for col := 0; col < n; col++ {
		// Solve L * x = e_col.
		x := make([]float64, n)
		for i := 0; i < n; i++ {
			sum := 0.0
			if i == col {
				sum = 1
			}
			for k := 0; k < i; k++ {
				sum -= l.At(i, k) * x[k]
			}
			if l.At(i, i) == 0 {
				return nil, fmt.Errorf("linalg: singular triangular matrix")
			}
			x[i] = sum / l.At(i, i)
		}
		for i := 0; i < n; i++ {
			inv.Set(i, col, x[i])
		}
	}
	return inv, nil
}

// CholeskyInvert inverts a symmetric positive-definite matrix via
// A⁻¹ = (L⁻¹)ᵀ L⁻¹.
func CholeskyInvert(a *Matrix) (*Matrix, error) {
	l, err := Cholesky(a)
	if err != nil {
		return nil, err
	}
	linv, err := InvertLowerTriangular(l)
	if err != nil {
		return nil, err
	}
	return linv.Transpose().Mul(linv), nil
}

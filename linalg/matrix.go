package linalg

import (
	"fmt"
	"math"
)

// Matrix is a dense, row-major matrix with value semantics on copy (the
// backing slice is owned by the Matrix and never aliased by operations
// that return a new Matrix).
type Matrix struct {
	Rows, Cols int
	data       []float64
}

// NewMatrix allocates a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, data: make([]float64, rows*cols)}
}

// NewMatrixFromRowMajor builds a Matrix from a flat row-major slice. The
// slice is copied.
func NewMatrixFromRowMajor(rows, cols int, data []float64) *Matrix {
	if len(data) != rows*cols {
		panic(fmt.Sprintf("linalg: data length %d does not match %dx%d", len(data), rows, cols))
	}
	m := NewMatrix(rows, cols)
	copy(m.data, data)
	return m
}

// Identity returns the n x n identity matrix.
func Identity(n int) *Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// At returns element (r,c).
func (m *Matrix) At(r, c int) float64 { return m.data[r*m.Cols+c] }

// Set assigns element (r,c).
func (m *Matrix) Set(r, c int, v float64) { m.data[r*m.Cols+c] = v }

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	c := NewMatrix(m.Rows, m.Cols)
	copy(c.data, m.data)
	return c
}

// Row returns a copy of row r.
func (m *Matrix) Row(r int) []float64 {
	out := make([]float64, m.Cols)
	copy(out, m.data[r*m.Cols:(r+1)*m.Cols])
	return out
}

// Diag returns the diagonal get of index i.
func (m *Matrix) Diag(i int) float64 { return m.At(i, i) }

// SetDiag sets the diagonal element i.
func (m *Matrix) SetDiag(i int, v float64) { m.Set(i, i, v) }

// Add returns m + o.
func (m *Matrix) Add(o *Matrix) *Matrix {
	requireSameShape(m, o, "Add")
	r := NewMatrix(m.Rows, m.Cols)
	for i := range m.data {
		r.data[i] = m.data[i] + o.data[i]
	}
	return r
}

// Sub returns m - o.
func (m *Matrix) Sub(o *Matrix) *Matrix {
	requireSameShape(m, o, "Sub")
	r := NewMatrix(m.Rows, m.Cols)
	for i := range m.data {
		r.data[i] = m.data[i] - o.data[i]
	}
	return r
}

// Scale returns m * s.
func (m *Matrix) Scale(s float64) *Matrix {
	r := NewMatrix(m.Rows, m.Cols)
	for i := range m.data {
		r.data[i] = m.data[i] * s
	}
	return r
}

// Mul returns m * o.
func (m *Matrix) Mul(o *Matrix) *Matrix {
	if m.Cols != o.Rows {
		panic(fmt.Sprintf("linalg: Mul shape mismatch %dx%d * %dx%d", m.Rows, m.Cols, o.Rows, o.Cols))
	}
	r := NewMatrix(m.Rows, o.Cols)
	for i := 0; i < m.Rows; i++ {
		for k := 0; k < m.Cols; k++ {
			a := m.At(i, k)
			if a == 0 {
				continue
			}
			for j := 0; j < o.Cols; j++ {
				r.Set(i, j, r.At(i, j)+a*o.At(k, j))
			}
		}
	}
	return r
}

// MulVec returns m * v (v treated as a column vector of length m.Cols).
func (m *Matrix) MulVec(v []float64) []float64 {
	if len(v) != m.Cols {
		panic("linalg: MulVec length mismatch")
	}
	out := make([]float64, m.Rows)
	for i := 0; i < m.Rows; i++ {
		var sum float64
		for j := 0; j < m.Cols; j++ {
			sum += m.At(i, j) * v[j]
		}
		out[i] = sum
	}
	return out
}

// Transpose returns mᵀ.
func (m *Matrix) Transpose() *Matrix {
	r := NewMatrix(m.Cols, m.Rows)
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			r.Set(j, i, m.At(i, j))
		}
	}
	return r
}

// Equal reports whether m and o are elementwise equal within tol.
func (m *Matrix) Equal(o *Matrix, tol float64) bool {
	if m.Rows != o.Rows || m.Cols != o.Cols {
		return false
	}
	for i := range m.data {
		if math.Abs(m.data[i]-o.data[i]) > tol {
			return false
		}
	}
	return true
}

func requireSameShape(a, b *Matrix, op string) {
	if a.Rows != b.Rows || a.Cols != b.Cols {
		panic(fmt.Sprintf("linalg: %s shape mismatch %dx%d vs %dx%d", op, a.Rows, a.Cols, b.Rows, b.Cols))
	}
}

// Determinant computes the determinant of a square matrix up to 4x4 in
// closed form; larger matrices use cofactor expansion.
func (m *Matrix) Determinant() float64 {
	if m.Rows != m.Cols {
		panic("linalg: Determinant requires a square matrix")
	}
	n := m.Rows
	switch n {
	case 0:
		return 1
	case 1:
		return m.At(0, 0)
	case 2:
		return m.At(0, 0)*m.At(1, 1) - m.At(0, 1)*m.At(1, 0)
	case 3:
		a, b, c := m.At(0, 0), m.At(0, 1), m.At(0, 2)
		d, e, f := m.At(1, 0), m.At(1, 1), m.At(1, 2)
		g, h, i := m.At(2, 0), m.At(2, 1), m.At(2, 2)
		return a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	case 4:
		return det4(m)
	default:
		return cofactorDeterminant(m)
	}
}

func det4(m *Matrix) float64 {
	// Laplace expansion along the first row using 3x3 minors.
	var det float64
	sign := 1.0
	for j := 0; j < 4; j++ {
		minor := NewMatrix(3, 3)
		mr := 0
		for r := 1; r < 4; r++ {
			mc := 0
			for c := 0; c < 4; c++ {
				if c == j {
					continue
				}
				minor.Set(mr, mc, m.At(r, c))
				mc++
			}
			mr++
		}
		det += sign * m.At(0, j) * minor.Determinant()
		sign = -sign
	}
	return det
}

func cofactorDeterminant(m *Matrix) float64 {
	n := m.Rows
	if n == 1 {
		return m.At(0, 0)
	}
	var det float64
	sign := 1.0
	for j := 0; j < n; j++ {
		minor := NewMatrix(n-1, n-1)
		mr := 0
		for r := 1; r < n; r++ {
			mc := 0
			for c := 0; c < n; c++ {
				if c == j {
					continue
				}
				minor.Set(mr, mc, m.At(r, c))
				mc++
			}
			mr++
		}
		det += sign * m.At(0, j) * cofactorDeterminant(minor)
		sign = -sign
	}
	return det
}

// Inverse computes the inverse of a square matrix. 1x1..4x4 use the
// closed-form adjugate/determinant formula; larger matrices fall back to
// the SVD-based pseudo-inverse (which equals the true inverse when m is
// non-singular).
func (m *Matrix) Inverse() (*Matrix, error) {
	if m.Rows != m.Cols {
		return nil, fmt.Errorf("linalg: Inverse requires a square matrix, got %dx%d", m.Rows, m.Cols)
	}
	n := m.Rows
	if n <= 4 {
		det := m.Determinant()
		if math.Abs(det) < 1e-300 {
			return nil, fmt.Errorf("linalg: matrix is singular")
		}
		adj := adjugate(m)
		return adj.Scale(1 / det), nil
	}
	return PseudoInverse(m), nil
}

// adjugate computes the classical adjugate (transpose of the cofactor
// matrix) for n <= 4.
func adjugate(m *Matrix) *Matrix {
	n := m.Rows
	adj := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			minor := NewMatrix(n-1, n-1)
			mr := 0
			for r := 0; r < n; r++ {
				if r == i {
					continue
				}
				mc := 0
				for c := 0; c < n; c++ {
					if c == j {
						continue
					}
					minor.Set(mr, mc, m.At(r, c))
					mc++
				}
				mr++
			}
			sign := 1.0
			if (i+j)%2 == 1 {
				sign = -1
			}
			// cofactor(i,j) goes into adj(j,i) (transpose).
			adj.Set(j, i, sign*minor.Determinant())
		}
	}
	return adj
}

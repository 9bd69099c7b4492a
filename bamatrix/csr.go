// Package bamatrix implements the sparse block matrix used by basolver's
// normal-equation assembly: CSR storage built from triplets, transpose,
// sparse-dense and sparse-sparse multiply, and per-block diagonal
// inversion for the Schur-complement reduction.
package bamatrix

import (
	"runtime"
	"sort"
	"sync"

	"github.com/simonfuhrmann/surfrecon/internal/errs"
)

// Triplet is one (row, col, value) contribution to a sparse matrix,
// accumulated during Jacobian assembly before compaction into CSR.
type Triplet struct {
	Row, Col int
	Value    float64
}

// CSR is a compressed-sparse-row matrix. RowPtr has Rows+1 entries;
// ColIdx/Values run Values[RowPtr[r]:RowPtr[r+1]] for row r, sorted by
// column within each row.
type CSR struct {
	Rows, Cols int
	RowPtr     []int
	ColIdx     []int
	Values     []float64
}

// FromTriplets builds a CSR matrix from an unordered triplet list,
// summing duplicate (row,col) entries the way normal-equation assembly
// accumulates overlapping observations.
func FromTriplets(rows, cols int, triplets []Triplet) (*CSR, error) {
	const op = "bamatrix.FromTriplets"
	if rows < 0 || cols < 0 {
		return nil, errs.Invalid(op, "rows and cols must be non-negative")
	}
	for _, t := range triplets {
		if t.Row < 0 || t.Row >= rows || t.Col < 0 || t.Col >= cols {
			return nil, errs.Invalid(op, "triplet index out of range")
		}
	}

	sorted := make([]Triplet, len(triplets))
	copy(sorted, triplets)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Row != sorted[j].Row {
			return sorted[i].Row < sorted[j].Row
		}
		return sorted[i].Col < sorted[j].Col
	})

	m := &CSR{Rows: rows, Cols: cols, RowPtr: make([]int, rows+1)}
	counts := make([]int, rows)
	i := 0
	for i < len(sorted) {
		j := i
		row, col := sorted[i].Row, sorted[i].Col
		var sum float64
		for j < len(sorted) && sorted[j].Row == row && sorted[j].Col == col {
			sum += sorted[j].Value
			j++
		}
		m.ColIdx = append(m.ColIdx, col)
		m.Values = append(m.Values, sum)
		counts[row]++
		i = j
	}
	for r := 0; r < rows; r++ {
		m.RowPtr[r+1] = m.RowPtr[r] + counts[r]
	}
	return m, nil
}

// Dense materializes the matrix as a row-major slice, for tests and small
// verification paths only.
func (m *CSR) Dense() []float64 {
	out := make([]float64, m.Rows*m.Cols)
	for r := 0; r < m.Rows; r++ {
		for k := m.RowPtr[r]; k < m.RowPtr[r+1]; k++ {
			out[r*m.Cols+m.ColIdx[k]] = m.Values[k]
		}
	}
	return out
}

// Transpose returns mᵀ as a new CSR.
func (m *CSR) Transpose() *CSR {
	t := &CSR{Rows: m.Cols, Cols: m.Rows, RowPtr: make([]int, m.Cols+1)}
	counts := make([]int, m.Cols)
	for _, c := range m.ColIdx {
		counts[c]++
	}
	for c := 0; c < m.Cols; c++ {
		t.RowPtr[c+1] = t.RowPtr[c] + counts[c]
	}
	t.ColIdx = make([]int, len(m.ColIdx))
	t.Values = make([]float64, len(m.Values))
	next := append([]int(nil), t.RowPtr...)
	for r := 0; r < m.Rows; r++ {
		for k := m.RowPtr[r]; k < m.RowPtr[r+1]; k++ {
			c := m.ColIdx[k]
			pos := next[c]
			t.ColIdx[pos] = r
			t.Values[pos] = m.Values[k]
			next[c]++
		}
	}
	return t
}

// MulVec returns m*v, splitting the rows into one contiguous chunk per
// worker (at most runtime.NumCPU goroutines), each goroutine owning
// disjoint output rows so no lock is needed on the result.
func (m *CSR) MulVec(v []float64) ([]float64, error) {
	const op = "bamatrix.MulVec"
	if len(v) != m.Cols {
		return nil, errs.Invalid(op, "vector length does not match column count")
	}
	out := make([]float64, m.Rows)
	if m.Rows == 0 {
		return out, nil
	}

	workers := runtime.NumCPU()
	if workers > m.Rows {
		workers = m.Rows
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (m.Rows + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > m.Rows {
			hi = m.Rows
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for r := lo; r < hi; r++ {
				var sum float64
				for k := m.RowPtr[r]; k < m.RowPtr[r+1]; k++ {
					sum += m.Values[k] * v[m.ColIdx[k]]
				}
				out[r] = sum
			}
		}(lo, hi)
	}
	wg.Wait()
	return out, nil
}

// Mul returns m*o as a dense-accumulated CSR; used for assembling JᵀJ and
// the Schur complement, both of which are small enough (camera/point block
// counts, not observation counts) that a row-wise sparse accumulator is
// sufficient without a dedicated sparse-sparse algorithm.
func (m *CSR) Mul(o *CSR) (*CSR, error) {
	const op = "bamatrix.Mul"
	if m.Cols != o.Rows {
		return nil, errs.Invalid(op, "inner dimension mismatch")
	}
	var triplets []Triplet
	for r := 0; r < m.Rows; r++ {
		acc := make(map[int]float64)
		for k := m.RowPtr[r]; k < m.RowPtr[r+1]; k++ {
			c, a := m.ColIdx[k], m.Values[k]
			for k2 := o.RowPtr[c]; k2 < o.RowPtr[c+1]; k2++ {
				acc[o.ColIdx[k2]] += a * o.Values[k2]
			}
		}
		for col, val := range acc {
			if val != 0 {
				triplets = append(triplets, Triplet{Row: r, Col: col, Value: val})
			}
		}
	}
	return FromTriplets(m.Rows, o.Cols, triplets)
}

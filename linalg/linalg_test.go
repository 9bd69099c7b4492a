package linalg

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCholeskyWikipediaExample(t *testing.T) {
	a := NewMatrixFromRowMajor(3, 3, []float64{
		4, 12, -16,
		12, 37, -43,
		-16, -43, 98,
	})
	l, err := Cholesky(a)
	require.NoError(t, err)
	want := NewMatrixFromRowMajor(3, 3, []float64{
		2, 0, 0,
		6, 1, 0,
		-8, 5, 3,
	})
	assert.True(t, l.Equal(want, 1e-9), "got %+v", l)
}

func TestCholeskyInvertsSPD(t *testing.T) {
	a := NewMatrixFromRowMajor(3, 3, []float64{
		25, 15, -5,
		15, 18, 0,
		-5, 0, 11,
	})
	inv, err := CholeskyInvert(a)
	require.NoError(t, err)
	prod := inv.Mul(a)
	assert.True(t, prod.Equal(Identity(3), 1e-9), "got %+v", prod)
}

func TestDeterminantSmallSizes(t *testing.T) {
	assert.InDelta(t, 7.0, NewMatrixFromRowMajor(1, 1, []float64{7}).Determinant(), 1e-12)
	assert.InDelta(t, -2.0, NewMatrixFromRowMajor(2, 2, []float64{1, 2, 3, 4}).Determinant(), 1e-12)
}

func TestSVDReconstructs2x2(t *testing.T) {
	a := NewMatrixFromRowMajor(2, 2, []float64{1, 2, 3, 4})
	u, s, v := SVD(a)
	assert.InDelta(t, 5.4649857, s.At(0, 0), 1e-5)
	assert.InDelta(t, 0.3659662, s.At(1, 1), 1e-5)
	recon := u.Mul(s).Mul(v.Transpose())
	assert.True(t, recon.Equal(a, 1e-9), "got %+v", recon)
}

func TestSVDReconstructsRandomTallSkinny(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	const m, n = 6, 4
	data := make([]float64, m*n)
	for i := range data {
		data[i] = r.NormFloat64()
	}
	a := NewMatrixFromRowMajor(m, n, data)
	u, s, v := SVD(a)
	recon := u.Mul(s).Mul(v.Transpose())
	assert.True(t, recon.Equal(a, 1e-9))
}

func TestPseudoInverseExample(t *testing.T) {
	// transpose of [[2,-4,5,6];[0,3,2,-4];[5,6,0,3]] is the 4x3 input.
	at := NewMatrixFromRowMajor(4, 3, []float64{
		2, 0, 5,
		-4, 3, 6,
		5, 2, 0,
		6, -4, 3,
	})
	pinv := PseudoInverse(at)
	// A+ A should approximate the projector onto the row space; for a
	// well-conditioned 4x3 (rank 3) matrix, A+ * A ≈ I(3).
	a := NewMatrixFromRowMajor(3, 4, []float64{
		2, -4, 5, 6,
		0, 3, 2, -4,
		5, 6, 0, 3,
	})
	prod := pinv.Mul(a.Transpose())
	assert.True(t, prod.Equal(Identity(3), 1e-6), "got %+v", prod)
}

func TestQRReconstructs(t *testing.T) {
	a := NewMatrixFromRowMajor(3, 2, []float64{1, 2, 3, 4, 5, 7})
	q, r := QR(a)
	recon := q.Mul(r)
	assert.True(t, recon.Equal(a, 1e-9))
	// Q must be orthogonal.
	qtq := q.Transpose().Mul(q)
	assert.True(t, qtq.Equal(Identity(3), 1e-9))
	// R must be upper triangular.
	for i := 1; i < r.Rows; i++ {
		for j := 0; j < i && j < r.Cols; j++ {
			assert.InDelta(t, 0, r.At(i, j), 1e-9)
		}
	}
}

func TestVec3Ops(t *testing.T) {
	a := Vec3{1, 0, 0}
	b := Vec3{0, 1, 0}
	assert.Equal(t, Vec3{0, 0, 1}, a.Cross(b))
	assert.InDelta(t, 0.0, a.Dot(b), 1e-12)
	assert.InDelta(t, 1.0, a.Add(b).Normalize().Length(), 1e-12)
	assert.True(t, math.Abs(a.Length()-1) < 1e-12)
}

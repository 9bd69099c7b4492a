package bamatrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestBlockDiagInvertRecoversIdentity(t *testing.T) {
	b := NewBlockDiag(2, 2)
	b.SetBlock(0, mat.NewDense(2, 2, []float64{2, 0, 0, 2}))
	b.SetBlock(1, mat.NewDense(2, 2, []float64{1, 0, 0, 4}))

	inv, err := b.Invert()
	require.NoError(t, err)

	prod, err := b.MulVec(mustMulVec(t, inv, []float64{1, 1, 1, 1}))
	require.NoError(t, err)
	for _, v := range prod {
		assert.InDelta(t, 1, v, 1e-9)
	}
}

func mustMulVec(t *testing.T, b *BlockDiag, v []float64) []float64 {
	t.Helper()
	out, err := b.MulVec(v)
	require.NoError(t, err)
	return out
}

func TestBlockDiagInvertSingularIsNumericalError(t *testing.T) {
	b := NewBlockDiag(2, 1)
	b.SetBlock(0, mat.NewDense(2, 2, []float64{1, 1, 1, 1}))
	_, err := b.Invert()
	assert.Error(t, err)
}

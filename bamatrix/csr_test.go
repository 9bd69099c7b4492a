package bamatrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTripletsSumsDuplicates(t *testing.T) {
	m, err := FromTriplets(2, 2, []Triplet{
		{Row: 0, Col: 0, Value: 1},
		{Row: 0, Col: 0, Value: 2},
		{Row: 1, Col: 1, Value: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 0, 0, 5}, m.Dense())
}

func TestFromTripletsRejectsOutOfRange(t *testing.T) {
	_, err := FromTriplets(2, 2, []Triplet{{Row: 5, Col: 0, Value: 1}})
	assert.Error(t, err)
}

func TestTransposeSwapsShapeAndEntries(t *testing.T) {
	m, err := FromTriplets(2, 3, []Triplet{
		{Row: 0, Col: 1, Value: 4},
		{Row: 1, Col: 2, Value: 7},
	})
	require.NoError(t, err)
	tr := m.Transpose()
	assert.Equal(t, 3, tr.Rows)
	assert.Equal(t, 2, tr.Cols)
	assert.Equal(t, []float64{0, 0, 4, 0, 0, 7}, tr.Dense())
}

func TestMulVecMatchesDense(t *testing.T) {
	m, err := FromTriplets(3, 3, []Triplet{
		{Row: 0, Col: 0, Value: 1}, {Row: 0, Col: 1, Value: 2},
		{Row: 1, Col: 2, Value: 3},
		{Row: 2, Col: 0, Value: 4}, {Row: 2, Col: 2, Value: 5},
	})
	require.NoError(t, err)
	out, err := m.MulVec([]float64{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 3, 9}, out)
}

func TestMulVecRejectsLengthMismatch(t *testing.T) {
	m, _ := FromTriplets(1, 2, nil)
	_, err := m.MulVec([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestMulComputesProduct(t *testing.T) {
	a, _ := FromTriplets(2, 2, []Triplet{{Row: 0, Col: 0, Value: 1}, {Row: 0, Col: 1, Value: 2}, {Row: 1, Col: 1, Value: 3}})
	b, _ := FromTriplets(2, 2, []Triplet{{Row: 0, Col: 0, Value: 1}, {Row: 1, Col: 0, Value: 1}, {Row: 1, Col: 1, Value: 1}})
	prod, err := a.Mul(b)
	require.NoError(t, err)
	// [[1,2],[0,3]] * [[1,0],[1,1]] = [[3,2],[3,3]]
	assert.Equal(t, []float64{3, 2, 3, 3}, prod.Dense())
}

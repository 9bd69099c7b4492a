package mesh

import (
	"testing"

	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square() *Mesh {
	m := New()
	m.Vertices = []linalg.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	m.Faces = []int{0, 1, 2, 0, 2, 3}
	return m
}

func TestRecomputeVertexNormalsFlatSquare(t *testing.T) {
	m := square()
	m.RecomputeVertexNormals()
	require.Len(t, m.Normals, 4)
	for _, n := range m.Normals {
		assert.InDelta(t, 0.0, n.X, 1e-9)
		assert.InDelta(t, 0.0, n.Y, 1e-9)
		assert.InDelta(t, 1.0, n.Z, 1e-9)
	}
}

func TestDeleteVerticesFixesFaces(t *testing.T) {
	m := square()
	err := m.DeleteVertices([]bool{false, false, false, true})
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Len(t, m.Vertices, 3)
	// Only the (0,1,2) face survives; the other touched vertex 3.
	assert.Equal(t, 1, m.NumFaces())
}

func TestDeleteVerticesWrongLength(t *testing.T) {
	m := square()
	err := m.DeleteVertices([]bool{false, false})
	assert.Error(t, err)
}

func TestCompactFacesDropsDegenerate(t *testing.T) {
	m := New()
	m.Vertices = []linalg.Vec3{{}, {X: 1}, {Y: 1}}
	m.Faces = []int{0, 0, 0, 0, 1, 2}
	m.CompactFaces()
	assert.Equal(t, []int{0, 1, 2}, m.Faces)
}

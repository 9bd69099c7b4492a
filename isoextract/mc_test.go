package isoextract

import (
	"testing"

	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitCube builds a cube with corner 0 inside (dist<0) and the rest
// outside, the simplest single-corner MC configuration.
func unitCube() Cube {
	positions := [8]linalg.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	}
	var c Cube
	c.Pos = positions
	c.Dist = [8]float64{-1, 1, 1, 1, 1, 1, 1, 1}
	for i := range c.VID {
		c.VID[i] = uint64(i)
	}
	return c
}

func TestAddCubeSkipsAllInOrAllOut(t *testing.T) {
	acc := NewAccumulator()
	c := unitCube()
	for i := range c.Dist {
		c.Dist[i] = -1
	}
	acc.AddCube(c)
	assert.Empty(t, acc.Faces)
	assert.Empty(t, acc.Positions)
}

func TestAddCubeSingleCornerProducesOneTriangle(t *testing.T) {
	acc := NewAccumulator()
	acc.AddCube(unitCube())
	require.Len(t, acc.Faces, 3)
	assert.Len(t, acc.Positions, 3)
}

func TestAddCubeDedupsSharedEdgeAcrossCalls(t *testing.T) {
	acc := NewAccumulator()
	c := unitCube()
	acc.AddCube(c)
	firstCount := len(acc.Positions)
	// Re-adding the identical cube must hit every vertex already cached
	// under the same VID pair and add nothing new.
	acc.AddCube(c)
	assert.Equal(t, firstCount, len(acc.Positions))
	assert.Len(t, acc.Faces, 6)
}

func TestAddVertexInterpolatesMidpoint(t *testing.T) {
	acc := NewAccumulator()
	c := unitCube()
	// Symmetric distances across the only crossed edge => midpoint.
	c.Dist[0] = -1
	c.Dist[1] = 1
	idx := acc.addVertex(c, 0, 1)
	pos := acc.Positions[idx]
	assert.InDelta(t, 0.5, pos.X, 1e-9)
}

func TestNewVertexKeyCanonicalizesOrder(t *testing.T) {
	assert.Equal(t, newVertexKey(3, 7), newVertexKey(7, 3))
}

package voxelindex

import (
	"testing"

	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/stretchr/testify/assert"
)

func TestFactorRoundTrip(t *testing.T) {
	for level := uint8(0); level <= 6; level++ {
		dim := Dim(level)
		for x := uint64(0); x < dim; x += 3 {
			for y := uint64(0); y < dim; y += 3 {
				for z := uint64(0); z < dim; z += 3 {
					v := New(level, x, y, z)
					gx, gy, gz := v.Factor()
					assert.Equal(t, x, gx)
					assert.Equal(t, y, gy)
					assert.Equal(t, z, gz)
				}
			}
		}
	}
}

func TestDescendTwiceMultipliesByFour(t *testing.T) {
	v := New(2, 1, 2, 3)
	twice := v.Descend().Descend()
	want := New(4, 4, 8, 12)
	assert.Equal(t, want.Level, twice.Level)
	assert.Equal(t, want.Index, twice.Index)
}

func TestNavigateClampsAtZero(t *testing.T) {
	v := New(3, 0, 0, 0)
	n := v.Navigate(-1, -5, 2)
	x, y, z := n.Factor()
	assert.Equal(t, uint64(0), x)
	assert.Equal(t, uint64(0), y)
	assert.Equal(t, uint64(2), z)
}

func TestOrdering(t *testing.T) {
	a := New(1, 0, 0, 0)
	b := New(2, 0, 0, 0)
	assert.True(t, a.Less(b))
	c := New(1, 1, 0, 0)
	assert.True(t, a.Less(c))
}

func TestPositionFromRoot(t *testing.T) {
	center := linalg.Vec3{}
	half := 1.0
	v := New(1, 0, 0, 0) // min corner
	p := v.Position(center, half)
	assert.InDelta(t, -1, p.X, 1e-12)
	assert.InDelta(t, -1, p.Y, 1e-12)
	assert.InDelta(t, -1, p.Z, 1e-12)

	v2 := New(1, 2, 2, 2) // max corner, dim=3
	p2 := v2.Position(center, half)
	assert.InDelta(t, 1, p2.X, 1e-12)
}

func TestIsNeighborAdjacentLevels(t *testing.T) {
	coarse := New(1, 0, 0, 0)
	fine := New(2, 1, 1, 1)
	assert.True(t, IsNeighbor(coarse, fine))

	far := New(2, 20, 20, 20)
	assert.False(t, IsNeighbor(coarse, far))
}

package dmfoctree

import (
	"testing"

	"github.com/simonfuhrmann/surfrecon/voxelindex"
	"github.com/stretchr/testify/assert"
)

func setVoxel(o *DmfOctree, level uint8, x, y, z uint64, dist, weight float32) {
	idx := voxelindex.New(level, x, y, z)
	o.voxels[idx] = &VoxelData{Dist: dist, Weight: weight}
}

func TestIterateCubesSkipsIncompleteCube(t *testing.T) {
	o := New()
	// Only 7 of the 8 corners at level 1 are set.
	corners := [][3]uint64{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1},
	}
	for _, c := range corners {
		setVoxel(o, 1, c[0], c[1], c[2], -0.1, 1)
	}

	var visited int
	o.IterateCubes(1, 0, func(Cube) { visited++ })
	assert.Equal(t, 0, visited)
}

func TestIterateCubesVisitsCompleteCubeInMcOrder(t *testing.T) {
	o := New()
	corners := [8][3]uint64{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	for i, c := range corners {
		setVoxel(o, 1, c[0], c[1], c[2], float32(i), 1)
	}

	var got Cube
	var visited int
	o.IterateCubes(1, 0, func(c Cube) { got = c; visited++ })
	assert.Equal(t, 1, visited)

	for k := 0; k < 8; k++ {
		want := corners[mcOrder[k]]
		x, y, z := got.Corners[k].Factor()
		assert.Equal(t, want[0], x)
		assert.Equal(t, want[1], y)
		assert.Equal(t, want[2], z)
		assert.Equal(t, float32(mcOrder[k]), got.Data[k].Dist)
	}
}

func TestIterateCubesRespectsMinWeight(t *testing.T) {
	o := New()
	corners := [8][3]uint64{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	for _, c := range corners {
		setVoxel(o, 1, c[0], c[1], c[2], -0.1, 0.5)
	}

	var visited int
	o.IterateCubes(1, 0.9, func(Cube) { visited++ })
	assert.Equal(t, 0, visited)

	visited = 0
	o.IterateCubes(1, 0.1, func(Cube) { visited++ })
	assert.Equal(t, 1, visited)
}

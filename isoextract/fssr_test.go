package isoextract

import (
	"testing"

	"github.com/simonfuhrmann/surfrecon/fssroctree"
	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/simonfuhrmann/surfrecon/voxelindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planeSamples(z float64, n int) []fssroctree.Sample {
	var out []fssroctree.Sample
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x := -1 + 2*float64(i)/float64(n-1)
			y := -1 + 2*float64(j)/float64(n-1)
			out = append(out, fssroctree.Sample{
				Pos:    linalg.Vec3{X: x, Y: y, Z: z},
				Normal: linalg.Vec3{X: 0, Y: 0, Z: 1},
				Scale:  0.5,
			})
		}
	}
	return out
}

func TestFromFssrOctreeFaceIndicesInRange(t *testing.T) {
	o := fssroctree.New(linalg.Vec3{}, 4)
	o.InsertSamples(planeSamples(0, 6))
	o.ComputeVoxels()

	m := FromFssrOctree(o)
	require.NotNil(t, m)
	// Whatever geometry a flat plane produces, every face index must
	// reference a real vertex.
	for _, idx := range m.Faces {
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, len(m.Vertices))
	}
}

func TestNeighborKeyLiftsCoarseToFineDepth(t *testing.T) {
	entries := []fssroctree.VoxelEntry{
		{Index: voxelindex.New(1, 0, 0, 0)},
		{Index: voxelindex.New(2, 0, 0, 0)},
	}
	nk := NewNeighborKey(entries)
	assert.Equal(t, uint8(2), nk.maxDepth)

	coarse := voxelindex.New(1, 1, 1, 1)
	fine := voxelindex.New(2, 2, 2, 2)
	assert.Equal(t, nk.globalID(coarse), nk.globalID(fine))
}

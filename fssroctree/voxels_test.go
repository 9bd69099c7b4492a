package fssroctree

import (
	"testing"

	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planeSamples(z float64, n int) []Sample {
	var out []Sample
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x := -1 + 2*float64(i)/float64(n-1)
			y := -1 + 2*float64(j)/float64(n-1)
			out = append(out, Sample{
				Pos:    linalg.Vec3{X: x, Y: y, Z: z},
				Normal: linalg.Vec3{X: 0, Y: 0, Z: 1},
				Scale:  0.5,
			})
		}
	}
	return out
}

func TestComputeVoxelsFindsConfidentCorners(t *testing.T) {
	o := New(linalg.Vec3{}, 4)
	o.InsertSamples(planeSamples(0, 5))

	voxels := o.ComputeVoxels()
	require.NotEmpty(t, voxels)

	entries := o.GetVoxels()
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i-1].Index.Less(entries[i].Index) || entries[i-1].Index.Equal(entries[i].Index))
	}
}

func TestLeafCornersUsesMcOrder(t *testing.T) {
	o := New(linalg.Vec3{}, 2)
	n := o.nodes[0]
	positions, indices := o.leafCorners(n)

	// Corner 0 in mcOrder is offset index 0: (-half,-half,-half).
	assert.InDelta(t, -1, positions[0].X, 1e-9)
	assert.InDelta(t, -1, positions[0].Y, 1e-9)
	assert.InDelta(t, -1, positions[0].Z, 1e-9)

	for _, idx := range indices {
		assert.Equal(t, n.depth, idx.Level)
	}
}

func TestVoxelDataUnset(t *testing.T) {
	var v VoxelData
	assert.True(t, v.Unset())
	v.Confidence = 1
	assert.False(t, v.Unset())
}

package isoextract

import (
	"testing"

	"github.com/simonfuhrmann/surfrecon/dmfoctree"
	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/simonfuhrmann/surfrecon/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quadMesh(z float64) *mesh.Mesh {
	m := mesh.New()
	m.Vertices = []linalg.Vec3{
		{X: -1, Y: -1, Z: z}, {X: 1, Y: -1, Z: z}, {X: 1, Y: 1, Z: z}, {X: -1, Y: 1, Z: z},
	}
	m.Faces = []int{0, 1, 2, 0, 2, 3}
	n := linalg.Vec3{X: 0, Y: 0, Z: 1}
	m.Normals = []linalg.Vec3{n, n, n, n}
	return m
}

func TestFromDmfOctreeExtractsPlaneSurface(t *testing.T) {
	o := dmfoctree.New(
		dmfoctree.WithCenter(linalg.Vec3{}, 2),
		dmfoctree.WithConfig(dmfoctree.Config{
			RampFactor:    5,
			SafetyBorder:  0.25,
			SamplingRate:  1,
			CoarserLevels: 0,
			ForcedLevel:   3,
		}),
	)
	o.InsertMesh(quadMesh(0), linalg.Vec3{X: 0, Y: 0, Z: 10})
	require.Greater(t, o.Len(), 0)

	m := FromDmfOctree(o, 3, 0)
	require.NotNil(t, m)
	for _, idx := range m.Faces {
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, len(m.Vertices))
	}
}

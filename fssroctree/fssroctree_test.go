package fssroctree

import (
	"testing"

	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootHasNoChildren(t *testing.T) {
	o := New(linalg.Vec3{}, 2)
	assert.Equal(t, 1, o.NodeCount())
	assert.True(t, o.nodes[0].isLeaf())
}

func TestInsertOneSettlesInScaleMatchedDepth(t *testing.T) {
	o := New(linalg.Vec3{}, 2, WithConfig(Config{ScaleRatio: 1}))
	s := Sample{Pos: linalg.Vec3{}, Normal: linalg.Vec3{X: 0, Y: 0, Z: 1}, Scale: 0.4}
	o.InsertSamples([]Sample{s})

	var leafCount int
	for i := range o.nodes {
		if o.nodes[i].isLeaf() && len(o.nodes[i].samples) > 0 {
			leafCount++
			// size must lie in [k/2*scale, k*scale) per the insertion rule.
			assert.GreaterOrEqual(t, o.nodes[i].size, 0.2)
			assert.Less(t, o.nodes[i].size, 0.4)
		}
	}
	assert.Equal(t, 1, leafCount)
}

func TestRefineOctreeRedistributesSamples(t *testing.T) {
	o := New(linalg.Vec3{}, 2)
	o.nodes[0].samples = []Sample{
		{Pos: linalg.Vec3{X: 0.5, Y: 0.5, Z: 0.5}},
		{Pos: linalg.Vec3{X: -0.5, Y: -0.5, Z: -0.5}},
	}
	o.RefineOctree()

	require.False(t, o.nodes[0].isLeaf())
	assert.Empty(t, o.nodes[0].samples)

	var total int
	for _, k := range o.nodes[0].children {
		total += len(o.nodes[k].samples)
	}
	assert.Equal(t, 2, total)
}

func TestClearResetsToSingleRoot(t *testing.T) {
	o := New(linalg.Vec3{X: 1}, 4)
	o.subdivide(0)
	o.Clear()
	assert.Equal(t, 1, o.NodeCount())
	assert.Equal(t, 1.0, o.RootCenter().X)
}

func TestOctantOfSelectsCorrectChild(t *testing.T) {
	center := linalg.Vec3{}
	assert.Equal(t, 0, octantOf(center, linalg.Vec3{X: -1, Y: -1, Z: -1}))
	assert.Equal(t, 7, octantOf(center, linalg.Vec3{X: 1, Y: 1, Z: 1}))
	assert.Equal(t, 1, octantOf(center, linalg.Vec3{X: 1, Y: -1, Z: -1}))
}

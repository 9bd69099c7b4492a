package isoextract

import (
	"github.com/simonfuhrmann/surfrecon/fssroctree"
	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/simonfuhrmann/surfrecon/mesh"
	"github.com/simonfuhrmann/surfrecon/voxelindex"
)

// NeighborKey is the adaptive-MC crack-avoidance aid from §4.5: rather
// than a full 3x3x3 per-depth neighbor table, this implementation lifts
// every corner's VoxelIndex to the finest depth seen anywhere in the
// octree before hashing it into the vertex-dedup key. A coarse leaf's
// corner and a fine leaf's corner that occupy the same world position
// then collide in the dedup map under the same global id, which is what
// actually needs to happen for the dual mesh to stay closed across a
// depth boundary — the 3x3x3 lookup structure itself is not needed
// because fssroctree's regularisation already guarantees every corner
// used here exists in the global voxel map.
type NeighborKey struct {
	maxDepth uint8
}

// NewNeighborKey scans entries for the deepest leaf depth present.
func NewNeighborKey(entries []fssroctree.VoxelEntry) *NeighborKey {
	var maxDepth uint8
	for _, e := range entries {
		if e.Index.Level > maxDepth {
			maxDepth = e.Index.Level
		}
	}
	return &NeighborKey{maxDepth: maxDepth}
}

// globalID lifts idx to the finest depth, producing an id that is shared
// by every leaf, regardless of its own depth, whose corner sits at the
// same world position.
func (k *NeighborKey) globalID(idx voxelindex.VoxelIndex) uint64 {
	if idx.Level == k.maxDepth {
		return idx.Index
	}
	x, y, z := idx.Factor()
	delta := k.maxDepth - idx.Level
	lifted := voxelindex.New(k.maxDepth, x<<delta, y<<delta, z<<delta)
	return lifted.Index
}

// FromFssrOctree extracts a closed triangle mesh from the most recent
// ComputeVoxels pass, walking every leaf as one MC cube and deduplicating
// vertices across leaves of different depth via NeighborKey.
func FromFssrOctree(o *fssroctree.Octree) *mesh.Mesh {
	entries := o.GetVoxels()
	byIndex := make(map[voxelindex.VoxelIndex]fssroctree.VoxelData, len(entries))
	for _, e := range entries {
		byIndex[e.Index] = e.Data
	}
	nk := NewNeighborKey(entries)

	acc := NewAccumulator()
	o.WalkLeaves(func(depth uint8, cornerIdx [8]voxelindex.VoxelIndex, cornerPos [8]linalg.Vec3) {
		var c Cube
		ok := true
		for i := 0; i < 8; i++ {
			data, present := byIndex[cornerIdx[i]]
			if !present {
				ok = false
				break
			}
			c.Pos[i] = cornerPos[i]
			c.Dist[i] = float64(data.Value)
			c.VID[i] = nk.globalID(cornerIdx[i])
			color := linalg.Vec3{X: float64(data.Color[0]), Y: float64(data.Color[1]), Z: float64(data.Color[2])}
			c.Color[i] = &color
		}
		if !ok {
			return
		}
		acc.AddCube(c)
	})

	return acc.toMesh()
}

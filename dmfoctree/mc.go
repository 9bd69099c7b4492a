package dmfoctree

import "github.com/simonfuhrmann/surfrecon/voxelindex"

// cubeOffsets are the 8 unit-cube corner offsets in the standard
// bottom-face-then-top-face order.
var cubeOffsets = [8][3]int64{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// mcOrder is the non-obvious reordering of cube vertices the dual mesher
// expects; preserved exactly per §9 (its provenance is the standard MC
// vertex convention, not this codebase).
var mcOrder = [8]int{0, 1, 5, 4, 2, 3, 7, 6}

// Cube is 8 coincident voxels forming one Marching-Cubes cell, gathered in
// mcOrder so the index directly matches isoextract's edge/triangle tables.
type Cube struct {
	Corners [8]voxelindex.VoxelIndex
	Data    [8]VoxelData
}

// IterateCubes visits every cube at atLevel whose 8 corners are all
// present with Weight > minWeight, skipping any cube that isn't (a
// missing or underconfident corner means the surface there is
// OutOfSupport, not an error).
func (o *DmfOctree) IterateCubes(atLevel uint8, minWeight float64, visit func(Cube)) {
	for _, e := range o.AtLevel(atLevel) {
		var cube Cube
		ok := true
		for k := 0; k < 8; k++ {
			off := cubeOffsets[mcOrder[k]]
			corner := e.Index.Navigate(off[0], off[1], off[2])
			data, present := o.Get(corner)
			if !present || float64(data.Weight) <= minWeight {
				ok = false
				break
			}
			cube.Corners[k] = corner
			cube.Data[k] = data
		}
		if ok {
			visit(cube)
		}
	}
}

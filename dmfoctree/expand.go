package dmfoctree

import (
	"github.com/simonfuhrmann/surfrecon/geomprim"
	"github.com/simonfuhrmann/surfrecon/voxelindex"
)

// ensureContains grows the root, one octant-doubling at a time, until box
// lies within [center-halfsize, center+halfsize]^3. Every stored voxel is
// remapped so its world position is unchanged (property 2, §8).
func (o *DmfOctree) ensureContains(box geomprim.AABB) {
	const maxExpansions = 64
	for i := 0; i < maxExpansions; i++ {
		o.mu.Lock()
		lo := o.Center.SubScalar(o.Halfsize)
		hi := o.Center.AddScalar(o.Halfsize)
		if box.Min.X >= lo.X && box.Min.Y >= lo.Y && box.Min.Z >= lo.Z &&
			box.Max.X <= hi.X && box.Max.Y <= hi.Y && box.Max.Z <= hi.Z {
			o.mu.Unlock()
			return
		}
		bits := [3]int{0, 0, 0}
		axes := []struct {
			boxMin, boxMax, lo, hi float64
		}{
			{box.Min.X, box.Max.X, lo.X, hi.X},
			{box.Min.Y, box.Max.Y, lo.Y, hi.Y},
			{box.Min.Z, box.Max.Z, lo.Z, hi.Z},
		}
		for a, ax := range axes {
			needNeg := ax.boxMin < ax.lo
			needPos := ax.boxMax > ax.hi
			switch {
			case needNeg && !needPos:
				bits[a] = 1
			case needPos && !needNeg:
				bits[a] = 0
			case needNeg && needPos:
				// overflow on both sides: pick the larger deficit, the
				// remaining excess is resolved by a further iteration.
				if (ax.lo - ax.boxMin) > (ax.boxMax - ax.hi) {
					bits[a] = 1
				} else {
					bits[a] = 0
				}
			}
		}
		o.expandOnceLocked(bits)
		o.mu.Unlock()
	}
}

// expandOnceLocked doubles halfsize and remaps every stored voxel. Caller
// must hold o.mu.
func (o *DmfOctree) expandOnceLocked(bits [3]int) {
	if bits[0] == 0 {
		o.Center.X += o.Halfsize
	} else {
		o.Center.X -= o.Halfsize
	}
	if bits[1] == 0 {
		o.Center.Y += o.Halfsize
	} else {
		o.Center.Y -= o.Halfsize
	}
	if bits[2] == 0 {
		o.Center.Z += o.Halfsize
	} else {
		o.Center.Z -= o.Halfsize
	}
	o.Halfsize *= 2

	newVoxels := make(map[voxelindex.VoxelIndex]*VoxelData, len(o.voxels))
	for idx, data := range o.voxels {
		x, y, z := idx.Factor()
		shift := uint64(1) << idx.Level
		nx := x + uint64(bits[0])*shift
		ny := y + uint64(bits[1])*shift
		nz := z + uint64(bits[2])*shift
		newIdx := voxelindex.New(idx.Level+1, nx, ny, nz)
		newVoxels[newIdx] = data
	}
	o.voxels = newVoxels
}

package dmfoctree

import "github.com/simonfuhrmann/surfrecon/voxelindex"

// RemoveTwins eliminates duplicate voxels that represent the same world
// corner at multiple levels: for every voxel v at level L, it walks
// Descend() down to level 20 checking for coincident descendants, keeps
// only the deepest one present, and erases the rest.
func (o *DmfOctree) RemoveTwins() {
	const maxLevel = 20
	o.mu.Lock()
	defer o.mu.Unlock()

	for idx := range o.voxels {
		if idx.Level >= maxLevel {
			continue
		}
		cur := idx
		var deepest voxelindex.VoxelIndex
		deepestFound := false
		ancestors := []voxelindex.VoxelIndex{}
		for l := idx.Level; l < maxLevel; l++ {
			if _, ok := o.voxels[cur]; ok {
				deepest = cur
				deepestFound = true
				ancestors = append(ancestors, cur)
			}
			cur = cur.Descend()
		}
		if !deepestFound || len(ancestors) <= 1 {
			continue
		}
		for _, a := range ancestors {
			if a != deepest {
				delete(o.voxels, a)
			}
		}
	}
}

// BoostVoxels diffuses reliable coarse distances into underconfident fine
// voxels: every voxel below confidence threshold has its up-to-8
// parent-level coincident voxels located (derived from each axis
// coordinate's parity); if all are present, their distances are averaged
// and blended into the voxel with a weight capped at threshold.
func (o *DmfOctree) BoostVoxels(threshold float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	type update struct {
		idx voxelindex.VoxelIndex
		d   float32
		w   float32
	}
	var updates []update

	for idx, data := range o.voxels {
		if float64(data.Weight) >= threshold || idx.Level == 0 {
			continue
		}
		parents, ok := o.coincidentParents(idx)
		if !ok {
			continue
		}
		sumDist := 0.0
		minParentWeight := float64(parents[0].Weight)
		for _, p := range parents {
			sumDist += float64(p.Dist)
			if float64(p.Weight) < minParentWeight {
				minParentWeight = float64(p.Weight)
			}
		}
		avgDist := sumDist / float64(len(parents))

		pw := threshold
		if minParentWeight < pw {
			pw = minParentWeight
		}
		pw = pw * (threshold - float64(data.Weight)) / threshold
		if pw < 0 {
			pw = 0
		}

		w0 := float64(data.Weight)
		w1 := w0 + pw
		var d1 float64
		if w1 > 0 {
			d1 = (w0*float64(data.Dist) + pw*avgDist) / w1
		} else {
			d1 = float64(data.Dist)
		}
		updates = append(updates, update{idx: idx, d: float32(d1), w: float32(w1)})
	}

	for _, u := range updates {
		o.voxels[u.idx].Dist = u.d
		o.voxels[u.idx].Weight = u.w
	}
}

// coincidentParents finds the <=8 parent-level voxels coincident with idx,
// derived from the parity of each axis coordinate: a corner at an odd
// coordinate on an axis sits between two parent-level corners on that
// axis, so every combination of "round up / round down" across the odd
// axes yields a candidate parent corner.
func (o *DmfOctree) coincidentParents(idx voxelindex.VoxelIndex) ([]VoxelData, bool) {
	if idx.Level == 0 {
		return nil, false
	}
	x, y, z := idx.Factor()
	parentLevel := idx.Level - 1

	oddX, oddY, oddZ := x%2 == 1, y%2 == 1, z%2 == 1
	choicesFor := func(odd bool, coord uint64) []uint64 {
		if !odd {
			return []uint64{coord / 2}
		}
		return []uint64{coord / 2, coord/2 + 1}
	}
	xs := choicesFor(oddX, x)
	ys := choicesFor(oddY, y)
	zs := choicesFor(oddZ, z)

	var parents []VoxelData
	for _, px := range xs {
		for _, py := range ys {
			for _, pz := range zs {
				pidx := voxelindex.New(parentLevel, px, py, pz)
				if !pidx.Valid() {
					return nil, false
				}
				pd, ok := o.voxels[pidx]
				if !ok {
					return nil, false
				}
				parents = append(parents, *pd)
			}
		}
	}
	if len(parents) == 0 {
		return nil, false
	}
	return parents, true
}

// RemoveUnconfident deletes every voxel with Weight below threshold.
func (o *DmfOctree) RemoveUnconfident(threshold float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for idx, data := range o.voxels {
		if float64(data.Weight) < threshold {
			delete(o.voxels, idx)
		}
	}
}

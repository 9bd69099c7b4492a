package fssroctree

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/simonfuhrmann/surfrecon/fssrifn"
	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/simonfuhrmann/surfrecon/voxelindex"
)

// VoxelData is the FSSR payload at a voxel corner: the implicit function
// value, its confidence (sum of contributing weights), a weighted color,
// and the weighted-average contributing scale.
type VoxelData struct {
	Value      float32
	Confidence float32
	Color      [3]float32
	Scale      float32
}

// Unset reports whether no sample contributed to this corner.
func (v VoxelData) Unset() bool { return v.Confidence == 0 }

// indexedSample wraps a Sample so it can be stored in the rtreego index;
// Bounds is a cube of edge 1e-6 with its minimum corner at the sample
// position.
type indexedSample struct {
	sample Sample
}

func (s indexedSample) Bounds() *rtreego.Rect {
	const eps = 1e-6
	p := rtreego.Point{s.sample.Pos.X, s.sample.Pos.Y, s.sample.Pos.Z}
	r, err := rtreego.NewRect(p, []float64{eps, eps, eps})
	if err != nil {
		panic(err) // degenerate lengths only happen on a malformed eps
	}
	return r
}

// buildIndex gathers every sample stored in any leaf into an rtreego
// index for radius queries during voxel computation.
func (o *Octree) buildIndex() *rtreego.Rtree {
	tree := rtreego.NewTree(3, 4, 16)
	for i := range o.nodes {
		for _, s := range o.nodes[i].samples {
			tree.Insert(indexedSample{sample: s})
		}
	}
	return tree
}

// gatherNearby returns every sample whose weighting-kernel support could
// reach pos: a cube search of the index at radius 3*scale around pos,
// scale being the coarsest among the leaf's own samples (or, if the leaf
// is empty, the node's own cell size as a fallback bandwidth).
func gatherNearby(tree *rtreego.Rtree, pos linalg.Vec3, radius float64) []Sample {
	if radius <= 0 {
		radius = 1e-6
	}
	lengths := []float64{2 * radius, 2 * radius, 2 * radius}
	p := rtreego.Point{pos.X - radius, pos.Y - radius, pos.Z - radius}
	rect, err := rtreego.NewRect(p, lengths)
	if err != nil {
		return nil
	}
	hits := tree.SearchIntersect(rect)
	out := make([]Sample, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(indexedSample).sample)
	}
	return out
}

// leafCorners returns the 8 corner world positions of a leaf in MC vertex
// order {0,1,5,4,2,3,7,6} — the same reordering dmfoctree's accessor
// uses — along with the VoxelIndex for each at the leaf's depth.
func (o *Octree) leafCorners(n node) ([8]linalg.Vec3, [8]voxelindex.VoxelIndex) {
	half := n.size / 2
	offsets := [8][3]float64{
		{-half, -half, -half}, {half, -half, -half}, {half, half, -half}, {-half, half, -half},
		{-half, -half, half}, {half, -half, half}, {half, half, half}, {-half, half, half},
	}
	mcOrder := [8]int{0, 1, 5, 4, 2, 3, 7, 6}

	rootLo := o.RootCenter().SubScalar(o.RootHalfsize())
	denom := o.RootHalfsize() * 2
	dim := voxelindex.Dim(n.depth)

	var positions [8]linalg.Vec3
	var indices [8]voxelindex.VoxelIndex
	for k := 0; k < 8; k++ {
		off := offsets[mcOrder[k]]
		pos := linalg.Vec3{X: n.center.X + off[0], Y: n.center.Y + off[1], Z: n.center.Z + off[2]}
		positions[k] = pos

		gx := roundAxis((pos.X-rootLo.X)/denom, dim)
		gy := roundAxis((pos.Y-rootLo.Y)/denom, dim)
		gz := roundAxis((pos.Z-rootLo.Z)/denom, dim)
		indices[k] = voxelindex.New(n.depth, gx, gy, gz)
	}
	return positions, indices
}

func roundAxis(frac float64, dim uint64) uint64 {
	g := frac * float64(dim-1)
	if g < 0 {
		return 0
	}
	gi := uint64(g + 0.5)
	if gi >= dim {
		return dim - 1
	}
	return gi
}

// VoxelEntry pairs a VoxelIndex with its computed data.
type VoxelEntry struct {
	Index voxelindex.VoxelIndex
	Data  VoxelData
}

// GetVoxels returns every voxel computed by the most recent ComputeVoxels
// call, in ascending (level,index) order.
func (o *Octree) GetVoxels() []VoxelEntry {
	out := make([]VoxelEntry, 0, len(o.voxels))
	for idx, data := range o.voxels {
		out = append(out, VoxelEntry{Index: idx, Data: data})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index.Less(out[j].Index) })
	return out
}

// WalkLeaves calls visit once per leaf node with that leaf's depth and its
// 8 corner VoxelIndex/position pairs in MC vertex order, for callers that
// extract a surface directly from the octree structure (isoextract).
func (o *Octree) WalkLeaves(visit func(depth uint8, cornerIdx [8]voxelindex.VoxelIndex, cornerPos [8]linalg.Vec3)) {
	for _, n := range o.nodes {
		if !n.isLeaf() {
			continue
		}
		positions, indices := o.leafCorners(n)
		visit(n.depth, indices, positions)
	}
}

// ComputeVoxels evaluates the implicit function at every leaf corner and
// caches the resulting (VoxelIndex, VoxelData) map for GetVoxels. Leaf
// corners computed identically by sibling leaves overwrite with the same
// value (the evaluation is a pure function of position and the sample
// set).
func (o *Octree) ComputeVoxels() map[voxelindex.VoxelIndex]VoxelData {
	tree := o.buildIndex()
	out := make(map[voxelindex.VoxelIndex]VoxelData)

	for _, n := range o.nodes {
		if !n.isLeaf() {
			continue
		}
		radius := 3 * n.size
		if len(n.samples) > 0 {
			maxScale := n.samples[0].Scale
			for _, s := range n.samples[1:] {
				if s.Scale > maxScale {
					maxScale = s.Scale
				}
			}
			radius = 3 * maxScale
		}

		positions, indices := o.leafCorners(n)
		for k := 0; k < 8; k++ {
			if _, done := out[indices[k]]; done {
				continue
			}
			nearby := gatherNearby(tree, positions[k], radius)
			if len(nearby) == 0 {
				continue
			}
			r := fssrifn.Evaluate(positions[k], nearby)
			if r.Confidence == 0 {
				continue
			}
			out[indices[k]] = VoxelData{
				Value:      float32(r.Value),
				Confidence: float32(r.Confidence),
				Color:      [3]float32{float32(r.Color.X), float32(r.Color.Y), float32(r.Color.Z)},
				Scale:      float32(r.Scale),
			}
		}
	}
	o.voxels = out
	return out
}

// Package voxelindex implements the implicit (level, linear-index)
// addressing scheme shared by dmfoctree and fssroctree: a VoxelIndex names
// a corner of a cell at a given octree level in a regular grid of
// edge-dimension (1<<level)+1, without any cell actually being stored.
package voxelindex

import "github.com/simonfuhrmann/surfrecon/linalg"

// VoxelIndex addresses a single grid corner at a given octree level.
type VoxelIndex struct {
	Level uint8
	Index uint64
}

// Dim returns (1<<level)+1, the number of corners per axis at that level.
func Dim(level uint8) uint64 { return (uint64(1) << level) + 1 }

// New builds a VoxelIndex from level and packed axis coordinates.
func New(level uint8, x, y, z uint64) VoxelIndex {
	v := VoxelIndex{Level: level}
	v.SetFrom(x, y, z)
	return v
}

// SetFrom packs (x,y,z) into v.Index for v's current Level.
func (v *VoxelIndex) SetFrom(x, y, z uint64) {
	dim := Dim(v.Level)
	v.Index = x + y*dim + z*dim*dim
}

// Factor unpacks v.Index into (x,y,z) at v's Level.
func (v VoxelIndex) Factor() (x, y, z uint64) {
	dim := Dim(v.Level)
	x = v.Index % dim
	rest := v.Index / dim
	y = rest % dim
	z = rest / dim
	return
}

// Valid reports whether Index addresses a corner inside the (1<<level)+1
// cube, i.e. index < dim^3.
func (v VoxelIndex) Valid() bool {
	dim := Dim(v.Level)
	return v.Index < dim*dim*dim
}

// Descend returns the same corner one level deeper: coordinates double,
// level increases by one.
func (v VoxelIndex) Descend() VoxelIndex {
	x, y, z := v.Factor()
	nv := VoxelIndex{Level: v.Level + 1}
	nv.SetFrom(x*2, y*2, z*2)
	return nv
}

// DescendN applies Descend n times.
func (v VoxelIndex) DescendN(n int) VoxelIndex {
	for i := 0; i < n; i++ {
		v = v.Descend()
	}
	return v
}

// Navigate returns the same-level neighbor offset by (dx,dy,dz), clamping
// to 0 on underflow (no wraparound) and to dim-1 on overflow.
func (v VoxelIndex) Navigate(dx, dy, dz int64) VoxelIndex {
	x, y, z := v.Factor()
	dim := Dim(v.Level)
	nx := clampAxis(x, dx, dim)
	ny := clampAxis(y, dy, dim)
	nz := clampAxis(z, dz, dim)
	nv := VoxelIndex{Level: v.Level}
	nv.SetFrom(nx, ny, nz)
	return nv
}

func clampAxis(cur uint64, delta int64, dim uint64) uint64 {
	v := int64(cur) + delta
	if v < 0 {
		return 0
	}
	if v >= int64(dim) {
		return dim - 1
	}
	return uint64(v)
}

// Position maps v to a world-space point given the octree root center and
// half-size: pos[i] = center[i] - halfsize + 2*halfsize*(idx[i]/(dim-1)).
func (v VoxelIndex) Position(center linalg.Vec3, halfsize float64) linalg.Vec3 {
	x, y, z := v.Factor()
	dim := Dim(v.Level)
	denom := float64(dim - 1)
	return linalg.Vec3{
		X: center.X - halfsize + 2*halfsize*(float64(x)/denom),
		Y: center.Y - halfsize + 2*halfsize*(float64(y)/denom),
		Z: center.Z - halfsize + 2*halfsize*(float64(z)/denom),
	}
}

// Less implements the total order (l1,i1) < (l2,i2) iff l1<l2 or
// (l1==l2 and i1<i2).
func (v VoxelIndex) Less(o VoxelIndex) bool {
	if v.Level != o.Level {
		return v.Level < o.Level
	}
	return v.Index < o.Index
}

// Equal reports exact (level,index) equality.
func (v VoxelIndex) Equal(o VoxelIndex) bool {
	return v.Level == o.Level && v.Index == o.Index
}

// IsNeighbor tests whether two (possibly different-level) voxel indices
// address grid corners within a radius of (1<<delta)+2 of each other after
// lifting the coarser index to the finer level's resolution by a bit
// shift. The "+2" (rather than "+1") is the author's committed choice per
// the spec's own open question about this radius; it is kept exactly.
func IsNeighbor(a, b VoxelIndex) bool {
	fa, fb := a, b
	var delta uint8
	if a.Level < b.Level {
		delta = b.Level - a.Level
		fa = liftTo(a, b.Level)
	} else if b.Level < a.Level {
		delta = a.Level - b.Level
		fb = liftTo(b, a.Level)
	}
	radius := int64((uint64(1) << delta) + 2)

	ax, ay, az := fa.Factor()
	bx, by, bz := fb.Factor()
	return within(ax, bx, radius) && within(ay, by, radius) && within(az, bz, radius)
}

func within(a, b uint64, radius int64) bool {
	d := int64(a) - int64(b)
	if d < 0 {
		d = -d
	}
	return d <= radius
}

// liftTo re-expresses a coarse-level index at a finer level by shifting
// each axis coordinate left by the level delta (same world position, finer
// grid resolution).
func liftTo(v VoxelIndex, finerLevel uint8) VoxelIndex {
	delta := finerLevel - v.Level
	x, y, z := v.Factor()
	nv := VoxelIndex{Level: finerLevel}
	nv.SetFrom(x<<delta, y<<delta, z<<delta)
	return nv
}

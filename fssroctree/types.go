// Package fssroctree implements the adaptive sparse octree used by the
// FSSR path: an arena of explicit nodes (indices, not pointers, so there
// are no back-pointer cycles), sample insertion by scale-matched depth,
// neighbor refinement, regularisation to 8-child inner nodes, and leaf
// voxel enumeration.
package fssroctree

import (
	"github.com/simonfuhrmann/surfrecon/fssrifn"
	"github.com/simonfuhrmann/surfrecon/internal/logx"
	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/simonfuhrmann/surfrecon/voxelindex"
)

// Sample is an alias for the sample type fssrifn evaluates against, kept
// so callers of this package never need to import fssrifn directly.
type Sample = fssrifn.Sample

// noChild marks an empty child slot in the arena.
const noChild = -1

// node is one cell of the octree, addressed by its arena index rather
// than a pointer, so the tree can be regularised and walked without
// worrying about back-pointers.
type node struct {
	center   linalg.Vec3
	size     float64 // edge length of the cube cell
	depth    uint8
	children [8]int32
	samples  []Sample
}

func (n *node) isLeaf() bool { return n.children[0] == noChild }

// Config holds the FSSR insertion/refinement tuning knobs.
type Config struct {
	// ScaleRatio (k) — a sample settles in the first node whose size is
	// in [k/2*scale, k*scale]; k=1 is the spec's typical default.
	ScaleRatio float64
}

// DefaultConfig returns k=1.
func DefaultConfig() Config { return Config{ScaleRatio: 1} }

// Octree is the FSSR adaptive sparse octree.
type Octree struct {
	Config Config

	nodes  []node
	voxels map[voxelindex.VoxelIndex]VoxelData
	log    *logx.Logger
}

// Option configures an Octree at construction.
type Option func(*Octree)

// WithLogger installs a structured logger.
func WithLogger(l *logx.Logger) Option {
	return func(o *Octree) { o.log = l }
}

// WithConfig overrides the default Config.
func WithConfig(c Config) Option {
	return func(o *Octree) { o.Config = c }
}

// New builds an empty octree rooted at center with the given edge length.
func New(center linalg.Vec3, size float64, opts ...Option) *Octree {
	o := &Octree{
		Config: DefaultConfig(),
		nodes:  []node{{center: center, size: size, children: [8]int32{noChild, noChild, noChild, noChild, noChild, noChild, noChild, noChild}}},
		log:    logx.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RootCenter and RootHalfsize describe the domain the octree's
// VoxelIndex keys are expressed relative to, for Position lookups.
func (o *Octree) RootCenter() linalg.Vec3  { return o.nodes[0].center }
func (o *Octree) RootHalfsize() float64    { return o.nodes[0].size / 2 }

// Clear empties the octree back to a single root node, keeping its
// center and size.
func (o *Octree) Clear() {
	root := o.nodes[0]
	root.children = [8]int32{noChild, noChild, noChild, noChild, noChild, noChild, noChild, noChild}
	root.samples = nil
	o.nodes = []node{root}
	o.voxels = nil
}

// NodeCount returns the number of allocated nodes (leaves and inner).
func (o *Octree) NodeCount() int { return len(o.nodes) }

// childCenter returns the center of octant k (0..7, bit i selects + on
// axis i) of a cell with the given center/size.
func childCenter(center linalg.Vec3, size float64, k int) linalg.Vec3 {
	q := size / 4
	dx, dy, dz := q, q, q
	if k&1 == 0 {
		dx = -dx
	}
	if k&2 == 0 {
		dy = -dy
	}
	if k&4 == 0 {
		dz = -dz
	}
	return linalg.Vec3{X: center.X + dx, Y: center.Y + dy, Z: center.Z + dz}
}

// octantOf returns which of the 8 children of center/size contains pos.
func octantOf(center, pos linalg.Vec3) int {
	k := 0
	if pos.X >= center.X {
		k |= 1
	}
	if pos.Y >= center.Y {
		k |= 2
	}
	if pos.Z >= center.Z {
		k |= 4
	}
	return k
}

// subdivide allocates 8 children for node i, which must currently be a
// leaf, and returns their arena indices.
func (o *Octree) subdivide(i int32) [8]int32 {
	n := o.nodes[i]
	var kids [8]int32
	for k := 0; k < 8; k++ {
		kids[k] = int32(len(o.nodes))
		o.nodes = append(o.nodes, node{
			center:   childCenter(n.center, n.size, k),
			size:     n.size / 2,
			depth:    n.depth + 1,
			children: [8]int32{noChild, noChild, noChild, noChild, noChild, noChild, noChild, noChild},
		})
	}
	o.nodes[i].children = kids
	return kids
}

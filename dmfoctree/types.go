// Package dmfoctree implements the sparse, implicit signed-distance
// octree used by the DMFusion path: posed-triangle TSDF fusion, root
// expansion, twin removal, confidence boosting, slice extraction, and the
// Marching-Cubes accessor consumed by isoextract.
package dmfoctree

import (
	"sync"

	"github.com/simonfuhrmann/surfrecon/internal/logx"
	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/simonfuhrmann/surfrecon/voxelindex"
)

// VoxelData is the TSDF payload stored at a voxel corner. Weight==0 means
// "unset"; Dist<0 is inside the surface, Dist>0 is outside, and the
// iso-surface is the zero crossing.
type VoxelData struct {
	Dist   float32
	Weight float32
	Color  [4]float32 // RGB + weight accumulator for color blending.
}

// Unset reports whether the voxel has never been written.
func (v VoxelData) Unset() bool { return v.Weight == 0 }

// OctreeTriangle is the unit of volumetric fusion: three vertices, three
// per-vertex normals, and optional per-vertex colors/confidences.
type OctreeTriangle struct {
	V             [3]linalg.Vec3
	N             [3]linalg.Vec3
	Color         *[3]linalg.Vec3 // nil if the triangle carries no color
	Confidence    *[3]float64     // nil if the triangle carries no confidence
}

// Config holds the tunable fusion parameters from §4.2.
type Config struct {
	RampFactor    float64
	SafetyBorder  float64
	SamplingRate  float64
	CoarserLevels int
	AllowExpansion bool
	ForcedLevel   int
	ForcedAABB    bool
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		RampFactor:     5,
		SafetyBorder:   0.25,
		SamplingRate:   1,
		CoarserLevels:  2,
		AllowExpansion: true,
		ForcedLevel:    0,
		ForcedAABB:     false,
	}
}

// DmfOctree is the sparse, implicit signed-distance octree: only occupied
// voxels are stored, and the hierarchy is reconstructed on demand from
// (level,index) addressing rather than materialized as nodes.
type DmfOctree struct {
	Center   linalg.Vec3
	Halfsize float64
	Config   Config

	mu     sync.Mutex
	voxels map[voxelindex.VoxelIndex]*VoxelData
	log    *logx.Logger
}

// Option configures a DmfOctree at construction time.
type Option func(*DmfOctree)

// WithLogger installs a structured logger for in-band degeneracy reports.
func WithLogger(l *logx.Logger) Option {
	return func(o *DmfOctree) { o.log = l }
}

// WithCenter sets the initial root center and half-size.
func WithCenter(center linalg.Vec3, halfsize float64) Option {
	return func(o *DmfOctree) {
		o.Center = center
		o.Halfsize = halfsize
	}
}

// WithConfig overrides the default Config.
func WithConfig(c Config) Option {
	return func(o *DmfOctree) { o.Config = c }
}

// New builds an empty DmfOctree rooted at the origin with half-size 1,
// overridable via options.
func New(opts ...Option) *DmfOctree {
	o := &DmfOctree{
		Center:   linalg.Vec3{},
		Halfsize: 1,
		Config:   DefaultConfig(),
		voxels:   make(map[voxelindex.VoxelIndex]*VoxelData),
		log:      logx.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Len returns the number of occupied voxels.
func (o *DmfOctree) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.voxels)
}

// Get returns the voxel at idx and whether it is present.
func (o *DmfOctree) Get(idx voxelindex.VoxelIndex) (VoxelData, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.voxels[idx]
	if !ok {
		return VoxelData{}, false
	}
	return *v, true
}

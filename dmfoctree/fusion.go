package dmfoctree

import (
	"math"
	"runtime"
	"sync"

	"github.com/simonfuhrmann/surfrecon/geomprim"
	meshpkg "github.com/simonfuhrmann/surfrecon/mesh"
	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/simonfuhrmann/surfrecon/voxelindex"
)

// InsertMesh fuses every triangle of m into the volume as seen from camPos,
// dispatching triangles to a worker pool (triangle candidate evaluation is
// embarrassingly parallel; the per-voxel blend update is serialized inside
// a single mutex per §5).
func (o *DmfOctree) InsertMesh(m *meshpkg.Mesh, camPos linalg.Vec3) {
	n := m.NumFaces()
	jobs := make(chan int, n)
	var wg sync.WaitGroup
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				tri := triangleFromMesh(m, f)
				_, _ = o.InsertTriangle(tri, camPos, 1.0)
			}
		}()
	}
	for f := 0; f < n; f++ {
		jobs <- f
	}
	close(jobs)
	wg.Wait()
}

func triangleFromMesh(m *meshpkg.Mesh, f int) OctreeTriangle {
	ia, ib, ic := m.Face(f)
	tri := OctreeTriangle{V: [3]linalg.Vec3{m.Vertices[ia], m.Vertices[ib], m.Vertices[ic]}}
	if m.Normals != nil {
		tri.N = [3]linalg.Vec3{m.Normals[ia], m.Normals[ib], m.Normals[ic]}
	}
	if m.Colors != nil {
		c := [3]linalg.Vec3{m.Colors[ia], m.Colors[ib], m.Colors[ic]}
		tri.Color = &c
	}
	if m.Confidences != nil {
		c := [3]float64{m.Confidences[ia], m.Confidences[ib], m.Confidences[ic]}
		tri.Confidence = &c
	}
	return tri
}

// InsertTriangle fuses a single posed triangle into the volume, returning
// the (finest) octree level chosen for it.
func (o *DmfOctree) InsertTriangle(tri OctreeTriangle, camPos linalg.Vec3, levelWeight float64) (int, error) {
	minEdge := minEdgeLength(tri)
	if minEdge <= 0 {
		return 0, nil
	}

	if o.Config.AllowExpansion && !o.Config.ForcedAABB {
		o.ensureContains(geomprim.FromPoints(tri.V[:]))
	}

	var level int
	if o.Config.ForcedLevel > 0 {
		level = o.Config.ForcedLevel
		o.fuseAtLevel(tri, camPos, level, levelWeight)
		return level, nil
	}

	level = int(math.Ceil(math.Log2(2 * o.Halfsize / minEdge * o.Config.SamplingRate)))
	if level < 0 {
		level = 0
	}
	for l := level; l >= level-o.Config.CoarserLevels && l >= 0; l-- {
		o.fuseAtLevel(tri, camPos, l, levelWeight)
	}
	return level, nil
}

func minEdgeLength(tri OctreeTriangle) float64 {
	e0 := tri.V[1].Sub(tri.V[0]).Length()
	e1 := tri.V[2].Sub(tri.V[1]).Length()
	e2 := tri.V[0].Sub(tri.V[2]).Length()
	return math.Min(e0, math.Min(e1, e2))
}

func (o *DmfOctree) fuseAtLevel(tri OctreeTriangle, camPos linalg.Vec3, level int, levelWeight float64) {
	cellSize := 2 * o.Halfsize / math.Pow(2, float64(level))
	r := o.Config.RampFactor * cellSize

	var extruded []linalg.Vec3
	for i := 0; i < 3; i++ {
		dir := tri.V[i].Sub(camPos).Normalize()
		extruded = append(extruded, tri.V[i].Add(dir.Scale(r)), tri.V[i].Sub(dir.Scale(r)))
	}
	box := geomprim.FromPoints(extruded).Dilate(0.1 * cellSize)

	minX, minY, minZ, maxX, maxY, maxZ := o.boxToVoxelRange(box, uint8(level))

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				idx := voxelindex.New(uint8(level), x, y, z)
				if !idx.Valid() {
					continue
				}
				o.fuseVoxel(idx, tri, camPos, r, levelWeight)
			}
		}
	}
}

// boxToVoxelRange converts a world-space AABB to an inclusive [min,max]
// integer voxel coordinate range at the given level, clamped to the grid.
func (o *DmfOctree) boxToVoxelRange(box geomprim.AABB, level uint8) (minX, minY, minZ, maxX, maxY, maxZ uint64) {
	dim := voxelindex.Dim(level)
	toIdx := func(worldCoord, centerCoord float64) uint64 {
		t := (worldCoord - (centerCoord - o.Halfsize)) / (2 * o.Halfsize) * float64(dim-1)
		if t < 0 {
			t = 0
		}
		if t > float64(dim-1) {
			t = float64(dim - 1)
		}
		return uint64(math.Floor(t))
	}
	toIdxCeil := func(worldCoord, centerCoord float64) uint64 {
		t := (worldCoord - (centerCoord - o.Halfsize)) / (2 * o.Halfsize) * float64(dim-1)
		if t < 0 {
			t = 0
		}
		if t > float64(dim-1) {
			t = float64(dim - 1)
		}
		return uint64(math.Ceil(t))
	}
	minX = toIdx(box.Min.X, o.Center.X)
	minY = toIdx(box.Min.Y, o.Center.Y)
	minZ = toIdx(box.Min.Z, o.Center.Z)
	maxX = toIdxCeil(box.Max.X, o.Center.X)
	maxY = toIdxCeil(box.Max.Y, o.Center.Y)
	maxZ = toIdxCeil(box.Max.Z, o.Center.Z)
	return
}

func (o *DmfOctree) fuseVoxel(idx voxelindex.VoxelIndex, tri OctreeTriangle, camPos linalg.Vec3, r, levelWeight float64) {
	v := idx.Position(o.Center, o.Halfsize)
	toVoxel := v.Sub(camPos)
	dist := toVoxel.Length()
	if dist < 1e-12 {
		return
	}
	rhat := toVoxel.Scale(1 / dist)

	hit, t, u, bw := geomprim.RayTriangleIntersect(camPos, rhat, tri.V[0], tri.V[1], tri.V[2])
	if !hit {
		return
	}
	if t < 0 {
		// Hit is behind the camera: reported in-band, never an error.
		o.log.Warn("dmfoctree.fuseVoxel", "triangle hit behind camera", nil)
		return
	}
	d := t - dist
	if math.Abs(d) > r {
		return
	}

	w0 := 1 - u - bw
	normal := tri.N[0].Scale(w0).Add(tri.N[1].Scale(u)).Add(tri.N[2].Scale(bw)).Normalize()
	angleWeight := -normal.Dot(rhat)
	if angleWeight <= 0 {
		o.log.Warn("dmfoctree.fuseVoxel", "back-facing fusion ray skipped", nil)
		return
	}

	distWeight := 2 * (1 - math.Abs(d)/r)
	if distWeight < 0 {
		distWeight = 0
	}
	if distWeight > 1 {
		distWeight = 1
	}

	confWeight := 1.0
	if tri.Confidence != nil {
		confWeight = w0*tri.Confidence[0] + u*tri.Confidence[1] + bw*tri.Confidence[2]
	}

	weight := angleWeight * distWeight * confWeight * levelWeight
	if weight <= 0 {
		return
	}

	var color [3]float32
	if tri.Color != nil {
		c := tri.Color[0].Scale(w0).Add(tri.Color[1].Scale(u)).Add(tri.Color[2].Scale(bw))
		color = [3]float32{float32(c.X), float32(c.Y), float32(c.Z)}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	existing, ok := o.voxels[idx]
	if !ok {
		nd := &VoxelData{Dist: float32(d), Weight: float32(weight)}
		nd.Color = [4]float32{color[0], color[1], color[2], float32(weight)}
		o.voxels[idx] = nd
		return
	}
	w0f, d0 := float64(existing.Weight), float64(existing.Dist)
	w1 := w0f + weight
	d1 := (w0f*d0 + weight*d) / w1
	existing.Dist = float32(d1)
	existing.Weight = float32(w1)

	cw0 := float64(existing.Color[3])
	cw1 := cw0 + weight
	if cw1 > 0 {
		existing.Color[0] = float32((float64(existing.Color[0])*cw0 + float64(color[0])*weight) / cw1)
		existing.Color[1] = float32((float64(existing.Color[1])*cw0 + float64(color[1])*weight) / cw1)
		existing.Color[2] = float32((float64(existing.Color[2])*cw0 + float64(color[2])*weight) / cw1)
		existing.Color[3] = float32(cw1)
	}
}

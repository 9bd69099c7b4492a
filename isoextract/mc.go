package isoextract

import "github.com/simonfuhrmann/surfrecon/linalg"

// Cube is one Marching-Cubes cell: 8 corner positions, signed distances
// (the sign convention from §3 — dist<0 inside, dist>0 outside), global
// ids used to key the vertex-dedup hash, and optional per-corner colors.
type Cube struct {
	Pos   [8]linalg.Vec3
	Dist  [8]float64
	VID   [8]uint64
	Color [8]*linalg.Vec3
}

// vertexKey is the unordered pair of endpoint global ids that identifies
// a shared edge-crossing vertex, per §9's dedup strategy.
type vertexKey struct{ a, b uint64 }

func newVertexKey(a, b uint64) vertexKey {
	if a > b {
		a, b = b, a
	}
	return vertexKey{a, b}
}

// Accumulator builds a deduplicated vertex/face stream across many cubes.
type Accumulator struct {
	Positions []linalg.Vec3
	Colors    []linalg.Vec3
	HasColor  bool
	Faces     []int

	vertexOf map[vertexKey]int
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{vertexOf: make(map[vertexKey]int)}
}

// cubeConfig computes the 8-bit sign mask (bit i set iff Dist[i] < 0).
func cubeConfig(c Cube) int {
	cfg := 0
	for i := 0; i < 8; i++ {
		if c.Dist[i] < 0 {
			cfg |= 1 << uint(i)
		}
	}
	return cfg
}

// AddCube extracts the triangles for one cube configuration, looking up
// or creating a shared vertex per crossed edge, and appends them to the
// accumulator. Cubes with all-in or all-out corners are skipped.
func (a *Accumulator) AddCube(c Cube) {
	cfg := cubeConfig(c)
	if cfg == 0 || cfg == 0xff {
		return
	}
	mask := edgeTable[cfg]
	if mask == 0 {
		return
	}

	var edgeVert [12]int
	for e := 0; e < 12; e++ {
		if mask&(1<<uint(e)) == 0 {
			continue
		}
		p0, p1 := pairTable[e][0], pairTable[e][1]
		key := newVertexKey(c.VID[p0], c.VID[p1])
		if idx, ok := a.vertexOf[key]; ok {
			edgeVert[e] = idx
			continue
		}
		idx := a.addVertex(c, p0, p1)
		a.vertexOf[key] = idx
		edgeVert[e] = idx
	}

	tris := triTable[cfg]
	for i := 0; i+2 < len(tris); i += 3 {
		// Reversed winding matches the teacher's own mcToTriangles,
		// which stores V[2],V[1],V[0] from the table in that order.
		a.Faces = append(a.Faces,
			edgeVert[tris[i+2]], edgeVert[tris[i+1]], edgeVert[tris[i]])
	}
}

// addVertex interpolates the crossing position between corners p0 and p1
// of c and appends it (and its color, if present) to the accumulator.
func (a *Accumulator) addVertex(c Cube, p0, p1 int) int {
	d0, d1 := c.Dist[p0], c.Dist[p1]
	var w0, w1 float64
	if d1 == d0 {
		w0, w1 = 0.5, 0.5
	} else {
		w0 = d1 / (d1 - d0)
		w1 = -d0 / (d1 - d0)
	}
	pos := c.Pos[p0].Scale(w0).Add(c.Pos[p1].Scale(w1))
	a.Positions = append(a.Positions, pos)

	if c.Color[p0] != nil && c.Color[p1] != nil {
		col := c.Color[p0].Scale(w0).Add(c.Color[p1].Scale(w1))
		a.Colors = append(a.Colors, col)
		a.HasColor = true
	} else {
		a.Colors = append(a.Colors, linalg.Vec3{})
	}
	return len(a.Positions) - 1
}

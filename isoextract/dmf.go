package isoextract

import (
	"github.com/simonfuhrmann/surfrecon/dmfoctree"
	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/simonfuhrmann/surfrecon/mesh"
)

// FromDmfOctree runs the Marching-Cubes accessor over atLevel and
// extracts a closed triangle mesh, skipping cubes with an unset or
// underconfident corner (OutOfSupport, not an error).
func FromDmfOctree(o *dmfoctree.DmfOctree, atLevel uint8, minWeight float64) *mesh.Mesh {
	acc := NewAccumulator()

	o.IterateCubes(atLevel, minWeight, func(cube dmfoctree.Cube) {
		var c Cube
		for i := 0; i < 8; i++ {
			c.Pos[i] = cube.Corners[i].Position(o.Center, o.Halfsize)
			c.Dist[i] = float64(cube.Data[i].Dist)
			c.VID[i] = cube.Corners[i].Index
			color := linalg.Vec3{X: float64(cube.Data[i].Color[0]), Y: float64(cube.Data[i].Color[1]), Z: float64(cube.Data[i].Color[2])}
			c.Color[i] = &color
		}
		acc.AddCube(c)
	})

	return acc.toMesh()
}

// toMesh packs the accumulator's deduplicated vertices and triangles into
// a mesh.Mesh.
func (a *Accumulator) toMesh() *mesh.Mesh {
	m := &mesh.Mesh{
		Vertices: a.Positions,
		Faces:    append([]int(nil), a.Faces...),
	}
	if a.HasColor {
		m.Colors = append([]linalg.Vec3(nil), a.Colors...)
	}
	return m
}

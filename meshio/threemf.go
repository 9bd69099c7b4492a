package meshio

import (
	"io"

	"github.com/hpinc/go3mf"

	"github.com/simonfuhrmann/surfrecon/internal/errs"
	"github.com/simonfuhrmann/surfrecon/mesh"
)

// WriteThreeMF writes m as a single-object 3MF package, the interchange
// alternative to PLY/OFF for CAD/slicer consumers (go3mf handles the
// OPC/ZIP container and XML serialization).
func WriteThreeMF(w io.Writer, m *mesh.Mesh) error {
	const op = "meshio.WriteThreeMF"
	if err := m.Validate(); err != nil {
		return err
	}

	model := new(go3mf.Model)
	model.Units = go3mf.UnitMillimeter

	obj := &go3mf.Object{
		ID:   1,
		Type: go3mf.ObjectTypeModel,
		Mesh: new(go3mf.Mesh),
	}
	obj.Mesh.Vertices.Vertex = make([]go3mf.Point3D, m.NumVertices())
	for i, v := range m.Vertices {
		obj.Mesh.Vertices.Vertex[i] = go3mf.Point3D{float32(v.X), float32(v.Y), float32(v.Z)}
	}
	obj.Mesh.Triangles.Triangle = make([]go3mf.Triangle, m.NumFaces())
	for i := 0; i < m.NumFaces(); i++ {
		a, b, c := m.Face(i)
		obj.Mesh.Triangles.Triangle[i] = go3mf.NewTriangle(a, b, c)
	}

	model.Resources.Objects = append(model.Resources.Objects, obj)
	model.Build.Items = append(model.Build.Items, &go3mf.Item{ObjectID: 1})

	enc := go3mf.NewEncoder(w)
	if err := enc.Encode(model); err != nil {
		return errs.New(errs.Io, op, err)
	}
	return nil
}

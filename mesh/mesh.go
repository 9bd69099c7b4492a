// Package mesh implements the triangle mesh type shared by both
// reconstruction paths: parallel vertex attribute buffers, angle-weighted
// pseudo-normal recomputation, and vertex deletion with face repair.
package mesh

import (
	"math"

	"github.com/simonfuhrmann/surfrecon/internal/errs"
	"github.com/simonfuhrmann/surfrecon/linalg"
)

// Mesh is a triangle mesh with parallel per-vertex attribute buffers.
// Faces are a flat triplet list: face i spans Faces[3*i:3*i+3], each index
// into Vertices. A face with a repeated index, or any face collapsed to
// (0,0,0) by DeleteVertices, is considered invalid and removed by
// CompactFaces.
type Mesh struct {
	Vertices    []linalg.Vec3
	Faces       []int
	Normals     []linalg.Vec3 // optional, len==len(Vertices) if present
	Colors      []linalg.Vec3 // optional
	Confidences []float64     // optional
	Values      []float64     // optional
	TexCoords   [][2]float64  // optional
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// NumVertices returns the vertex count.
func (m *Mesh) NumVertices() int { return len(m.Vertices) }

// NumFaces returns the face count.
func (m *Mesh) NumFaces() int { return len(m.Faces) / 3 }

// Face returns the three vertex indices of face i.
func (m *Mesh) Face(i int) (a, b, c int) {
	return m.Faces[3*i], m.Faces[3*i+1], m.Faces[3*i+2]
}

// Validate checks the invariants §3 requires: attribute buffers, when
// present, must be exactly as long as Vertices; Faces must have a length
// that is a multiple of 3.
func (m *Mesh) Validate() error {
	const op = "mesh.Validate"
	n := len(m.Vertices)
	if len(m.Faces)%3 != 0 {
		return errs.Invalid(op, "face buffer length is not a multiple of 3")
	}
	if m.Normals != nil && len(m.Normals) != n {
		return errs.Invalid(op, "normal buffer length does not match vertex count")
	}
	if m.Colors != nil && len(m.Colors) != n {
		return errs.Invalid(op, "color buffer length does not match vertex count")
	}
	if m.Confidences != nil && len(m.Confidences) != n {
		return errs.Invalid(op, "confidence buffer length does not match vertex count")
	}
	if m.Values != nil && len(m.Values) != n {
		return errs.Invalid(op, "value buffer length does not match vertex count")
	}
	for i := 0; i < len(m.Faces); i += 3 {
		a, b, c := m.Faces[i], m.Faces[i+1], m.Faces[i+2]
		if a >= n || b >= n || c >= n || a < 0 || b < 0 || c < 0 {
			return errs.Invalid(op, "face references out-of-range vertex")
		}
	}
	return nil
}

// RecomputeVertexNormals recomputes per-vertex normals as the angle-weighted
// average of incident face normals: each face contributes its unit normal
// to each of its three vertices, weighted by the interior angle of the
// face at that vertex, after which every accumulated normal is
// renormalized. Degenerate (near-zero-area) faces contribute nothing.
func (m *Mesh) RecomputeVertexNormals() {
	n := len(m.Vertices)
	acc := make([]linalg.Vec3, n)
	for f := 0; f < m.NumFaces(); f++ {
		ia, ib, ic := m.Face(f)
		va, vb, vc := m.Vertices[ia], m.Vertices[ib], m.Vertices[ic]
		e0 := vb.Sub(va)
		e1 := vc.Sub(va)
		faceNormal := e0.Cross(e1)
		length := faceNormal.Length()
		if length < 1e-20 {
			continue
		}
		faceNormal = faceNormal.Scale(1 / length)

		angleA := angleAt(va, vb, vc)
		angleB := angleAt(vb, vc, va)
		angleC := angleAt(vc, va, vb)

		acc[ia] = acc[ia].Add(faceNormal.Scale(angleA))
		acc[ib] = acc[ib].Add(faceNormal.Scale(angleB))
		acc[ic] = acc[ic].Add(faceNormal.Scale(angleC))
	}
	for i := range acc {
		acc[i] = acc[i].Normalize()
	}
	m.Normals = acc
}

// angleAt returns the interior angle of the triangle (at,b,c) at vertex at.
func angleAt(at, b, c linalg.Vec3) float64 {
	e0 := b.Sub(at).Normalize()
	e1 := c.Sub(at).Normalize()
	d := e0.Dot(e1)
	if d > 1 {
		d = 1
	}
	if d < -1 {
		d = -1
	}
	return math.Acos(d)
}

// DeleteVertices removes the vertices flagged true in del (len(del) must
// equal NumVertices), renumbers the survivors, and collapses any face
// touching a deleted vertex to (0,0,0) so CompactFaces can remove it.
func (m *Mesh) DeleteVertices(del []bool) error {
	const op = "mesh.DeleteVertices"
	if len(del) != len(m.Vertices) {
		return errs.Invalid(op, "delete-list length does not match vertex count")
	}
	remap := make([]int, len(m.Vertices))
	kept := 0
	for i, d := range del {
		if d {
			remap[i] = -1
			continue
		}
		remap[i] = kept
		kept++
	}

	newVerts := make([]linalg.Vec3, 0, kept)
	var newNormals []linalg.Vec3
	var newColors []linalg.Vec3
	var newConf []float64
	var newVal []float64
	if m.Normals != nil {
		newNormals = make([]linalg.Vec3, 0, kept)
	}
	if m.Colors != nil {
		newColors = make([]linalg.Vec3, 0, kept)
	}
	if m.Confidences != nil {
		newConf = make([]float64, 0, kept)
	}
	if m.Values != nil {
		newVal = make([]float64, 0, kept)
	}
	for i, d := range del {
		if d {
			continue
		}
		newVerts = append(newVerts, m.Vertices[i])
		if m.Normals != nil {
			newNormals = append(newNormals, m.Normals[i])
		}
		if m.Colors != nil {
			newColors = append(newColors, m.Colors[i])
		}
		if m.Confidences != nil {
			newConf = append(newConf, m.Confidences[i])
		}
		if m.Values != nil {
			newVal = append(newVal, m.Values[i])
		}
	}

	for i := 0; i < len(m.Faces); i += 3 {
		a, b, c := m.Faces[i], m.Faces[i+1], m.Faces[i+2]
		if del[a] || del[b] || del[c] {
			m.Faces[i], m.Faces[i+1], m.Faces[i+2] = 0, 0, 0
			continue
		}
		m.Faces[i] = remap[a]
		m.Faces[i+1] = remap[b]
		m.Faces[i+2] = remap[c]
	}

	m.Vertices = newVerts
	m.Normals = newNormals
	m.Colors = newColors
	m.Confidences = newConf
	m.Values = newVal
	m.CompactFaces()
	return nil
}

// CompactFaces drops every face with a repeated index. This includes the
// (0,0,0) sentinel that DeleteVertices writes for removed faces.
func (m *Mesh) CompactFaces() {
	out := m.Faces[:0]
	for i := 0; i < len(m.Faces); i += 3 {
		a, b, c := m.Faces[i], m.Faces[i+1], m.Faces[i+2]
		if a == b || b == c || a == c {
			continue
		}
		out = append(out, a, b, c)
	}
	m.Faces = out
}

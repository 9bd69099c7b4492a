// Package meshio provides minimal on-disk mesh interchange: consumer-side
// stub readers/writers for the ASCII PLY and OFF formats the original
// MVE tools use for collaboration with downstream viewers, plus a 3MF
// writer for interchange with CAD/slicer tooling. Full PLY/OFF coverage
// (binary variants, arbitrary element/property schemas) is out of scope;
// these implement exactly the fields fssrecon/fssr_surface/dmfusion emit.
package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/simonfuhrmann/surfrecon/internal/errs"
	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/simonfuhrmann/surfrecon/mesh"
)

// PLYOptions selects which optional per-vertex attributes to emit,
// mirroring the original's save_ply_mesh options (write_vertex_colors,
// write_vertex_confidences, write_vertex_values).
type PLYOptions struct {
	WriteNormals     bool
	WriteColors      bool
	WriteConfidences bool
	WriteValues      bool
}

// WritePLY writes m to w in ASCII PLY format.
func WritePLY(w io.Writer, m *mesh.Mesh, opts PLYOptions) error {
	const op = "meshio.WritePLY"
	if err := m.Validate(); err != nil {
		return err
	}
	opts.WriteNormals = opts.WriteNormals && m.Normals != nil
	opts.WriteColors = opts.WriteColors && m.Colors != nil
	opts.WriteConfidences = opts.WriteConfidences && m.Confidences != nil
	opts.WriteValues = opts.WriteValues && m.Values != nil

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "ply")
	fmt.Fprintln(bw, "format ascii 1.0")
	fmt.Fprintf(bw, "element vertex %d\n", m.NumVertices())
	fmt.Fprintln(bw, "property float x")
	fmt.Fprintln(bw, "property float y")
	fmt.Fprintln(bw, "property float z")
	if opts.WriteNormals {
		fmt.Fprintln(bw, "property float nx")
		fmt.Fprintln(bw, "property float ny")
		fmt.Fprintln(bw, "property float nz")
	}
	if opts.WriteColors {
		fmt.Fprintln(bw, "property uchar red")
		fmt.Fprintln(bw, "property uchar green")
		fmt.Fprintln(bw, "property uchar blue")
	}
	if opts.WriteConfidences {
		fmt.Fprintln(bw, "property float confidence")
	}
	if opts.WriteValues {
		fmt.Fprintln(bw, "property float value")
	}
	fmt.Fprintf(bw, "element face %d\n", m.NumFaces())
	fmt.Fprintln(bw, "property list uchar int vertex_indices")
	fmt.Fprintln(bw, "end_header")

	for i, v := range m.Vertices {
		fmt.Fprintf(bw, "%g %g %g", v.X, v.Y, v.Z)
		if opts.WriteNormals {
			n := m.Normals[i]
			fmt.Fprintf(bw, " %g %g %g", n.X, n.Y, n.Z)
		}
		if opts.WriteColors {
			c := m.Colors[i]
			fmt.Fprintf(bw, " %d %d %d", colorByte(c.X), colorByte(c.Y), colorByte(c.Z))
		}
		if opts.WriteConfidences {
			fmt.Fprintf(bw, " %g", m.Confidences[i])
		}
		if opts.WriteValues {
			fmt.Fprintf(bw, " %g", m.Values[i])
		}
		fmt.Fprintln(bw)
	}
	for i := 0; i < m.NumFaces(); i++ {
		a, b, c := m.Face(i)
		fmt.Fprintf(bw, "3 %d %d %d\n", a, b, c)
	}

	if err := bw.Flush(); err != nil {
		return errs.New(errs.Io, op, err)
	}
	return nil
}

func colorByte(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 255
	}
	return int(v*255 + 0.5)
}

// ReadPLY parses the minimal ASCII PLY subset WritePLY produces: a
// vertex/x/y/z header followed by "3 a b c" triangle faces. Binary PLY
// and arbitrary property schemas are not supported.
func ReadPLY(r io.Reader) (*mesh.Mesh, error) {
	const op = "meshio.ReadPLY"
	sc := bufio.NewScanner(r)
	if !sc.Scan() || strings.TrimSpace(sc.Text()) != "ply" {
		return nil, errs.New(errs.FileFormat, op, errNotPLY)
	}

	numVerts, numFaces := -1, -1
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "element":
			if fields[1] == "vertex" {
				numVerts, _ = strconv.Atoi(fields[2])
			} else if fields[1] == "face" {
				numFaces, _ = strconv.Atoi(fields[2])
			}
		case "end_header":
			goto parsed
		}
	}
parsed:
	if numVerts < 0 || numFaces < 0 {
		return nil, errs.New(errs.FileFormat, op, errMissingHeader)
	}

	m := mesh.New()
	m.Vertices = make([]linalg.Vec3, numVerts)
	for i := 0; i < numVerts; i++ {
		if !sc.Scan() {
			return nil, errs.New(errs.FileFormat, op, errTruncated)
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			return nil, errs.New(errs.FileFormat, op, errTruncated)
		}
		x, _ := strconv.ParseFloat(fields[0], 64)
		y, _ := strconv.ParseFloat(fields[1], 64)
		z, _ := strconv.ParseFloat(fields[2], 64)
		m.Vertices[i] = linalg.Vec3{X: x, Y: y, Z: z}
	}

	m.Faces = make([]int, 0, numFaces*3)
	for i := 0; i < numFaces; i++ {
		if !sc.Scan() {
			return nil, errs.New(errs.FileFormat, op, errTruncated)
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			return nil, errs.New(errs.FileFormat, op, errTruncated)
		}
		n, _ := strconv.Atoi(fields[0])
		if n != 3 {
			return nil, errs.New(errs.FileFormat, op, errNonTriangle)
		}
		a, _ := strconv.Atoi(fields[1])
		b, _ := strconv.Atoi(fields[2])
		c, _ := strconv.Atoi(fields[3])
		m.Faces = append(m.Faces, a, b, c)
	}
	return m, nil
}

var (
	errNotPLY       = fmt.Errorf("missing 'ply' magic line")
	errMissingHeader = fmt.Errorf("missing vertex/face element count")
	errTruncated    = fmt.Errorf("unexpected end of input")
	errNonTriangle  = fmt.Errorf("only triangular faces are supported")
)

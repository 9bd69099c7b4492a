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

// WriteOFF writes m's geometry (vertices and triangular faces only, no
// color/normal extensions) in the plain OFF format.
func WriteOFF(w io.Writer, m *mesh.Mesh) error {
	const op = "meshio.WriteOFF"
	if err := m.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "OFF")
	fmt.Fprintf(bw, "%d %d 0\n", m.NumVertices(), m.NumFaces())
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "%g %g %g\n", v.X, v.Y, v.Z)
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

// ReadOFF parses a plain OFF file (vertices + triangular faces).
func ReadOFF(r io.Reader) (*mesh.Mesh, error) {
	const op = "meshio.ReadOFF"
	sc := bufio.NewScanner(r)
	if !sc.Scan() || strings.TrimSpace(sc.Text()) != "OFF" {
		return nil, errs.New(errs.FileFormat, op, errNotOFF)
	}
	if !sc.Scan() {
		return nil, errs.New(errs.FileFormat, op, errTruncated)
	}
	counts := strings.Fields(sc.Text())
	if len(counts) < 2 {
		return nil, errs.New(errs.FileFormat, op, errMissingHeader)
	}
	numVerts, _ := strconv.Atoi(counts[0])
	numFaces, _ := strconv.Atoi(counts[1])

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

var errNotOFF = fmt.Errorf("missing 'OFF' magic line")

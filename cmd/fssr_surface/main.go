// Command fssr_surface extracts and cleans an iso-surface from an FSSR
// point set, mirroring original_source's apps/fssr_surface: extract the
// mesh, then delete vertices below a confidence threshold.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/simonfuhrmann/surfrecon/fssrifn"
	"github.com/simonfuhrmann/surfrecon/fssroctree"
	"github.com/simonfuhrmann/surfrecon/isoextract"
	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/simonfuhrmann/surfrecon/mesh"
	"github.com/simonfuhrmann/surfrecon/meshio"
)

func main() {
	in := flag.String("in", "", "input point set (x y z nx ny nz scale [confidence])")
	out := flag.String("out", "", "output mesh (.ply, .off, or .3mf)")
	confThreshold := flag.Float64("conf-threshold", 0.0, "delete vertices at or below this confidence")
	flag.Parse()

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "usage: fssr_surface -in samples.txt -out mesh.ply")
		os.Exit(2)
	}

	samples, err := readSamples(*in)
	if err != nil {
		fatal(err)
	}

	center, halfsize := boundingOctreeRoot(samples)
	octree := fssroctree.New(center, 2*halfsize)
	octree.InsertSamples(samples)
	octree.MakeRegularOctree()
	octree.ComputeVoxels()

	m := isoextract.FromFssrOctree(octree)
	removeLowConfidence(m, *confThreshold)

	if err := writeMesh(*out, m); err != nil {
		fatal(err)
	}
}

// removeLowConfidence deletes every vertex at or below thres, matching
// the original's remove_low_conf_geometry pass.
func removeLowConfidence(m *mesh.Mesh, thres float64) {
	if m.Confidences == nil {
		return
	}
	del := make([]bool, m.NumVertices())
	deleted := 0
	for i, c := range m.Confidences {
		if c <= thres {
			del[i] = true
			deleted++
		}
	}
	if deleted == 0 {
		return
	}
	if err := m.DeleteVertices(del); err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "Deleted %d low-confidence vertices.\n", deleted)
}

func readSamples(path string) ([]fssrifn.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var samples []fssrifn.Sample
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var x, y, z, nx, ny, nz, scale, conf float64
		conf = 1
		n, err := fmt.Sscan(sc.Text(), &x, &y, &z, &nx, &ny, &nz, &scale, &conf)
		if err != nil && n < 7 {
			continue
		}
		samples = append(samples, fssrifn.Sample{
			Pos:        linalg.Vec3{X: x, Y: y, Z: z},
			Normal:     linalg.Vec3{X: nx, Y: ny, Z: nz}.Normalize(),
			Scale:      scale,
			Confidence: conf,
		})
	}
	return samples, sc.Err()
}

func boundingOctreeRoot(samples []fssrifn.Sample) (linalg.Vec3, float64) {
	if len(samples) == 0 {
		return linalg.Vec3{}, 1
	}
	min, max := samples[0].Pos, samples[0].Pos
	for _, s := range samples[1:] {
		min = linalg.Vec3{X: minf(min.X, s.Pos.X), Y: minf(min.Y, s.Pos.Y), Z: minf(min.Z, s.Pos.Z)}
		max = linalg.Vec3{X: maxf(max.X, s.Pos.X), Y: maxf(max.Y, s.Pos.Y), Z: maxf(max.Z, s.Pos.Z)}
	}
	center := min.Add(max).Scale(0.5)
	halfsize := maxf(maxf(max.X-min.X, max.Y-min.Y), max.Z-min.Z) / 2
	if halfsize == 0 {
		halfsize = 1
	}
	return center, halfsize * 1.1
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func writeMesh(path string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".off"):
		return meshio.WriteOFF(f, m)
	case strings.HasSuffix(path, ".3mf"):
		return meshio.WriteThreeMF(f, m)
	default:
		return meshio.WritePLY(f, m, meshio.PLYOptions{WriteNormals: true, WriteConfidences: true, WriteValues: true})
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "fssr_surface: %v\n", err)
	os.Exit(1)
}

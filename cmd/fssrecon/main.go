// Command fssrecon reconstructs a surface mesh from an oriented, scaled
// point set using the FSSR pipeline, mirroring original_source's
// apps/fssrecon front end: build the octree, insert samples, refine to a
// regular octree, compute confident voxels, and extract the iso-surface.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/simonfuhrmann/surfrecon/fssrifn"
	"github.com/simonfuhrmann/surfrecon/fssroctree"
	"github.com/simonfuhrmann/surfrecon/internal/logx"
	"github.com/simonfuhrmann/surfrecon/isoextract"
	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/simonfuhrmann/surfrecon/mesh"
	"github.com/simonfuhrmann/surfrecon/meshio"
)

func main() {
	in := flag.String("in", "", "input point set (x y z nx ny nz scale [confidence], one per line)")
	out := flag.String("out", "", "output mesh (.ply or .off)")
	scaleRatio := flag.Float64("scale-ratio", 1.0, "octree scale-match ratio k")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "usage: fssrecon -in samples.txt -out mesh.ply")
		os.Exit(2)
	}

	log := logx.Discard()
	if *verbose {
		log = logx.Default()
	}

	samples, err := readSamples(*in)
	if err != nil {
		fatal("fssrecon", err)
	}

	center, halfsize := boundingOctreeRoot(samples)
	octree := fssroctree.New(center, 2*halfsize,
		fssroctree.WithConfig(fssroctree.Config{ScaleRatio: *scaleRatio}),
		fssroctree.WithLogger(log))
	octree.InsertSamples(samples)
	octree.MakeRegularOctree()
	octree.ComputeVoxels()

	m := isoextract.FromFssrOctree(octree)
	if err := writeMesh(*out, m); err != nil {
		fatal("fssrecon", err)
	}
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

// boundingOctreeRoot picks a cube root covering all samples, matching the
// original's octree bounds derivation from the point set's AABB.
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

// writeMesh dispatches on the output extension, matching the original's
// single save_mesh entry point that picks a writer by suffix.
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

func fatal(op string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", op, err)
	os.Exit(1)
}

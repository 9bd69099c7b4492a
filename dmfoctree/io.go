package dmfoctree

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/simonfuhrmann/surfrecon/internal/errs"
	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/simonfuhrmann/surfrecon/voxelindex"
)

const fileMagic = "DMFOCTREE\n"

// Save writes the octree in the binary format from §4.2: a magic line, a
// decimal voxel count line, the root center/half-size, then one fixed
// record per voxel.
func (o *DmfOctree) Save(path string) error {
	const op = "dmfoctree.Save"
	f, err := os.Create(path)
	if err != nil {
		return errs.New(errs.Io, op, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	entries := o.sortedEntries()

	if _, err := w.WriteString(fileMagic); err != nil {
		return errs.New(errs.Io, op, err)
	}
	if _, err := fmt.Fprintf(w, "%d\n", len(entries)); err != nil {
		return errs.New(errs.Io, op, err)
	}
	if err := binary.Write(w, binary.LittleEndian, float32(o.Center.X)); err != nil {
		return errs.New(errs.Io, op, err)
	}
	if err := binary.Write(w, binary.LittleEndian, float32(o.Center.Y)); err != nil {
		return errs.New(errs.Io, op, err)
	}
	if err := binary.Write(w, binary.LittleEndian, float32(o.Center.Z)); err != nil {
		return errs.New(errs.Io, op, err)
	}
	if err := binary.Write(w, binary.LittleEndian, float32(o.Halfsize)); err != nil {
		return errs.New(errs.Io, op, err)
	}
	for _, e := range entries {
		if err := binary.Write(w, binary.LittleEndian, e.Index.Level); err != nil {
			return errs.New(errs.Io, op, err)
		}
		if err := binary.Write(w, binary.LittleEndian, e.Index.Index); err != nil {
			return errs.New(errs.Io, op, err)
		}
		if err := binary.Write(w, binary.LittleEndian, e.Data.Dist); err != nil {
			return errs.New(errs.Io, op, err)
		}
		if err := binary.Write(w, binary.LittleEndian, e.Data.Weight); err != nil {
			return errs.New(errs.Io, op, err)
		}
		if err := binary.Write(w, binary.LittleEndian, e.Data.Color); err != nil {
			return errs.New(errs.Io, op, err)
		}
	}
	return w.Flush()
}

// Load reads an octree previously written by Save, replacing any existing
// voxel data.
func Load(path string) (*DmfOctree, error) {
	const op = "dmfoctree.Load"
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.New(errs.Io, op, err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	magic := make([]byte, len(fileMagic))
	if _, err := readFull(r, magic); err != nil {
		return nil, errs.New(errs.Io, op, err)
	}
	if string(magic) != fileMagic {
		return nil, errs.New(errs.FileFormat, op, fmt.Errorf("unrecognised header %q", magic))
	}

	var count int
	if _, err := fmt.Fscanf(r, "%d\n", &count); err != nil {
		return nil, errs.New(errs.FileFormat, op, err)
	}
	if count < 0 {
		return nil, errs.New(errs.FileFormat, op, fmt.Errorf("negative voxel count"))
	}

	var cx, cy, cz, halfsize float32
	for _, dst := range []*float32{&cx, &cy, &cz, &halfsize} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, errs.New(errs.FileFormat, op, fmt.Errorf("truncated header: %w", err))
		}
	}

	o := New(WithCenter(linalg.Vec3{X: float64(cx), Y: float64(cy), Z: float64(cz)}, float64(halfsize)))
	for i := 0; i < count; i++ {
		var level uint8
		var index uint64
		var dist, weight float32
		var color [4]float32
		if err := binary.Read(r, binary.LittleEndian, &level); err != nil {
			return nil, errs.New(errs.FileFormat, op, fmt.Errorf("truncated voxel record %d: %w", i, err))
		}
		if err := binary.Read(r, binary.LittleEndian, &index); err != nil {
			return nil, errs.New(errs.FileFormat, op, fmt.Errorf("truncated voxel record %d: %w", i, err))
		}
		if err := binary.Read(r, binary.LittleEndian, &dist); err != nil {
			return nil, errs.New(errs.FileFormat, op, fmt.Errorf("truncated voxel record %d: %w", i, err))
		}
		if err := binary.Read(r, binary.LittleEndian, &weight); err != nil {
			return nil, errs.New(errs.FileFormat, op, fmt.Errorf("truncated voxel record %d: %w", i, err))
		}
		if err := binary.Read(r, binary.LittleEndian, &color); err != nil {
			return nil, errs.New(errs.FileFormat, op, fmt.Errorf("truncated voxel record %d: %w", i, err))
		}
		idx := voxelindex.VoxelIndex{Level: level, Index: index}
		o.voxels[idx] = &VoxelData{Dist: dist, Weight: weight, Color: color}
	}
	return o, nil
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

package dmfoctree

import (
	"fmt"

	"github.com/simonfuhrmann/surfrecon/internal/errs"
	"github.com/simonfuhrmann/surfrecon/voxelindex"
)

// SliceImage is a 2D cross-section of the octree at a fixed grid plane:
// one 6-channel pixel (dist, weight, color[4]) per corner of the plane,
// row-major with Width columns and Height rows.
type SliceImage struct {
	Width, Height int
	Data          []float32 // len == Width*Height*6
}

// At returns the 6 channels of pixel (x,y).
func (s SliceImage) At(x, y int) [6]float32 {
	var px [6]float32
	base := (y*s.Width + x) * 6
	copy(px[:], s.Data[base:base+6])
	return px
}

// GetSlice returns the cross-section of the grid at the given level, held
// fixed at the given grid coordinate id along axis (0=X, 1=Y, 2=Z). Unset
// voxels are reported as an all-zero pixel, which Weight==0 already marks
// as absent to any reader.
func (o *DmfOctree) GetSlice(level uint8, axis int, id uint64) (SliceImage, error) {
	const op = "dmfoctree.GetSlice"
	if axis < 0 || axis > 2 {
		return SliceImage{}, errs.New(errs.InvalidArgument, op, fmt.Errorf("axis %d out of range [0,2]", axis))
	}
	dim := voxelindex.Dim(level)
	if id >= dim {
		return SliceImage{}, errs.New(errs.InvalidArgument, op, fmt.Errorf("id %d out of range [0,%d)", id, dim))
	}

	img := SliceImage{Width: int(dim), Height: int(dim), Data: make([]float32, int(dim)*int(dim)*6)}
	for row := 0; row < int(dim); row++ {
		for col := 0; col < int(dim); col++ {
			var x, y, z uint64
			switch axis {
			case 0:
				x, y, z = id, uint64(col), uint64(row)
			case 1:
				x, y, z = uint64(col), id, uint64(row)
			default:
				x, y, z = uint64(col), uint64(row), id
			}
			idx := voxelindex.New(level, x, y, z)
			data, ok := o.Get(idx)
			if !ok {
				continue
			}
			base := (row*img.Width + col) * 6
			img.Data[base+0] = data.Dist
			img.Data[base+1] = data.Weight
			img.Data[base+2] = data.Color[0]
			img.Data[base+3] = data.Color[1]
			img.Data[base+4] = data.Color[2]
			img.Data[base+5] = data.Color[3]
		}
	}
	return img, nil
}

package bamatrix

import (
	"github.com/simonfuhrmann/surfrecon/internal/errs"
	"gonum.org/v1/gonum/mat"
)

// BlockDiag is a block-diagonal matrix: NumBlocks square blocks of side
// BlockSize, stored contiguously row-major per block. This is the shape
// of both the camera-parameter and point-parameter diagonal of JᵀJ in
// bundle adjustment, since cross terms between two distinct cameras (or
// two distinct points) never appear in a reprojection residual.
type BlockDiag struct {
	BlockSize int
	NumBlocks int
	blocks    [][]float64 // len == NumBlocks, each len == BlockSize*BlockSize
}

// NewBlockDiag allocates a zeroed block-diagonal matrix.
func NewBlockDiag(blockSize, numBlocks int) *BlockDiag {
	b := &BlockDiag{BlockSize: blockSize, NumBlocks: numBlocks, blocks: make([][]float64, numBlocks)}
	for i := range b.blocks {
		b.blocks[i] = make([]float64, blockSize*blockSize)
	}
	return b
}

// Block returns the i'th block as a gonum dense matrix view (a copy, since
// gonum owns its own backing slice).
func (b *BlockDiag) Block(i int) *mat.Dense {
	return mat.NewDense(b.BlockSize, b.BlockSize, append([]float64(nil), b.blocks[i]...))
}

// SetBlock overwrites the i'th block.
func (b *BlockDiag) SetBlock(i int, m *mat.Dense) {
	rows, cols := m.Dims()
	dst := b.blocks[i]
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			dst[r*cols+c] = m.At(r, c)
		}
	}
}

// AddToBlock accumulates m into the i'th block (JᵀJ assembly sums one
// contribution per observation touching that camera/point).
func (b *BlockDiag) AddToBlock(i int, m *mat.Dense) {
	rows, cols := m.Dims()
	dst := b.blocks[i]
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			dst[r*cols+c] += m.At(r, c)
		}
	}
}

// Invert returns a new BlockDiag holding the inverse of every block,
// computed independently (and therefore trivially parallel, though the
// block counts in practice are small enough that gonum's dense LU per
// block is not worth chunking across goroutines).
func (b *BlockDiag) Invert() (*BlockDiag, error) {
	const op = "bamatrix.BlockDiag.Invert"
	out := NewBlockDiag(b.BlockSize, b.NumBlocks)
	for i := 0; i < b.NumBlocks; i++ {
		var inv mat.Dense
		if err := inv.Inverse(b.Block(i)); err != nil {
			return nil, errs.New(errs.Numerical, op, err)
		}
		out.SetBlock(i, &inv)
	}
	return out, nil
}

// MulVec multiplies the block-diagonal matrix by a vector of length
// BlockSize*NumBlocks.
func (b *BlockDiag) MulVec(v []float64) ([]float64, error) {
	const op = "bamatrix.BlockDiag.MulVec"
	if len(v) != b.BlockSize*b.NumBlocks {
		return nil, errs.Invalid(op, "vector length does not match block layout")
	}
	out := make([]float64, len(v))
	for i := 0; i < b.NumBlocks; i++ {
		base := i * b.BlockSize
		blk := b.blocks[i]
		for r := 0; r < b.BlockSize; r++ {
			var sum float64
			for c := 0; c < b.BlockSize; c++ {
				sum += blk[r*b.BlockSize+c] * v[base+c]
			}
			out[base+r] = sum
		}
	}
	return out, nil
}

package sliceviz

import (
	"github.com/simonfuhrmann/surfrecon/dmfoctree"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
)

// WriteDXF draws one line segment across every cell whose dist sign
// differs from its right or lower neighbor (both cells with nonzero
// weight), perpendicular to that neighbor's direction: a cheap 2D preview
// of where the zero crossing (and hence the eventual iso-surface) falls in
// this slice.
func WriteDXF(path string, img dmfoctree.SliceImage, cellSize float64) error {
	if cellSize <= 0 {
		cellSize = 1
	}
	d := dxf.NewDrawing()
	d.Layer("crossing", color.Red, true)

	crosses := func(a, b [6]float32) bool {
		if a[1] == 0 || b[1] == 0 {
			return false
		}
		return (a[0] < 0) != (b[0] < 0)
	}

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			px := img.At(x, y)
			if px[1] == 0 {
				continue
			}
			x0, y0 := float64(x)*cellSize, float64(y)*cellSize
			if x+1 < img.Width && crosses(px, img.At(x+1, y)) {
				d.Line(x0+cellSize/2, y0, 0, x0+cellSize/2, y0+cellSize, 0)
			}
			if y+1 < img.Height && crosses(px, img.At(x, y+1)) {
				d.Line(x0, y0+cellSize/2, 0, x0+cellSize, y0+cellSize/2, 0)
			}
		}
	}
	return d.SaveAs(path)
}

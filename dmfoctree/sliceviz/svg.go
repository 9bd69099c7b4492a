package sliceviz

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"
	"github.com/simonfuhrmann/surfrecon/dmfoctree"
)

// WriteSVG renders one rectangle per grid cell, colored by Ramp(dist), to
// w. cellSize is the pixel edge length of one grid cell.
func WriteSVG(w io.Writer, img dmfoctree.SliceImage, cellSize int) {
	if cellSize <= 0 {
		cellSize = 8
	}
	maxD := maxAbsDist(img)

	canvas := svg.New(w)
	canvas.Start(img.Width*cellSize, img.Height*cellSize)
	canvas.Rect(0, 0, img.Width*cellSize, img.Height*cellSize, "fill:black")

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			px := img.At(x, y)
			if px[1] == 0 {
				continue
			}
			c := Ramp(px[0], maxD)
			style := fmt.Sprintf("fill:rgb(%d,%d,%d)", c.R, c.G, c.B)
			canvas.Rect(x*cellSize, y*cellSize, cellSize, cellSize, style)
		}
	}
	canvas.End()
}

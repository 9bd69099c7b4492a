package sliceviz

import (
	"image"
	"image/png"
	"io"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/simonfuhrmann/surfrecon/dmfoctree"
)

// WritePNG rasterizes the slice to w via draw2d, one filled square per
// grid cell, colored by Ramp(dist).
func WritePNG(w io.Writer, img dmfoctree.SliceImage, cellSize int) error {
	if cellSize <= 0 {
		cellSize = 8
	}
	maxD := maxAbsDist(img)

	dest := image.NewRGBA(image.Rect(0, 0, img.Width*cellSize, img.Height*cellSize))
	gc := draw2dimg.NewGraphicContext(dest)

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			px := img.At(x, y)
			if px[1] == 0 {
				continue
			}
			c := Ramp(px[0], maxD)
			gc.SetFillColor(c)
			x0, y0 := float64(x*cellSize), float64(y*cellSize)
			gc.BeginPath()
			gc.MoveTo(x0, y0)
			gc.LineTo(x0+float64(cellSize), y0)
			gc.LineTo(x0+float64(cellSize), y0+float64(cellSize))
			gc.LineTo(x0, y0+float64(cellSize))
			gc.Close()
			gc.Fill()
		}
	}
	return png.Encode(w, dest)
}

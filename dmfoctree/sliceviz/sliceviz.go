// Package sliceviz renders a dmfoctree.SliceImage for debugging: as an SVG
// heatmap, a rasterized PNG, or a DXF wireframe of the zero-crossing
// contour cells. None of this is read back by the reconstruction path; it
// exists purely so a human can look at a cross-section while tuning fusion
// parameters.
package sliceviz

import (
	"image/color"

	"github.com/simonfuhrmann/surfrecon/dmfoctree"
)

// Ramp maps a signed distance, normalized to [-1,1] by maxAbsDist, to an
// RGB color: blue for inside, red for outside, white at the crossing.
func Ramp(dist, maxAbsDist float32) color.RGBA {
	if maxAbsDist <= 0 {
		maxAbsDist = 1
	}
	t := float64(dist / maxAbsDist)
	if t > 1 {
		t = 1
	}
	if t < -1 {
		t = -1
	}
	if t >= 0 {
		g := uint8((1 - t) * 255)
		return color.RGBA{R: 255, G: g, B: g, A: 255}
	}
	g := uint8((1 + t) * 255)
	return color.RGBA{R: g, G: g, B: 255, A: 255}
}

// maxAbsDist scans an image for the largest |dist| among set pixels, used
// to normalize Ramp across the whole slice.
func maxAbsDist(img dmfoctree.SliceImage) float32 {
	var m float32
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			px := img.At(x, y)
			if px[1] == 0 { // unset
				continue
			}
			d := px[0]
			if d < 0 {
				d = -d
			}
			if d > m {
				m = d
			}
		}
	}
	return m
}

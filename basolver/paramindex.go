package basolver

// paramIndexMap maps each non-constant camera/point to its column offset
// in the stacked parameter vector. Constant cameras/points are excluded
// from the map entirely (and therefore from the Jacobian's columns),
// matching bundle_adjustment.cc's own is_constant handling rather than a
// zero-masked column.
type paramIndexMap struct {
	camOffset   map[int]int
	pointOffset map[int]int
	numCamCols  int
	numPtCols   int
}

func paramIndex(cameras []Camera, points []Point3D, opts Options) paramIndexMap {
	idx := paramIndexMap{camOffset: make(map[int]int), pointOffset: make(map[int]int)}
	ncp := numCamParams(opts)

	if opts.Mode&BACameras != 0 {
		next := 0
		for i, c := range cameras {
			if c.Constant {
				continue
			}
			idx.camOffset[i] = next
			next += ncp
		}
		idx.numCamCols = next
	}
	if opts.Mode&BAPoints != 0 {
		next := 0
		for i, p := range points {
			if p.Constant {
				continue
			}
			idx.pointOffset[i] = idx.numCamCols + next
			next += 3
		}
		idx.numPtCols = next
	}
	return idx
}

func (idx paramIndexMap) totalCols() int { return idx.numCamCols + idx.numPtCols }

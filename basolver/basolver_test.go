package basolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityCam(focal float64, tx, ty, tz float64, constant bool) Camera {
	return Camera{
		FocalLength: focal,
		Rotation:    [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
		Translation: [3]float64{tx, ty, tz},
		Constant:    constant,
	}
}

// twoCameraScene builds the §8 property-7 scenario: a fixed reference
// camera, a second camera offset along X, and 3 points whose observations
// are computed by exact projection through the true parameters.
func twoCameraScene() (trueCams []Camera, truePoints []Point3D, obs []Observation) {
	trueCams = []Camera{
		identityCam(1000, 0, 0, 0, true),
		identityCam(1000, 1, 0, 0, false),
	}
	truePoints = []Point3D{
		{Pos: [3]float64{0, 0, 5}},
		{Pos: [3]float64{0.2, 0.1, 6}},
		{Pos: [3]float64{-0.1, 0.2, 4}},
	}

	for camID, cam := range trueCams {
		for ptID, pt := range truePoints {
			x, y := project(cam, pt.Pos)
			obs = append(obs, Observation{Pos: [2]float64{x, y}, CameraID: camID, PointID: ptID})
		}
	}
	return
}

func TestRunReducesReprojectionErrorBelowThreshold(t *testing.T) {
	trueCams, truePoints, obs := twoCameraScene()

	// Perturb the non-constant camera's translation and every point
	// slightly away from the exact solution.
	initCams := append([]Camera(nil), trueCams...)
	initCams[1].Translation[0] += 0.05
	initPoints := make([]Point3D, len(truePoints))
	for i, p := range truePoints {
		initPoints[i] = p
		initPoints[i].Pos[0] += 0.05
		initPoints[i].Pos[1] -= 0.03
	}

	opts := DefaultOptions()
	_, _, status, err := Run(initCams, initPoints, obs, opts)
	require.NoError(t, err)
	assert.Greater(t, status.InitialMSE, status.FinalMSE)
	assert.Less(t, status.FinalMSE, 1e-8)
}

func TestComputeMSEZeroForExactObservations(t *testing.T) {
	trueCams, truePoints, obs := twoCameraScene()
	f := ComputeResiduals(trueCams, truePoints, obs)
	assert.InDelta(t, 0, ComputeMSE(f), 1e-12)
}

func TestRodriguesToMatrixIdentityAtZero(t *testing.T) {
	m := rodriguesToMatrix([3]float64{0, 0, 0})
	assert.InDelta(t, 1, m[0], 1e-12)
	assert.InDelta(t, 1, m[4], 1e-12)
	assert.InDelta(t, 1, m[8], 1e-12)
	assert.InDelta(t, 0, m[1], 1e-12)
}

func TestParamIndexExcludesConstantCamera(t *testing.T) {
	cams := []Camera{identityCam(1000, 0, 0, 0, true), identityCam(1000, 1, 0, 0, false)}
	pts := []Point3D{{Pos: [3]float64{0, 0, 5}}}
	idx := paramIndex(cams, pts, DefaultOptions())
	_, hasConstant := idx.camOffset[0]
	_, hasFree := idx.camOffset[1]
	assert.False(t, hasConstant)
	assert.True(t, hasFree)
}

// TestAnalyticJacobianEntriesMatchesFiniteDifferences checks the closed-form
// partials against a central-difference approximation of project()/
// updateCamera(), guarding against a transcription error in the chain rule.
func TestAnalyticJacobianEntriesMatchesFiniteDifferences(t *testing.T) {
	cam := Camera{
		FocalLength: 1200,
		Distortion:  [2]float64{-0.05, 0.01},
		Translation: [3]float64{0.3, -0.1, 4.5},
		Rotation:    rodriguesToMatrix([3]float64{0.1, -0.2, 0.05}),
	}
	point := [3]float64{0.2, -0.15, 1.5}

	for _, fixed := range []bool{false, true} {
		opts := Options{FixedIntrinsics: fixed}
		ncp := numCamParams(opts)
		camX, camY, ptX, ptY := analyticJacobianEntries(cam, point, opts)

		const step = 1e-6
		for p := 0; p < ncp; p++ {
			update := make([]float64, ncp)
			update[p] = step
			xp, yp := project(updateCamera(cam, update, opts), point)
			update[p] = -step
			xm, ym := project(updateCamera(cam, update, opts), point)
			dx := (xp - xm) / (2 * step)
			dy := (yp - ym) / (2 * step)
			assert.InDelta(t, dx, camX[p], 1e-4, "camX[%d] fixed=%v", p, fixed)
			assert.InDelta(t, dy, camY[p], 1e-4, "camY[%d] fixed=%v", p, fixed)
		}

		for p := 0; p < 3; p++ {
			plus, minus := point, point
			plus[p] += step
			minus[p] -= step
			xp, yp := project(cam, plus)
			xm, ym := project(cam, minus)
			dx := (xp - xm) / (2 * step)
			dy := (yp - ym) / (2 * step)
			assert.InDelta(t, dx, ptX[p], 1e-4, "ptX[%d] fixed=%v", p, fixed)
			assert.InDelta(t, dy, ptY[p], 1e-4, "ptY[%d] fixed=%v", p, fixed)
		}
	}
}

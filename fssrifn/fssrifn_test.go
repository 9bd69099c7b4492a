package fssrifn

import (
	"testing"

	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateNoSamplesIsZeroConfidence(t *testing.T) {
	r := Evaluate(linalg.Vec3{}, nil)
	assert.Equal(t, 0.0, r.Confidence)
	assert.Equal(t, 0.0, r.Value)
}

func TestEvaluateAtSamplePlaneIsZero(t *testing.T) {
	s := Sample{
		Pos:        linalg.Vec3{X: 0, Y: 0, Z: 0},
		Normal:     linalg.Vec3{X: 0, Y: 0, Z: 1},
		Scale:      1,
		Confidence: 1,
	}
	r := Evaluate(linalg.Vec3{X: 0, Y: 0, Z: 0}, []Sample{s})
	assert.InDelta(t, 0, r.Value, 1e-9)
	assert.Greater(t, r.Confidence, 0.0)
}

func TestEvaluateSignFlipsAcrossSamplePlane(t *testing.T) {
	s := Sample{
		Pos:    linalg.Vec3{},
		Normal: linalg.Vec3{X: 0, Y: 0, Z: 1},
		Scale:  1,
	}
	front := Evaluate(linalg.Vec3{X: 0, Y: 0, Z: 0.5}, []Sample{s})
	back := Evaluate(linalg.Vec3{X: 0, Y: 0, Z: -0.5}, []Sample{s})
	assert.Greater(t, front.Value, 0.0)
	assert.Less(t, back.Value, 0.0)
}

func TestEvaluateFarAwayHasNoSupport(t *testing.T) {
	s := Sample{
		Pos:    linalg.Vec3{},
		Normal: linalg.Vec3{X: 0, Y: 0, Z: 1},
		Scale:  1,
	}
	r := Evaluate(linalg.Vec3{X: 100, Y: 100, Z: 100}, []Sample{s})
	assert.Equal(t, 0.0, r.Confidence)
}

func TestEvaluateBlendsColor(t *testing.T) {
	red := linalg.Vec3{X: 1, Y: 0, Z: 0}
	blue := linalg.Vec3{X: 0, Y: 0, Z: 1}
	s1 := Sample{Pos: linalg.Vec3{X: -0.05}, Normal: linalg.Vec3{X: 0, Y: 0, Z: 1}, Scale: 1, Color: &red}
	s2 := Sample{Pos: linalg.Vec3{X: 0.05}, Normal: linalg.Vec3{X: 0, Y: 0, Z: 1}, Scale: 1, Color: &blue}

	r := Evaluate(linalg.Vec3{}, []Sample{s1, s2})
	assert.Greater(t, r.Color.X, 0.0)
	assert.Greater(t, r.Color.Z, 0.0)
}

func TestRotationFromNormalHandlesAntiParallel(t *testing.T) {
	rot := rotationFromNormal(linalg.Vec3{X: -1, Y: 0, Z: 0})
	v := transform(rot, linalg.Vec3{X: 1, Y: 2, Z: 3})
	assert.InDelta(t, -1, v.X, 1e-9)
	assert.InDelta(t, 2, v.Y, 1e-9)
	assert.InDelta(t, 3, v.Z, 1e-9)
}

func TestRotationFromNormalIdentityCase(t *testing.T) {
	rot := rotationFromNormal(linalg.Vec3{X: 1, Y: 0, Z: 0})
	v := transform(rot, linalg.Vec3{X: 1, Y: 2, Z: 3})
	assert.InDelta(t, 1, v.X, 1e-9)
	assert.InDelta(t, 2, v.Y, 1e-9)
	assert.InDelta(t, 3, v.Z, 1e-9)
}

func TestWeightXZeroOutsideSupport(t *testing.T) {
	assert.Equal(t, 0.0, weightX(3))
	assert.Equal(t, 0.0, weightX(-3))
	assert.Equal(t, 0.0, weightX(10))
}

func TestWeightYZZeroOutsideSupport(t *testing.T) {
	assert.Equal(t, 0.0, weightYZ(3, 3))
	assert.Greater(t, weightYZ(0, 0), 0.0)
}

package meshio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonfuhrmann/surfrecon/linalg"
	"github.com/simonfuhrmann/surfrecon/mesh"
)

func square() *mesh.Mesh {
	m := mesh.New()
	m.Vertices = []linalg.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	m.Faces = []int{0, 1, 2, 0, 2, 3}
	m.Confidences = []float64{1, 0.9, 0.2, 0.5}
	return m
}

func TestWritePLYThenReadPLYRoundTripsGeometry(t *testing.T) {
	m := square()
	var buf bytes.Buffer
	require.NoError(t, WritePLY(&buf, m, PLYOptions{WriteConfidences: true}))

	got, err := ReadPLY(&buf)
	require.NoError(t, err)
	require.Len(t, got.Vertices, 4)
	require.Len(t, got.Faces, 6)
	for i, v := range m.Vertices {
		assert.InDelta(t, v.X, got.Vertices[i].X, 1e-6)
		assert.InDelta(t, v.Y, got.Vertices[i].Y, 1e-6)
		assert.InDelta(t, v.Z, got.Vertices[i].Z, 1e-6)
	}
	assert.Equal(t, m.Faces, got.Faces)
}

func TestWriteOFFThenReadOFFRoundTripsGeometry(t *testing.T) {
	m := square()
	var buf bytes.Buffer
	require.NoError(t, WriteOFF(&buf, m))

	got, err := ReadOFF(&buf)
	require.NoError(t, err)
	require.Len(t, got.Vertices, 4)
	assert.Equal(t, m.Faces, got.Faces)
}

func TestReadPLYRejectsMissingMagic(t *testing.T) {
	_, err := ReadPLY(bytes.NewBufferString("not a ply file\n"))
	require.Error(t, err)
}

func TestReadOFFRejectsMissingMagic(t *testing.T) {
	_, err := ReadOFF(bytes.NewBufferString("nope\n"))
	require.Error(t, err)
}

func TestWriteThreeMFProducesNonEmptyPackage(t *testing.T) {
	m := square()
	var buf bytes.Buffer
	require.NoError(t, WriteThreeMF(&buf, m))
	assert.Greater(t, buf.Len(), 0)
}

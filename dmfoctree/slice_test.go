package dmfoctree

import (
	"testing"

	"github.com/simonfuhrmann/surfrecon/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSliceRejectsBadAxis(t *testing.T) {
	o := New()
	_, err := o.GetSlice(0, 3, 0)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.InvalidArgument))
}

func TestGetSliceRejectsOutOfRangeID(t *testing.T) {
	o := New()
	_, err := o.GetSlice(1, 0, 99)
	require.Error(t, err)
}

func TestGetSlicePlaneZ(t *testing.T) {
	o := New()
	setVoxel(o, 1, 1, 2, 0, -0.5, 1)

	img, err := o.GetSlice(1, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Width)
	assert.Equal(t, 3, img.Height)

	px := img.At(1, 2)
	assert.Equal(t, float32(-0.5), px[0])
	assert.Equal(t, float32(1), px[1])

	empty := img.At(0, 0)
	assert.Equal(t, float32(0), empty[1])
}

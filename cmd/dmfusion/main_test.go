package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadManifestParsesViewsAndSkipsComments(t *testing.T) {
	f := strings.NewReader("# comment\nscan0.ply 0 0 0\nscan1.ply 1.5 0 -2\n")
	views, err := readManifestFromReader(f)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "scan0.ply", views[0].meshPath)
	assert.Equal(t, 1.5, views[1].camPos.X)
}

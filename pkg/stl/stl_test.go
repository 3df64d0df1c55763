package stl

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signedVolume is positive for a closed mesh with outward facing windings
func signedVolume(m *Model) float64 {
	volume := 0.0
	for _, t := range m.Triangles {
		volume += t.V1.Dot(t.V2.Cross(t.V3)) / 6
	}
	return volume
}

func TestFromToolpath(t *testing.T) {
	tp := gcode.FromChunk(gcode.Parse("G1 X10"))
	model := FromToolpath("line", tp, ExportOptions{Radius: 0.5, Slices: 8})

	require.Equal(t, 8*4, model.TriangleCount())

	bbox := model.BoundingBox()
	assert.InDelta(t, 0, bbox.Min.X, 1e-9)
	assert.InDelta(t, 10, bbox.Max.X, 1e-9)
	assert.InDelta(t, 0.5, bbox.Max.Y, 1e-9)
	assert.InDelta(t, -0.5, bbox.Min.Z, 1e-9)

	// regular octagon prism
	want := 4 * 0.25 * math.Sin(math.Pi/4) * 10
	assert.InDelta(t, want, signedVolume(model), 1e-6)
}

func TestFromToolpath_Filters(t *testing.T) {
	tp := gcode.FromChunk(gcode.Parse("G0 X5\nG1 X10\nG1 X10\nG1 Y5"))
	require.Equal(t, 4, tp.Len())

	all := FromToolpath("", tp, ExportOptions{Slices: 3})
	assert.Equal(t, 3*3*4, all.TriangleCount(), "zero-length segment is left out")

	cutting := FromToolpath("", tp, ExportOptions{Slices: 3, Modes: []gcode.Mode{gcode.ModeG1}})
	assert.Equal(t, 2*3*4, cutting.TriangleCount())

	first := FromToolpath("", tp, ExportOptions{Slices: 3, UpTo: 1})
	assert.Equal(t, 3*4, first.TriangleCount())
}

func TestRoundTrip(t *testing.T) {
	tp := gcode.FromChunk(gcode.Parse("G1 X10\nG2 X20 Y0 I5 J0"))
	model := FromToolpath("toolpath", tp, ExportOptions{Slices: 4})

	for _, ascii := range []bool{false, true} {
		var buf bytes.Buffer
		if ascii {
			require.NoError(t, model.WriteASCII(&buf))
		} else {
			require.NoError(t, model.WriteBinary(&buf))
		}

		decoded, err := Read(&buf)
		require.NoError(t, err)
		assert.Equal(t, "toolpath", decoded.Name)
		require.Equal(t, model.TriangleCount(), decoded.TriangleCount())
		for i, tri := range model.Triangles {
			got := decoded.Triangles[i]
			assert.InDelta(t, tri.V2.X, got.V2.X, 1e-4)
			assert.InDelta(t, tri.V3.Y, got.V3.Y, 1e-4)
			assert.InDelta(t, tri.Normal.Z, got.Normal.Z, 1e-4)
		}
	}
}

func TestSave(t *testing.T) {
	model := NewModel("")
	model.AddTriangle(NewTriangle(geometry.Vector3{},
		geometry.NewVector3(0, 0, 0), geometry.NewVector3(1, 0, 0), geometry.NewVector3(0, 1, 0)))

	path := filepath.Join(t.TempDir(), "tri.stl")
	require.NoError(t, model.Save(path, false))

	loaded, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "tri", loaded.Name)
	require.Equal(t, 1, loaded.TriangleCount())
	assert.Equal(t, geometry.NewVector3(0, 0, 1), loaded.Triangles[0].Normal)
}

func TestReadErrors(t *testing.T) {
	_, err := Read(bytes.NewBufferString("solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nendloop\nendfacet\nendsolid x\n"))
	assert.Error(t, err)

	_, err = Read(bytes.NewBufferString("solid x\nfacet normal 0 0 1\nouter loop\nvertex a 0 0\n"))
	assert.Error(t, err)

	_, err = Read(bytes.NewReader(make([]byte, 10)))
	assert.Error(t, err)
}

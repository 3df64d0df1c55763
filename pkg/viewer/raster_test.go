package viewer

import (
	"image"
	"image/color"
	"testing"

	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countColor(img *image.RGBA, col color.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == col {
				n++
			}
		}
	}
	return n
}

func TestRenderImage(t *testing.T) {
	tp := gcode.FromChunk(gcode.Parse("G1 X10 Y0\nG2 X10 Y10 I0 J5\nG3 X0 Y10 I-5 J0"))
	styles := mesh.DefaultStyles()
	cam := NewCamera(tp.Bounds())

	img := RenderImage(tp, cam, 200, 150, styles, -1)
	require.Equal(t, image.Rect(0, 0, 200, 150), img.Bounds())

	assert.Greater(t, countColor(img, styles.Get(gcode.ModeG1).RGBA()), 10)
	assert.Greater(t, countColor(img, styles.Get(gcode.ModeG2).RGBA()), 10)
	assert.Greater(t, countColor(img, styles.Get(gcode.ModeG3).RGBA()), 10)
	assert.Equal(t, Background, img.RGBAAt(199, 149))
}

func TestRenderImage_UpTo(t *testing.T) {
	tp := gcode.FromChunk(gcode.Parse("G1 X10\nG2 X20 I5"))
	styles := mesh.DefaultStyles()
	cam := NewCamera(tp.Bounds())

	img := RenderImage(tp, cam, 200, 150, styles, 1)
	assert.Greater(t, countColor(img, styles.Get(gcode.ModeG1).RGBA()), 10)
	assert.Equal(t, 0, countColor(img, styles.Get(gcode.ModeG2).RGBA()))
}

func TestRenderImage_Empty(t *testing.T) {
	tp := gcode.NewToolpath()
	img := RenderImage(tp, NewCamera(tp.Bounds()), 64, 64, mesh.DefaultStyles(), -1)
	assert.Equal(t, Background, img.RGBAAt(63, 63))
}

func TestCaption(t *testing.T) {
	tp := gcode.FromChunk(gcode.Parse("G0 X1\nG1 X2\nX3"))
	assert.Equal(t, "2/3 segments  G0:1  G1:1  G2:0  G3:0", caption(tp, 2))
}

func TestClipLine(t *testing.T) {
	x1, y1, x2, y2, ok := clipLine(-100, 50, 300, 50, 200, 100)
	assert.True(t, ok)
	assert.InDelta(t, 0, x1, 1e-9)
	assert.InDelta(t, 199, x2, 1e-9)
	assert.Equal(t, 50.0, y1)
	assert.Equal(t, 50.0, y2)

	_, _, _, _, ok = clipLine(-100, -10, 300, -10, 200, 100)
	assert.False(t, ok)
}

func TestBlend(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{A: 255})
	blend(img, 0, 0, color.RGBA{R: 255, A: 51})
	assert.Equal(t, color.RGBA{R: 51, A: 255}, img.RGBAAt(0, 0))
}

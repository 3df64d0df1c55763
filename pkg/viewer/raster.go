package viewer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/mesh"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Background is the clear color of rendered images
var Background = color.RGBA{R: 30, G: 30, B: 36, A: 255}

// RenderImage rasterizes the first upTo segments of a toolpath (all of them
// when upTo is negative) as seen from cam. Modes are drawn in G0..G3 order
// so cutting moves end up on top of rapids. A caption with the segment
// counts is drawn in the top left corner.
func RenderImage(tp *gcode.Toolpath, cam *Camera, width, height int, styles mesh.Styles, upTo int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: Background}, image.Point{}, draw.Src)

	if upTo < 0 || upTo > tp.Len() {
		upTo = tp.Len()
	}
	w, h := float64(width), float64(height)
	frustum := NewFrustum(cam, w/h)

	for _, mode := range gcode.Modes {
		col := styles.Get(mode).RGBA()
		for _, i := range tp.IndicesByMode(mode) {
			if i >= upTo {
				break
			}
			seg := tp.Segments[i]
			if !frustum.ContainsPoint(seg.Start) && !frustum.ContainsPoint(seg.End) {
				continue
			}

			x1, y1, z1 := cam.Project(seg.Start, w, h)
			x2, y2, z2 := cam.Project(seg.End, w, h)
			if z1 < cam.Near || z2 < cam.Near {
				continue
			}
			if x1, y1, x2, y2, ok := clipLine(x1, y1, x2, y2, w, h); ok {
				drawLine(img, int(x1), int(y1), int(x2), int(y2), col)
			}
		}
	}

	if upTo > 0 {
		tool := tp.Segments[upTo-1].End
		if x, y, z := cam.Project(tool, w, h); z >= cam.Near {
			drawMarker(img, int(x), int(y), color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	drawCaption(img, caption(tp, upTo))
	return img
}

// caption summarizes the revealed segments per mode
func caption(tp *gcode.Toolpath, upTo int) string {
	counts := tp.CountsBefore(upTo)
	parts := make([]string, 0, len(gcode.Modes)+1)
	parts = append(parts, fmt.Sprintf("%d/%d segments", upTo, tp.Len()))
	for _, mode := range gcode.Modes {
		parts = append(parts, fmt.Sprintf("%s:%d", mode, counts[mode]))
	}
	return strings.Join(parts, "  ")
}

// clipLine clips a line to the rectangle [0,w)x[0,h) (Liang-Barsky)
func clipLine(x1, y1, x2, y2, w, h float64) (float64, float64, float64, float64, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := x2-x1, y2-y1

	edges := [4][2]float64{
		{-dx, x1},
		{dx, w - 1 - x1},
		{-dy, y1},
		{dy, h - 1 - y1},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	return x1 + t0*dx, y1 + t0*dy, x1 + t1*dx, y1 + t1*dy, true
}

// drawCaption writes text in the top left corner
func drawCaption(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	ascent := face.Metrics().Ascent.Ceil()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 230, G: 230, B: 230, A: 255}),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(6), Y: fixed.I(6 + ascent)},
	}
	d.DrawString(text)
}

// drawMarker draws a small cross
func drawMarker(img *image.RGBA, x, y int, col color.RGBA) {
	const size = 4
	drawLine(img, x-size, y, x+size, y, col)
	drawLine(img, x, y-size, x, y+size, col)
}

// blend mixes col over the pixel at x, y using col's alpha
func blend(img *image.RGBA, x, y int, col color.RGBA) {
	if col.A == 255 {
		img.SetRGBA(x, y, col)
		return
	}
	dst := img.RGBAAt(x, y)
	a := uint32(col.A)
	mix := func(s, d uint8) uint8 {
		return uint8((uint32(s)*a + uint32(d)*(255-a)) / 255)
	}
	img.SetRGBA(x, y, color.RGBA{R: mix(col.R, dst.R), G: mix(col.G, dst.G), B: mix(col.B, dst.B), A: 255})
}

// drawLine draws a line on an image using Bresenham's algorithm
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	bounds := img.Bounds()

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	var sx, sy int
	if x1 < x2 {
		sx = 1
	} else {
		sx = -1
	}
	if y1 < y2 {
		sy = 1
	} else {
		sy = -1
	}

	err := dx - dy

	for {
		// Check bounds
		if x1 >= 0 && x1 < bounds.Max.X && y1 >= 0 && y1 < bounds.Max.Y {
			blend(img, x1, y1, col)
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
